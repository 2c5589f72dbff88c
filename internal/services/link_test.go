package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/repositories/mocks"
	"github.com/fsdevblog/linkresolver/internal/services/smocks"
	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// runTx заставляет мок Transaction выполнять fn поверх того же мока.
func runTx(repo *mocks.MockLinkRepository) {
	repo.EXPECT().
		Transaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(repositories.LinkRepository) error) error {
			return fn(repo)
		})
}

func TestLinkService_Register(t *testing.T) {
	url := gofakeit.URL()
	storeErr := errors.New("connection reset")

	tests := []struct {
		name         string
		params       RegisterParams
		setup        func(repo *mocks.MockLinkRepository)
		wantCode     string
		wantExisting bool
		wantErr      error
	}{
		{
			name:    "empty url",
			params:  RegisterParams{OriginalURL: "   "},
			setup:   func(*mocks.MockLinkRepository) {},
			wantErr: ErrEmptyURL,
		},
		{
			name:   "existing link",
			params: RegisterParams{OriginalURL: url},
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByOriginalURL(gomock.Any(), url).
					Return(&models.Link{ID: 7, OriginalURL: url, Code: "h"}, nil)
			},
			wantCode:     "h",
			wantExisting: true,
		},
		{
			name:   "generated code",
			params: RegisterParams{OriginalURL: "  " + url + " "},
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByOriginalURL(gomock.Any(), url).Return(nil, repositories.ErrNotFound)
				runTx(repo)
				repo.EXPECT().AllocatePlaceholder(gomock.Any(), url).
					Return(&models.Link{ID: 62, OriginalURL: url, Code: "~tmp"}, nil)
				repo.EXPECT().UpdateCode(gomock.Any(), uint(62), "ba").Return(nil)
			},
			wantCode: "ba",
		},
		{
			name:   "force new skips lookup",
			params: RegisterParams{OriginalURL: url, ForceNew: true},
			setup: func(repo *mocks.MockLinkRepository) {
				runTx(repo)
				repo.EXPECT().AllocatePlaceholder(gomock.Any(), url).
					Return(&models.Link{ID: 1, OriginalURL: url, Code: "~tmp"}, nil)
				repo.EXPECT().UpdateCode(gomock.Any(), uint(1), "b").Return(nil)
			},
			wantCode: "b",
		},
		{
			name:   "custom alias",
			params: RegisterParams{OriginalURL: url, CustomCode: "my-link"},
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByOriginalURL(gomock.Any(), url).Return(nil, repositories.ErrNotFound)
				repo.EXPECT().InsertWithCode(gomock.Any(), url, "my-link").
					Return(&models.Link{ID: 3, OriginalURL: url, Code: "my-link"}, nil)
			},
			wantCode: "my-link",
		},
		{
			name:   "alias taken",
			params: RegisterParams{OriginalURL: url, CustomCode: "taken", ForceNew: true},
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().InsertWithCode(gomock.Any(), url, "taken").
					Return(nil, repositories.ErrDuplicateKey)
			},
			wantErr: ErrAliasTaken,
		},
		{
			name:    "invalid alias",
			params:  RegisterParams{OriginalURL: url, CustomCode: "a/b", ForceNew: true},
			setup:   func(*mocks.MockLinkRepository) {},
			wantErr: ErrInvalidAlias,
		},
		{
			name:   "generated code taken by alias",
			params: RegisterParams{OriginalURL: url, ForceNew: true},
			setup: func(repo *mocks.MockLinkRepository) {
				runTx(repo)
				repo.EXPECT().AllocatePlaceholder(gomock.Any(), url).
					Return(&models.Link{ID: 2, OriginalURL: url, Code: "~tmp"}, nil)
				repo.EXPECT().UpdateCode(gomock.Any(), uint(2), "c").Return(repositories.ErrDuplicateKey)
			},
			wantErr: ErrCodeConflict,
		},
		{
			name:   "store returned zero id",
			params: RegisterParams{OriginalURL: url, ForceNew: true},
			setup: func(repo *mocks.MockLinkRepository) {
				runTx(repo)
				repo.EXPECT().AllocatePlaceholder(gomock.Any(), url).
					Return(&models.Link{ID: 0, OriginalURL: url, Code: "~tmp"}, nil)
			},
			wantErr: ErrInvalidIdentifier,
		},
		{
			name:   "lookup failure",
			params: RegisterParams{OriginalURL: url},
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByOriginalURL(gomock.Any(), url).Return(nil, storeErr)
			},
			wantErr: ErrUnknown,
		},
		{
			name:   "allocate failure",
			params: RegisterParams{OriginalURL: url, ForceNew: true},
			setup: func(repo *mocks.MockLinkRepository) {
				runTx(repo)
				repo.EXPECT().AllocatePlaceholder(gomock.Any(), url).Return(nil, storeErr)
			},
			wantErr: ErrUnknown,
		},
		{
			name:   "transaction commit failure",
			params: RegisterParams{OriginalURL: url, ForceNew: true},
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().Transaction(gomock.Any(), gomock.Any()).Return(storeErr)
			},
			wantErr: ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockLinkRepository(ctrl)
			tt.setup(repo)

			service := NewLinkService(repo, testLogger())
			res, err := service.Register(t.Context(), tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.Link.Code)
			assert.Equal(t, tt.wantExisting, res.AlreadyExisted)
		})
	}
}

func TestLinkService_Resolve(t *testing.T) {
	link := &models.Link{ID: 1, OriginalURL: "https://example.com", Code: "b"}

	tests := []struct {
		name    string
		input   string
		setup   func(repo *mocks.MockLinkRepository)
		wantErr error
	}{
		{
			name:  "bare code",
			input: "b",
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByCode(gomock.Any(), "b").Return(link, nil)
			},
		},
		{
			name:  "full short url",
			input: " http://localhost:8080/b/ ",
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByCode(gomock.Any(), "b").Return(link, nil)
			},
		},
		{
			name:  "unknown code",
			input: "zzz",
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByCode(gomock.Any(), "zzz").Return(nil, repositories.ErrNotFound)
			},
			wantErr: ErrRecordNotFound,
		},
		{
			name:    "empty input",
			input:   "http://localhost:8080/",
			setup:   func(*mocks.MockLinkRepository) {},
			wantErr: ErrRecordNotFound,
		},
		{
			name:    "host without path",
			input:   "http://localhost",
			setup:   func(*mocks.MockLinkRepository) {},
			wantErr: ErrRecordNotFound,
		},
		{
			name:    "placeholder is never resolved",
			input:   "~7c9e6679-7425-40de-944b-e07fc1f90ae7",
			setup:   func(*mocks.MockLinkRepository) {},
			wantErr: ErrRecordNotFound,
		},
		{
			name:  "store failure",
			input: "b",
			setup: func(repo *mocks.MockLinkRepository) {
				repo.EXPECT().FindByCode(gomock.Any(), "b").Return(nil, repositories.ErrUnknown)
			},
			wantErr: ErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockLinkRepository(ctrl)
			tt.setup(repo)

			service := NewLinkService(repo, testLogger())
			got, err := service.Resolve(t.Context(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, link.OriginalURL, got.OriginalURL)
		})
	}
}

func TestStripCode(t *testing.T) {
	tests := map[string]string{
		"abc":                          "abc",
		"  abc  ":                      "abc",
		"http://localhost:8080/abc":    "abc",
		"https://sho.rt/abc/":          "abc",
		"https://sho.rt/nested/path/x": "x",
		"https://sho.rt/":              "",
		"https://sho.rt":               "",
		"http://localhost":             "",
		"http://localhost:8080/":       "",
		"https://sho.rt/abc?utm=1":     "abc",
		"":                             "",
		"/":                            "",
	}
	for input, want := range tests {
		assert.Equalf(t, want, StripCode(input), "StripCode(%q)", input)
	}
}

func TestPingService(t *testing.T) {
	downErr := errors.New("down")
	pinger := new(smocks.PingerMock)
	pinger.On("Ping", mock.Anything).Return(nil).Once()
	pinger.On("Ping", mock.Anything).Return(downErr).Once()

	s := NewPingService(pinger)
	require.NoError(t, s.CheckConnection(t.Context()))
	require.ErrorIs(t, s.CheckConnection(t.Context()), downErr)
	pinger.AssertExpectations(t)
}
