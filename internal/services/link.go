package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/fsdevblog/linkresolver/internal/metrics"
	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/shortcode"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RegisterParams параметры регистрации ссылки.
type RegisterParams struct {
	OriginalURL string
	// CustomCode пользовательский алиас. Пустая строка означает генерацию кода по идентификатору.
	CustomCode string
	// ForceNew отключает поиск уже зарегистрированной ссылки с тем же URL.
	ForceNew bool
}

// RegisterResult результат регистрации.
type RegisterResult struct {
	Link *models.Link
	// AlreadyExisted true, если вернулась ранее созданная ссылка.
	AlreadyExisted bool
}

// LinkService регистрирует ссылки и разрешает короткие коды.
type LinkService struct {
	repo   repositories.LinkRepository
	logger *logrus.Entry
}

func NewLinkService(repo repositories.LinkRepository, logger *logrus.Logger) *LinkService {
	return &LinkService{
		repo:   repo,
		logger: logger.WithField("module", "service/link"),
	}
}

// Register регистрирует ссылку.
//
// Порядок:
//  1. без ForceNew ищется существующая запись с тем же URL, найденная возвращается с AlreadyExisted
//  2. при заданном CustomCode запись создается с этим алиасом, занятый алиас дает ErrAliasTaken
//  3. иначе запись создается с заглушкой, получает идентификатор и код base62 от него
//
// Возможные ошибки: ErrEmptyURL, ErrInvalidAlias, ErrAliasTaken, ErrCodeConflict,
// ErrInvalidIdentifier, ErrUnknown.
func (l *LinkService) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	originalURL := strings.TrimSpace(params.OriginalURL)
	customCode := strings.TrimSpace(params.CustomCode)
	kind := metrics.KindGenerated
	if customCode != "" {
		kind = metrics.KindAlias
	}

	if originalURL == "" {
		metrics.RecordRegistration(kind, metrics.OutcomeInvalid)
		return nil, ErrEmptyURL
	}

	if !params.ForceNew {
		existing, err := l.repo.FindByOriginalURL(ctx, originalURL)
		switch {
		case err == nil:
			metrics.RecordRegistration(metrics.KindDedupe, metrics.OutcomeExisting)
			return &RegisterResult{Link: existing, AlreadyExisted: true}, nil
		case !errors.Is(err, repositories.ErrNotFound):
			metrics.RecordRegistration(kind, metrics.OutcomeError)
			return nil, errors.Wrap(ErrUnknown, err.Error())
		}
	}

	var (
		link *models.Link
		err  error
	)
	if customCode != "" {
		link, err = l.registerAlias(ctx, originalURL, customCode)
	} else {
		link, err = l.registerGenerated(ctx, originalURL)
	}
	if err != nil {
		metrics.RecordRegistration(kind, registrationOutcome(err))
		return nil, err
	}

	metrics.RecordRegistration(kind, metrics.OutcomeCreated)
	return &RegisterResult{Link: link}, nil
}

func (l *LinkService) registerAlias(ctx context.Context, originalURL, alias string) (*models.Link, error) {
	if err := shortcode.ValidateAlias(alias); err != nil {
		return nil, err //nolint:wrapcheck
	}

	link, err := l.repo.InsertWithCode(ctx, originalURL, alias)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errors.Wrapf(ErrAliasTaken, "alias `%s`", alias)
		}
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}
	return link, nil
}

// registerGenerated двухфазное создание: запись с заглушкой, затем код от ее идентификатора.
// Обе фазы выполняются в одной транзакции, при любой ошибке заглушка не остается в хранилище.
func (l *LinkService) registerGenerated(ctx context.Context, originalURL string) (*models.Link, error) {
	var link *models.Link
	txErr := l.repo.Transaction(ctx, func(repo repositories.LinkRepository) error {
		placeholder, err := repo.AllocatePlaceholder(ctx, originalURL)
		if err != nil {
			return errors.Wrap(ErrUnknown, err.Error())
		}

		code, err := shortcode.Encode(placeholder.ID)
		if err != nil {
			l.logger.WithError(err).Errorf("store returned invalid identifier %d", placeholder.ID)
			return errors.Wrapf(err, "id %d", placeholder.ID)
		}

		if updErr := repo.UpdateCode(ctx, placeholder.ID, code); updErr != nil {
			if errors.Is(updErr, repositories.ErrDuplicateKey) {
				l.logger.Warnf("generated code `%s` for id %d is taken by alias", code, placeholder.ID)
				return errors.Wrapf(ErrCodeConflict, "code `%s`", code)
			}
			return errors.Wrap(ErrUnknown, updErr.Error())
		}

		placeholder.Code = code
		link = placeholder
		return nil
	})
	if txErr != nil {
		if isServiceError(txErr) {
			return nil, txErr
		}
		return nil, errors.Wrap(ErrUnknown, txErr.Error())
	}
	return link, nil
}

// Resolve возвращает ссылку по коду. Допускается полный короткий URL, код берется из последнего сегмента пути.
func (l *LinkService) Resolve(ctx context.Context, input string) (*models.Link, error) {
	code := StripCode(input)
	if code == "" || shortcode.IsPlaceholder(code) {
		metrics.RecordResolution(metrics.OutcomeNotFound)
		return nil, errors.Wrapf(ErrRecordNotFound, "code `%s` not found", code)
	}

	link, err := l.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.RecordResolution(metrics.OutcomeNotFound)
			return nil, errors.Wrapf(ErrRecordNotFound, "code `%s` not found", code)
		}
		metrics.RecordResolution(metrics.OutcomeError)
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}

	metrics.RecordResolution(metrics.OutcomeFound)
	return link, nil
}

// StripCode отрезает от ввода схему, хост и путь, оставляя последний сегмент.
// Ссылка без пути дает пустой код.
//
//	"https://sho.rt/abc/" -> "abc"
//	"https://sho.rt/"     -> ""
//	"abc"                 -> "abc"
func StripCode(input string) string {
	s := strings.TrimSpace(input)
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = u.Path
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func isServiceError(err error) bool {
	for _, target := range []error{ErrUnknown, ErrCodeConflict, ErrInvalidIdentifier} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, ErrAliasTaken), errors.Is(err, ErrCodeConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrInvalidAlias):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
