package redisstore

import (
	"errors"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/repositories/repotest"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func newTestRepo(t *testing.T) (*LinkRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLinkRepo(client, logger), mr
}

func TestLinkRepo(t *testing.T) {
	s := new(repotest.LinkRepositorySuite)
	s.NewRepo = func() repositories.LinkRepository {
		repo, _ := newTestRepo(t)
		return repo
	}
	suite.Run(t, s)
}

func TestLinkRepo_KeyLayout(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := t.Context()

	link, err := repo.InsertWithCode(ctx, "https://example.com", "abc")
	require.NoError(t, err)

	seq, err := mr.Get(KeyPrefix + "seq")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)

	id, err := mr.Get(KeyPrefix + "code:abc")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	assert.Equal(t, "https://example.com", mr.HGet(KeyPrefix+"id:1", "original_url"))
	assert.Equal(t, "abc", mr.HGet(KeyPrefix+"id:1", "code"))

	members, err := mr.ZMembers(KeyPrefix + "url:https://example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)
	assert.Equal(t, uint(1), link.ID)
}

func TestLinkRepo_Rollback_RemovesKeys(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := t.Context()

	errAbort := errors.New("abort")
	err := repo.Transaction(ctx, func(tx repositories.LinkRepository) error {
		_, allocErr := tx.AllocatePlaceholder(ctx, "https://example.com")
		require.NoError(t, allocErr)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	assert.Equal(t, []string{KeyPrefix + "seq"}, mr.Keys())
}

func TestLinkRepo_ServerDown(t *testing.T) {
	repo, mr := newTestRepo(t)
	mr.Close()

	_, err := repo.FindByCode(t.Context(), "abc")
	require.ErrorIs(t, err, repositories.ErrUnknown)
	require.Error(t, repo.Ping(t.Context()))
}
