package sql

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/fsdevblog/linkresolver/internal/db"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/repositories/repotest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var dbCounter atomic.Int64

func newTestRepo(t *testing.T) *LinkRepo {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dsn := fmt.Sprintf("file:links_%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := db.NewSQLite(dsn, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, dbErr := conn.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	return NewLinkRepo(conn, logger)
}

func TestLinkRepo(t *testing.T) {
	s := new(repotest.LinkRepositorySuite)
	s.NewRepo = func() repositories.LinkRepository {
		return newTestRepo(t)
	}
	suite.Run(t, s)
}

func TestLinkRepo_Ping(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Ping(t.Context()))
}

func TestConvertErrorType(t *testing.T) {
	assert.NoError(t, convertErrorType(nil))
	assert.ErrorIs(t,
		convertErrorType(errors.New("UNIQUE constraint failed: links.code")),
		repositories.ErrDuplicateKey,
	)
	assert.ErrorIs(t,
		convertErrorType(errors.New("ERROR: duplicate key value violates unique constraint \"idx_links_code\"")),
		repositories.ErrDuplicateKey,
	)
	assert.ErrorIs(t, convertErrorType(errors.New("connection refused")), repositories.ErrUnknown)
}
