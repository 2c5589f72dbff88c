package app

import (
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fsdevblog/linkresolver/internal/config"
	"github.com/fsdevblog/linkresolver/internal/db"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		dbType  db.StorageType
		dsn     string
		wantErr bool
	}{
		{name: "memory", dbType: db.StorageTypeInMemory},
		{name: "sqlite", dbType: db.StorageTypeSQLite, dsn: "file:app_new?mode=memory&cache=shared"},
		{name: "redis", dbType: db.StorageTypeRedis, dsn: "redis://" + mr.Addr()},
		{name: "postgres without dsn", dbType: db.StorageTypePostgres, wantErr: true},
		{name: "unknown", dbType: db.StorageType("oracle"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(config.Config{DBType: tt.dbType, DatabaseDSN: tt.dsn, Logger: testLogger()})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, a.dbServices.LinkService)
			assert.NotNil(t, a.dbServices.PingService)
			assert.NoError(t, a.closeStorage())
		})
	}
}

func TestMust(t *testing.T) {
	assert.Panics(t, func() {
		Must(New(config.Config{DBType: db.StorageType("oracle"), Logger: testLogger()}))
	})
}
