package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type StorageType string

const (
	StorageTypeInMemory StorageType = "inMemory"
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeMySQL    StorageType = "mysql"
	StorageTypeRedis    StorageType = "redis"
)

var ErrEmptyDSN = errors.New("database dsn is empty")

type FactoryConfig struct {
	StorageType StorageType
	// DSN строка подключения. Для sqlite путь к файлу, пустой означает DefaultSQLitePath.
	DSN    string
	Logger *logrus.Logger
}

// NewConnectionFactory открывает хранилище выбранного типа.
//
// Возвращает одно из: *gorm.DB, *MemoryStorage, *redis.Client.
func NewConnectionFactory(ctx context.Context, config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	case StorageTypeSQLite:
		path := config.DSN
		if path == "" {
			path = DefaultSQLitePath
		}
		return NewSQLite(path, config.Logger)
	case StorageTypePostgres:
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres: %w", ErrEmptyDSN)
		}
		return NewPostgres(config.DSN, config.Logger)
	case StorageTypeMySQL:
		if config.DSN == "" {
			return nil, fmt.Errorf("mysql: %w", ErrEmptyDSN)
		}
		return NewMySQL(config.DSN, config.Logger)
	case StorageTypeRedis:
		if config.DSN == "" {
			return nil, fmt.Errorf("redis: %w", ErrEmptyDSN)
		}
		return NewRedis(ctx, config.DSN)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}
