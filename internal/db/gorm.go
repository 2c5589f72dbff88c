package db

import (
	"fmt"
	"time"

	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewPostgres открывает подключение к PostgreSQL и применяет миграцию.
//
// Параметры:
//   - dsn: строка подключения к базе данных (Data Source Name)
//   - logger: логгер для gorm
//
// Возвращает:
//   - *gorm.DB: подключение
//   - error: ошибка подключения или миграции
func NewPostgres(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	return openGorm(postgres.Open(dsn), logger)
}

// NewMySQL открывает подключение к MySQL и применяет миграцию.
// В dsn обязателен parseTime=true, иначе created_at не прочитается.
func NewMySQL(dsn string, logger *logrus.Logger) (*gorm.DB, error) {
	return openGorm(mysql.Open(dsn), logger)
}

func openGorm(dialector gorm.Dialector, logger *logrus.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("connect %s database error: %w", dialector.Name(), err)
	}
	if migrateErr := migrate(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func gormConfig(logger *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			logger.WithField("module", "gorm"),
			gormlogger.Config{
				SlowThreshold:             slowQueryThreshold,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Link{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}
