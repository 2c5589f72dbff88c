package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultSQLitePath файл базы по умолчанию.
const DefaultSQLitePath = "./shortener.sqlite"

// NewSQLite открывает базу sqlite и применяет миграцию. Первичный ключ создается с AUTOINCREMENT,
// поэтому идентификаторы откаченных записей не выдаются повторно.
func NewSQLite(dbPath string, logger *logrus.Logger) (*gorm.DB, error) {
	conn, connErr := connectSQLite(dbPath, logger)
	if connErr != nil {
		return nil, fmt.Errorf("init database error: %w", connErr)
	}
	if migrateErr := migrate(conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func connectSQLite(dbPath string, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dbPath, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db error: %w", err)
	}
	// sqlite не поддерживает параллельную запись, одно соединение убирает `database is locked`.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
