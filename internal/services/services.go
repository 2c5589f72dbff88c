package services

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/linkresolver/internal/db"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/repositories/memstore"
	"github.com/fsdevblog/linkresolver/internal/repositories/redisstore"
	"github.com/fsdevblog/linkresolver/internal/repositories/sql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidConnection = errors.New("invalid connection type")

type Services struct {
	LinkService *LinkService
	PingService *PingService
}

// Factory собирает сервисы поверх подключения, созданного db.NewConnectionFactory.
//
// Параметры:
//   - conn: подключение, тип зависит от sType
//   - sType: тип хранилища
//   - logger: логгер
//
// Возвращает:
//   - *Services: сервисы приложения
//   - error: ErrInvalidConnection, если тип conn не соответствует sType
func Factory(conn any, sType db.StorageType, logger *logrus.Logger) (*Services, error) {
	switch sType {
	case db.StorageTypeSQLite, db.StorageTypePostgres, db.StorageTypeMySQL:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, fmt.Errorf("%w: expected *gorm.DB", ErrInvalidConnection)
		}
		repo := sql.NewLinkRepo(gormDB, logger)
		return newServices(repo, repo, logger), nil
	case db.StorageTypeInMemory:
		store, ok := conn.(*db.MemoryStorage)
		if !ok {
			return nil, fmt.Errorf("%w: expected *db.MemoryStorage", ErrInvalidConnection)
		}
		repo := memstore.NewLinkRepo(store, logger)
		return newServices(repo, repo, logger), nil
	case db.StorageTypeRedis:
		client, ok := conn.(*redis.Client)
		if !ok {
			return nil, fmt.Errorf("%w: expected *redis.Client", ErrInvalidConnection)
		}
		repo := redisstore.NewLinkRepo(client, logger)
		return newServices(repo, repo, logger), nil
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}
}

func newServices(repo repositories.LinkRepository, pinger repositories.Pinger, logger *logrus.Logger) *Services {
	return &Services{
		LinkService: NewLinkService(repo, logger),
		PingService: NewPingService(pinger),
	}
}
