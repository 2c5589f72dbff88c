package sql

import (
	"context"
	"fmt"

	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/shortcode"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LinkRepo репозиторий ссылок в sql базе.
type LinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
	// lastAllocated последний идентификатор заглушки внутри Transaction, nil вне транзакции.
	lastAllocated *uint
}

// NewLinkRepo создает новый экземпляр репозитория.
//
// Параметры:
//   - db: подключение gorm с примененной миграцией models.Link
//   - logger: логгер
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(db *gorm.DB, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/link"),
	}
}

func (l *LinkRepo) withTx(tx *gorm.DB, lastAllocated *uint) *LinkRepo {
	return &LinkRepo{
		db:            tx,
		logger:        l.logger,
		lastAllocated: lastAllocated,
	}
}

// AllocatePlaceholder создает запись с временным кодом. ID присваивает база.
func (l *LinkRepo) AllocatePlaceholder(ctx context.Context, originalURL string) (*models.Link, error) {
	link := models.Link{
		OriginalURL: originalURL,
		Code:        shortcode.NewPlaceholder(),
	}
	if err := l.db.WithContext(ctx).Create(&link).Error; err != nil {
		l.logger.WithError(err).Errorf("failed to allocate placeholder for `%s`", originalURL)
		return nil, fmt.Errorf("failed to allocate placeholder: %w", convertErrorType(err))
	}
	if l.lastAllocated != nil {
		*l.lastAllocated = link.ID
	}
	return &link, nil
}

// UpdateCode заменяет код записи. Уникальный индекс по code отсекает занятые коды.
func (l *LinkRepo) UpdateCode(ctx context.Context, id uint, code string) error {
	res := l.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", id).
		Update("code", code)
	if res.Error != nil {
		err := convertErrorType(res.Error)
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			l.logger.WithError(res.Error).Errorf("failed to update code for id %d", id)
		}
		return fmt.Errorf("failed to update code for id %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update code for id %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// FindByOriginalURL находит запись с наименьшим ID, пропуская незавершенные записи.
func (l *LinkRepo) FindByOriginalURL(ctx context.Context, originalURL string) (*models.Link, error) {
	var link models.Link
	err := l.db.WithContext(ctx).
		Where("original_url = ? AND code NOT LIKE ?", originalURL, shortcode.PlaceholderPrefix+"%").
		Order("id").
		First(&link).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.logger.WithError(err).Errorf("failed to get record by original url %s", originalURL)
		}
		return nil, fmt.Errorf("failed to get record by original url: %w", convertErrorType(err))
	}
	return &link, nil
}

func (l *LinkRepo) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	if err := l.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.logger.WithError(err).Errorf("failed to get record by code %s", code)
		}
		return nil, fmt.Errorf("failed to get record by code %s: %w", code, convertErrorType(err))
	}
	return &link, nil
}

// InsertWithCode создает запись с заданным кодом. Атомарность обеспечивает уникальный индекс.
func (l *LinkRepo) InsertWithCode(ctx context.Context, originalURL, code string) (*models.Link, error) {
	link := models.Link{
		OriginalURL: originalURL,
		Code:        code,
	}
	if err := l.db.WithContext(ctx).Create(&link).Error; err != nil {
		cErr := convertErrorType(err)
		if !errors.Is(cErr, repositories.ErrDuplicateKey) {
			l.logger.WithError(err).Errorf("failed to create record %+v", link)
		}
		return nil, fmt.Errorf("failed to create record with code %s: %w", code, cErr)
	}
	return &link, nil
}

// Transaction выполняет fn в транзакции базы, ошибка fn откатывает все изменения.
func (l *LinkRepo) Transaction(ctx context.Context, fn func(repo repositories.LinkRepository) error) error {
	lastAllocated := l.lastAllocated
	nested := lastAllocated != nil
	if !nested {
		lastAllocated = new(uint)
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(l.withTx(tx, lastAllocated))
	})
	if err != nil && !nested && *lastAllocated > 0 {
		l.reserveSQLiteSequence(context.WithoutCancel(ctx), *lastAllocated)
	}
	return err //nolint:wrapcheck
}

// reserveSQLiteSequence sqlite откатывает AUTOINCREMENT вместе с транзакцией. Без этого следующая
// запись получила бы тот же идентификатор, а значит и тот же код, возможно занятый алиасом.
// Последовательности postgres и mysql транзакциями не откатываются.
func (l *LinkRepo) reserveSQLiteSequence(ctx context.Context, id uint) {
	if l.db.Dialector.Name() != "sqlite" {
		return
	}
	table := models.Link{}.TableName()
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insErr := tx.Exec(
			"INSERT INTO sqlite_sequence (name, seq) SELECT ?, ? WHERE NOT EXISTS (SELECT 1 FROM sqlite_sequence WHERE name = ?)",
			table, id, table,
		).Error
		if insErr != nil {
			return insErr
		}
		return tx.Exec("UPDATE sqlite_sequence SET seq = ? WHERE name = ? AND seq < ?", id, table, id).Error
	})
	if err != nil {
		l.logger.WithError(err).Errorf("failed to reserve sqlite sequence up to %d", id)
	}
}

// Ping проверяет соединение с базой.
func (l *LinkRepo) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql db")
	}
	if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		return errors.Wrap(pingErr, "failed to ping db")
	}
	return nil
}
