package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/shortcode"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// KeyPrefix префикс всех ключей репозитория.
const KeyPrefix = "links:"

const (
	fieldOriginalURL = "original_url"
	fieldCode        = "code"
	fieldCreatedAt   = "created_at"
)

// LinkRepo репозиторий ссылок в redis.
type LinkRepo struct {
	client redis.UniversalClient
	prefix string
	logger *logrus.Entry
}

// NewLinkRepo создает новый экземпляр репозитория.
//
// Параметры:
//   - client: клиент redis
//   - logger: логгер
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(client redis.UniversalClient, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		client: client,
		prefix: KeyPrefix,
		logger: logger.WithField("module", "repository/redis/link"),
	}
}

func (l *LinkRepo) seqKey() string { return l.prefix + "seq" }
func (l *LinkRepo) codeKey(code string) string { return l.codePrefix() + code }
func (l *LinkRepo) codePrefix() string { return l.prefix + "code:" }
func (l *LinkRepo) idKey(id uint) string { return l.idPrefix() + strconv.FormatUint(uint64(id), 10) }
func (l *LinkRepo) idPrefix() string { return l.prefix + "id:" }
func (l *LinkRepo) urlKey(url string) string { return l.urlPrefix() + url }
func (l *LinkRepo) urlPrefix() string { return l.prefix + "url:" }

// AllocatePlaceholder создает запись с временным кодом, идентификатор берется из INCR.
func (l *LinkRepo) AllocatePlaceholder(ctx context.Context, originalURL string) (*models.Link, error) {
	link, err := l.insert(ctx, originalURL, shortcode.NewPlaceholder())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate placeholder: %w", err)
	}
	return link, nil
}

// InsertWithCode создает запись с заданным кодом. Если код занят, счетчик не увеличивается.
func (l *LinkRepo) InsertWithCode(ctx context.Context, originalURL, code string) (*models.Link, error) {
	link, err := l.insert(ctx, originalURL, code)
	if err != nil {
		return nil, fmt.Errorf("failed to create record with code %s: %w", code, err)
	}
	return link, nil
}

func (l *LinkRepo) insert(ctx context.Context, originalURL, code string) (*models.Link, error) {
	createdAt := time.Now().UTC()
	id, err := insertScript.Run(
		ctx,
		l.client,
		[]string{l.seqKey(), l.codeKey(code), l.urlKey(originalURL)},
		l.idPrefix(), code, originalURL, createdAt.Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		l.logger.WithError(err).Errorf("failed to insert record with code %s", code)
		return nil, convertErrorType(err)
	}
	if id == 0 {
		return nil, repositories.ErrDuplicateKey
	}
	return &models.Link{
		ID:          uint(id),
		CreatedAt:   createdAt,
		OriginalURL: originalURL,
		Code:        code,
	}, nil
}

// UpdateCode переносит запись под новый код.
func (l *LinkRepo) UpdateCode(ctx context.Context, id uint, code string) error {
	res, err := updateScript.Run(
		ctx,
		l.client,
		[]string{l.idKey(id), l.codeKey(code)},
		l.codePrefix(), code, strconv.FormatUint(uint64(id), 10),
	).Int64()
	if err != nil {
		l.logger.WithError(err).Errorf("failed to update code for id %d", id)
		return fmt.Errorf("failed to update code for id %d: %w", id, convertErrorType(err))
	}
	switch res {
	case -1:
		return fmt.Errorf("failed to update code for id %d: %w", id, repositories.ErrNotFound)
	case 0:
		return fmt.Errorf("failed to update code for id %d: %w", id, repositories.ErrDuplicateKey)
	default:
		return nil
	}
}

func (l *LinkRepo) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	rawID, err := l.client.Get(ctx, l.codeKey(code)).Uint64()
	if err != nil {
		return nil, fmt.Errorf("failed to get record by code %s: %w", code, l.logUnknown(err))
	}
	link, err := l.load(ctx, uint(rawID))
	if err != nil {
		return nil, fmt.Errorf("failed to get record by code %s: %w", code, err)
	}
	return link, nil
}

// FindByOriginalURL обходит идентификаторы URL по возрастанию и возвращает первую опубликованную запись.
func (l *LinkRepo) FindByOriginalURL(ctx context.Context, originalURL string) (*models.Link, error) {
	ids, err := l.client.ZRange(ctx, l.urlKey(originalURL), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get record by original url: %w", l.logUnknown(err))
	}
	for _, rawID := range ids {
		id, parseErr := strconv.ParseUint(rawID, 10, 64)
		if parseErr != nil {
			l.logger.WithError(parseErr).Errorf("malformed id `%s` in url index", rawID)
			continue
		}
		link, loadErr := l.load(ctx, uint(id))
		if loadErr != nil {
			if errors.Is(loadErr, repositories.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get record by original url: %w", loadErr)
		}
		if shortcode.IsPlaceholder(link.Code) {
			continue
		}
		return link, nil
	}
	return nil, fmt.Errorf("failed to get record by original url: %w", repositories.ErrNotFound)
}

func (l *LinkRepo) load(ctx context.Context, id uint) (*models.Link, error) {
	fields, err := l.client.HGetAll(ctx, l.idKey(id)).Result()
	if err != nil {
		return nil, l.logUnknown(err)
	}
	if len(fields) == 0 {
		return nil, repositories.ErrNotFound
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		l.logger.WithError(err).Errorf("malformed created_at for id %d", id)
		return nil, fmt.Errorf("%w: %s", repositories.ErrUnknown, err.Error())
	}
	return &models.Link{
		ID:          id,
		CreatedAt:   createdAt,
		OriginalURL: fields[fieldOriginalURL],
		Code:        fields[fieldCode],
	}, nil
}

// Transaction выполняет fn. MULTI не позволяет читать результаты внутри транзакции,
// поэтому при ошибке fn созданные в ней заглушки удаляются.
func (l *LinkRepo) Transaction(ctx context.Context, fn func(repo repositories.LinkRepository) error) error {
	tx := &txRepo{LinkRepo: l}
	if err := fn(tx); err != nil {
		tx.rollback(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

// Ping проверяет соединение с redis.
func (l *LinkRepo) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err() //nolint:wrapcheck
}

func (l *LinkRepo) discard(ctx context.Context, id uint) {
	err := discardScript.Run(
		ctx,
		l.client,
		[]string{l.idKey(id)},
		l.codePrefix(), l.urlPrefix(), shortcode.PlaceholderPrefix, strconv.FormatUint(uint64(id), 10),
	).Err()
	if err != nil {
		l.logger.WithError(err).Errorf("failed to discard placeholder for id %d", id)
	}
}

func (l *LinkRepo) logUnknown(err error) error {
	converted := convertErrorType(err)
	if !errors.Is(converted, repositories.ErrNotFound) {
		l.logger.WithError(err).Error("redis command failed")
	}
	return converted
}

// txRepo запоминает заглушки, созданные в рамках Transaction.
type txRepo struct {
	*LinkRepo
	allocated []uint
}

func (t *txRepo) AllocatePlaceholder(ctx context.Context, originalURL string) (*models.Link, error) {
	link, err := t.LinkRepo.AllocatePlaceholder(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	t.allocated = append(t.allocated, link.ID)
	return link, nil
}

// Transaction вложенная транзакция выполняется в рамках внешней.
func (t *txRepo) Transaction(_ context.Context, fn func(repo repositories.LinkRepository) error) error {
	return fn(t)
}

func (t *txRepo) rollback(ctx context.Context) {
	for _, id := range t.allocated {
		t.LinkRepo.discard(ctx, id)
	}
}
