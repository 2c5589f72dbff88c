package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/linkresolver/internal/db"
	"github.com/fsdevblog/linkresolver/internal/db/memory"
	"github.com/fsdevblog/linkresolver/internal/models"
	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/fsdevblog/linkresolver/internal/shortcode"
	"github.com/sirupsen/logrus"
)

// LinkRepo представляет собой репозиторий для работы со ссылками в памяти.
type LinkRepo struct {
	s      *db.MemoryStorage
	logger *logrus.Entry
	mu     sync.Mutex
	// seq последний выданный идентификатор. Не уменьшается, в том числе при откате.
	seq uint
	// codes текущий код каждой записи по ее идентификатору.
	codes map[uint]string
}

// NewLinkRepo создает новый экземпляр репозитория ссылок.
//
// Параметры:
//   - store: экземпляр хранилища в памяти
//   - logger: логгер
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(store *db.MemoryStorage, logger *logrus.Logger) *LinkRepo {
	return &LinkRepo{
		s:      store,
		logger: logger.WithField("module", "repository/memstore/link"),
		codes:  make(map[uint]string),
	}
}

// AllocatePlaceholder создает запись с временным кодом и следующим по счетчику идентификатором.
func (l *LinkRepo) AllocatePlaceholder(ctx context.Context, originalURL string) (*models.Link, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	link, err := l.insertLocked(ctx, originalURL, shortcode.NewPlaceholder())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate placeholder: %w", convertErrorType(err))
	}
	return link, nil
}

// InsertWithCode создает запись с заданным кодом. Если код занят, идентификатор не расходуется.
func (l *LinkRepo) InsertWithCode(ctx context.Context, originalURL, code string) (*models.Link, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.s.IsExist(code) {
		return nil, fmt.Errorf("failed to create record with code %s: %w", code, repositories.ErrDuplicateKey)
	}
	link, err := l.insertLocked(ctx, originalURL, code)
	if err != nil {
		return nil, fmt.Errorf("failed to create record with code %s: %w", code, convertErrorType(err))
	}
	return link, nil
}

func (l *LinkRepo) insertLocked(ctx context.Context, originalURL, code string) (*models.Link, error) {
	link := models.Link{
		ID:          l.seq + 1,
		CreatedAt:   time.Now().UTC(),
		OriginalURL: originalURL,
		Code:        code,
	}
	if err := memory.Set[models.Link](ctx, code, &link, l.s.MStorage); err != nil {
		return nil, err //nolint:wrapcheck
	}
	l.seq = link.ID
	l.codes[link.ID] = code
	return &link, nil
}

// UpdateCode переносит запись под новый код. Старый ключ удаляется после успешной записи нового.
func (l *LinkRepo) UpdateCode(ctx context.Context, id uint, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	oldCode, ok := l.codes[id]
	if !ok {
		return fmt.Errorf("failed to update code for id %d: %w", id, repositories.ErrNotFound)
	}
	if oldCode == code {
		return nil
	}

	link, err := memory.Get[models.Link](ctx, oldCode, l.s.MStorage)
	if err != nil {
		return fmt.Errorf("failed to update code for id %d: %w", id, convertErrorType(err))
	}
	link.Code = code
	if setErr := memory.Set[models.Link](ctx, code, link, l.s.MStorage); setErr != nil {
		return fmt.Errorf("failed to update code for id %d: %w", id, convertErrorType(setErr))
	}
	if delErr := memory.Delete(ctx, oldCode, l.s.MStorage); delErr != nil {
		return fmt.Errorf("failed to update code for id %d: %w", id, convertErrorType(delErr))
	}
	l.codes[id] = code
	return nil
}

// FindByCode получает ссылку по коду.
func (l *LinkRepo) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	link, err := memory.Get[models.Link](ctx, code, l.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to get record by code %s: %w", code, convertErrorType(err))
	}
	return link, nil
}

// FindByOriginalURL получает самую раннюю опубликованную запись по оригинальному URL.
func (l *LinkRepo) FindByOriginalURL(ctx context.Context, originalURL string) (*models.Link, error) {
	data, err := memory.FilterAll[models.Link](ctx, l.s.MStorage, func(val models.Link) bool {
		return val.OriginalURL == originalURL && !shortcode.IsPlaceholder(val.Code)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get record by original url: %w", convertErrorType(err))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to get record by original url: %w", repositories.ErrNotFound)
	}

	first := data[0]
	for _, val := range data[1:] {
		if val.ID < first.ID {
			first = val
		}
	}
	return &first, nil
}

// Transaction выполняет fn. Транзакций у хранилища нет, поэтому при ошибке fn
// созданные внутри нее заглушки удаляются.
func (l *LinkRepo) Transaction(ctx context.Context, fn func(repo repositories.LinkRepository) error) error {
	tx := &txRepo{LinkRepo: l}
	if err := fn(tx); err != nil {
		tx.rollback(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

// Ping проверка доступности хранилища.
func (l *LinkRepo) Ping(ctx context.Context) error {
	return l.s.Ping(ctx) //nolint:wrapcheck
}

// discard удаляет запись id, если она все еще хранит заглушку.
func (l *LinkRepo) discard(ctx context.Context, id uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	code, ok := l.codes[id]
	if !ok || !shortcode.IsPlaceholder(code) {
		return
	}
	if err := memory.Delete(ctx, code, l.s.MStorage); err != nil {
		l.logger.WithError(err).Errorf("failed to discard placeholder for id %d", id)
		return
	}
	delete(l.codes, id)
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
