package repositories

import (
	"context"

	"github.com/fsdevblog/linkresolver/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go -package=mocks

// LinkRepository хранилище коротких ссылок.
//
// Уникальность Code и монотонность ID обеспечивает само хранилище атомарно,
// вызывающему коду не нужны дополнительные блокировки.
type LinkRepository interface {
	// AllocatePlaceholder создает запись с заглушкой вместо кода и возвращает ее с присвоенным ID.
	AllocatePlaceholder(ctx context.Context, originalURL string) (*models.Link, error)
	// UpdateCode заменяет код записи с идентификатором id.
	// ErrDuplicateKey если код принадлежит другой записи, ErrNotFound если записи нет.
	UpdateCode(ctx context.Context, id uint, code string) error
	// FindByOriginalURL возвращает самую раннюю опубликованную запись для URL.
	FindByOriginalURL(ctx context.Context, originalURL string) (*models.Link, error)
	FindByCode(ctx context.Context, code string) (*models.Link, error)
	// InsertWithCode атомарно создает запись с заданным кодом, ErrDuplicateKey если код занят.
	InsertWithCode(ctx context.Context, originalURL, code string) (*models.Link, error)
	// Transaction выполняет fn в транзакции. Если fn вернула ошибку, созданные
	// внутри нее заглушки удаляются.
	Transaction(ctx context.Context, fn func(repo LinkRepository) error) error
}

// Pinger проверка доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}
