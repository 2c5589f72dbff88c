// Package sql предоставляет реализацию репозитория ссылок поверх gorm (sqlite, postgres, mysql).
//
// Все методы репозитория преобразуют ошибки базы в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - нарушение уникального индекса -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package sql
