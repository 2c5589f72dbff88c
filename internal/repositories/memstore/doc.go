// Package memstore предоставляет реализацию репозитория ссылок для in-memory хранилища.
//
// Записи хранятся в memory.MStorage под ключом кода. Идентификаторы выдает счетчик
// репозитория, операции записи сериализуются мьютексом репозитория.
//
// Все методы репозитория преобразуют внутренние ошибки хранилища в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - memory.ErrDuplicateKey -> repositories.ErrDuplicateKey
//   - memory.ErrNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package memstore
