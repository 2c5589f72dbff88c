// Package repositories описывает контракт хранилища коротких ссылок и общие ошибки.
//
// Реализации:
//   - sql: gorm поверх sqlite, postgres или mysql
//   - memstore: in-memory хранилище на основе memory.MStorage
//   - redisstore: redis, атомарность через lua скрипты
package repositories
