// Package redisstore предоставляет реализацию репозитория ссылок поверх redis.
//
// Раскладка ключей (с префиксом KeyPrefix):
//   - seq: счетчик идентификаторов (INCR)
//   - code:<code>: идентификатор записи
//   - id:<id>: hash с полями original_url, code, created_at
//   - url:<url>: sorted set идентификаторов записей с этим URL, score равен идентификатору
//
// Изменения нескольких ключей выполняются lua скриптами, поэтому проверка уникальности
// кода и запись атомарны.
package redisstore
