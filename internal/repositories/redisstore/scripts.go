package redisstore

import "github.com/redis/go-redis/v9"

// insertScript создает запись, если код свободен. Возвращает новый идентификатор или 0.
//
// KEYS: seq, code:<code>, url:<url>
// ARGV: префикс ключа записи, код, оригинальный URL, created_at.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
	return 0
end
local id = tostring(redis.call('INCR', KEYS[1]))
redis.call('SET', KEYS[2], id)
redis.call('HSET', ARGV[1] .. id, 'original_url', ARGV[3], 'code', ARGV[2], 'created_at', ARGV[4])
redis.call('ZADD', KEYS[3], id, id)
return tonumber(id)
`)

// updateScript переносит запись под новый код.
// Возвращает 1 при успехе, 0 если код занят другой записью, -1 если записи нет.
//
// KEYS: id:<id>, code:<code>
// ARGV: префикс ключа кода, новый код, идентификатор.
var updateScript = redis.NewScript(`
local old = redis.call('HGET', KEYS[1], 'code')
if not old then
	return -1
end
if old == ARGV[2] then
	return 1
end
if redis.call('EXISTS', KEYS[2]) == 1 then
	return 0
end
redis.call('SET', KEYS[2], ARGV[3])
redis.call('DEL', ARGV[1] .. old)
redis.call('HSET', KEYS[1], 'code', ARGV[2])
return 1
`)

// discardScript удаляет запись, если она все еще хранит заглушку. Возвращает 1, если запись удалена.
//
// KEYS: id:<id>
// ARGV: префикс ключа кода, префикс ключа URL, префикс заглушки, идентификатор.
var discardScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code or string.sub(code, 1, string.len(ARGV[3])) ~= ARGV[3] then
	return 0
end
local url = redis.call('HGET', KEYS[1], 'original_url')
redis.call('DEL', ARGV[1] .. code, KEYS[1])
redis.call('ZREM', ARGV[2] .. url, ARGV[4])
return 1
`)
