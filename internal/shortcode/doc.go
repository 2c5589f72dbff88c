// Package shortcode отвечает за короткие коды ссылок: кодирование идентификатора в base62,
// временные коды-заглушки (placeholder) и проверку пользовательских алиасов.
//
// Алфавит base62 зафиксирован: его изменение инвалидирует все выданные ранее коды.
package shortcode
