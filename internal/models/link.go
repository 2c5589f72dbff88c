package models

import "time"

// Link структура модели хранения короткой ссылки.
//
// Code уникален: либо base62 от ID, либо пользовательский алиас.
// Пока запись создается, в Code лежит заглушка (см. shortcode.NewPlaceholder).
type Link struct {
	ID          uint      `json:"id"          gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time `json:"createdAt"`
	OriginalURL string    `json:"originalURL" gorm:"size:500;not null;index"`
	Code        string    `json:"code"        gorm:"size:80;not null;uniqueIndex"`
}

func (Link) TableName() string {
	return "links"
}
