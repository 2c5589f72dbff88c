package controllers

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/linkresolver/internal/services"
)

// Ошибки.
var (
	ErrRecordNotFound = errors.New("URL not found")                                                // Запись не найдена
	ErrAliasTaken     = errors.New("custom short URL is already in use, please choose another name") // Алиас занят
	ErrInternal       = errors.New("internal error")                                               // Прочая ошибка
)

// errorResponse статус и текст ответа для ошибки сервиса. Текст внутренних ошибок наружу не отдается.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		return http.StatusNotFound, ErrRecordNotFound.Error()
	case errors.Is(err, services.ErrAliasTaken):
		return http.StatusConflict, ErrAliasTaken.Error()
	case errors.Is(err, services.ErrInvalidAlias), errors.Is(err, services.ErrEmptyURL):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, ErrInternal.Error()
	}
}
