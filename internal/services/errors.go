package services

import (
	"errors"

	"github.com/fsdevblog/linkresolver/internal/shortcode"
)

var (
	ErrUnknown        = errors.New("[service]: unknown error")
	ErrRecordNotFound = errors.New("[service]: record not found")
	ErrAliasTaken     = errors.New("[service]: alias already taken")
	ErrEmptyURL       = errors.New("[service]: url is empty")
	// ErrCodeConflict сгенерированный код уже занят пользовательским алиасом.
	ErrCodeConflict = errors.New("[service]: generated code is already taken")

	ErrInvalidAlias      = shortcode.ErrInvalidAlias
	ErrInvalidIdentifier = shortcode.ErrInvalidIdentifier
)
