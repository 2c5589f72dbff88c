package sql

import (
	"fmt"
	"strings"

	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// duplicateMarkers фрагменты сообщений об ошибке уникальности, если драйвер не перевел ее
// в gorm.ErrDuplicatedKey.
var duplicateMarkers = []string{ //nolint:gochecknoglobals
	"duplicate",
	"unique constraint",
}

// convertErrorType конвертирует ошибки gorm и драйверов в общие ошибки уровня репозитория.
func convertErrorType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateMessage(err):
		nativeErr = repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		nativeErr = repositories.ErrNotFound
	default:
		nativeErr = repositories.ErrUnknown
	}

	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}

func isDuplicateMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range duplicateMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
