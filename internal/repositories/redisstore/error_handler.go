package redisstore

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/linkresolver/internal/repositories"
	"github.com/redis/go-redis/v9"
)

// convertErrorType конвертирует ошибки redis в общие ошибки уровня репозитория:
//   - redis.Nil -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
func convertErrorType(err error) error {
	if err == nil {
		return nil
	}

	nativeErr := repositories.ErrUnknown
	if errors.Is(err, redis.Nil) {
		nativeErr = repositories.ErrNotFound
	}

	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}
