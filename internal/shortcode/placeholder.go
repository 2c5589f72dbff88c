package shortcode

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PlaceholderPrefix не входит ни в алфавит base62, ни в алфавит алиасов,
// поэтому заглушка не может совпасть с настоящим кодом.
const PlaceholderPrefix = "~"

// MaxAliasLength максимальная длина пользовательского алиаса.
const MaxAliasLength = 64

var aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NewPlaceholder генерирует уникальную заглушку для поля кода на время между
// созданием записи и присвоением ей итогового кода.
func NewPlaceholder() string {
	return PlaceholderPrefix + uuid.NewString()
}

// IsPlaceholder сообщает, является ли код заглушкой.
func IsPlaceholder(code string) bool {
	return strings.HasPrefix(code, PlaceholderPrefix)
}

// ValidateAlias проверяет пользовательский алиас: латиница, цифры, `_` и `-`, не длиннее MaxAliasLength.
func ValidateAlias(alias string) error {
	if alias == "" {
		return errors.Wrap(ErrInvalidAlias, "alias is empty")
	}
	if len(alias) > MaxAliasLength {
		return errors.Wrapf(ErrInvalidAlias, "alias is longer than %d chars", MaxAliasLength)
	}
	if !aliasRegex.MatchString(alias) {
		return errors.Wrapf(ErrInvalidAlias, "alias `%s` contains forbidden chars", alias)
	}
	return nil
}
