package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlaceholder(t *testing.T) {
	a, b := NewPlaceholder(), NewPlaceholder()
	assert.NotEqual(t, a, b)
	assert.True(t, IsPlaceholder(a))
	assert.ErrorIs(t, ValidateAlias(a), ErrInvalidAlias)

	for id := uint(1); id < 500; id++ {
		assert.False(t, IsPlaceholder(MustEncode(id)))
	}
}

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		name    string
		alias   string
		wantErr bool
	}{
		{name: "letters", alias: "abc", wantErr: false},
		{name: "mixed", alias: "My_Link-2024", wantErr: false},
		{name: "empty", alias: "", wantErr: true},
		{name: "slash", alias: "a/b", wantErr: true},
		{name: "space", alias: "a b", wantErr: true},
		{name: "placeholder prefix", alias: "~abc", wantErr: true},
		{name: "cyrillic", alias: "ссылка", wantErr: true},
		{name: "max length", alias: strings.Repeat("a", MaxAliasLength), wantErr: false},
		{name: "too long", alias: strings.Repeat("a", MaxAliasLength+1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAlias(tt.alias)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAlias)
				return
			}
			assert.NoError(t, err)
		})
	}
}
