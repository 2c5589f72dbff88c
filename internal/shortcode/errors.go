package shortcode

import "errors"

var (
	ErrInvalidIdentifier = errors.New("[shortcode]: identifier must be positive")
	ErrInvalidAlias      = errors.New("[shortcode]: invalid alias")
)
