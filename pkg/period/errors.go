package period

import "errors"

var (
	ErrInvalidInterval = errors.New("invalid period interval")
	ErrInvalidCount    = errors.New("period count must not be negative")
)
