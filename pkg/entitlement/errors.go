package entitlement

import "errors"

var (
	ErrUsageNotFound = errors.New("usage record not found")
	ErrInvalidUses   = errors.New("uses must be positive")
)
