package scrcpy

import "errors"

var (
	// ErrInvalidConfiguration marks launch options that fail validation.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
