// internal/core/domain/errors.go
package domain

import "pybaseline/internal/platform/errors"

// Domain errors.
var (
	// ErrInvalidTarget wraps ErrInvalidConfig so target problems exit as
	// configuration errors.
	ErrInvalidTarget = errors.Wrap(errors.ErrInvalidConfig, "invalid target")
)
