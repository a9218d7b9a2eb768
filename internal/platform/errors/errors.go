// Package errors provides the sentinel errors and wrapping helpers used
// across pybaseline. It extends the standard errors package with context
// wrapping and an exit-code classification for the CLI.
package errors

import (
	"errors"
	"fmt"
)

// Configuration errors. The CLI exits with ExitConfig for these.
var (
	// ErrInvalidConfig indicates an option value failed validation
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedPlatform indicates the host has no known tool build
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrLockFileMissing indicates require_lock is set but the lock file is absent
	ErrLockFileMissing = errors.New("lock file missing")
)

// Infrastructure errors. The CLI exits with ExitFailure for these.
var (
	// ErrDigestConflict indicates two snapshots disagree on a path's content
	ErrDigestConflict = errors.New("digest conflict")

	// ErrToolNotFound indicates an executable could not be located
	ErrToolNotFound = errors.New("tool not found")

	// ErrDownload indicates a release archive could not be fetched
	ErrDownload = errors.New("download failed")

	// ErrChecksumMismatch indicates a fetched archive does not match its pin
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrSignature indicates a detached signature did not verify
	ErrSignature = errors.New("signature verification failed")
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
//
// Example:
//
//	if err := store.Materialize(dir, digest); err != nil {
//	    return errors.Wrap(err, "materialize sandbox")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func New(msg string) error {
	return errors.New(msg)
}

func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsConfig reports whether err stems from user configuration rather than
// from the environment.
func IsConfig(err error) bool {
	return Is(err, ErrInvalidConfig) || Is(err, ErrUnsupportedPlatform) || Is(err, ErrLockFileMissing)
}

// IsDigestConflict reports whether the error is a snapshot merge conflict
func IsDigestConflict(err error) bool {
	return Is(err, ErrDigestConflict)
}

// IsUnsupportedPlatform reports whether the error is a platform lookup failure
func IsUnsupportedPlatform(err error) bool {
	return Is(err, ErrUnsupportedPlatform)
}

// IsChecksumMismatch reports whether the error is a pin mismatch
func IsChecksumMismatch(err error) bool {
	return Is(err, ErrChecksumMismatch)
}

// ExitCode maps an error returned by a goal to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsConfig(err):
		return ExitConfig
	default:
		return ExitFailure
	}
}
