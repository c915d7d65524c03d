package types

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every error caused by client-supplied data.
// Callers test for it with errors.Is and never retry.
var ErrValidation = errors.New("invalid todo")

// Validation errors.
var (
	ErrInvalidTitle     = fmt.Errorf("%w: title must not be empty", ErrValidation)
	ErrInvalidCompleted = fmt.Errorf("%w: completed must be true or false", ErrValidation)
)

// ErrStorageUnavailable wraps every pool or backend failure. It is surfaced to
// the caller as is; the store does not retry.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrNotFound is returned by the HTTP client when the server answers 404. The
// store itself reports absence with a boolean, not an error.
var ErrNotFound = errors.New("todo not found")
