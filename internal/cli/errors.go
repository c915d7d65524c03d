package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/todos/internal/client"
	"github.com/mesh-intelligence/todos/pkg/types"
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userErr(err error) error { return &exitError{code: exitUserError, err: err} }
func sysErr(err error) error { return &exitError{code: exitSysError, err: err} }

// exitCode picks the process exit code for err. Unclassified errors, such as
// cobra's argument errors, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if errors.Is(err, types.ErrStorageUnavailable) {
		return exitSysError
	}
	return exitUserError
}

// clientErr classifies an error from the API client. Rejected requests are
// user errors; server failures and transport errors are system errors.
func (a *app) clientErr(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 {
			return sysErr(err)
		}
		return userErr(err)
	}
	return sysErr(fmt.Errorf("cannot reach server at %s: %w", a.settings.Client.Server, err))
}
