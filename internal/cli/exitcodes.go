package cli

import (
	"errors"

	"github.com/yaklabco/mdsync/pkg/runner"
)

// Exit codes for mdsync.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates the command ran but did not succeed, e.g. a file failed to render.
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65
)

// ErrRenderFailed is returned when one or more files could not be exported.
// The per-file errors have already been reported.
var ErrRenderFailed = errors.New("render failed")

// ExitError carries the exit code a command failure maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitInvalidUsage, Err: err}
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: ExitConfigError, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ExitCodeFromResult determines the exit code of a render run.
func ExitCodeFromResult(result *runner.Result) int {
	if result.HasFailures() {
		return ExitFailure
	}
	return ExitSuccess
}
