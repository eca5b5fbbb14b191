package errors

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFindings = 1 // findings at or above the threshold, or failed fixes
	ExitUsage    = 2 // invalid flags, arguments or configuration
)

// CommandError represents a command failure that maps to a process exit code.
type CommandError struct {
	ExitCode    int
	CommonError string
	Args        interface{} // options the command ran with
	Err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance, encapsulating args and the error message.
func NewCommandError(args interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Args:        args,
		Err:         err,
	}
}

// NewUsageError creates a CommandError with the usage exit code.
func NewUsageError(args interface{}, format string, a ...interface{}) *CommandError {
	return NewCommandError(args, fmt.Errorf(format, a...), ExitUsage)
}

// ExitCode returns the exit code carried by err. Errors that are not command
// errors map to ExitFindings, nil maps to ExitOK.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitFindings
}
