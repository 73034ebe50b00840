package plugin

import (
	"errors"
	"fmt"
	"reflect"
)

// Protocol and lifecycle errors. They cross the wire as grpc status codes and
// are restored on the host side, so errors.Is works on both ends.
var (
	ErrNotInitialized    = errors.New("plugin is not initialized")
	ErrInitFailed        = errors.New("plugin initialization failed")
	ErrBackpressure      = errors.New("max concurrent runs reached")
	ErrStopped           = errors.New("run stopped")
	ErrAmbiguousStop     = errors.New("stop without run id while several runs are in flight")
	ErrDuplicateRun      = errors.New("run id is already in flight")
	ErrIncompleteStream  = errors.New("run stream ended without a result frame")
	ErrProtocolViolation = errors.New("protocol violation")
	ErrProtocolVersion   = errors.New("unsupported protocol version")
	ErrInvalidMetadata   = errors.New("invalid plugin metadata")
	ErrValidation        = errors.New("parameter validation failed")
)

// Error codes reported in InitResponse and result frames.
const (
	CodeInvalidParameters = "INVALID_PARAMETERS"
	CodeExecutionError    = "EXECUTION_ERROR"
	CodeInvalidOutput     = "INVALID_OUTPUT"
	CodeStopped           = "STOPPED"
	CodePanic             = "PANIC"
	CodeInitFailed        = "INIT_FAILED"
)

// ValidationError describes one parameter that failed validation.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Param, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnsupportedTypeError is returned when a Go value has no Value case.
type UnsupportedTypeError struct {
	Type reflect.Type
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported value type %v at %s", e.Type, e.Path)
}

// ExecutionError carries an error code for the result frame or InitResponse.
type ExecutionError struct {
	Code    string
	Message string
	Err     error
}

func NewExecutionError(code, message string, err error) *ExecutionError {
	return &ExecutionError{Code: code, Message: message, Err: err}
}

func (e *ExecutionError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the code of an ExecutionError in err's chain, or
// returns fallback.
func ErrorCode(err error, fallback string) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) && execErr.Code != "" {
		return execErr.Code
	}
	return fallback
}

// ErrorMessage prefers the human message of an ExecutionError.
func ErrorMessage(err error) string {
	var execErr *ExecutionError
	if errors.As(err, &execErr) && execErr.Message != "" {
		if execErr.Err != nil {
			return fmt.Sprintf("%s: %v", execErr.Message, execErr.Err)
		}
		return execErr.Message
	}
	return err.Error()
}
