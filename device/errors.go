package device

import (
	"errors"
	"fmt"
)

// Status is the numeric result code of a runtime call. The values follow
// the CUDA runtime numbering so diagnostics read the same on either side.
type Status int

const (
	Success                     Status = 0
	ErrorInvalidValue           Status = 1
	ErrorMemoryAllocation       Status = 2
	ErrorInitializationError    Status = 3
	ErrorInvalidConfiguration   Status = 9
	ErrorInvalidDevicePointer   Status = 17
	ErrorInvalidMemcpyDirection Status = 21
	ErrorInvalidDevice          Status = 101
	ErrorInvalidResourceHandle  Status = 400
	ErrorNotReady               Status = 600
	ErrorLaunchFailure          Status = 719
	ErrorUnknown                Status = 999
)

// Name returns the symbolic name of the status code.
func (s Status) Name() string {
	switch s {
	case Success:
		return "Success"
	case ErrorInvalidValue:
		return "ErrorInvalidValue"
	case ErrorMemoryAllocation:
		return "ErrorMemoryAllocation"
	case ErrorInitializationError:
		return "ErrorInitializationError"
	case ErrorInvalidConfiguration:
		return "ErrorInvalidConfiguration"
	case ErrorInvalidDevicePointer:
		return "ErrorInvalidDevicePointer"
	case ErrorInvalidMemcpyDirection:
		return "ErrorInvalidMemcpyDirection"
	case ErrorInvalidDevice:
		return "ErrorInvalidDevice"
	case ErrorInvalidResourceHandle:
		return "ErrorInvalidResourceHandle"
	case ErrorNotReady:
		return "ErrorNotReady"
	case ErrorLaunchFailure:
		return "ErrorLaunchFailure"
	default:
		return "ErrorUnknown"
	}
}

func (s Status) String() string {
	return fmt.Sprintf("%d(%s)", int(s), s.Name())
}

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Execution errors
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
)

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Error is the structured error returned by every failing runtime call.
type Error struct {
	Type    ErrorType
	Code    Status
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device %s error in %s: %s [%s] (caused by: %v)",
			e.Type, e.Op, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("device %s error in %s: %s [%s]",
		e.Type, e.Op, e.Message, e.Code)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newMemoryError(code Status, op, message string, err error) error {
	return &Error{Type: ErrTypeMemory, Code: code, Op: op, Message: message, Err: err}
}

func newInvalidArgError(code Status, op, message string) error {
	return &Error{Type: ErrTypeInvalidArg, Code: code, Op: op, Message: message}
}

func newExecutionError(code Status, op, message string, err error) error {
	return &Error{Type: ErrTypeExecution, Code: code, Op: op, Message: message, Err: err}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates device memory allocation failure
	ErrOutOfMemory = newMemoryError(ErrorMemoryAllocation, "Malloc", "out of memory", nil)

	// ErrInvalidPointer indicates a pointer that was not returned by Malloc or was already freed
	ErrInvalidPointer = newInvalidArgError(ErrorInvalidDevicePointer, "Free", "invalid device pointer")

	// ErrInvalidDevice indicates invalid device ID
	ErrInvalidDevice = &Error{Type: ErrTypeDevice, Code: ErrorInvalidDevice, Op: "SetDevice", Message: "invalid device ID"}

	// ErrNotReady indicates an event that has not completed yet
	ErrNotReady = newExecutionError(ErrorNotReady, "Event", "event not completed", nil)

	// ErrLaunchFailure indicates a kernel faulted while executing
	ErrLaunchFailure = newExecutionError(ErrorLaunchFailure, "Kernel", "kernel execution failed", nil)
)

// StatusOf returns the runtime status carried by err. A nil error is
// Success; errors that did not come from the runtime map to ErrorUnknown.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrorUnknown
}

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrTypeMemory
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrTypeInvalidArg
}
