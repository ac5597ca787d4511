package sundials

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/sunml/sundials-go/internal/native"
)

var (
	// ErrUseAfterFree is returned by every session method once the session
	// has been closed or collected.
	ErrUseAfterFree = errors.New("sundials: session used after free")

	// ErrReentrant is returned when a native call is attempted on a session
	// that is already inside a native call, typically from a callback.
	ErrReentrant = errors.New("sundials: reentrant call on session")

	// ErrRecoverable tags a callback error as recoverable. Return
	// Recoverable(err) from a callback that supports retries to ask the
	// solver to try again with adjusted internal state.
	ErrRecoverable = errors.New("sundials: recoverable callback failure")

	// ErrNotBuilt is returned when the native backend is selected but the
	// SUNDIALS bindings were not compiled in.
	ErrNotBuilt = native.ErrNotBuilt

	// ErrIllegalInput is returned for arguments rejected before any native
	// call is made.
	ErrIllegalInput = errors.New("sundials: illegal input")

	// ErrOutOfMemory is returned when the native library fails to allocate.
	ErrOutOfMemory = errors.New("sundials: native allocation failed")
)

// RecoverableError wraps a callback error so that errors.Is(err,
// ErrRecoverable) holds while the original cause stays reachable.
type RecoverableError struct {
	Err error
}

func (e *RecoverableError) Error() string {
	if e.Err == nil {
		return ErrRecoverable.Error()
	}
	return "recoverable: " + e.Err.Error()
}

func (e *RecoverableError) Unwrap() error { return e.Err }

func (e *RecoverableError) Is(target error) bool { return target == ErrRecoverable }

// Recoverable tags err as recoverable. A nil err yields ErrRecoverable.
func Recoverable(err error) error {
	if err == nil {
		return ErrRecoverable
	}
	return &RecoverableError{Err: err}
}

// PanicError is the fault recorded when a callback panics. Value is the
// recovered value.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("sundials: callback panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error, so a panic with
// Recoverable(err) is treated like a returned recoverable error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// InitializationError reports a native failure while a session was being
// created. Msg carries the last message the native error handler reported,
// if any.
type InitializationError struct {
	Call string
	Code int
	Msg  string
	Err  error
}

func (e *InitializationError) Error() string {
	s := fmt.Sprintf("sundials: %s failed during initialization (code %d)", e.Call, e.Code)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *InitializationError) Unwrap() error { return e.Err }

// SolverError is the error returned when a native call fails with a
// documented return code. Err is the family-specific fault kind (for
// example cvode.TooMuchWork) and can be matched with errors.Is.
type SolverError struct {
	Call string
	Code int
	Err  error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%s: %v (code %d)", e.Call, e.Err, e.Code)
}

func (e *SolverError) Unwrap() error { return e.Err }

// InternalSolverError is returned for native return codes outside the
// documented taxonomy.
type InternalSolverError struct {
	Call string
	Code int
}

func (e *InternalSolverError) Error() string {
	return fmt.Sprintf("sundials: internal solver error in %s (code %d)", e.Call, e.Code)
}

// Translator maps a failing native call and its return code to an error.
type Translator func(call string, code int) error
