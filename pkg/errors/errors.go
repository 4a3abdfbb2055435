// Package errors provides structured error handling for the motion runtime.
//
// Operations that receive invalid input return a *MotionError. Anomalies the
// runtime recovers from on its own (a FLIP watchdog firing, a budget cap being
// hit, a kind mismatch during interpolation) are sent to the global
// ErrorHandler through Report and are never returned to the caller.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidValue indicates a non-finite, negative or otherwise out of
	// range input (duration, delay, easing parameters, keyframe time).
	KindInvalidValue
	// KindNotFound indicates an operation on a handle or element the runtime
	// does not know about.
	KindNotFound
	// KindKindMismatch indicates two values of different kinds were paired
	// for interpolation.
	KindKindMismatch
	// KindBudgetExceeded indicates the performance budget rejected or
	// shortened work.
	KindBudgetExceeded
	// KindWatchdog indicates a FLIP play did not observe its transition end
	// and was forced to complete.
	KindWatchdog
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidValue:
		return "invalid value"
	case KindNotFound:
		return "not found"
	case KindKindMismatch:
		return "kind mismatch"
	case KindBudgetExceeded:
		return "budget exceeded"
	case KindWatchdog:
		return "flip watchdog"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinels matched by MotionError.Is, so callers can write
// errors.Is(err, errors.ErrNotFound) with the standard library.
var (
	ErrInvalidValue   = stderrors.New("invalid value")
	ErrNotFound       = stderrors.New("not found")
	ErrKindMismatch   = stderrors.New("kind mismatch")
	ErrBudgetExceeded = stderrors.New("budget exceeded")
	ErrWatchdog       = stderrors.New("flip watchdog")
)

// MotionError represents a structured error in the motion runtime.
type MotionError struct {
	// Op is the operation that failed (e.g., "engine.Start").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Handle is the animation handle involved, if any.
	Handle uint64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MotionError) Error() string {
	if e.Handle != 0 {
		return fmt.Sprintf("%s [%s] handle=%d: %v", e.Op, e.Kind, e.Handle, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MotionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *MotionError) Is(target error) bool {
	switch target {
	case ErrInvalidValue:
		return e.Kind == KindInvalidValue
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrKindMismatch:
		return e.Kind == KindKindMismatch
	case ErrBudgetExceeded:
		return e.Kind == KindBudgetExceeded
	case ErrWatchdog:
		return e.Kind == KindWatchdog
	}
	return false
}

// InvalidValue builds a KindInvalidValue error for op.
func InvalidValue(op, format string, args ...any) *MotionError {
	return &MotionError{Op: op, Kind: KindInvalidValue, Err: fmt.Errorf(format, args...)}
}

// NotFound builds a KindNotFound error for an unknown handle.
func NotFound(op string, handle uint64) *MotionError {
	return &MotionError{Op: op, Kind: KindNotFound, Handle: handle, Err: fmt.Errorf("no animation with handle %d", handle)}
}

// IsKind reports whether err is a *MotionError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var me *MotionError
	if stderrors.As(err, &me) {
		return me.Kind == kind
	}
	return false
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Tick").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the motion runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MotionError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// RecoveryStrategy is the action the runtime takes locally for a reported
// error kind.
type RecoveryStrategy int

const (
	// RecoverIgnore leaves state untouched.
	RecoverIgnore RecoveryStrategy = iota
	// RecoverSkip drops the offending animation or write.
	RecoverSkip
	// RecoverSnap jumps the animation to its final value.
	RecoverSnap
	// RecoverStep switches interpolation to a discrete step.
	RecoverStep
	// RecoverForceComplete marks the operation completed and clears its state.
	RecoverForceComplete
)

func (s RecoveryStrategy) String() string {
	switch s {
	case RecoverSkip:
		return "skip"
	case RecoverSnap:
		return "snap"
	case RecoverStep:
		return "step"
	case RecoverForceComplete:
		return "force-complete"
	default:
		return "ignore"
	}
}

// StrategyFor returns the recovery the runtime applies for kind.
func StrategyFor(kind ErrorKind) RecoveryStrategy {
	switch kind {
	case KindInvalidValue, KindNotFound:
		return RecoverSkip
	case KindKindMismatch:
		return RecoverStep
	case KindBudgetExceeded:
		return RecoverSnap
	case KindWatchdog:
		return RecoverForceComplete
	default:
		return RecoverIgnore
	}
}
