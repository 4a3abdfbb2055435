package testing

import (
	"sync"
	"testing"

	"github.com/go-drift/motion/pkg/errors"
)

// ErrorRecorder is an errors.ErrorHandler that keeps every report.
type ErrorRecorder struct {
	mu     sync.Mutex
	errs   []*errors.MotionError
	panics []*errors.PanicError
}

// RecordErrors installs a recorder as the global error handler for the
// duration of the test.
func RecordErrors(t testing.TB) *ErrorRecorder {
	r := &ErrorRecorder{}
	prev := errors.SetHandler(r)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return r
}

// HandleError records err.
func (r *ErrorRecorder) HandleError(err *errors.MotionError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// HandlePanic records err.
func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

// Errors returns the recorded errors.
func (r *ErrorRecorder) Errors() []*errors.MotionError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.MotionError(nil), r.errs...)
}

// Panics returns the recorded panics.
func (r *ErrorRecorder) Panics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

// Count returns how many errors of kind were recorded.
func (r *ErrorRecorder) Count(kind errors.ErrorKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.errs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
