package accountmanager

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCanceled is returned by Future.Result when the operation was
// cancelled or its wait timed out; the two are treated identically.
var ErrCanceled = errors.New("operation canceled")

// AuthenticatorError is the fault raised when an authenticator answers
// an operation with an error bundle.
type AuthenticatorError struct {
	Code    int
	Message string
}

func (e *AuthenticatorError) Error() string {
	return fmt.Sprintf("authenticator failure %d: %s", e.Code, e.Message)
}

// Future delivers the eventual result of an asynchronous account
// manager operation exactly once. Later settlements are ignored.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(value T) {
	f.once.Do(func() {
		f.value = value
		close(f.done)
	})
}

func (f *Future[T]) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Result blocks until the operation completes or timeout elapses.
// Timeout expiry yields ErrCanceled.
func (f *Future[T]) Result(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrCanceled
	}
}

// Resolved returns a future already holding value; used by tests and
// cached results.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.resolve(value)
	return f
}

// Failed returns a future already holding err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	f.fail(err)
	return f
}
