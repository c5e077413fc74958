// Package builder implements the deferred-result computation graph:
// DRes, the sequential and parallel scopes, and the lazy continuation
// combinator programs are built from. See spec.md §4.1 "Builder /
// deferred-result graph". Modelled on the teacher's one-shot
// commit-then-read result pattern (rbc.Result[R]): a value starts
// Pending, is fulfilled or failed exactly once, and Out() after that
// point is safe to call from any goroutine.
package builder

import (
	"errors"
	"sync"

	"fresco/ferrors"
)

type status int

const (
	pending status = iota
	ready
	failed
)

// Ready is satisfied by anything whose availability gates a dependent
// leaf protocol. DRes[T] implements it regardless of T.
type Ready interface {
	Ready() bool
}

// DRes is a deferred result: the handle a builder call returns
// immediately, before the value it represents has been computed.
// Reading Out() before the result is fulfilled is a programmer error,
// never a recoverable one — it panics, per spec.md §7.
type DRes[T any] struct {
	mu     sync.RWMutex
	status status
	value  T
	err    error
}

// New returns an unfulfilled deferred result.
func New[T any]() *DRes[T] {
	return &DRes[T]{}
}

// Eager returns a DRes already fulfilled with v, for leaves whose value
// is known without any protocol round (e.g. a public constant).
func Eager[T any](v T) *DRes[T] {
	d := New[T]()
	d.fulfil(v)
	return d
}

func (d *DRes[T]) fulfil(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != pending {
		panic("builder: double-fulfilment of a deferred result")
	}
	d.value = v
	d.status = ready
}

func (d *DRes[T]) fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != pending {
		return
	}
	d.err = err
	d.status = failed
}

// Ready reports whether the result has settled, either fulfilled or
// failed. Out() returns the value of a fulfilled result and panics on a
// failed one.
func (d *DRes[T]) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status != pending
}

// Failed reports whether this result failed rather than producing a value.
func (d *DRes[T]) Failed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status == failed
}

// Err returns the failure reason, or nil if not failed.
func (d *DRes[T]) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

// Out returns the computed value. Calling it before the result is
// fulfilled or failed is a programmer error and panics; the core never
// recovers from it.
func (d *DRes[T]) Out() T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch d.status {
	case pending:
		panic(ferrors.New(ferrors.Programmer, -1, errors.New("builder: read of an unfulfilled deferred result")))
	case failed:
		panic(ferrors.New(ferrors.Programmer, -1, errors.New("builder: read of a failed deferred result: "+d.err.Error())))
	}
	return d.value
}
