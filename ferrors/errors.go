// Package ferrors defines the session error taxonomy: every abort path in
// the evaluator, network, and mac-check packages raises exactly one
// *SessionError carrying its kind, the peer involved (if any), and the
// batch number at which it happened.
package ferrors

import "fmt"

// Kind classifies why a session aborted.
type Kind int

const (
	// Malicious marks a MAC-check failure, a broadcast-validation mismatch,
	// or an unexpected byte length on the wire.
	Malicious Kind = iota
	// Transport marks a peer disconnect, a receive timeout, or a short read.
	Transport
	// Programmer marks reading an unfulfilled deferred result, a dimension
	// mismatch, or a double-start of the evaluator. Never recovered.
	Programmer
	// ResourceExhaustion marks an empty preprocessed-randomness queue.
	ResourceExhaustion
	// Arithmetic marks an overflow of a native protocol's output length (or,
	// outside the core, division by zero in an application).
	Arithmetic
)

func (k Kind) String() string {
	switch k {
	case Malicious:
		return "malicious-behaviour"
	case Transport:
		return "transport-failure"
	case Programmer:
		return "programmer-error"
	case ResourceExhaustion:
		return "resource-exhaustion"
	case Arithmetic:
		return "arithmetic-error"
	default:
		return "unknown"
	}
}

// SessionError is the single error type every abort path in the core
// raises.
type SessionError struct {
	Kind  Kind
	Peer  *int // nil if no single peer is responsible
	Batch int  // -1 if not tied to a particular batch
	Err   error
}

func (e *SessionError) Error() string {
	if e.Peer != nil {
		return fmt.Sprintf("%s at batch %d (peer %d): %v", e.Kind, e.Batch, *e.Peer, e.Err)
	}
	return fmt.Sprintf("%s at batch %d: %v", e.Kind, e.Batch, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// New builds a SessionError with no peer attribution.
func New(kind Kind, batch int, err error) *SessionError {
	return &SessionError{Kind: kind, Batch: batch, Err: err}
}

// WithPeer builds a SessionError attributed to a specific peer.
func WithPeer(kind Kind, batch int, peer int, err error) *SessionError {
	return &SessionError{Kind: kind, Peer: &peer, Batch: batch, Err: err}
}

// Is reports whether err is a *SessionError of the given kind, looking
// through wrapped errors.
func Is(err error, kind Kind) bool {
	se, ok := AsSessionError(err)
	return ok && se.Kind == kind
}

// AsSessionError unwraps err into a *SessionError if possible.
func AsSessionError(err error) (*SessionError, bool) {
	for err != nil {
		if se, ok := err.(*SessionError); ok {
			return se, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
