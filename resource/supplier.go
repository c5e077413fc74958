// Package resource models the correlated-randomness supplier and the
// opened-value store spec.md §3/§6 treat as external collaborators: the
// preprocessing/offline phase that manufactures triples, input masks,
// random shares, bits, and truncation pairs is out of scope for this
// module's core, but its interface to the core is specified here, along
// with a queue-based implementation any offline protocol (including the
// reference dealer in package offline/dealer) can fill.
package resource

import (
	"fresco/field"
	"fresco/spdzshare"
)

// Triple is a Beaver triple (a, b, c) with a·b = c, each an authenticated
// share this party holds.
type Triple struct {
	A, B, C spdzshare.SInt
}

// InputMask is a preprocessed random share whose clear value is known only
// to Inputter. Every party holds Share; only the party whose index equals
// Inputter may read Clear.
type InputMask struct {
	Inputter int
	Share    spdzshare.SInt
	Clear    field.Element
}

// TruncationPair is the correlated randomness Truncate needs: a random
// share R and a share RShifted of the same value right-shifted by d bits,
// both authenticated.
type TruncationPair struct {
	R        spdzshare.SInt
	RShifted spdzshare.SInt
}

// Supplier hands out the next piece of correlated randomness of each kind.
// Implementations MUST be deterministic across parties in the sense
// required by spec.md §6: the i-th call to a given method, by every party,
// returns that party's share of the same joint randomness (so the triples
// queue, the mask queues, and the random-share queue are consumed in lock
// step across the session).
type Supplier interface {
	// NextTriple dequeues the next Beaver triple. Returns a
	// resource-exhaustion error if the queue is empty.
	NextTriple() (Triple, error)
	// NextInputMask dequeues the next input mask for the given inputter's
	// queue. Returns a resource-exhaustion error if that queue is empty.
	NextInputMask(inputter int) (InputMask, error)
	// NextRandomShare dequeues the next random authenticated share.
	NextRandomShare() (spdzshare.SInt, error)
	// NextBit dequeues the next random authenticated bit share (0 or 1).
	NextBit() (spdzshare.SInt, error)
	// NextTruncationPair dequeues the next truncation pair for a right
	// shift of d bits.
	NextTruncationPair(d int) (TruncationPair, error)
}
