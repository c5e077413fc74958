// Package field implements the prime-field arithmetic every other package in
// this module builds on: additive and multiplicative operations, equality,
// and fixed-length big-endian serialization of canonical representatives in
// [0, p). Two concrete fields are provided: PrimeField, a generic
// arbitrary-modulus field backed by math/big, and Mersenne61, a field over
// the 61-bit Mersenne prime 2^61-1 with a dedicated fast reduction. No
// third-party library in the retrieved example pack implements generic
// prime-field arithmetic over an arbitrary modulus (kyber's Scalar type is
// tied to a specific elliptic-curve group's order) so this package is
// stdlib-only by necessity; see DESIGN.md.
package field

import "math/big"

// Element is a single value in some prime field. All operations are
// self-contained: an Element carries enough context (its field's modulus)
// to compute with other elements of the same field without the caller
// threading a Field value through every call.
type Element interface {
	Add(Element) Element
	Sub(Element) Element
	Mul(Element) Element
	Neg() Element
	Equal(Element) bool
	IsZero() bool
	// Bytes returns the canonical representative's fixed-length big-endian
	// encoding.
	Bytes() []byte
	// BigInt returns the canonical representative as a big.Int.
	BigInt() *big.Int
	String() string
}

// Field constructs and samples Elements of one fixed modulus.
type Field interface {
	// Zero returns the additive identity.
	Zero() Element
	// One returns the multiplicative identity.
	One() Element
	// FromInt64 returns the element congruent to x mod p.
	FromInt64(x int64) Element
	// FromBigInt returns the element congruent to x mod p.
	FromBigInt(x *big.Int) Element
	// FromBytes decodes a fixed-length big-endian encoding produced by
	// Element.Bytes. Returns an error if the length is wrong or the value
	// is not in canonical form.
	FromBytes(bs []byte) (Element, error)
	// Random samples an element uniformly in [0, p) from the given
	// cryptographic randomness source, by rejection sampling against
	// uniformly random bitlen(p)-bit strings. Retries at most
	// maxRejectionRetries times before giving up; since p > 2^(bitlen(p)-1),
	// each draw is accepted with probability over 1/2 and the expected
	// retry count is under 1.
	Random(rand RandReader) (Element, error)
	// Modulus returns p.
	Modulus() *big.Int
	// ByteLen returns ceil(bitlen(p) / 8), the fixed width of Bytes().
	ByteLen() int
}

// RandReader is the minimal randomness source Field.Random needs; satisfied
// by crypto/rand.Reader and by go.dedis.ch/kyber's random.Stream.
type RandReader interface {
	Read(p []byte) (n int, err error)
}

// maxRejectionRetries bounds the rejection-sampling loop in Random
// implementations. Documented per spec.md §6 ("an implementation-defined
// but documented retry bound").
const maxRejectionRetries = 256
