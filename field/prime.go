package field

import (
	"errors"
	"fmt"
	"math/big"
)

// PrimeField is a generic prime field ℤ/pℤ for an arbitrary modulus p,
// backed by math/big. Use Mersenne61 instead when p is the 61-bit Mersenne
// prime and the faster dedicated reduction matters.
type PrimeField struct {
	p       *big.Int
	byteLen int
}

// NewPrimeField builds a PrimeField of modulus p. p must be a prime greater
// than 1; this is not checked (primality testing is a deployment-time
// concern, not a per-operation one).
func NewPrimeField(p *big.Int) *PrimeField {
	byteLen := (p.BitLen() + 7) / 8
	return &PrimeField{p: new(big.Int).Set(p), byteLen: byteLen}
}

func (f *PrimeField) Modulus() *big.Int { return new(big.Int).Set(f.p) }
func (f *PrimeField) ByteLen() int      { return f.byteLen }

func (f *PrimeField) Zero() Element { return f.FromInt64(0) }
func (f *PrimeField) One() Element  { return f.FromInt64(1) }

func (f *PrimeField) FromInt64(x int64) Element {
	return f.FromBigInt(big.NewInt(x))
}

func (f *PrimeField) FromBigInt(x *big.Int) Element {
	v := new(big.Int).Mod(x, f.p)
	return &primeElement{v: v, f: f}
}

func (f *PrimeField) FromBytes(bs []byte) (Element, error) {
	if len(bs) != f.byteLen {
		return nil, fmt.Errorf("field: expected %d bytes, got %d", f.byteLen, len(bs))
	}
	v := new(big.Int).SetBytes(bs)
	if v.Cmp(f.p) >= 0 {
		return nil, errors.New("field: encoded value is not a canonical representative")
	}
	return &primeElement{v: v, f: f}, nil
}

func (f *PrimeField) Random(rand RandReader) (Element, error) {
	buf := make([]byte, f.byteLen)
	excessBits := uint(8*f.byteLen - f.p.BitLen())
	for i := 0; i < maxRejectionRetries; i++ {
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("field: reading randomness: %w", err)
		}
		buf[0] &= byte(0xFF >> excessBits) // sample only bitlen(p) bits
		v := new(big.Int).SetBytes(buf)
		if v.Cmp(f.p) < 0 {
			return &primeElement{v: v, f: f}, nil
		}
	}
	return nil, fmt.Errorf("field: exceeded %d rejection-sampling retries", maxRejectionRetries)
}

// primeElement is an element of a PrimeField; v is always the canonical
// representative, 0 <= v < f.p.
type primeElement struct {
	v *big.Int
	f *PrimeField
}

func (e *primeElement) other(o Element) *primeElement {
	oe, ok := o.(*primeElement)
	if !ok || oe.f.p.Cmp(e.f.p) != 0 {
		panic("field: operands belong to different fields")
	}
	return oe
}

func (e *primeElement) Add(o Element) Element {
	oe := e.other(o)
	return e.f.FromBigInt(new(big.Int).Add(e.v, oe.v))
}

func (e *primeElement) Sub(o Element) Element {
	oe := e.other(o)
	return e.f.FromBigInt(new(big.Int).Sub(e.v, oe.v))
}

func (e *primeElement) Mul(o Element) Element {
	oe := e.other(o)
	return e.f.FromBigInt(new(big.Int).Mul(e.v, oe.v))
}

func (e *primeElement) Neg() Element {
	return e.f.FromBigInt(new(big.Int).Neg(e.v))
}

func (e *primeElement) Equal(o Element) bool {
	oe, ok := o.(*primeElement)
	return ok && oe.f.p.Cmp(e.f.p) == 0 && e.v.Cmp(oe.v) == 0
}

func (e *primeElement) IsZero() bool { return e.v.Sign() == 0 }

func (e *primeElement) Bytes() []byte {
	bs := make([]byte, e.f.byteLen)
	e.v.FillBytes(bs)
	return bs
}

func (e *primeElement) BigInt() *big.Int { return new(big.Int).Set(e.v) }

func (e *primeElement) String() string { return e.v.String() }
