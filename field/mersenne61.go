package field

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

// mersenne61Prime is 2^61 - 1, the modulus the end-to-end scenarios in
// spec.md §8 are defined over.
const mersenne61Prime uint64 = (1 << 61) - 1

var mersenne61PrimeBig = new(big.Int).SetUint64(mersenne61Prime)

// Mersenne61 is the prime field ℤ/(2^61-1)ℤ, using a dedicated reduction
// that avoids math/big in the hot path: a 61-bit-limited product fits in two
// uint64 words, and 2^61 ≡ 1 (mod p) lets the reduction be done with shifts,
// masks and a handful of additions instead of a general division.
var Mersenne61 Field = mersenne61Field{}

type mersenne61Field struct{}

func (mersenne61Field) Modulus() *big.Int { return new(big.Int).Set(mersenne61PrimeBig) }
func (mersenne61Field) ByteLen() int      { return 8 }

func (mersenne61Field) Zero() Element { return mersenne61Element(0) }
func (mersenne61Field) One() Element  { return mersenne61Element(1) }

func (f mersenne61Field) FromInt64(x int64) Element {
	if x >= 0 {
		return mersenne61Element(reduceMersenne61Small(uint64(x)))
	}
	r := reduceMersenne61Small(uint64(-x))
	if r == 0 {
		return mersenne61Element(0)
	}
	return mersenne61Element(mersenne61Prime - r)
}

func (f mersenne61Field) FromBigInt(x *big.Int) Element {
	v := new(big.Int).Mod(x, mersenne61PrimeBig)
	return mersenne61Element(v.Uint64())
}

func (f mersenne61Field) FromBytes(bs []byte) (Element, error) {
	if len(bs) != 8 {
		return nil, fmt.Errorf("field: expected 8 bytes, got %d", len(bs))
	}
	var v uint64
	for _, b := range bs {
		v = v<<8 | uint64(b)
	}
	if v >= mersenne61Prime {
		return nil, errors.New("field: encoded value is not a canonical representative")
	}
	return mersenne61Element(v), nil
}

func (f mersenne61Field) Random(rand RandReader) (Element, error) {
	buf := make([]byte, 8)
	for i := 0; i < maxRejectionRetries; i++ {
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("field: reading randomness: %w", err)
		}
		var v uint64
		for _, b := range buf {
			v = v<<8 | uint64(b)
		}
		v &^= 1 << 63 // only the low 61 bits are sampled; top 3 bits masked off
		v &^= 1 << 62
		v &^= 1 << 61
		if v < mersenne61Prime {
			return mersenne61Element(v), nil
		}
	}
	return nil, fmt.Errorf("field: exceeded %d rejection-sampling retries", maxRejectionRetries)
}

// reduceMersenne61Small reduces a value known to fit comfortably below 2^64
// (e.g. a small int64 cast to uint64) into [0, p).
func reduceMersenne61Small(v uint64) uint64 {
	hi := v >> 61 // at most 3 bits, since v < 2^64
	lo := v & mersenne61Prime
	sum := hi + lo // 2^61 ≡ 1 (mod p), so v ≡ hi + lo (mod p)
	for sum >= mersenne61Prime {
		sum -= mersenne61Prime
	}
	return sum
}

// reduceMersenne61 reduces hi*2^64+lo into [0, p), given hi < 2^58 (true of
// any product of two canonical Mersenne61 elements).
func reduceMersenne61(hi, lo uint64) uint64 {
	// 2^64 = 8 * 2^61 ≡ 8 (mod p), so hi*2^64 ≡ 8*hi (mod p).
	eightHi := hi << 3
	lo1 := lo >> 61             // top (64-61)=3 bits of lo, weight 2^61 ≡ 1
	lo0 := lo & mersenne61Prime // low 61 bits of lo

	sum := eightHi + lo1 + lo0
	for sum >= mersenne61Prime {
		sum -= mersenne61Prime
	}
	return sum
}

// mersenne61Element is always held in canonical form, 0 <= v < 2^61-1.
type mersenne61Element uint64

func (e mersenne61Element) other(o Element) mersenne61Element {
	oe, ok := o.(mersenne61Element)
	if !ok {
		panic("field: operand is not a Mersenne61 element")
	}
	return oe
}

func (e mersenne61Element) Add(o Element) Element {
	oe := e.other(o)
	s := uint64(e) + uint64(oe)
	if s >= mersenne61Prime {
		s -= mersenne61Prime
	}
	return mersenne61Element(s)
}

func (e mersenne61Element) Sub(o Element) Element {
	oe := e.other(o)
	if uint64(e) >= uint64(oe) {
		return mersenne61Element(uint64(e) - uint64(oe))
	}
	return mersenne61Element(mersenne61Prime - uint64(oe) + uint64(e))
}

func (e mersenne61Element) Mul(o Element) Element {
	oe := e.other(o)
	hi, lo := bits.Mul64(uint64(e), uint64(oe))
	return mersenne61Element(reduceMersenne61(hi, lo))
}

func (e mersenne61Element) Neg() Element {
	if e == 0 {
		return e
	}
	return mersenne61Element(mersenne61Prime - uint64(e))
}

func (e mersenne61Element) Equal(o Element) bool {
	oe, ok := o.(mersenne61Element)
	return ok && e == oe
}

func (e mersenne61Element) IsZero() bool { return e == 0 }

func (e mersenne61Element) Bytes() []byte {
	bs := make([]byte, 8)
	v := uint64(e)
	for i := 7; i >= 0; i-- {
		bs[i] = byte(v)
		v >>= 8
	}
	return bs
}

func (e mersenne61Element) BigInt() *big.Int { return new(big.Int).SetUint64(uint64(e)) }

func (e mersenne61Element) String() string { return fmt.Sprintf("%d", uint64(e)) }
