// Package dealer is a reference trusted-dealer preprocessing supplier: a
// single process that knows the global MAC key and every secret value it
// deals, and fills a resource.QueueSupplier per party. It is not imported
// by any core package — spec.md §3/§6 treat preprocessing as an external
// collaborator, and this is one concrete (non-production) way to satisfy
// that collaborator's contract. See spec.md §11.1.
package dealer

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"fresco/commitment"
	"fresco/field"
	"fresco/resource"
	"fresco/spdzshare"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/share"
	"go.dedis.ch/kyber/v4/suites"
	"go.dedis.ch/kyber/v4/xof/blake2xb"
)

// SeedAllocation is one party's verifiable share of the master seed the
// dealer committed to before dealing anything, together with the public
// commitments every party can check it against. A quorum of parties
// holding valid allocations can reconstruct the seed after the fact and
// recompute every value the dealer claims to have dealt, catching a
// dealer that dealt something other than what it committed to.
type SeedAllocation struct {
	Commitments []kyber.Point
	Share       *share.PriShare
	Blind       *share.PriShare
}

// Dealer deals correlated randomness for the SPDZ online phase, per
// spec.md §11.1.
type Dealer struct {
	Field field.Field
	Group suites.Suite
	g0    kyber.Point
	g1    kyber.Point
	alpha field.Element
}

// New builds a Dealer over f, using group for the Pedersen commitment to
// its master seed.
func New(f field.Field, group suites.Suite) *Dealer {
	g0 := group.Point().Base()
	g1 := group.Point().Mul(group.Scalar().Pick(group.RandomStream()), g0)
	return &Dealer{Field: f, Group: group, g0: g0, g1: g1}
}

// CommitSeed picks a random master secret, verifiably (t,n)-shares it via
// Pedersen commitment, and returns a deterministic stream every
// subsequent Deal* call reads from — anyone later reconstructing the
// secret from a quorum of SeedAllocations can recompute the identical
// stream and check the dealer's work.
func (d *Dealer) CommitSeed(n, threshold int) ([]SeedAllocation, field.RandReader, error) {
	secret := d.Group.Scalar().Pick(d.Group.RandomStream())
	v, s, r, err := commitment.PedPolyCommit(secret, threshold, n, d.Group, d.g0, d.g1)
	if err != nil {
		return nil, nil, fmt.Errorf("dealer: committing seed: %w", err)
	}
	allocations := make([]SeedAllocation, n)
	for i := range allocations {
		allocations[i] = SeedAllocation{Commitments: v, Share: s[i], Blind: r[i]}
	}
	secretBytes, err := secret.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("dealer: marshalling seed: %w", err)
	}
	seed := sha256.Sum256(secretBytes)
	return allocations, blake2xb.New(seed[:]), nil
}

// DealMacKey samples the global MAC key α and additively splits it
// across n parties. The dealer retains the clear α to compute MACs for
// every value it deals afterwards; it never appears in any party's
// share beyond its own.
func (d *Dealer) DealMacKey(stream field.RandReader, n int) ([]field.Element, error) {
	shares, alpha, err := d.split(stream, nil, n)
	if err != nil {
		return nil, fmt.Errorf("dealer: dealing MAC key: %w", err)
	}
	d.alpha = alpha
	return shares, nil
}

// split draws n-1 random shares from stream and returns all n shares
// summing to value; if value is nil, the value itself is also drawn
// randomly from stream (used for DealMacKey, where α has no target).
func (d *Dealer) split(stream field.RandReader, value field.Element, n int) (shares []field.Element, total field.Element, err error) {
	shares = make([]field.Element, n)
	sum := d.Field.Zero()
	for i := 0; i < n-1; i++ {
		s, err := d.Field.Random(stream)
		if err != nil {
			return nil, nil, err
		}
		shares[i] = s
		sum = sum.Add(s)
	}
	if value == nil {
		value, err = d.Field.Random(stream)
		if err != nil {
			return nil, nil, err
		}
	}
	shares[n-1] = value.Sub(sum)
	return shares, value, nil
}

// authenticated splits value additively across n parties and, using the
// dealer's retained α, splits value·α the same way, zipping the two into
// n authenticated shares.
func (d *Dealer) authenticated(stream field.RandReader, value field.Element, n int) ([]spdzshare.SInt, error) {
	valueShares, _, err := d.split(stream, value, n)
	if err != nil {
		return nil, err
	}
	macShares, _, err := d.split(stream, d.alpha.Mul(value), n)
	if err != nil {
		return nil, err
	}
	out := make([]spdzshare.SInt, n)
	for i := range out {
		out[i] = spdzshare.New(valueShares[i], macShares[i])
	}
	return out, nil
}

// DealTriples deals count fresh Beaver triples into every supplier.
func (d *Dealer) DealTriples(stream field.RandReader, suppliers []*resource.QueueSupplier, count int) error {
	n := len(suppliers)
	perParty := make([][]resource.Triple, n)
	for k := 0; k < count; k++ {
		a, err := d.Field.Random(stream)
		if err != nil {
			return fmt.Errorf("dealer: sampling triple %d: %w", k, err)
		}
		b, err := d.Field.Random(stream)
		if err != nil {
			return fmt.Errorf("dealer: sampling triple %d: %w", k, err)
		}
		c := a.Mul(b)

		aShares, err := d.authenticated(stream, a, n)
		if err != nil {
			return err
		}
		bShares, err := d.authenticated(stream, b, n)
		if err != nil {
			return err
		}
		cShares, err := d.authenticated(stream, c, n)
		if err != nil {
			return err
		}
		for p := 0; p < n; p++ {
			perParty[p] = append(perParty[p], resource.Triple{A: aShares[p], B: bShares[p], C: cShares[p]})
		}
	}
	for p, s := range suppliers {
		if err := s.FillTriples(perParty[p]); err != nil {
			return err
		}
	}
	return nil
}

// DealRandomShares deals count fresh random authenticated shares into
// every supplier.
func (d *Dealer) DealRandomShares(stream field.RandReader, suppliers []*resource.QueueSupplier, count int) error {
	n := len(suppliers)
	perParty := make([][]spdzshare.SInt, n)
	for k := 0; k < count; k++ {
		r, err := d.Field.Random(stream)
		if err != nil {
			return fmt.Errorf("dealer: sampling random share %d: %w", k, err)
		}
		shares, err := d.authenticated(stream, r, n)
		if err != nil {
			return err
		}
		for p := 0; p < n; p++ {
			perParty[p] = append(perParty[p], shares[p])
		}
	}
	for p, s := range suppliers {
		if err := s.FillRandomShares(perParty[p]); err != nil {
			return err
		}
	}
	return nil
}

// DealBits deals count fresh random authenticated bit shares (0 or 1)
// into every supplier.
func (d *Dealer) DealBits(stream field.RandReader, suppliers []*resource.QueueSupplier, count int) error {
	n := len(suppliers)
	perParty := make([][]spdzshare.SInt, n)
	for k := 0; k < count; k++ {
		var b [1]byte
		if _, err := stream.Read(b[:]); err != nil {
			return fmt.Errorf("dealer: sampling bit %d: %w", k, err)
		}
		bit := d.Field.FromInt64(int64(b[0] & 1))
		shares, err := d.authenticated(stream, bit, n)
		if err != nil {
			return err
		}
		for p := 0; p < n; p++ {
			perParty[p] = append(perParty[p], shares[p])
		}
	}
	for p, s := range suppliers {
		if err := s.FillBits(perParty[p]); err != nil {
			return err
		}
	}
	return nil
}

// DealInputMasks deals count fresh input masks for inputter into every
// supplier; only inputter's own copy carries the clear value.
func (d *Dealer) DealInputMasks(stream field.RandReader, suppliers []*resource.QueueSupplier, inputter, count int) error {
	n := len(suppliers)
	perParty := make([][]resource.InputMask, n)
	for k := 0; k < count; k++ {
		r, err := d.Field.Random(stream)
		if err != nil {
			return fmt.Errorf("dealer: sampling input mask %d: %w", k, err)
		}
		shares, err := d.authenticated(stream, r, n)
		if err != nil {
			return err
		}
		for p := 0; p < n; p++ {
			clear := d.Field.Zero()
			if p == inputter {
				clear = r
			}
			perParty[p] = append(perParty[p], resource.InputMask{Inputter: inputter, Share: shares[p], Clear: clear})
		}
	}
	for p, s := range suppliers {
		if err := s.FillInputMasks(inputter, perParty[p]); err != nil {
			return err
		}
	}
	return nil
}

// DealTruncationPairs deals count fresh truncation pairs for the given
// right-shift amount into every supplier.
func (d *Dealer) DealTruncationPairs(stream field.RandReader, suppliers []*resource.QueueSupplier, shift uint, count int) error {
	n := len(suppliers)
	perParty := make([][]resource.TruncationPair, n)
	for k := 0; k < count; k++ {
		r, err := d.Field.Random(stream)
		if err != nil {
			return fmt.Errorf("dealer: sampling truncation pair %d: %w", k, err)
		}
		shiftedClear := d.Field.FromBigInt(new(big.Int).Rsh(r.BigInt(), shift))

		rShares, err := d.authenticated(stream, r, n)
		if err != nil {
			return err
		}
		shiftedShares, err := d.authenticated(stream, shiftedClear, n)
		if err != nil {
			return err
		}
		for p := 0; p < n; p++ {
			perParty[p] = append(perParty[p], resource.TruncationPair{R: rShares[p], RShifted: shiftedShares[p]})
		}
	}
	for p, s := range suppliers {
		if err := s.FillTruncationPairs(int(shift), perParty[p]); err != nil {
			return err
		}
	}
	return nil
}
