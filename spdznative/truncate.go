package spdznative

import (
	"fmt"
	"math/big"

	"fresco/ferrors"
	"fresco/field"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdzshare"
)

// Truncate implements probabilistic truncation (Catrina-Saxena): given a
// preprocessed pair (r, r>>d), it opens x+r, right-shifts the revealed
// value by d bits in the clear, and subtracts the pair's pre-shifted
// share, per spec.md §12's supplemented Truncate operation.
type Truncate struct {
	me, n  int
	party  spdzshare.Party
	f      field.Field
	x      spdzshare.SInt
	pair   resource.TruncationPair
	shift  uint
	round  int
	masked spdzshare.SInt
	opened field.Element
	out    spdzshare.SInt
}

// NewTruncate builds the Truncate protocol for one party's share of x,
// right-shifted by shift bits, using the given preprocessed pair.
func NewTruncate(me, n int, party spdzshare.Party, f field.Field, x spdzshare.SInt, pair resource.TruncationPair, shift uint) *Truncate {
	return &Truncate{me: me, n: n, party: party, f: f, x: x, pair: pair, shift: shift}
}

func (p *Truncate) NextRound() (protocol.RoundIO, error) {
	if p.round != 0 {
		return protocol.RoundIO{}, nil
	}
	p.masked = p.x.Add(p.pair.R)
	io := protocol.RoundIO{Send: make(map[int][]byte, p.n-1), RecvSize: make(map[int]int, p.n-1)}
	bs := p.masked.Value.Bytes()
	for peer := 0; peer < p.n; peer++ {
		if peer == p.me {
			continue
		}
		io.Send[peer] = bs
		io.RecvSize[peer] = p.f.ByteLen()
	}
	return io, nil
}

func (p *Truncate) Evaluate(received map[int][]byte) (protocol.Status, error) {
	if p.round != 0 {
		return protocol.Done, nil
	}
	p.round++
	sum := p.masked.Value
	for peer := 0; peer < p.n; peer++ {
		if peer == p.me {
			continue
		}
		bs, ok := received[peer]
		if !ok {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: truncate: missing share from party %d", peer))
		}
		v, err := p.f.FromBytes(bs)
		if err != nil {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: truncate: decoding share from party %d: %w", peer, err))
		}
		sum = sum.Add(v)
	}
	p.opened = sum
	shifted := new(big.Int).Rsh(sum.BigInt(), p.shift)
	c := p.f.FromBigInt(shifted)
	p.out = p.party.Known(c, p.f.Zero()).Sub(p.pair.RShifted)
	return protocol.Done, nil
}

// Output returns the resulting authenticated share of x>>shift. Valid
// only after Evaluate has returned protocol.Done.
func (p *Truncate) Output() spdzshare.SInt { return p.out }

// Openings returns the (share, opened value) pair this round revealed —
// x+r — so the caller can hand it to the MAC-check layer. Valid only
// after Evaluate has returned protocol.Done.
func (p *Truncate) Openings() []resource.Opening {
	return []resource.Opening{{Share: p.masked, Opened: p.opened}}
}
