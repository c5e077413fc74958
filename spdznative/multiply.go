package spdznative

import (
	"fmt"

	"fresco/ferrors"
	"fresco/field"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdzshare"
)

// Multiply computes [x]·[y] via Beaver's trick using a preprocessed
// triple (a,b,c) with a·b=c: every party broadcasts its share of
// d = x-a and e = y-b in one round, then locally computes
// z = c + d·b + e·a + d·e (the last term added once, by convention party
// 0). d and e are themselves opened values and must be fed to the
// MAC-check layer by the caller, same as Open's result — see spec.md §5.
type Multiply struct {
	me, n  int
	party  spdzshare.Party
	f      field.Field
	x, y   spdzshare.SInt
	triple resource.Triple
	round  int
	dShare spdzshare.SInt
	eShare spdzshare.SInt
	d, e   field.Element
	out    spdzshare.SInt
}

// NewMultiply builds the Multiply protocol for one party's shares of x, y
// and its slice of the Beaver triple.
func NewMultiply(me, n int, party spdzshare.Party, f field.Field, x, y spdzshare.SInt, triple resource.Triple) *Multiply {
	return &Multiply{me: me, n: n, party: party, f: f, x: x, y: y, triple: triple}
}

func (p *Multiply) NextRound() (protocol.RoundIO, error) {
	if p.round != 0 {
		return protocol.RoundIO{}, nil
	}
	p.dShare = p.x.Sub(p.triple.A)
	p.eShare = p.y.Sub(p.triple.B)
	payload := append(append([]byte{}, p.dShare.Value.Bytes()...), p.eShare.Value.Bytes()...)
	io := protocol.RoundIO{Send: make(map[int][]byte, p.n-1), RecvSize: make(map[int]int, p.n-1)}
	for peer := 0; peer < p.n; peer++ {
		if peer == p.me {
			continue
		}
		io.Send[peer] = payload
		io.RecvSize[peer] = 2 * p.f.ByteLen()
	}
	return io, nil
}

func (p *Multiply) Evaluate(received map[int][]byte) (protocol.Status, error) {
	if p.round != 0 {
		return protocol.Done, nil
	}
	p.round++
	dSum := p.dShare.Value
	eSum := p.eShare.Value
	byteLen := p.f.ByteLen()
	for peer := 0; peer < p.n; peer++ {
		if peer == p.me {
			continue
		}
		bs, ok := received[peer]
		if !ok || len(bs) != 2*byteLen {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: multiply: malformed payload from party %d", peer))
		}
		dv, err := p.f.FromBytes(bs[:byteLen])
		if err != nil {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: multiply: decoding d from party %d: %w", peer, err))
		}
		ev, err := p.f.FromBytes(bs[byteLen:])
		if err != nil {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: multiply: decoding e from party %d: %w", peer, err))
		}
		dSum = dSum.Add(dv)
		eSum = eSum.Add(ev)
	}
	p.d, p.e = dSum, eSum

	z := p.triple.C.Add(p.triple.B.MulConst(p.d)).Add(p.triple.A.MulConst(p.e))
	p.out = p.party.AddConst(z, p.d.Mul(p.e))
	return protocol.Done, nil
}

// Output returns the resulting authenticated share of x·y. Valid only
// after Evaluate has returned protocol.Done.
func (p *Multiply) Output() spdzshare.SInt { return p.out }

// Openings returns the (share, opened value) pairs this round revealed —
// d and e — so the caller can hand them to the MAC-check layer. Valid
// only after Evaluate has returned protocol.Done.
func (p *Multiply) Openings() []resource.Opening {
	return []resource.Opening{
		{Share: p.dShare, Opened: p.d},
		{Share: p.eShare, Opened: p.e},
	}
}
