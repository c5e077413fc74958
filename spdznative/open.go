package spdznative

import (
	"fmt"

	"fresco/ferrors"
	"fresco/field"
	"fresco/protocol"
	"fresco/spdzshare"
)

// Open reveals the clear value of an authenticated share by having every
// party broadcast its own value share. It does not touch the MAC; the
// caller is responsible for recording the (share, opened) pair for a
// later batched MAC-check (package maccheck), per spec.md §4.4/§4.5.
type Open struct {
	me, n int
	f     field.Field
	share spdzshare.SInt
	round int
	out   field.Element
}

// NewOpen builds the Open protocol for one party's share of the value
// being revealed.
func NewOpen(me, n int, f field.Field, share spdzshare.SInt) *Open {
	return &Open{me: me, n: n, f: f, share: share}
}

func (p *Open) NextRound() (protocol.RoundIO, error) {
	if p.round != 0 {
		return protocol.RoundIO{}, nil
	}
	io := protocol.RoundIO{Send: make(map[int][]byte, p.n-1), RecvSize: make(map[int]int, p.n-1)}
	bs := p.share.Value.Bytes()
	for peer := 0; peer < p.n; peer++ {
		if peer == p.me {
			continue
		}
		io.Send[peer] = bs
		io.RecvSize[peer] = p.f.ByteLen()
	}
	return io, nil
}

func (p *Open) Evaluate(received map[int][]byte) (protocol.Status, error) {
	if p.round != 0 {
		return protocol.Done, nil
	}
	p.round++
	sum := p.share.Value
	for peer := 0; peer < p.n; peer++ {
		if peer == p.me {
			continue
		}
		bs, ok := received[peer]
		if !ok {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: open: missing share from party %d", peer))
		}
		v, err := p.f.FromBytes(bs)
		if err != nil {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
				fmt.Errorf("spdznative: open: decoding share from party %d: %w", peer, err))
		}
		sum = sum.Add(v)
	}
	p.out = sum
	return protocol.Done, nil
}

// Output returns the revealed clear value. Valid only after Evaluate has
// returned protocol.Done.
func (p *Open) Output() field.Element { return p.out }
