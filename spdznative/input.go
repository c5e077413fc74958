// Package spdznative implements the SPDZ online protocol's native
// protocols: the fixed-round, fixed-byte-contract leaves the evaluator
// (package evaluator) drives directly. Each one holds just enough state
// to compute its own round contract and to advance given what arrived,
// per spec.md §3 "Native protocol" and §4/§5 (SPDZ online layer).
package spdznative

import (
	"crypto/sha256"
	"fmt"

	"fresco/ferrors"
	"fresco/field"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdzshare"
)

// Input runs one party's secret x into an authenticated share, held by
// every party, using a preprocessed InputMask that only the inputter can
// open, per spec.md §4.3's broadcast-with-validation: round 0, the
// inputter sends e = x - mask.Clear to every other party; round 1, every
// non-inputter echoes a hash of the e it received to every other
// non-inputter, so an inputter that sends different e's to different
// peers is caught before the result is ever treated as authenticated,
// rather than only surfacing later as a MAC-check failure. With a single
// non-inputter (n == 2) there is nobody to echo against, so round 1 is
// skipped — no protocol can catch equivocation to a lone witness.
type Input struct {
	me, n, inputter int
	party           spdzshare.Party
	f               field.Field
	mask            resource.InputMask
	secret          field.Element // only meaningful when me == inputter
	round           int
	e               field.Element
	hash            [sha256.Size]byte
	out             spdzshare.SInt
}

// NewInput builds the Input protocol for one party. secret is ignored
// (and may be the zero value) for every party other than the inputter.
func NewInput(me, n, inputter int, party spdzshare.Party, f field.Field, mask resource.InputMask, secret field.Element) *Input {
	return &Input{me: me, n: n, inputter: inputter, party: party, f: f, mask: mask, secret: secret}
}

// validates reports whether the round-1 echo is meaningful: catching
// equivocation needs at least two non-inputter parties to cross-check.
func (p *Input) validates() bool { return p.n-1 >= 2 }

func (p *Input) NextRound() (protocol.RoundIO, error) {
	switch p.round {
	case 0:
		io := protocol.RoundIO{}
		if p.me == p.inputter {
			e := p.secret.Sub(p.mask.Clear)
			io.Send = make(map[int][]byte, p.n-1)
			for peer := 0; peer < p.n; peer++ {
				if peer == p.me {
					continue
				}
				io.Send[peer] = e.Bytes()
			}
			return io, nil
		}
		io.RecvSize = map[int]int{p.inputter: p.f.ByteLen()}
		return io, nil
	case 1:
		if p.me == p.inputter || !p.validates() {
			return protocol.RoundIO{}, nil
		}
		p.hash = sha256.Sum256(p.e.Bytes())
		io := protocol.RoundIO{Send: make(map[int][]byte, p.n-2), RecvSize: make(map[int]int, p.n-2)}
		for peer := 0; peer < p.n; peer++ {
			if peer == p.me || peer == p.inputter {
				continue
			}
			io.Send[peer] = p.hash[:]
			io.RecvSize[peer] = sha256.Size
		}
		return io, nil
	}
	return protocol.RoundIO{}, nil
}

func (p *Input) Evaluate(received map[int][]byte) (protocol.Status, error) {
	switch p.round {
	case 0:
		p.round++
		if p.me == p.inputter {
			p.e = p.secret.Sub(p.mask.Clear)
			p.out = p.party.AddConst(p.mask.Share, p.e)
			if !p.validates() {
				return protocol.Done, nil
			}
			return protocol.MoreRounds, nil
		}
		bs, ok := received[p.inputter]
		if !ok {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, p.inputter,
				fmt.Errorf("spdznative: input: missing e from inputter %d", p.inputter))
		}
		e, err := p.f.FromBytes(bs)
		if err != nil {
			return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, p.inputter,
				fmt.Errorf("spdznative: input: decoding e from inputter %d: %w", p.inputter, err))
		}
		p.e = e
		p.out = p.party.AddConst(p.mask.Share, e)
		if !p.validates() {
			return protocol.Done, nil
		}
		return protocol.MoreRounds, nil
	case 1:
		p.round++
		if p.me == p.inputter || !p.validates() {
			return protocol.Done, nil
		}
		for peer, bs := range received {
			if len(bs) != sha256.Size {
				return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
					fmt.Errorf("spdznative: input: malformed echo hash from party %d", peer))
			}
			var h [sha256.Size]byte
			copy(h[:], bs)
			if h != p.hash {
				return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, p.inputter,
					fmt.Errorf("spdznative: input: broadcast-validation mismatch — party %d's copy of e disagrees with this party's, inputter %d is equivocating", peer, p.inputter))
			}
		}
		return protocol.Done, nil
	}
	return protocol.Done, nil
}

// Output returns the resulting authenticated share. Valid only after
// Evaluate has returned protocol.Done.
func (p *Input) Output() spdzshare.SInt { return p.out }
