// Package maccheck implements the batched MAC-check (spec.md §4.5): the
// joint-randomness coin every party must contribute to, and the check
// itself run against the openings buffered in package resource.
package maccheck

import (
	"crypto/sha256"
	"fmt"

	"fresco/ferrors"
	"fresco/field"
	"fresco/protocol"

	"go.dedis.ch/kyber/v4/xof/blake2xb"
)

// seedLen is the width of each party's random contribution and of the
// combined coin; sha256 gives a commitment of the same width, adapted
// from the hash-commitment shape in the teacher's four-round broadcast
// (rbc/four_rounds_rbc.go), here used for every-party commit-then-reveal
// rather than a k-of-n reconstruction — spec.md §6 needs every party's
// randomness, not a quorum's.
const seedLen = 32

// Coin runs a two-round commit-then-reveal among every party to produce
// randomness no single party (honest or not) could have biased: round 0
// commits each party's own random seed by broadcasting its hash, round 1
// reveals the seed and every party checks it against the commitment it
// received, then XORs every seed (including its own) into one combined
// value. A commitment mismatch is a malicious-behaviour abort, per
// spec.md §7.
type Coin struct {
	me, n       int
	seed        [seedLen]byte
	commitments map[int][seedLen]byte
	seeds       map[int][seedLen]byte
	round       int
	combined    [seedLen]byte
}

// NewCoin builds the Coin protocol for this party, using seed as this
// party's own random contribution. Callers draw seed from
// crypto/rand.Reader.
func NewCoin(me, n int, seed [seedLen]byte) *Coin {
	return &Coin{me: me, n: n, seed: seed}
}

func (c *Coin) NextRound() (protocol.RoundIO, error) {
	io := protocol.RoundIO{Send: make(map[int][]byte, c.n-1), RecvSize: make(map[int]int, c.n-1)}
	switch c.round {
	case 0:
		commitment := sha256.Sum256(c.seed[:])
		for peer := 0; peer < c.n; peer++ {
			if peer == c.me {
				continue
			}
			io.Send[peer] = commitment[:]
			io.RecvSize[peer] = sha256.Size
		}
	case 1:
		for peer := 0; peer < c.n; peer++ {
			if peer == c.me {
				continue
			}
			io.Send[peer] = c.seed[:]
			io.RecvSize[peer] = seedLen
		}
	}
	return io, nil
}

func (c *Coin) Evaluate(received map[int][]byte) (protocol.Status, error) {
	switch c.round {
	case 0:
		c.commitments = make(map[int][seedLen]byte, c.n-1)
		for peer, bs := range received {
			var h [sha256.Size]byte
			copy(h[:], bs)
			c.commitments[peer] = h
		}
		c.round++
		return protocol.MoreRounds, nil
	case 1:
		c.seeds = make(map[int][seedLen]byte, c.n-1)
		for peer, bs := range received {
			var s [seedLen]byte
			copy(s[:], bs)
			got := sha256.Sum256(s[:])
			if got != c.commitments[peer] {
				return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
					fmt.Errorf("maccheck: coin: party %d revealed a seed not matching its commitment", peer))
			}
			c.seeds[peer] = s
		}
		combined := c.seed
		for _, s := range c.seeds {
			for i := range combined {
				combined[i] ^= s[i]
			}
		}
		c.combined = combined
		c.round++
		return protocol.Done, nil
	}
	return protocol.Done, nil
}

// Stream returns a deterministic random stream derived from the combined
// coin, suitable as a field.RandReader for sampling the MAC-check's
// random linear-combination coefficients — every honest party derives
// the identical stream. Valid only after Evaluate has returned
// protocol.Done.
func (c *Coin) Stream() field.RandReader {
	return blake2xb.New(c.combined[:])
}
