package maccheck

import (
	"crypto/sha256"
	"fmt"

	"fresco/ferrors"
	"fresco/field"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdzshare"
)

// Check runs one batched MAC-check over a snapshot of openings, per
// spec.md §4.5: it draws one random coefficient per opening from a
// shared Coin, folds the openings into a single linear combination, and
// runs the same commit-then-reveal shape Coin uses for its seed to
// broadcast this party's share of that combination's MAC residual —
// round 0 commits to sigmaShare by hash, round 1 reveals it and every
// party checks the reveal against the commitment it received. Without
// the commit round a rushing party could delay its own broadcast until
// it has seen every honest residual and then send whatever value zeroes
// the sum, defeating the check's soundness entirely; the commitment
// binds each party to its residual before anyone reveals.
// Passed() is only meaningful after Evaluate has returned
// protocol.Done — a non-zero residual sum means at least one opened
// value was lied about and the session must abort.
type Check struct {
	me, n       int
	sigmaShare  field.Element
	f           field.Field
	round       int
	commitments map[int][sha256.Size]byte
	passed      bool
}

// NewCheck builds the Check protocol over the given opening snapshot,
// deriving its random coefficients from coin (already driven to
// completion). party.MacKeyShare is this party's share of the global MAC
// key α.
func NewCheck(me, n int, party spdzshare.Party, f field.Field, openings []resource.Opening, coin *Coin) (*Check, error) {
	stream := coin.Stream()
	a := f.Zero()
	gammaShare := f.Zero()
	for _, o := range openings {
		r, err := f.Random(stream)
		if err != nil {
			return nil, fmt.Errorf("maccheck: deriving coefficient: %w", err)
		}
		a = a.Add(r.Mul(o.Opened))
		gammaShare = gammaShare.Add(r.Mul(o.Share.Mac))
	}
	sigmaShare := gammaShare.Sub(party.MacKeyShare.Mul(a))
	return &Check{me: me, n: n, sigmaShare: sigmaShare, f: f}, nil
}

func (c *Check) NextRound() (protocol.RoundIO, error) {
	io := protocol.RoundIO{Send: make(map[int][]byte, c.n-1), RecvSize: make(map[int]int, c.n-1)}
	switch c.round {
	case 0:
		commitment := sha256.Sum256(c.sigmaShare.Bytes())
		for peer := 0; peer < c.n; peer++ {
			if peer == c.me {
				continue
			}
			io.Send[peer] = commitment[:]
			io.RecvSize[peer] = sha256.Size
		}
	case 1:
		bs := c.sigmaShare.Bytes()
		for peer := 0; peer < c.n; peer++ {
			if peer == c.me {
				continue
			}
			io.Send[peer] = bs
			io.RecvSize[peer] = c.f.ByteLen()
		}
	}
	return io, nil
}

func (c *Check) Evaluate(received map[int][]byte) (protocol.Status, error) {
	switch c.round {
	case 0:
		c.commitments = make(map[int][sha256.Size]byte, c.n-1)
		for peer, bs := range received {
			var h [sha256.Size]byte
			copy(h[:], bs)
			c.commitments[peer] = h
		}
		c.round++
		return protocol.MoreRounds, nil
	case 1:
		sum := c.sigmaShare
		for peer := 0; peer < c.n; peer++ {
			if peer == c.me {
				continue
			}
			bs, ok := received[peer]
			if !ok {
				return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
					fmt.Errorf("maccheck: missing residual share from party %d", peer))
			}
			if got := sha256.Sum256(bs); got != c.commitments[peer] {
				return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
					fmt.Errorf("maccheck: party %d revealed a residual share not matching its commitment", peer))
			}
			v, err := c.f.FromBytes(bs)
			if err != nil {
				return protocol.Done, ferrors.WithPeer(ferrors.Malicious, -1, peer,
					fmt.Errorf("maccheck: decoding residual share from party %d: %w", peer, err))
			}
			sum = sum.Add(v)
		}
		c.passed = sum.IsZero()
		c.round++
		return protocol.Done, nil
	}
	return protocol.Done, nil
}

// Passed reports whether the combined residual summed to zero across
// every party, i.e. whether every opened value in the snapshot checked
// out. Valid only after Evaluate has returned protocol.Done.
func (c *Check) Passed() bool { return c.passed }
