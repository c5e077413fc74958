package spdznative

import (
	"fresco/protocol"
	"fresco/spdzshare"
)

// RandomElement hands out the next preprocessed random authenticated
// share. It needs no network round: the randomness was already jointly
// sampled during preprocessing, so every party already holds a
// consistent share of the same value.
type RandomElement struct {
	share spdzshare.SInt
	done  bool
}

// NewRandomElement builds the RandomElement protocol from the next
// preprocessed share.
func NewRandomElement(share spdzshare.SInt) *RandomElement {
	return &RandomElement{share: share}
}

func (p *RandomElement) NextRound() (protocol.RoundIO, error) {
	return protocol.RoundIO{}, nil
}

func (p *RandomElement) Evaluate(map[int][]byte) (protocol.Status, error) {
	p.done = true
	return protocol.Done, nil
}

// Output returns the random authenticated share.
func (p *RandomElement) Output() spdzshare.SInt { return p.share }
