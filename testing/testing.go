// Package testing builds ready-to-run multi-party session fixtures for
// tests and the demo command: a field, n spdzshare.Party MAC-key shares,
// a QueueSupplier per party filled with as much correlated randomness as
// requested, and a networktest.Mesh wiring them together. Adapted from
// the teacher's testing.SetupNetwork, generalized from "join a network"
// to "stand up a whole session" since spec.md's session spans more than
// the transport layer alone.
package testing

import (
	"fmt"

	"fresco/evaluator"
	"fresco/field"
	"fresco/offline/dealer"
	"fresco/resource"
	"fresco/spdzshare"
	"fresco/testing/networktest"

	"go.dedis.ch/kyber/v4/group/edwards25519"
)

// Budget describes how much correlated randomness to preprocess for a
// fixture session.
type Budget struct {
	Triples          int
	RandomShares     int
	Bits             int
	InputsPerParty   int
	TruncationShifts []uint
	TruncationCount  int
}

// Fixture is a fully wired, ready-to-drive test session.
type Fixture struct {
	Field     field.Field
	Parties   []spdzshare.Party
	Suppliers []*resource.QueueSupplier
	Nets      []evaluator.Network
}

// NewFixture deals randomness with a fresh in-process trusted dealer and
// wires n parties together over an in-process mesh.
func NewFixture(f field.Field, n, threshold int, budget Budget) (*Fixture, error) {
	suppliers := make([]*resource.QueueSupplier, n)
	for i := range suppliers {
		suppliers[i] = resource.NewQueueSupplier(budget.Triples, budget.RandomShares, budget.Bits)
	}

	d := dealer.New(f, edwards25519.NewBlakeSHA256Ed25519())
	_, stream, err := d.CommitSeed(n, threshold)
	if err != nil {
		return nil, fmt.Errorf("testing: committing dealer seed: %w", err)
	}
	alphaShares, err := d.DealMacKey(stream, n)
	if err != nil {
		return nil, fmt.Errorf("testing: dealing MAC key: %w", err)
	}
	if err := d.DealTriples(stream, suppliers, budget.Triples); err != nil {
		return nil, fmt.Errorf("testing: dealing triples: %w", err)
	}
	if err := d.DealRandomShares(stream, suppliers, budget.RandomShares); err != nil {
		return nil, fmt.Errorf("testing: dealing random shares: %w", err)
	}
	if err := d.DealBits(stream, suppliers, budget.Bits); err != nil {
		return nil, fmt.Errorf("testing: dealing bits: %w", err)
	}
	for inputter := 0; inputter < n; inputter++ {
		if err := d.DealInputMasks(stream, suppliers, inputter, budget.InputsPerParty); err != nil {
			return nil, fmt.Errorf("testing: dealing input masks for party %d: %w", inputter, err)
		}
	}
	for _, shift := range budget.TruncationShifts {
		if err := d.DealTruncationPairs(stream, suppliers, shift, budget.TruncationCount); err != nil {
			return nil, fmt.Errorf("testing: dealing truncation pairs for shift %d: %w", shift, err)
		}
	}

	parties := make([]spdzshare.Party, n)
	for i := range parties {
		parties[i] = spdzshare.Party{Index: i, MacKeyShare: alphaShares[i]}
	}

	mesh := networktest.NewMesh(n, 64)
	meshNets := mesh.Nets()
	nets := make([]evaluator.Network, n)
	for i, mn := range meshNets {
		nets[i] = mn
	}

	return &Fixture{Field: f, Parties: parties, Suppliers: suppliers, Nets: nets}, nil
}
