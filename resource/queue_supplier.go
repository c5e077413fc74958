package resource

import (
	"fmt"

	"fresco/ferrors"
	"fresco/spdzshare"
	"fresco/tools"
)

// QueueSupplier is a Supplier backed by fixed-capacity queues, one per
// resource kind (and one per inputter for masks), filled once up front —
// typically by a trusted-dealer reference implementation (package
// offline/dealer) or by a test fixture. Adapted from the teacher's
// tools.ConcurrentQueue/ConcurrentMap, which already provide the
// thread-safe ring-buffer and keyed-map primitives this needs.
type QueueSupplier struct {
	triples      *tools.ConcurrentQueue[Triple]
	masksByParty *tools.ConcurrentMap[int, *tools.ConcurrentQueue[InputMask]]
	randomShares *tools.ConcurrentQueue[spdzshare.SInt]
	bits         *tools.ConcurrentQueue[spdzshare.SInt]
	truncPairs   *tools.ConcurrentMap[int, *tools.ConcurrentQueue[TruncationPair]]
}

// NewQueueSupplier builds an empty QueueSupplier with the given queue
// capacities. Call the Fill* methods (typically from package offline/dealer)
// before the session starts; the evaluator only ever reads.
func NewQueueSupplier(tripleCap, randomCap, bitCap int) *QueueSupplier {
	return &QueueSupplier{
		triples:      tools.NewConcurrentQueue[Triple](tripleCap),
		masksByParty: tools.NewConcurrentMap[int, *tools.ConcurrentQueue[InputMask]](),
		randomShares: tools.NewConcurrentQueue[spdzshare.SInt](randomCap),
		bits:         tools.NewConcurrentQueue[spdzshare.SInt](bitCap),
		truncPairs:   tools.NewConcurrentMap[int, *tools.ConcurrentQueue[TruncationPair]](),
	}
}

// FillTriples pushes triples into the triples queue, in the order every
// party must dequeue them in.
func (s *QueueSupplier) FillTriples(triples []Triple) error {
	for _, t := range triples {
		if err := s.triples.Push(t); err != nil {
			return fmt.Errorf("resource: filling triples: %w", err)
		}
	}
	return nil
}

// FillInputMasks pushes masks into the given inputter's mask queue, creating
// it on first use with capacity len(masks).
func (s *QueueSupplier) FillInputMasks(inputter int, masks []InputMask) error {
	q, ok := s.masksByParty.Get(inputter)
	if !ok {
		q = tools.NewConcurrentQueue[InputMask](len(masks))
		s.masksByParty.Set(inputter, q)
	}
	for _, m := range masks {
		if err := q.Push(m); err != nil {
			return fmt.Errorf("resource: filling input masks for party %d: %w", inputter, err)
		}
	}
	return nil
}

// FillRandomShares pushes shares into the random-share queue.
func (s *QueueSupplier) FillRandomShares(shares []spdzshare.SInt) error {
	for _, sh := range shares {
		if err := s.randomShares.Push(sh); err != nil {
			return fmt.Errorf("resource: filling random shares: %w", err)
		}
	}
	return nil
}

// FillBits pushes shares into the random-bit queue.
func (s *QueueSupplier) FillBits(bits []spdzshare.SInt) error {
	for _, b := range bits {
		if err := s.bits.Push(b); err != nil {
			return fmt.Errorf("resource: filling bits: %w", err)
		}
	}
	return nil
}

// FillTruncationPairs pushes pairs into the queue for shift amount d.
func (s *QueueSupplier) FillTruncationPairs(d int, pairs []TruncationPair) error {
	q, ok := s.truncPairs.Get(d)
	if !ok {
		q = tools.NewConcurrentQueue[TruncationPair](len(pairs))
		s.truncPairs.Set(d, q)
	}
	for _, p := range pairs {
		if err := q.Push(p); err != nil {
			return fmt.Errorf("resource: filling truncation pairs for shift %d: %w", d, err)
		}
	}
	return nil
}

func (s *QueueSupplier) NextTriple() (Triple, error) {
	t, err := s.triples.Pop()
	if err != nil {
		return Triple{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("triples queue exhausted: %w", err))
	}
	return t, nil
}

func (s *QueueSupplier) NextInputMask(inputter int) (InputMask, error) {
	q, ok := s.masksByParty.Get(inputter)
	if !ok {
		return InputMask{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("no input mask queue for party %d", inputter))
	}
	m, err := q.Pop()
	if err != nil {
		return InputMask{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("input mask queue for party %d exhausted: %w", inputter, err))
	}
	return m, nil
}

func (s *QueueSupplier) NextRandomShare() (spdzshare.SInt, error) {
	v, err := s.randomShares.Pop()
	if err != nil {
		return spdzshare.SInt{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("random-share queue exhausted: %w", err))
	}
	return v, nil
}

func (s *QueueSupplier) NextBit() (spdzshare.SInt, error) {
	v, err := s.bits.Pop()
	if err != nil {
		return spdzshare.SInt{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("bit queue exhausted: %w", err))
	}
	return v, nil
}

func (s *QueueSupplier) NextTruncationPair(d int) (TruncationPair, error) {
	q, ok := s.truncPairs.Get(d)
	if !ok {
		return TruncationPair{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("no truncation-pair queue for shift %d", d))
	}
	p, err := q.Pop()
	if err != nil {
		return TruncationPair{}, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("truncation-pair queue for shift %d exhausted: %w", d, err))
	}
	return p, nil
}
