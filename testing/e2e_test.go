package testing_test

import (
	"crypto/rand"
	"sync"
	"testing"

	"fresco/builder"
	"fresco/evaluator"
	"fresco/ferrors"
	"fresco/field"
	"fresco/maccheck"
	"fresco/numeric"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdznative"
	"fresco/spdzshare"
	fixture "fresco/testing"

	"github.com/stretchr/testify/require"
)

// roundCountingNetwork records the distinct set of round numbers a party's
// Send was ever called with. Round numbers assigned by evaluator.Evaluate
// are not contiguous — a sweep where every ready task is a free local op
// never calls Send at all — so "how many network rounds ran" has to count
// the distinct values seen, not the highest one plus one.
type roundCountingNetwork struct {
	evaluator.Network
	mu     sync.Mutex
	rounds map[int]struct{}
}

func newRoundCountingNetwork(n evaluator.Network) *roundCountingNetwork {
	return &roundCountingNetwork{Network: n, rounds: make(map[int]struct{})}
}

func (r *roundCountingNetwork) Send(round, to int, payload []byte) error {
	r.mu.Lock()
	r.rounds[round] = struct{}{}
	r.mu.Unlock()
	return r.Network.Send(round, to, payload)
}

func (r *roundCountingNetwork) NetworkRounds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rounds)
}

// tamperingNetwork corrupts every value this party broadcasts, simulating a
// party that flips its own share right before handing it to the network —
// a substitution Open itself has no way to detect, since Open never touches
// a MAC. Only the batched MAC-check catches it.
type tamperingNetwork struct {
	evaluator.Network
	f field.Field
}

func (t *tamperingNetwork) Send(round, to int, payload []byte) error {
	if v, err := t.f.FromBytes(payload); err == nil {
		payload = v.Add(t.f.One()).Bytes()
	}
	return t.Network.Send(round, to, payload)
}

// deferredMul mirrors numeric.deferred (unexported, so unusable from here):
// it wraps a Multiply whose construction needs the actual shares of its
// operands, built the first time NextRound is called.
type deferredMul struct {
	build func() *spdznative.Multiply
	inner *spdznative.Multiply
}

func (d *deferredMul) NextRound() (protocol.RoundIO, error) {
	if d.inner == nil {
		d.inner = d.build()
	}
	return d.inner.NextRound()
}

func (d *deferredMul) Evaluate(received map[int][]byte) (protocol.Status, error) {
	return d.inner.Evaluate(received)
}

// attachParallelMul attaches a Beaver-triple multiplication to a parallel
// scope, the way numeric.Builder.Mul attaches one to a sequential scope.
// numeric.Builder has no parallel-scope Mul, so a program that needs several
// multiplications to share a single network round builds this directly.
func attachParallelMul(par *builder.Parallel, nb *numeric.Builder, x, y *builder.DRes[spdzshare.SInt]) (*builder.DRes[spdzshare.SInt], error) {
	triple, err := nb.Pool.NextTriple()
	if err != nil {
		return nil, err
	}
	dp := &deferredMul{build: func() *spdznative.Multiply {
		return spdznative.NewMultiply(nb.Me, nb.N, nb.Party, nb.Field, x.Out(), y.Out(), triple)
	}}
	return builder.AttachPar(par, []builder.Ready{x, y}, dp, func() spdzshare.SInt {
		for _, o := range dp.inner.Openings() {
			nb.Store.Append(o)
		}
		return dp.inner.Output()
	}), nil
}

// driveNative hand-drives a single native protocol to completion over net,
// the way a caller outside the evaluator (a MAC-check, here) has to when
// there's no builder.Graph around it. roundBase offsets the protocol's own
// round numbers so they can't collide with an evaluator.Evaluate call
// sharing the same net.
func driveNative(net evaluator.Network, roundBase int, proto protocol.NativeProtocol) error {
	for round := 0; ; round++ {
		io, err := proto.NextRound()
		if err != nil {
			return err
		}
		for peer, payload := range io.Send {
			if err := net.Send(roundBase+round, peer, payload); err != nil {
				return err
			}
		}
		received := make(map[int][]byte, len(io.RecvSize))
		for peer := range io.RecvSize {
			bs, err := net.Recv(roundBase+round, peer)
			if err != nil {
				return err
			}
			received[peer] = bs
		}
		status, err := proto.Evaluate(received)
		if err != nil {
			return err
		}
		if status == protocol.Done {
			return nil
		}
	}
}

// runMacCheck drives a fresh Coin and the batched Check over whatever this
// party's store currently holds, offset well clear of any round numbers a
// preceding evaluator.Evaluate call might have used.
func runMacCheck(net evaluator.Network, party spdzshare.Party, f field.Field, store *resource.OpenedValueStore) (bool, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return false, err
	}
	coin := maccheck.NewCoin(net.Me(), net.NumParties(), seed)
	if err := driveNative(net, 1000, coin); err != nil {
		return false, err
	}
	check, err := maccheck.NewCheck(net.Me(), net.NumParties(), party, f, store.Snapshot(), coin)
	if err != nil {
		return false, err
	}
	if err := driveNative(net, 2000, check); err != nil {
		return false, err
	}
	return check.Passed(), nil
}

func TestTwoPartyInputAndCompute_MatchesExpectedResultAndPassesMacCheck(t *testing.T) {
	f := field.Mersenne61
	fx, err := fixture.NewFixture(f, 2, 2, fixture.Budget{Triples: 1, InputsPerParty: 1})
	require.NoError(t, err)

	outs := make([]int64, 2)
	passed := make([]bool, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			store := resource.NewOpenedValueStore()
			nb := &numeric.Builder{Me: i, N: 2, Party: fx.Parties[i], Field: f, Pool: fx.Suppliers[i], Store: store}

			program := func(root *builder.Sequential) *builder.DRes[field.Element] {
				var xSecret, ySecret field.Element
				if i == 0 {
					xSecret = f.FromInt64(7)
				}
				if i == 1 {
					ySecret = f.FromInt64(5)
				}
				x, err := nb.Input(root, 0, xSecret)
				require.NoError(t, err)
				y, err := nb.Input(root, 1, ySecret)
				require.NoError(t, err)
				sum := nb.Add(root, x, y)
				diff := nb.Sub(root, x, y)
				prod, err := nb.Mul(root, sum, diff)
				require.NoError(t, err)
				return nb.Open(root, prod)
			}

			out, err := evaluator.Evaluate[field.Element](fx.Nets[i], program)
			if err != nil {
				errs[i] = err
				return
			}
			outs[i] = out.BigInt().Int64()
			ok, err := runMacCheck(fx.Nets[i], fx.Parties[i], f, store)
			passed[i], errs[i] = ok, err
		}()
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, int64(24), outs[i])
		require.True(t, passed[i])
	}
}

func TestVectorInput_ElementwiseProductBatchedIntoOneMultiplicationRound(t *testing.T) {
	f := field.Mersenne61
	fx, err := fixture.NewFixture(f, 2, 2, fixture.Budget{Triples: 4, InputsPerParty: 4})
	require.NoError(t, err)

	vec := []int64{1, 2, 3, 4}
	const scalarVal int64 = 10
	want := []int64{10, 20, 30, 40}

	results := make([][]int64, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			store := resource.NewOpenedValueStore()
			nb := &numeric.Builder{Me: i, N: 2, Party: fx.Parties[i], Field: f, Pool: fx.Suppliers[i], Store: store}
			opens := make([]*builder.DRes[field.Element], len(vec))

			program := func(root *builder.Sequential) *builder.DRes[field.Element] {
				vecShares := make([]*builder.DRes[spdzshare.SInt], len(vec))
				for k, v := range vec {
					var secret field.Element
					if i == 0 {
						secret = f.FromInt64(v)
					}
					share, err := nb.Input(root, 0, secret)
					require.NoError(t, err)
					vecShares[k] = share
				}
				var scalarSecret field.Element
				if i == 1 {
					scalarSecret = f.FromInt64(scalarVal)
				}
				scalarShare, err := nb.Input(root, 1, scalarSecret)
				require.NoError(t, err)

				// All four multiplications sit in the same parallel scope,
				// so the evaluator offers them in the same sweep and they
				// share a single network round, unlike sequential Muls.
				muls := make([]*builder.DRes[spdzshare.SInt], len(vec))
				root.Par(func(par *builder.Parallel) {
					for k := range vecShares {
						m, err := attachParallelMul(par, nb, vecShares[k], scalarShare)
						require.NoError(t, err)
						muls[k] = m
					}
				})

				root.Seq(func(seq *builder.Sequential) {
					for k := range muls {
						opens[k] = nb.Open(seq, muls[k])
					}
				})
				return opens[0]
			}

			if _, err := evaluator.Evaluate[field.Element](fx.Nets[i], program); err != nil {
				errs[i] = err
				return
			}
			out := make([]int64, len(vec))
			for k, o := range opens {
				out[k] = o.Out().BigInt().Int64()
			}
			results[i] = out
		}()
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, want, results[i])
	}
}

func TestThreePartySumOfSquares_MatchesExpectedResultWithBatchedSquares(t *testing.T) {
	f := field.Mersenne61
	const n = 3
	fx, err := fixture.NewFixture(f, n, 2, fixture.Budget{Triples: n, InputsPerParty: 1})
	require.NoError(t, err)

	outs := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			store := resource.NewOpenedValueStore()
			nb := &numeric.Builder{Me: i, N: n, Party: fx.Parties[i], Field: f, Pool: fx.Suppliers[i], Store: store}

			program := func(root *builder.Sequential) *builder.DRes[field.Element] {
				inputs := make([]*builder.DRes[spdzshare.SInt], n)
				for p := 0; p < n; p++ {
					var secret field.Element
					if i == p {
						secret = f.FromInt64(1)
					}
					share, err := nb.Input(root, p, secret)
					require.NoError(t, err)
					inputs[p] = share
				}

				// Every party's square uses its own triple, but all n
				// squares run in the same parallel scope: one extra
				// multiplication round total, regardless of n.
				squares := make([]*builder.DRes[spdzshare.SInt], n)
				root.Par(func(par *builder.Parallel) {
					for p := 0; p < n; p++ {
						sq, err := attachParallelMul(par, nb, inputs[p], inputs[p])
						require.NoError(t, err)
						squares[p] = sq
					}
				})

				var sum *builder.DRes[spdzshare.SInt]
				root.Seq(func(seq *builder.Sequential) {
					sum = nb.Add(seq, squares[0], squares[1])
					for p := 2; p < n; p++ {
						sum = nb.Add(seq, sum, squares[p])
					}
				})
				return nb.Open(root, sum)
			}

			out, err := evaluator.Evaluate[field.Element](fx.Nets[i], program)
			if err != nil {
				errs[i] = err
				return
			}
			outs[i] = out.BigInt().Int64()
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, int64(3), outs[i])
	}
}

func TestOpenedValueTamperedInTransit_FailsSubsequentMacCheck(t *testing.T) {
	f := field.Mersenne61
	fx, err := fixture.NewFixture(f, 2, 2, fixture.Budget{RandomShares: 1})
	require.NoError(t, err)

	passed := make([]bool, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			store := resource.NewOpenedValueStore()
			nb := &numeric.Builder{Me: i, N: 2, Party: fx.Parties[i], Field: f, Pool: fx.Suppliers[i], Store: store}

			program := func(root *builder.Sequential) *builder.DRes[field.Element] {
				x, err := nb.RandomElement(root)
				require.NoError(t, err)
				return nb.Open(root, x)
			}

			// Party 0's own broadcast is corrupted right at the network
			// boundary, after Open has computed it from its honest share —
			// the same shape of lie a compromised link or a lying sender
			// would produce.
			var net evaluator.Network = fx.Nets[i]
			if i == 0 {
				net = &tamperingNetwork{Network: fx.Nets[i], f: f}
			}

			if _, err := evaluator.Evaluate[field.Element](net, program); err != nil {
				errs[i] = err
				return
			}
			passed[i], errs[i] = runMacCheck(fx.Nets[i], fx.Parties[i], f, store)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.False(t, passed[0] && passed[1], "mac-check must catch the tampered broadcast")
}

func TestSeqParComposition_ParallelMultiplyThenAddThenOpen_UsesExactlyTwoNetworkRounds(t *testing.T) {
	f := field.Mersenne61
	fx, err := fixture.NewFixture(f, 2, 2, fixture.Budget{Triples: 2, RandomShares: 4})
	require.NoError(t, err)

	rounds := make([]int, 2)
	outs := make([]int64, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			store := resource.NewOpenedValueStore()
			nb := &numeric.Builder{Me: i, N: 2, Party: fx.Parties[i], Field: f, Pool: fx.Suppliers[i], Store: store}
			rc := newRoundCountingNetwork(fx.Nets[i])

			program := func(root *builder.Sequential) *builder.DRes[field.Element] {
				a, err := nb.RandomElement(root)
				require.NoError(t, err)
				b, err := nb.RandomElement(root)
				require.NoError(t, err)
				c, err := nb.RandomElement(root)
				require.NoError(t, err)
				d, err := nb.RandomElement(root)
				require.NoError(t, err)

				// seq(par(mul(a,b), mul(c,d)), seq(add, open)): the
				// parallel multiplications are root's first child, the
				// add-then-open its second — root itself is the outer seq.
				var mulAB, mulCD *builder.DRes[spdzshare.SInt]
				root.Par(func(par *builder.Parallel) {
					m1, err := attachParallelMul(par, nb, a, b)
					require.NoError(t, err)
					mulAB = m1
					m2, err := attachParallelMul(par, nb, c, d)
					require.NoError(t, err)
					mulCD = m2
				})

				var final *builder.DRes[field.Element]
				root.Seq(func(seq *builder.Sequential) {
					sum := nb.Add(seq, mulAB, mulCD)
					final = nb.Open(seq, sum)
				})
				return final
			}

			out, err := evaluator.Evaluate[field.Element](rc, program)
			if err != nil {
				errs[i] = err
				return
			}
			outs[i] = out.BigInt().Int64()
			rounds[i] = rc.NetworkRounds()
		}()
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, 2, rounds[i], "one round for the batched multiplications, one for the open")
	}
	require.Equal(t, outs[0], outs[1])
}

// TestMultiply_ResourceExhaustionAbortsAtTheExactDeficitBatch drives the
// deficit through a real evaluator.Evaluate call rather than calling
// numeric.Builder.Mul directly: the program below panics(err) on a
// construction-time failure the same way cmd/fresco-demo does, and
// relies on evaluator.Evaluate (via builder.Build's recover) to turn
// that panic back into the *ferrors.SessionError a caller can inspect.
func TestMultiply_ResourceExhaustionAbortsAtTheExactDeficitBatch(t *testing.T) {
	f := field.Mersenne61
	fx, err := fixture.NewFixture(f, 2, 2, fixture.Budget{Triples: 2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			store := resource.NewOpenedValueStore()
			nb := &numeric.Builder{Me: i, N: 2, Party: fx.Parties[i], Field: f, Pool: fx.Suppliers[i], Store: store}

			program := func(root *builder.Sequential) *builder.DRes[spdzshare.SInt] {
				x := nb.Known(root, f.FromInt64(1))
				var prod *builder.DRes[spdzshare.SInt]
				// Two triples were dealt to each party: the third Mul call
				// is the exact batch where the deficit first appears.
				for batch := 1; batch <= 3; batch++ {
					p, err := nb.Mul(root, x, x)
					if err != nil {
						panic(err)
					}
					prod = p
				}
				return prod
			}

			_, errs[i] = evaluator.Evaluate[spdzshare.SInt](fx.Nets[i], program)
		}()
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.Error(t, errs[i])
		require.True(t, ferrors.Is(errs[i], ferrors.ResourceExhaustion))
		se, ok := ferrors.AsSessionError(errs[i])
		require.True(t, ok)
		require.Equal(t, -1, se.Batch, "exhaustion is detected at construction time, before any round is played")
	}
}
