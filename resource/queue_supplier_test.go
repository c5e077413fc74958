package resource

import (
	"testing"

	"fresco/ferrors"
	"fresco/field"
	"fresco/spdzshare"

	"github.com/stretchr/testify/require"
)

func TestQueueSupplier_TriplesInOrder(t *testing.T) {
	f := field.Mersenne61
	s := NewQueueSupplier(2, 0, 0)
	t1 := Triple{A: spdzshare.New(f.FromInt64(1), f.Zero())}
	t2 := Triple{A: spdzshare.New(f.FromInt64(2), f.Zero())}
	require.NoError(t, s.FillTriples([]Triple{t1, t2}))

	got1, err := s.NextTriple()
	require.NoError(t, err)
	require.True(t, got1.A.Value.Equal(f.FromInt64(1)))

	got2, err := s.NextTriple()
	require.NoError(t, err)
	require.True(t, got2.A.Value.Equal(f.FromInt64(2)))
}

func TestQueueSupplier_ExhaustionIsResourceError(t *testing.T) {
	s := NewQueueSupplier(1, 0, 0)
	require.NoError(t, s.FillTriples([]Triple{{}}))

	_, err := s.NextTriple()
	require.NoError(t, err)

	_, err = s.NextTriple()
	require.Error(t, err)
	require.True(t, ferrors.Is(err, ferrors.ResourceExhaustion))
}

func TestQueueSupplier_InputMasksPerInputter(t *testing.T) {
	f := field.Mersenne61
	s := NewQueueSupplier(0, 0, 0)
	require.NoError(t, s.FillInputMasks(0, []InputMask{{Inputter: 0, Clear: f.FromInt64(42)}}))
	require.NoError(t, s.FillInputMasks(1, []InputMask{{Inputter: 1, Clear: f.FromInt64(7)}}))

	m0, err := s.NextInputMask(0)
	require.NoError(t, err)
	require.True(t, m0.Clear.Equal(f.FromInt64(42)))

	m1, err := s.NextInputMask(1)
	require.NoError(t, err)
	require.True(t, m1.Clear.Equal(f.FromInt64(7)))
}

func TestOpenedValueStore_AppendSnapshotClear(t *testing.T) {
	f := field.Mersenne61
	store := NewOpenedValueStore()
	store.Append(Opening{Opened: f.FromInt64(1)})
	store.Append(Opening{Opened: f.FromInt64(2)})
	require.Equal(t, 2, store.Len())

	snap := store.Snapshot()
	require.Len(t, snap, 2)

	store.Clear()
	require.Equal(t, 0, store.Len())
}
