package builder

import (
	"testing"

	"fresco/protocol"

	"github.com/stretchr/testify/require"
)

// immediateProtocol finishes on its first Evaluate call with no network
// traffic, like a local computation (e.g. a known constant).
type immediateProtocol struct{ done bool }

func (p *immediateProtocol) NextRound() (protocol.RoundIO, error) {
	return protocol.RoundIO{}, nil
}

func (p *immediateProtocol) Evaluate(map[int][]byte) (protocol.Status, error) {
	p.done = true
	return protocol.Done, nil
}

func TestDRes_OutPanicsBeforeReady(t *testing.T) {
	d := New[int]()
	require.False(t, d.Ready())
	require.Panics(t, func() { d.Out() })
}

func TestDRes_Eager(t *testing.T) {
	d := Eager(42)
	require.True(t, d.Ready())
	require.Equal(t, 42, d.Out())
}

func TestSequential_ChildrenRunInOrder(t *testing.T) {
	s := NewSequential()
	p1 := &immediateProtocol{}
	p2 := &immediateProtocol{}
	Attach(s, nil, p1, func() int { return 1 })
	Attach(s, nil, p2, func() int { return 2 })

	var out []Task
	s.collect(&out)
	require.Len(t, out, 1, "second leaf must not be offered before the first finishes")
	out[0].MarkDone()

	out = nil
	s.collect(&out)
	require.Len(t, out, 1)
	require.False(t, p2.done)
}

func TestParallel_AllChildrenOfferedTogether(t *testing.T) {
	p := NewParallel()
	p1 := &immediateProtocol{}
	p2 := &immediateProtocol{}
	AttachPar(p, nil, p1, func() int { return 1 })
	AttachPar(p, nil, p2, func() int { return 2 })

	var out []Task
	p.collect(&out)
	require.Len(t, out, 2)
}

func TestAttach_SkipsUntilDependenciesReady(t *testing.T) {
	s := NewSequential()
	dep := New[int]()
	proto := &immediateProtocol{}
	r := Attach(s, []Ready{dep}, proto, func() int { return 7 })

	var out []Task
	s.collect(&out)
	require.Empty(t, out, "leaf must not be collected while its dependency is pending")

	dep.fulfil(1)
	out = nil
	s.collect(&out)
	require.Len(t, out, 1)
	out[0].MarkDone()
	require.Equal(t, 7, r.Out())
}

func TestThen_MaterialisesOnlyOncePriorIsReady(t *testing.T) {
	s := NewSequential()
	prior := New[int]()
	materialised := false

	result := Then(s, prior, func(a int, sub *Sequential) *DRes[int] {
		materialised = true
		proto := &immediateProtocol{}
		return Attach(sub, nil, proto, func() int { return a * 2 })
	})

	var out []Task
	s.collect(&out)
	require.False(t, materialised, "continuation body must not run before its predecessor is ready")
	require.Empty(t, out)

	prior.fulfil(21)
	out = nil
	s.collect(&out)
	require.True(t, materialised)
	require.Len(t, out, 1)
	out[0].MarkDone()
	require.True(t, result.Ready())
	require.Equal(t, 42, result.Out())
}

func TestBuild_DrivesProgramToCompletion(t *testing.T) {
	graph, out, err := Build(func(root *Sequential) *DRes[int] {
		proto := &immediateProtocol{}
		return Attach(root, nil, proto, func() int { return 99 })
	})

	require.NoError(t, err)
	require.False(t, graph.Done())
	tasks := graph.Collect()
	require.Len(t, tasks, 1)
	status, err := tasks[0].Proto.Evaluate(nil)
	require.NoError(t, err)
	require.Equal(t, protocol.Done, status)
	tasks[0].MarkDone()

	require.True(t, graph.Done())
	require.Equal(t, 99, out.Out())
}
