package builder

import "sync"

// contNode is the lazy continuation primitive: f's body does not exist
// until prior is Ready. At that point — during some future evaluator
// sweep, never during program construction — f runs exactly once,
// materialising whatever sub-scope it builds, and the continuation's own
// result is fulfilled once that sub-scope finishes.
type contNode[A, B any] struct {
	mu           sync.Mutex
	prior        *DRes[A]
	f            func(a A, seq *Sequential) *DRes[B]
	result       *DRes[B]
	materialised bool
	sub          *Sequential
	inner        *DRes[B]
}

func (c *contNode[A, B]) collect(out *[]Task) {
	c.mu.Lock()
	if !c.materialised {
		if !c.prior.Ready() {
			c.mu.Unlock()
			return
		}
		a := c.prior.Out()
		sub := NewSequential()
		c.sub = sub
		c.inner = c.f(a, sub)
		c.materialised = true
	}
	sub := c.sub
	c.mu.Unlock()
	start := len(*out)
	sub.collect(out)
	// Settle the continuation's result as soon as the task that finishes
	// the sub-scope is marked done, not only at the next done() poll.
	for i := start; i < len(*out); i++ {
		markDone := (*out)[i].MarkDone
		(*out)[i].MarkDone = func() {
			markDone()
			c.done()
		}
	}
}

func (c *contNode[A, B]) done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.materialised || !c.sub.done() {
		return false
	}
	if !c.result.Ready() {
		c.result.fulfil(c.inner.Out())
	}
	return true
}

// Then registers a continuation on a parent scope: once prior is Ready,
// f is invoked with its value and a fresh sequential sub-scope to build
// against, and the returned DRes resolves once that sub-scope's output
// does. Use it for the rare case where the computation's shape itself
// depends on a revealed value; straight-line composition over DRes
// arguments does not need it (spec.md §4.1/§4.2).
func Then[A, B any](s *Sequential, prior *DRes[A], f func(a A, seq *Sequential) *DRes[B]) *DRes[B] {
	cn := &contNode[A, B]{prior: prior, f: f, result: New[B]()}
	s.mu.Lock()
	s.children = append(s.children, cn)
	s.mu.Unlock()
	return cn.result
}
