package builder

import (
	"sync"

	"fresco/protocol"
)

// Sequential is a scope whose children are driven one at a time: the
// next child is not even offered to the evaluator until the current one
// has finished. Nesting a Sequential inside any scope groups its
// children under that ordering without affecting siblings outside it.
type Sequential struct {
	mu       sync.Mutex
	children []node
	idx      int
}

// NewSequential returns an empty sequential scope.
func NewSequential() *Sequential {
	return &Sequential{}
}

func (s *Sequential) collect(out *[]Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.idx < len(s.children) {
		child := s.children[s.idx]
		if !child.done() {
			child.collect(out)
			return
		}
		s.idx++
	}
}

func (s *Sequential) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.idx < len(s.children) && s.children[s.idx].done() {
		s.idx++
	}
	return s.idx >= len(s.children)
}

// Attach registers a native protocol as the scope's next child, gated on
// deps all being Ready, and returns its deferred result. extract reads
// the protocol's typed output once it reports Done.
func Attach[T any](s *Sequential, deps []Ready, p protocol.NativeProtocol, extract func() T) *DRes[T] {
	d := New[T]()
	ln := &leafNode{deps: deps, proto: p, onDone: func() { d.fulfil(extract()) }}
	s.mu.Lock()
	s.children = append(s.children, ln)
	s.mu.Unlock()
	return d
}

// Seq builds a nested sequential sub-scope eagerly (f runs immediately,
// attaching its own children), and appends it as this scope's next
// child. Use it to group a batch of operations that must run to
// completion before whatever follows in the parent scope is offered to
// the evaluator.
func (s *Sequential) Seq(f func(*Sequential)) *Sequential {
	sub := NewSequential()
	f(sub)
	s.mu.Lock()
	s.children = append(s.children, sub)
	s.mu.Unlock()
	return sub
}

// Par builds a nested parallel sub-scope eagerly and appends it as this
// scope's next child.
func (s *Sequential) Par(f func(*Parallel)) *Parallel {
	sub := NewParallel()
	f(sub)
	s.mu.Lock()
	s.children = append(s.children, sub)
	s.mu.Unlock()
	return sub
}

// Root exposes the scope's node machinery to the evaluator.
func (s *Sequential) Root() (collect func(*[]Task), done func() bool) {
	return s.collect, s.done
}

// Parallel is a scope whose children are all offered to the evaluator
// every sweep, regardless of each other's progress; it finishes once
// every child has.
type Parallel struct {
	mu       sync.Mutex
	children []node
}

// NewParallel returns an empty parallel scope.
func NewParallel() *Parallel {
	return &Parallel{}
}

func (p *Parallel) collect(out *[]Task) {
	p.mu.Lock()
	children := make([]node, len(p.children))
	copy(children, p.children)
	p.mu.Unlock()
	for _, c := range children {
		if !c.done() {
			c.collect(out)
		}
	}
}

func (p *Parallel) done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.children {
		if !c.done() {
			return false
		}
	}
	return true
}

// AttachPar registers a native protocol as one of this scope's children.
func AttachPar[T any](p *Parallel, deps []Ready, proto protocol.NativeProtocol, extract func() T) *DRes[T] {
	d := New[T]()
	ln := &leafNode{deps: deps, proto: proto, onDone: func() { d.fulfil(extract()) }}
	p.mu.Lock()
	p.children = append(p.children, ln)
	p.mu.Unlock()
	return d
}

// Seq appends a nested sequential sub-scope as one of this scope's
// children.
func (p *Parallel) Seq(f func(*Sequential)) *Sequential {
	sub := NewSequential()
	f(sub)
	p.mu.Lock()
	p.children = append(p.children, sub)
	p.mu.Unlock()
	return sub
}

// Par appends a nested parallel sub-scope as one of this scope's
// children.
func (p *Parallel) Par(f func(*Parallel)) *Parallel {
	sub := NewParallel()
	f(sub)
	p.mu.Lock()
	p.children = append(p.children, sub)
	p.mu.Unlock()
	return sub
}
