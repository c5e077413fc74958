// Package numeric is the builder-facing surface programs are actually
// written against: Known/Input/Add/Sub/Mul/Open/Truncate/RandomElement,
// each returning a deferred result attached to a sequential or parallel
// scope from package builder. See spec.md §4.1 and §12's supplemented
// Truncate operation.
package numeric

import (
	"fresco/builder"
	"fresco/field"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdzshare"
)

// Builder is this party's numeric operation surface: it knows which
// party it is, the field every share lives in, where to draw correlated
// randomness from, and where to buffer opened values until the next
// MAC-check.
type Builder struct {
	Me, N int
	Party spdzshare.Party
	Field field.Field
	Pool  resource.Supplier
	Store *resource.OpenedValueStore
}

// freeOp is a zero-round local computation: it finishes the first sweep
// it's offered, with no network traffic, computing its output from
// already-ready dependencies.
type freeOp struct {
	compute func() spdzshare.SInt
	out     spdzshare.SInt
}

func (o *freeOp) NextRound() (protocol.RoundIO, error) { return protocol.RoundIO{}, nil }

func (o *freeOp) Evaluate(map[int][]byte) (protocol.Status, error) {
	o.out = o.compute()
	return protocol.Done, nil
}

func attachFree(scope *builder.Sequential, deps []builder.Ready, compute func() spdzshare.SInt) *builder.DRes[spdzshare.SInt] {
	op := &freeOp{compute: compute}
	return builder.Attach(scope, deps, op, func() spdzshare.SInt { return op.out })
}

// Known lifts a public constant into an authenticated share. Free: no
// round, available immediately.
func (b *Builder) Known(scope *builder.Sequential, c field.Element) *builder.DRes[spdzshare.SInt] {
	return attachFree(scope, nil, func() spdzshare.SInt { return b.Party.Known(c, b.Field.Zero()) })
}

// Add returns [x]+[y]. Free: no round.
func (b *Builder) Add(scope *builder.Sequential, x, y *builder.DRes[spdzshare.SInt]) *builder.DRes[spdzshare.SInt] {
	return attachFree(scope, []builder.Ready{x, y}, func() spdzshare.SInt { return x.Out().Add(y.Out()) })
}

// Sub returns [x]-[y]. Free: no round.
func (b *Builder) Sub(scope *builder.Sequential, x, y *builder.DRes[spdzshare.SInt]) *builder.DRes[spdzshare.SInt] {
	return attachFree(scope, []builder.Ready{x, y}, func() spdzshare.SInt { return x.Out().Sub(y.Out()) })
}

// Neg returns -[x]. Free: no round.
func (b *Builder) Neg(scope *builder.Sequential, x *builder.DRes[spdzshare.SInt]) *builder.DRes[spdzshare.SInt] {
	return attachFree(scope, []builder.Ready{x}, func() spdzshare.SInt { return x.Out().Neg() })
}

// MulConst returns c·[x] for a public constant c. Free: no round.
func (b *Builder) MulConst(scope *builder.Sequential, x *builder.DRes[spdzshare.SInt], c field.Element) *builder.DRes[spdzshare.SInt] {
	return attachFree(scope, []builder.Ready{x}, func() spdzshare.SInt { return x.Out().MulConst(c) })
}

// AddConst returns [x]+c for a public constant c. Free: no round.
func (b *Builder) AddConst(scope *builder.Sequential, x *builder.DRes[spdzshare.SInt], c field.Element) *builder.DRes[spdzshare.SInt] {
	return attachFree(scope, []builder.Ready{x}, func() spdzshare.SInt { return b.Party.AddConst(x.Out(), c) })
}
