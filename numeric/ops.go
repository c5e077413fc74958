package numeric

import (
	"fresco/builder"
	"fresco/field"
	"fresco/protocol"
	"fresco/resource"
	"fresco/spdznative"
	"fresco/spdzshare"
)

// Input runs inputter's secret into an authenticated share. secret is
// ignored by every party other than inputter. Consumes one input mask
// from the pool — callers on every party must invoke Input the same
// number of times, for the same inputter, in the same relative order,
// so every party's i-th call consumes the i-th mask from the same
// preprocessed batch.
func (b *Builder) Input(scope *builder.Sequential, inputter int, secret field.Element) (*builder.DRes[spdzshare.SInt], error) {
	mask, err := b.Pool.NextInputMask(inputter)
	if err != nil {
		return nil, err
	}
	proto := spdznative.NewInput(b.Me, b.N, inputter, b.Party, b.Field, mask, secret)
	return builder.Attach(scope, nil, proto, proto.Output), nil
}

// RandomElement hands out the next preprocessed random authenticated
// share. Free: no round.
func (b *Builder) RandomElement(scope *builder.Sequential) (*builder.DRes[spdzshare.SInt], error) {
	share, err := b.Pool.NextRandomShare()
	if err != nil {
		return nil, err
	}
	proto := spdznative.NewRandomElement(share)
	return builder.Attach(scope, nil, proto, proto.Output), nil
}

// RandomBit hands out the next preprocessed random authenticated bit
// share. Free: no round.
func (b *Builder) RandomBit(scope *builder.Sequential) (*builder.DRes[spdzshare.SInt], error) {
	share, err := b.Pool.NextBit()
	if err != nil {
		return nil, err
	}
	proto := spdznative.NewRandomElement(share)
	return builder.Attach(scope, nil, proto, proto.Output), nil
}

// Open reveals [x]'s clear value. The (share, opened) pair is recorded
// in Store for the next MAC-check; it is not itself authenticated by
// Open alone.
func (b *Builder) Open(scope *builder.Sequential, x *builder.DRes[spdzshare.SInt]) *builder.DRes[field.Element] {
	var proto *spdznative.Open
	dp := &deferred{build: func() protocol.NativeProtocol {
		proto = spdznative.NewOpen(b.Me, b.N, b.Field, x.Out())
		return proto
	}}
	return builder.Attach(scope, []builder.Ready{x}, dp, func() field.Element {
		out := proto.Output()
		b.Store.Append(resource.Opening{Share: x.Out(), Opened: out})
		return out
	})
}

// Mul returns [x]·[y] via a Beaver triple drawn from the pool. Consumes
// one triple; the two intermediate openings it reveals are recorded in
// Store for the next MAC-check.
func (b *Builder) Mul(scope *builder.Sequential, x, y *builder.DRes[spdzshare.SInt]) (*builder.DRes[spdzshare.SInt], error) {
	triple, err := b.Pool.NextTriple()
	if err != nil {
		return nil, err
	}
	var proto *spdznative.Multiply
	dp := &deferred{build: func() protocol.NativeProtocol {
		proto = spdznative.NewMultiply(b.Me, b.N, b.Party, b.Field, x.Out(), y.Out(), triple)
		return proto
	}}
	return builder.Attach(scope, []builder.Ready{x, y}, dp, func() spdzshare.SInt {
		for _, o := range proto.Openings() {
			b.Store.Append(o)
		}
		return proto.Output()
	}), nil
}

// Truncate returns [x]>>shift, discarding the low shift bits, via a
// truncation pair drawn from the pool for that shift amount. Consumes
// one pair; the intermediate opening it reveals is recorded in Store
// for the next MAC-check.
func (b *Builder) Truncate(scope *builder.Sequential, x *builder.DRes[spdzshare.SInt], shift uint) (*builder.DRes[spdzshare.SInt], error) {
	pair, err := b.Pool.NextTruncationPair(int(shift))
	if err != nil {
		return nil, err
	}
	var proto *spdznative.Truncate
	dp := &deferred{build: func() protocol.NativeProtocol {
		proto = spdznative.NewTruncate(b.Me, b.N, b.Party, b.Field, x.Out(), pair, shift)
		return proto
	}}
	return builder.Attach(scope, []builder.Ready{x}, dp, func() spdzshare.SInt {
		for _, o := range proto.Openings() {
			b.Store.Append(o)
		}
		return proto.Output()
	}), nil
}
