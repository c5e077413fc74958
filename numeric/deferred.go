package numeric

import "fresco/protocol"

// deferred wraps a native protocol whose construction itself needs to
// read a DRes's value (e.g. Multiply needs the actual shares, not just
// their handles). build runs exactly once, the first time NextRound is
// called — which the builder package only does once every dependency
// leafNode was attached with is Ready, so reading a DRes's Out() inside
// build is always safe.
type deferred struct {
	build func() protocol.NativeProtocol
	inner protocol.NativeProtocol
}

func (d *deferred) NextRound() (protocol.RoundIO, error) {
	if d.inner == nil {
		d.inner = d.build()
	}
	return d.inner.NextRound()
}

func (d *deferred) Evaluate(received map[int][]byte) (protocol.Status, error) {
	return d.inner.Evaluate(received)
}
