// Package spdzshare implements the SPDZ authenticated share: one party's
// pair (value share, MAC share) of a secret x and of α·x, linearly closed
// under addition, subtraction, and multiplication/addition by a public
// constant. See spec.md §3 "Authenticated share (SInt)".
package spdzshare

import "fresco/field"

// SInt is one party's share of an authenticated value: Value is this
// party's additive share of the secret x, Mac is this party's additive
// share of α·x. The MAC equation Σ_i Mac_i = α · Σ_i Value_i must hold
// across all honest parties' shares; spec.md §4.5 is the only place that
// equation is checked, never a single SInt in isolation.
type SInt struct {
	Value field.Element
	Mac   field.Element
}

// New builds an SInt directly from its two shares. Used by the offline
// dealer (package offline/dealer) and by tests once both halves are known.
func New(value, mac field.Element) SInt {
	return SInt{Value: value, Mac: mac}
}

// Add implements (x,m) + (y,n) = (x+y, m+n). Free: no round, purely local.
func (s SInt) Add(o SInt) SInt {
	return SInt{Value: s.Value.Add(o.Value), Mac: s.Mac.Add(o.Mac)}
}

// Sub implements (x,m) - (y,n) = (x-y, m-n). Free: no round, purely local.
func (s SInt) Sub(o SInt) SInt {
	return SInt{Value: s.Value.Sub(o.Value), Mac: s.Mac.Sub(o.Mac)}
}

// Neg implements -(x,m) = (-x,-m). Free: no round, purely local.
func (s SInt) Neg() SInt {
	return SInt{Value: s.Value.Neg(), Mac: s.Mac.Neg()}
}

// MulConst implements c·(x,m) = (cx, cm) for a public constant c. Free: no
// round, purely local on both the share and MAC.
func (s SInt) MulConst(c field.Element) SInt {
	return SInt{Value: s.Value.Mul(c), Mac: s.Mac.Mul(c)}
}

// Party carries the per-party context public-constant operations on an SInt
// need: which party this is (only party 0's value share is nudged by a
// public addend) and this party's share of the global MAC key α.
type Party struct {
	Index       int
	MacKeyShare field.Element
}

// AddConst implements (x,m) + c (public-add) = (x_i + c if i=0 else x_i,
// m_i + c·α_i). Free: no round, purely local.
func (p Party) AddConst(s SInt, c field.Element) SInt {
	v := s.Value
	if p.Index == 0 {
		v = v.Add(c)
	}
	return SInt{Value: v, Mac: s.Mac.Add(c.Mul(p.MacKeyShare))}
}

// Known returns the authenticated share of a public constant c: every
// party's MAC share is c·α_i, and only party 0 carries c in its value
// share. Equivalent to AddConst applied to the all-zero share.
func (p Party) Known(c field.Element, zero field.Element) SInt {
	return p.AddConst(SInt{Value: zero, Mac: zero}, c)
}
