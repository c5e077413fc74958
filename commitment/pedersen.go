// Package commitment implements a Pedersen polynomial commitment: a
// dealer commits to a random polynomial's coefficients so that every
// recipient of a Shamir share can verify it against the broadcast
// commitment without learning the secret, without needing the dealer
// to be trusted for anything beyond availability. Adapted from the
// teacher's pedersencommitment package, generalized to commit directly
// to a secret scalar (its test already assumed this shape; the shipped
// source took a pre-built polynomial, which is folded in here).
package commitment

import (
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/share"
	"go.dedis.ch/kyber/v4/suites"
)

// PedPolyCommit builds a degree-(t-1) polynomial p with p(0) = secret, a
// masking polynomial phi of the same degree, and commits to both under
// two independent generators g0, g1. It returns the t public commitments
// v_j = g0^{p_j}·g1^{phi_j}, one per coefficient j, and each of the n
// parties' shares of p and phi.
func PedPolyCommit(secret kyber.Scalar, t, n int, g suites.Suite, g0, g1 kyber.Point) (v []kyber.Point, s, r []*share.PriShare, err error) {
	if t < 1 || t > n {
		return nil, nil, nil, fmt.Errorf("commitment: invalid threshold %d for %d parties", t, n)
	}
	p := share.NewPriPoly(g, t, secret, g.RandomStream())
	phi := share.NewPriPoly(g, t, nil, g.RandomStream())

	pCommit := p.Commit(g0)
	phiCommit := phi.Commit(g1)
	commit, err := pCommit.Add(phiCommit)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("commitment: combining commitments: %w", err)
	}
	_, v = commit.Info()

	return v, p.Shares(n), phi.Shares(n), nil
}

// PedPolyVerify checks that recipient idx's shares si of p and ri of phi
// are consistent with the public commitments v, without revealing the
// secret.
func PedPolyVerify(v []kyber.Point, idx int64, si, ri *share.PriShare, g kyber.Group, g0, g1 kyber.Point) bool {
	xi := g.Scalar().SetInt64(1 + idx)
	acc := g.Point().Null()
	for j := len(v) - 1; j >= 0; j-- {
		acc.Mul(xi, acc)
		acc.Add(acc, v[j])
	}

	lhs := g.Point().Add(g.Point().Mul(si.V, g0), g.Point().Mul(ri.V, g1))
	return acc.Equal(lhs)
}
