// Package network implements evaluator.Network over a pluggable
// transport.Transport (see socket_network.go, backed by transport/tcp by
// default). In-process test networks live in testing/networktest instead,
// since they need no real socket at all.
package network

import (
	"time"

	"fresco/evaluator"
)

// Config describes one party's view of a fixed set of peers.
type Config struct {
	Me    int
	N     int
	Addrs []string // Addrs[i] is party i's listen address, including Addrs[Me].

	// Timeout bounds how long Session.Recv waits for a given round/peer
	// before aborting the session, per spec.md §5's "a per-receive timeout
	// (configurable) turns a stalled peer into a session abort." Zero means
	// block forever — only appropriate for tests over a trusted in-process
	// loopback, never for a real deployment.
	Timeout time.Duration
}

var _ evaluator.Network = (*Session)(nil)
