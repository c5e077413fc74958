// Package evaluator drives a builder.Graph to completion in rounds: each
// sweep collects every task ready to run, flushes their outgoing bytes,
// blocks for the matching incoming bytes, and steps each task's protocol
// forward. See spec.md §4.3 "Round-based batched evaluator".
package evaluator

// Network is the transport contract the evaluator drives a session over:
// one blob per peer per sweep, addressed by round number so an
// implementation can demultiplex concurrent sessions or detect replays.
type Network interface {
	// NumParties returns the number of parties in the session, including
	// this one.
	NumParties() int
	// Me returns this party's own index.
	Me() int
	// Send delivers this sweep's full payload to peer `to`.
	Send(round int, to int, payload []byte) error
	// Recv blocks until this sweep's full payload has arrived from peer
	// `from`.
	Recv(round int, from int) ([]byte, error)
}
