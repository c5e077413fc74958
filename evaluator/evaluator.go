package evaluator

import (
	"errors"
	"fmt"

	"fresco/builder"
	"fresco/ferrors"
	"fresco/protocol"
)

// bound records where one task's slice lives inside a peer's concatenated
// sweep payload, so the evaluator can split a received blob back into
// the pieces each task expects.
type bound struct {
	taskIdx int
	peer    int
	size    int
}

// Evaluate runs program to completion over net: it repeatedly collects
// every task the graph can currently offer, exchanges one batched
// message per peer for the round, and steps every collected task's
// protocol, until the graph reports done. It returns the program's
// output, or the first error encountered.
func Evaluate[T any](net Network, program builder.Program[T]) (T, error) {
	var zero T
	graph, out, err := builder.Build(program)
	if err != nil {
		if se, ok := ferrors.AsSessionError(err); ok {
			return zero, se
		}
		return zero, ferrors.New(ferrors.ResourceExhaustion, -1, fmt.Errorf("constructing program: %w", err))
	}

	for round := 0; !graph.Done(); round++ {
		tasks := graph.Collect()
		if len(tasks) == 0 {
			return zero, ferrors.New(ferrors.Programmer, round,
				errors.New("evaluator: no progress: every remaining task is blocked on an unfulfilled dependency"))
		}

		ios := make([]protocol.RoundIO, len(tasks))
		for i, t := range tasks {
			io, err := t.Proto.NextRound()
			if err != nil {
				return zero, ferrors.New(ferrors.Arithmetic, round, fmt.Errorf("computing round contract: %w", err))
			}
			ios[i] = io
		}

		outBlobs := make(map[int][]byte)
		recvSizes := make(map[int]int)
		var bounds []bound
		for i, io := range ios {
			for peer, payload := range io.Send {
				if peer == net.Me() {
					continue
				}
				outBlobs[peer] = append(outBlobs[peer], payload...)
			}
			for peer, size := range io.RecvSize {
				if peer == net.Me() {
					continue
				}
				recvSizes[peer] += size
				bounds = append(bounds, bound{taskIdx: i, peer: peer, size: size})
			}
		}

		for peer, blob := range outBlobs {
			if err := net.Send(round, peer, blob); err != nil {
				return zero, ferrors.WithPeer(ferrors.Transport, round, peer, err)
			}
		}

		received := make(map[int][]byte, len(recvSizes))
		for peer, expected := range recvSizes {
			blob, err := net.Recv(round, peer)
			if err != nil {
				return zero, ferrors.WithPeer(ferrors.Transport, round, peer, err)
			}
			if len(blob) != expected {
				return zero, ferrors.WithPeer(ferrors.Malicious, round, peer,
					fmt.Errorf("expected %d bytes this round, got %d", expected, len(blob)))
			}
			received[peer] = blob
		}

		perTask := make([]map[int][]byte, len(tasks))
		for i := range perTask {
			perTask[i] = make(map[int][]byte)
		}
		offsets := make(map[int]int, len(received))
		for _, b := range bounds {
			off := offsets[b.peer]
			perTask[b.taskIdx][b.peer] = received[b.peer][off : off+b.size]
			offsets[b.peer] = off + b.size
		}

		for i, t := range tasks {
			status, err := t.Proto.Evaluate(perTask[i])
			if err != nil {
				if _, ok := ferrors.AsSessionError(err); ok {
					return zero, err
				}
				return zero, ferrors.New(ferrors.Malicious, round, fmt.Errorf("native protocol aborted: %w", err))
			}
			if status == protocol.Done {
				t.MarkDone()
			}
		}
	}

	return out.Out(), nil
}
