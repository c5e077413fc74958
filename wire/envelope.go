// Package wire frames the bytes that cross a real socket: one Envelope per
// evaluator sweep, carrying the round number so a receiver can tell a
// delayed prior-round retransmit from the current round's batch, and the
// sender's index so a single listening socket can demultiplex several
// peers. Encoded with go.dedis.ch/protobuf the same reflection-based way
// the teacher's rbc and secretsharing packages encode their own messages —
// no codegen step, no generated stub.
package wire

import (
	"fmt"

	"go.dedis.ch/protobuf"
)

// Envelope is the one message type that ever crosses the wire.
type Envelope struct {
	Round   int32
	From    int32
	Payload []byte
}

// Encode serializes e.
func Encode(e Envelope) ([]byte, error) {
	bs, err := protobuf.Encode(&e)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding envelope: %w", err)
	}
	return bs, nil
}

// Decode deserializes bs into an Envelope.
func Decode(bs []byte) (Envelope, error) {
	var e Envelope
	if err := protobuf.Decode(bs, &e); err != nil {
		return Envelope{}, fmt.Errorf("wire: decoding envelope: %w", err)
	}
	return e, nil
}
