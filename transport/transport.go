// Package transport defines the pluggable point-to-point channel that the
// session network (see package network) is built on top of. A Transport
// creates Sockets bound to a local address; a Socket exchanges Packets with
// a single remote address at a time, framed and timed out independently of
// whatever is carried inside the packet payload.
package transport

import (
	"fmt"
	"time"

	"go.dedis.ch/protobuf"
)

// Transport creates sockets bound to a local address.
type Transport interface {
	// CreateSocket binds a new socket to the given local address ("host:port",
	// or "host:0" to let the OS choose a port) and starts accepting incoming
	// packets in the background.
	CreateSocket(address string) (ClosableSocket, error)
}

// Socket exchanges Packets with remote addresses.
type Socket interface {
	// Send delivers pkt to dest, blocking for at most timeout (0 means no
	// deadline). Returns TimeoutError if the deadline is exceeded.
	Send(dest string, pkt Packet, timeout time.Duration) error
	// Recv blocks until a packet arrives or timeout elapses (0 means block
	// forever). Returns TimeoutError if the deadline is exceeded.
	Recv(timeout time.Duration) (Packet, error)
	// GetAddress returns the address this socket is bound to.
	GetAddress() string
	// GetIns returns every packet received so far, in arrival order.
	GetIns() []Packet
	// GetOuts returns every packet sent so far, in send order.
	GetOuts() []Packet
}

// ClosableSocket is a Socket that can be shut down.
type ClosableSocket interface {
	Socket
	Close() error
}

// Header carries routing metadata for a Packet, independent of its payload.
type Header struct {
	RelayedBy string
	Source    string
	Dest      string
}

// NewHeader builds a Header for a packet relayed by relay, originating at
// source and addressed to dest.
func NewHeader(relay, source, dest string) Header {
	return Header{RelayedBy: relay, Source: source, Dest: dest}
}

// Message is the payload a Packet carries: an application-defined Type tag
// plus opaque bytes (typically a go.dedis.ch/protobuf-encoded envelope).
type Message struct {
	Type    string
	Payload []byte
}

// Packet is the unit exchanged by a Socket.
type Packet struct {
	Header *Header
	Msg    *Message
}

// Copy returns a deep-enough copy of pkt safe to retain after Send/Recv
// returns (the payload slice is not mutated by either side, so it is shared,
// not copied).
func (p Packet) Copy() Packet {
	newHeader := *p.Header
	newMsg := *p.Msg
	return Packet{Header: &newHeader, Msg: &newMsg}
}

// Marshal encodes the packet using the reflection-based go.dedis.ch/protobuf
// codec, matching the wire format used for every other message type in this
// module (see package wire).
func (p Packet) Marshal() ([]byte, error) {
	return protobuf.Encode(&p)
}

// Unmarshal decodes bytes produced by Marshal into p.
func (p *Packet) Unmarshal(bs []byte) error {
	return protobuf.Decode(bs, p)
}

// TimeoutError is returned by Socket.Send/Recv when the given deadline is
// exceeded before the operation completes.
type TimeoutError time.Duration

func (e TimeoutError) Error() string {
	return fmt.Sprintf("transport: timed out after %s", time.Duration(e))
}
