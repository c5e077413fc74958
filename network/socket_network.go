package network

import (
	"fmt"
	"time"

	"fresco/ferrors"
	"fresco/transport"
	"fresco/transport/tcp"
	"fresco/wire"

	"github.com/rs/zerolog"
)

// Session is an evaluator.Network for one party, built on transport.Transport
// (backed by transport/tcp): every wire.Envelope is wrapped in a
// transport.Packet whose payload is the envelope's own encoding, so the
// underlying transport never needs to know about rounds or senders.
type Session struct {
	cfg    Config
	log    zerolog.Logger
	socket transport.ClosableSocket
	inbox  map[int]chan wire.Envelope
	closed chan struct{}
}

const sendTimeout = 5 * time.Second

// dispatchPoll bounds each blocking transport-level receive so dispatchLoop
// periodically checks whether the session has been closed, instead of
// blocking on the socket forever.
const dispatchPoll = 2 * time.Second

// NewSession creates a socket bound to cfg.Addrs[cfg.Me] via t and starts
// dispatching inbound envelopes by sender.
func NewSession(cfg Config, log zerolog.Logger, t transport.Transport) (*Session, error) {
	socket, err := t.CreateSocket(cfg.Addrs[cfg.Me])
	if err != nil {
		return nil, fmt.Errorf("network: creating socket on %s: %w", cfg.Addrs[cfg.Me], err)
	}
	s := &Session{
		cfg:    cfg,
		log:    log,
		socket: socket,
		inbox:  make(map[int]chan wire.Envelope),
		closed: make(chan struct{}),
	}
	for i := 0; i < cfg.N; i++ {
		s.inbox[i] = make(chan wire.Envelope, 64)
	}
	go s.dispatchLoop()
	return s, nil
}

// NewTCPSession is NewSession with transport/tcp as the default backend, the
// pairing spec.md §6's "reliable, in-order, authenticated channel" and
// SPEC_FULL.md §11.3 both call for.
func NewTCPSession(cfg Config, log zerolog.Logger) (*Session, error) {
	return NewSession(cfg, log, tcp.NewTCP())
}

func (s *Session) NumParties() int { return s.cfg.N }
func (s *Session) Me() int         { return s.cfg.Me }

// Close shuts down the underlying socket.
func (s *Session) Close() error {
	close(s.closed)
	return s.socket.Close()
}

func (s *Session) dispatchLoop() {
	for {
		pkt, err := s.socket.Recv(dispatchPoll)
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
			}
			if _, ok := err.(transport.TimeoutError); ok {
				continue
			}
			s.log.Warn().Err(err).Msg("network: receive failed")
			continue
		}
		if pkt.Msg == nil {
			continue
		}
		env, err := wire.Decode(pkt.Msg.Payload)
		if err != nil {
			s.log.Warn().Err(err).Msg("network: decoding envelope")
			continue
		}
		box, ok := s.inbox[int(env.From)]
		if !ok {
			continue
		}
		box <- env
	}
}

// Send blocks until the envelope for this round has been written to the
// peer's socket (TCP backpressure, not peer acknowledgement).
func (s *Session) Send(round, to int, payload []byte) error {
	env := wire.Envelope{Round: int32(round), From: int32(s.cfg.Me), Payload: payload}
	bs, err := wire.Encode(env)
	if err != nil {
		return ferrors.WithPeer(ferrors.Transport, round, to, err)
	}
	header := transport.NewHeader(s.cfg.Addrs[s.cfg.Me], s.cfg.Addrs[s.cfg.Me], s.cfg.Addrs[to])
	pkt := transport.Packet{Header: &header, Msg: &transport.Message{Type: "envelope", Payload: bs}}
	if err := s.socket.Send(s.cfg.Addrs[to], pkt, sendTimeout); err != nil {
		return ferrors.WithPeer(ferrors.Transport, round, to, fmt.Errorf("network: sending to peer %d: %w", to, err))
	}
	return nil
}

// Recv blocks until an envelope tagged with round has arrived from peer
// from, discarding any envelope it finds queued for an earlier round
// (spec.md's synchronous, fail-stop model never revisits a past round).
// If cfg.Timeout is non-zero, an unresponsive peer aborts the session with
// a ferrors.Transport error instead of blocking forever, per spec.md §5.
func (s *Session) Recv(round, from int) ([]byte, error) {
	box := s.inbox[from]
	var deadline <-chan time.Time
	if s.cfg.Timeout > 0 {
		timer := time.NewTimer(s.cfg.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	for {
		select {
		case env, ok := <-box:
			if !ok {
				return nil, ferrors.WithPeer(ferrors.Transport, round, from, fmt.Errorf("network: connection to peer %d closed", from))
			}
			if int(env.Round) < round {
				continue
			}
			if int(env.Round) > round {
				return nil, ferrors.WithPeer(ferrors.Programmer, round, from,
					fmt.Errorf("network: peer %d is ahead (got round %d, wanted %d)", from, env.Round, round))
			}
			return env.Payload, nil
		case <-deadline:
			return nil, ferrors.WithPeer(ferrors.Transport, round, from,
				fmt.Errorf("network: receive from peer %d timed out after %s", from, s.cfg.Timeout))
		}
	}
}
