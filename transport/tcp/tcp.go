package tcp

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"fresco/transport"

	"github.com/rs/zerolog/log"
)

const bufSize = 65000

// NewTCP returns a transport.Transport backed by length-prefixed TCP
// connections, one per destination address, kept open and reused across
// sends.
func NewTCP() transport.Transport {
	return &TCP{}
}

type TCP struct{}

func (t *TCP) CreateSocket(address string) (transport.ClosableSocket, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", address, err)
	}

	socket := &Socket{
		listener: ln,
		myAddr:   ln.Addr().String(),
		conns:    make(map[string]net.Conn),
		incoming: make(chan transport.Packet, 1000),
		closing:  make(chan struct{}),
	}

	go socket.acceptLoop()

	return socket, nil
}

// Socket is a transport.ClosableSocket over TCP. Every packet is framed with
// a 4-byte big-endian length prefix so a single net.Conn.Read cannot split
// or merge packets.
type Socket struct {
	listener net.Listener
	myAddr   string
	conns    map[string]net.Conn
	mutex    sync.Mutex
	incoming chan transport.Packet
	closing  chan struct{}
	closed   bool

	insMu, outsMu sync.Mutex
	ins, outs     []transport.Packet
}

func (s *Socket) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return
			default:
				continue
			}
		}

		go s.handleConnection(conn)
	}
}

func (s *Socket) handleConnection(conn net.Conn) {
	defer conn.Close()

	lenBuf := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			if err != io.EOF {
				log.Debug().Msgf("%v", err)
			}
			return
		}

		n := binary.BigEndian.Uint32(lenBuf)
		if n > bufSize {
			log.Error().Msgf("dropping oversized packet of %d bytes", n)
			return
		}

		buf := make([]byte, n)
		if _, err := io.ReadFull(conn, buf); err != nil {
			log.Debug().Msgf("%v", err)
			return
		}

		var pkt transport.Packet
		if err := pkt.Unmarshal(buf); err != nil {
			log.Info().Msgf("error unmarshaling pkt: %v", err)
			continue
		}

		s.insMu.Lock()
		s.ins = append(s.ins, pkt)
		s.insMu.Unlock()

		select {
		case s.incoming <- pkt:
		default:
			log.Info().Msg("drop packet because incoming buffer is full")
		}
	}
}

func (s *Socket) Send(dest string, pkt transport.Packet, timeout time.Duration) error {
	s.mutex.Lock()
	conn, exists := s.conns[dest]
	s.mutex.Unlock()

	if !exists {
		var err error
		conn, err = net.DialTimeout("tcp", dest, timeout)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return transport.TimeoutError(timeout)
			}
			return err
		}

		s.mutex.Lock()
		s.conns[dest] = conn
		s.mutex.Unlock()
	}

	if timeout != 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			log.Error().Msgf("failed to set write deadline")
			return err
		}
	}

	bs, err := pkt.Marshal()
	if err != nil {
		log.Error().Msgf("failed to marshal packet")
		return err
	}
	if len(bs) > bufSize {
		return fmt.Errorf("tcp: packet of %d bytes exceeds max size %d", len(bs), bufSize)
	}

	framed := make([]byte, 4+len(bs))
	binary.BigEndian.PutUint32(framed, uint32(len(bs)))
	copy(framed[4:], bs)

	if _, err := conn.Write(framed); err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return transport.TimeoutError(timeout)
		}
		return err
	}

	s.outsMu.Lock()
	s.outs = append(s.outs, pkt)
	s.outsMu.Unlock()

	return nil
}

func (s *Socket) Recv(timeout time.Duration) (transport.Packet, error) {
	if timeout == 0 {
		pkt := <-s.incoming
		return pkt, nil
	}

	select {
	case pkt := <-s.incoming:
		return pkt, nil
	case <-time.After(timeout):
		return transport.Packet{}, transport.TimeoutError(timeout)
	}
}

func (s *Socket) GetAddress() string {
	return s.myAddr
}

func (s *Socket) Close() error {
	if s.closed {
		return fmt.Errorf("already closed")
	}
	s.closed = true
	close(s.closing)
	s.listener.Close()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
	return nil
}

func (s *Socket) GetIns() []transport.Packet {
	s.insMu.Lock()
	defer s.insMu.Unlock()
	out := make([]transport.Packet, len(s.ins))
	copy(out, s.ins)
	return out
}

func (s *Socket) GetOuts() []transport.Packet {
	s.outsMu.Lock()
	defer s.outsMu.Unlock()
	out := make([]transport.Packet, len(s.outs))
	copy(out, s.outs)
	return out
}
