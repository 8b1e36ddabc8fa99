package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
)

// maxDatagramSize is the receive buffer for push datagrams. Push frames
// are short token lines; this leaves generous headroom.
const maxDatagramSize = 2048

// PushConn is the receive-only UDP channel the robot sends unsolicited
// push frames on. Each Receive returns exactly one datagram, which the
// robot guarantees holds whole frames.
type PushConn struct {
	id   string
	conn *net.UDPConn

	closeOnce sync.Once
	closeCh   chan struct{}
}

// ListenPush opens the local UDP push port. Port 0 is replaced by
// DefaultPushPort.
func ListenPush(port int) (*PushConn, error) {
	if port == 0 {
		port = DefaultPushPort
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("listen push port %d: %w", port, err)
	}
	return &PushConn{
		id:      uuid.NewString(),
		conn:    conn,
		closeCh: make(chan struct{}),
	}, nil
}

// ID returns the channel's unique identifier.
func (p *PushConn) ID() string {
	return p.id
}

// RemoteAddr returns nil; push datagrams arrive from the robot without
// a connected peer.
func (p *PushConn) RemoteAddr() net.Addr {
	return nil
}

// Send always fails; the push channel is one-way.
func (p *PushConn) Send([]byte) error {
	return ErrReceiveOnly
}

// Receive returns the next push datagram.
func (p *PushConn) Receive() ([]byte, error) {
	buf := make([]byte, maxDatagramSize)
	n, _, err := p.conn.ReadFromUDP(buf)
	if err != nil {
		select {
		case <-p.closeCh:
			return nil, ErrConnectionLost
		default:
		}
		return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return buf[:n], nil
}

// Close closes the channel. Safe to call multiple times; a pending
// Receive unblocks with ErrConnectionLost.
func (p *PushConn) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closeCh)
		err = p.conn.Close()
	})
	return err
}
