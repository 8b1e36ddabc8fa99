package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Well-known RoboLink ports.
const (
	// DefaultCommandPort is the TCP command/response port.
	DefaultCommandPort = 40923

	// DefaultPushPort is the UDP push-notification port.
	DefaultPushPort = 40924

	// DefaultVideoPort is the TCP video stream port.
	DefaultVideoPort = 40921

	// DefaultAudioPort is the TCP audio stream port.
	DefaultAudioPort = 40922
)

// DefaultConnectTimeout bounds channel establishment. It does not apply
// to reads or writes on an established channel.
const DefaultConnectTimeout = 10 * time.Second

// receiveBufSize is the read chunk size for stream channels.
const receiveBufSize = 4096

// Transport errors.
var (
	// ErrConnectionLost indicates channel I/O failure or closure. It is
	// fatal to all pending and future operations on that channel.
	ErrConnectionLost = errors.New("connection lost")

	// ErrReceiveOnly indicates a send on a receive-only channel.
	ErrReceiveOnly = errors.New("channel is receive-only")
)

// Conn is a stream channel (TCP) to the robot.
type Conn struct {
	id   string
	conn net.Conn

	readMu  sync.Mutex
	writeMu sync.Mutex

	closeOnce sync.Once
	closeCh   chan struct{}
}

// Dial establishes a TCP channel to the given address, e.g.
// "192.168.2.1:40923". The context bounds establishment only; if it
// carries no deadline, DefaultConnectTimeout applies.
func Dial(ctx context.Context, address string) (*Conn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return NewConn(conn), nil
}

// NewConn wraps an established network connection as a channel.
// Useful for tests with in-memory pipes.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		id:      uuid.NewString(),
		conn:    conn,
		closeCh: make(chan struct{}),
	}
}

// ID returns the channel's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send writes one buffer to the channel.
func (c *Conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.closeCh:
		return ErrConnectionLost
	default:
	}

	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}

// Receive returns the next chunk of received bytes.
func (c *Conn) Receive() ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	buf := make([]byte, receiveBufSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		select {
		case <-c.closeCh:
			return nil, ErrConnectionLost
		default:
		}
		return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return buf[:n], nil
}

// Close closes the channel. Safe to call multiple times; pending
// Receives unblock with ErrConnectionLost.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}
