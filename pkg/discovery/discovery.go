package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultDiscoveryPort is the UDP port robots broadcast announcements to.
const DefaultDiscoveryPort = 40926

// announcePrefix starts every announcement datagram; the robot's IP
// address follows it.
const announcePrefix = "robot ip "

// ErrBadAnnouncement is returned for datagrams that are not robot
// announcements.
var ErrBadAnnouncement = errors.New("bad announcement")

// Announcement is one received robot announcement.
type Announcement struct {
	// Address is the robot's announced IP address.
	Address string

	// Source is the sender of the datagram. Usually the same host as
	// Address, but the announced address is authoritative.
	Source net.Addr

	// ReceivedAt is when the datagram arrived.
	ReceivedAt time.Time
}

// ParseAnnouncement extracts the announced address from a datagram.
func ParseAnnouncement(data []byte) (string, error) {
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, announcePrefix) {
		return "", fmt.Errorf("%w: %q", ErrBadAnnouncement, text)
	}
	addr := strings.TrimSpace(strings.TrimPrefix(text, announcePrefix))
	if net.ParseIP(addr) == nil {
		return "", fmt.Errorf("%w: bad address %q", ErrBadAnnouncement, addr)
	}
	return addr, nil
}

// Listener receives robot announcements on the broadcast port.
type Listener struct {
	conn net.PacketConn
}

// Listen binds the announcement port. Port 0 selects the default.
func Listen(port int) (*Listener, error) {
	if port == 0 {
		port = DefaultDiscoveryPort
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("listen discovery port: %w", err)
	}
	return &Listener{conn: conn}, nil
}

// NewListenerFromConn wraps an already-bound packet connection. The
// listener takes ownership of it.
func NewListenerFromConn(conn net.PacketConn) *Listener {
	return &Listener{conn: conn}
}

// LocalAddr returns the bound address.
func (l *Listener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Close releases the port. Blocked finds unblock with an error.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// FindFirst blocks until any robot announces itself or ctx ends.
// Datagrams that are not announcements are skipped.
func (l *Listener) FindFirst(ctx context.Context) (Announcement, error) {
	l.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, 512)
	for {
		n, source, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return Announcement{}, ctx.Err()
			}
			return Announcement{}, fmt.Errorf("read announcement: %w", err)
		}

		addr, err := ParseAnnouncement(buf[:n])
		if err != nil {
			continue
		}
		return Announcement{
			Address:    addr,
			Source:     source,
			ReceivedAt: time.Now(),
		}, nil
	}
}

// FindAll collects announcements until ctx ends and returns one entry
// per distinct robot address, in order of first appearance. The
// context ending is the normal way to stop; FindAll only fails when
// the listener breaks.
func (l *Listener) FindAll(ctx context.Context) ([]Announcement, error) {
	l.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	var (
		found []Announcement
		seen  = make(map[string]bool)
	)
	buf := make([]byte, 512)
	for {
		n, source, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return found, nil
			}
			return found, fmt.Errorf("read announcement: %w", err)
		}

		addr, perr := ParseAnnouncement(buf[:n])
		if perr != nil || seen[addr] {
			continue
		}
		seen[addr] = true
		found = append(found, Announcement{
			Address:    addr,
			Source:     source,
			ReceivedAt: time.Now(),
		})
	}
}
