package transport

import (
	"net"
)

// Channel is one ordered byte-stream channel to the robot.
// Implemented by Conn and PushConn.
type Channel interface {
	// Send writes one buffer to the channel.
	Send(data []byte) error

	// Receive returns the next chunk of received bytes, blocking until
	// data is available. Partial reads are allowed; ordering is
	// preserved.
	Receive() ([]byte, error)

	// Close closes the channel and unblocks pending Receives.
	Close() error
}

// IdentifiedChannel is a channel with a stable identity for log
// correlation.
type IdentifiedChannel interface {
	Channel

	// ID returns the channel's unique identifier.
	ID() string

	// RemoteAddr returns the peer address, or nil if unknown.
	RemoteAddr() net.Addr
}

// Compile-time interface satisfaction checks.
var (
	_ IdentifiedChannel = (*Conn)(nil)
	_ IdentifiedChannel = (*PushConn)(nil)
)
