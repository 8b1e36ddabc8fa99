// Package testconn provides an in-memory scripted channel standing in
// for the robot in tests. It implements transport.Channel: tests queue
// the frames the fake robot will deliver, inject unsolicited pushes,
// and inspect everything the code under test sent.
package testconn

import (
	"sync"

	"github.com/robolink-protocol/robolink-go/pkg/transport"
)

// Channel is a scripted in-memory transport.Channel.
type Channel struct {
	mu      sync.Mutex
	sent    [][]byte
	replies [][]byte
	sendErr error
	onSend  func(data []byte)

	incoming  chan []byte
	closeOnce sync.Once
	closeCh   chan struct{}
}

// New creates an open scripted channel.
func New() *Channel {
	return &Channel{
		incoming: make(chan []byte, 64),
		closeCh:  make(chan struct{}),
	}
}

// Script queues one reply to deliver after each subsequent Send, in
// order. Replies beyond the number of Sends stay queued.
func (c *Channel) Script(replies ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range replies {
		c.replies = append(c.replies, []byte(r))
	}
}

// Push injects bytes for Receive without requiring a Send - the shape
// of an unsolicited push frame.
func (c *Channel) Push(data string) {
	c.incoming <- []byte(data)
}

// FailSends makes every subsequent Send return err.
func (c *Channel) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// OnSend registers a hook invoked (outside the lock) for every
// successful Send. Used to coordinate test timing.
func (c *Channel) OnSend(fn func(data []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSend = fn
}

// Sent returns a copy of everything sent so far, as strings.
func (c *Channel) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	for i, b := range c.sent {
		out[i] = string(b)
	}
	return out
}

// Send records the payload and releases the next scripted reply.
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	if c.sendErr != nil {
		err := c.sendErr
		c.mu.Unlock()
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.sent = append(c.sent, buf)

	var reply []byte
	if len(c.replies) > 0 {
		reply = c.replies[0]
		c.replies = c.replies[1:]
	}
	hook := c.onSend
	c.mu.Unlock()

	if reply != nil {
		c.incoming <- reply
	}
	if hook != nil {
		hook(data)
	}
	return nil
}

// Receive blocks for the next queued chunk.
func (c *Channel) Receive() ([]byte, error) {
	select {
	case data := <-c.incoming:
		return data, nil
	case <-c.closeCh:
		return nil, transport.ErrConnectionLost
	}
}

// Close closes the channel; pending Receives unblock with
// ErrConnectionLost. Safe to call multiple times.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
	})
	return nil
}

// Compile-time interface satisfaction check.
var _ transport.Channel = (*Channel)(nil)
