package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/transport"
	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// Dispatcher errors.
var (
	// ErrCanceled indicates a command whose context was canceled before
	// it reached the wire. Cancellation after send is never honored.
	ErrCanceled = errors.New("command canceled before send")

	// ErrDispatcherClosed indicates a Submit on a closed dispatcher.
	ErrDispatcherClosed = errors.New("dispatcher is closed")
)

// Dispatcher owns the command channel. It is the only goroutine that
// ever writes to or reads from it, so the channel itself needs no
// locking.
type Dispatcher struct {
	channel transport.Channel
	scanner *wire.FrameScanner

	logger    log.Logger
	sessionID string

	mu       sync.Mutex
	queue    []*Pending
	closed   bool
	closeErr error

	signal   chan struct{}
	closeCh  chan struct{}
	loopDone chan struct{}
}

// New creates a dispatcher on the given command channel and starts its
// dispatch loop. The dispatcher assumes exclusive use of the channel
// and closes it when the dispatcher is closed.
func New(channel transport.Channel) *Dispatcher {
	d := &Dispatcher{
		channel:  channel,
		scanner:  wire.NewFrameScanner(channel),
		logger:   log.NoopLogger{},
		signal:   make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go d.loop()
	return d
}

// SetLogger configures protocol logging. Pass nil to disable.
// Call before submitting commands.
func (d *Dispatcher) SetLogger(logger log.Logger, sessionID string) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	d.logger = logger
	d.sessionID = sessionID
}

// Submit enqueues a command and returns its Pending result.
// Non-blocking: the command is sent by the dispatch loop in submission
// order. ctx is the command's cancellation token - it is honored only
// until the command reaches the wire.
func (d *Dispatcher) Submit(ctx context.Context, cmd wire.Command) (*Pending, error) {
	p := newPending(ctx, cmd)

	d.mu.Lock()
	if d.closed {
		err := d.closeErr
		d.mu.Unlock()
		return nil, err
	}
	d.queue = append(d.queue, p)
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
	return p, nil
}

// Do submits a command and waits for its result.
func (d *Dispatcher) Do(ctx context.Context, cmd wire.Command) (wire.ResponseFrame, error) {
	p, err := d.Submit(ctx, cmd)
	if err != nil {
		return wire.ResponseFrame{}, err
	}
	return p.Await(ctx)
}

// Close shuts the dispatcher down: the underlying channel is closed,
// the in-flight command (if any) and every queued command resolve with
// ErrConnectionLost, and subsequent Submits fail. Blocks until the
// dispatch loop has terminated. Safe to call multiple times.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.closeErr = ErrDispatcherClosed
		close(d.closeCh)
	}
	d.mu.Unlock()

	// Unblocks the loop if it is waiting on channel I/O.
	err := d.channel.Close()
	<-d.loopDone
	return err
}

// loop is the single dispatch worker. One pending request at a time:
// write the command, consume exactly one frame as its response, resolve,
// move on.
func (d *Dispatcher) loop() {
	defer close(d.loopDone)

	for {
		p := d.next()
		if p == nil {
			d.drain(ErrDispatcherClosed)
			return
		}

		// A token canceled before dequeue resolves without sending;
		// the queue keeps moving.
		if err := p.ctx.Err(); err != nil {
			p.resolve(wire.ResponseFrame{}, fmt.Errorf("%w: %v", ErrCanceled, err))
			continue
		}

		data, err := p.cmd.Encode()
		if err != nil {
			p.resolve(wire.ResponseFrame{}, err)
			continue
		}

		start := time.Now()
		if err := d.channel.Send(data); err != nil {
			err = connectionLost(err)
			p.resolve(wire.ResponseFrame{}, err)
			d.drain(err)
			return
		}

		// The next frame on this channel is unconditionally this
		// command's response. From here on cancellation has no effect.
		frame, err := d.scanner.Next()
		if err != nil {
			err = connectionLost(err)
			p.resolve(wire.ResponseFrame{}, err)
			d.drain(err)
			return
		}

		roundTrip := time.Since(start)
		d.logger.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: d.sessionID,
			Direction: log.DirectionOut,
			Channel:   log.ChannelCommand,
			Category:  log.CategoryCommand,
			Command: &log.CommandEvent{
				Command:   p.cmd.String(),
				Response:  frame.String(),
				RoundTrip: &roundTrip,
			},
		})

		p.resolve(frame, nil)
	}
}

// next blocks until a pending request is available or the dispatcher
// is closed (nil).
func (d *Dispatcher) next() *Pending {
	for {
		d.mu.Lock()
		if len(d.queue) > 0 {
			p := d.queue[0]
			d.queue = d.queue[1:]
			d.mu.Unlock()
			return p
		}
		closed := d.closed
		d.mu.Unlock()

		if closed {
			return nil
		}

		select {
		case <-d.signal:
		case <-d.closeCh:
		}
	}
}

// drain marks the dispatcher closed and resolves every queued request
// with the channel failure. The FIFO contract still holds: resolution
// happens in submission order.
func (d *Dispatcher) drain(cause error) {
	failure := connectionLost(cause)

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.closeCh)
	}
	// A clean Close has already set ErrDispatcherClosed; keep that
	// sentinel for later Submits.
	if d.closeErr == nil {
		d.closeErr = failure
	}
	queued := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, p := range queued {
		p.resolve(wire.ResponseFrame{}, failure)
	}
}

// connectionLost normalizes a channel failure to ErrConnectionLost.
func connectionLost(err error) error {
	if errors.Is(err, transport.ErrConnectionLost) {
		return err
	}
	return fmt.Errorf("%w: %v", transport.ErrConnectionLost, err)
}
