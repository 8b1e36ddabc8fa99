package dispatch

import (
	"context"

	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// Pending is the single-resolution result slot for one submitted
// command. It is fulfilled exactly once, by a response frame, a
// cancellation or a connection failure.
type Pending struct {
	cmd wire.Command
	ctx context.Context

	done  chan struct{}
	frame wire.ResponseFrame
	err   error
}

func newPending(ctx context.Context, cmd wire.Command) *Pending {
	return &Pending{
		cmd:  cmd,
		ctx:  ctx,
		done: make(chan struct{}),
	}
}

// resolve fulfills the slot. Called exactly once, by the dispatch loop
// or by teardown; the queue's single-consumer discipline is what makes
// that safe.
func (p *Pending) resolve(frame wire.ResponseFrame, err error) {
	p.frame = frame
	p.err = err
	close(p.done)
}

// Command returns the submitted command.
func (p *Pending) Command() wire.Command {
	return p.cmd
}

// Done returns a channel closed when the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome. It must not be called before Done is
// closed.
func (p *Pending) Result() (wire.ResponseFrame, error) {
	return p.frame, p.err
}

// Await blocks until the result is available or ctx is done. A context
// abort only abandons the wait: the command itself still resolves in
// queue order.
func (p *Pending) Await(ctx context.Context) (wire.ResponseFrame, error) {
	select {
	case <-p.done:
		return p.frame, p.err
	case <-ctx.Done():
		return wire.ResponseFrame{}, ctx.Err()
	}
}
