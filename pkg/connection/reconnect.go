package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/log"
)

// Supervisor errors.
var (
	ErrSupervisorClosed = errors.New("supervisor closed")
	ErrAlreadyConnected = errors.New("already connected")
)

// State is the link state as seen by the supervisor.
type State uint8

const (
	// StateDisconnected means no session is established.
	StateDisconnected State = iota

	// StateConnecting means the initial connect is in progress.
	StateConnecting

	// StateConnected means a session is live.
	StateConnected

	// StateReconnecting means the link dropped and retries are running.
	StateReconnecting

	// StateClosed means the supervisor has shut down.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// EstablishFunc dials the robot and builds a fresh session. It is
// called for the initial connect and again for every retry, so it must
// be safe to run repeatedly.
type EstablishFunc func(ctx context.Context) error

// Config configures a supervisor.
type Config struct {
	// Backoff shapes the retry delay schedule.
	Backoff BackoffConfig

	// AttemptTimeout bounds each individual establish attempt.
	// Zero means 30 seconds.
	AttemptTimeout time.Duration

	// AutoReconnect enables retrying after a reported link loss.
	AutoReconnect bool

	// Logger receives state-change events. Nil disables capture.
	Logger log.Logger
}

// Supervisor keeps a robot session alive: it runs the initial connect
// and, when told the link dropped, re-establishes it with exponential
// backoff. The caller reports losses via ConnectionLost; the
// supervisor never probes the link itself.
type Supervisor struct {
	mu        sync.RWMutex
	state     State
	establish EstablishFunc
	backoff   *Backoff

	attemptTimeout time.Duration
	autoReconnect  bool
	logger         log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	wake   chan struct{}

	onState     func(oldState, newState State)
	onConnected func()
}

// NewSupervisor creates a supervisor and starts its retry loop.
func NewSupervisor(establish EstablishFunc, cfg Config) *Supervisor {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Supervisor{
		state:          StateDisconnected,
		establish:      establish,
		backoff:        NewBackoff(cfg.Backoff),
		attemptTimeout: cfg.AttemptTimeout,
		autoReconnect:  cfg.AutoReconnect,
		logger:         cfg.Logger,
		ctx:            ctx,
		cancel:         cancel,
		wake:           make(chan struct{}, 1),
	}

	s.wg.Add(1)
	go s.retryLoop()
	return s
}

// State returns the current link state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnStateChange sets a callback fired after every state transition.
// Set before Connect.
func (s *Supervisor) OnStateChange(fn func(oldState, newState State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

// OnConnected sets a callback fired after every successful establish,
// including re-establishes. Set before Connect.
func (s *Supervisor) OnConnected(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnected = fn
}

// Connect runs the initial establish. ctx bounds this attempt only.
func (s *Supervisor) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrSupervisorClosed
	case StateConnected:
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()
	s.transition(StateConnecting)

	if err := s.establish(ctx); err != nil {
		s.transition(StateDisconnected)
		return err
	}

	s.backoff.Reset()
	s.transition(StateConnected)
	s.fireConnected()
	return nil
}

// ConnectionLost reports a dropped link. With AutoReconnect the retry
// loop takes over; without it the supervisor just goes disconnected.
func (s *Supervisor) ConnectionLost() {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	auto := s.autoReconnect
	s.mu.Unlock()

	if !auto {
		s.transition(StateDisconnected)
		return
	}

	s.transition(StateReconnecting)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close shuts the supervisor down and waits for the retry loop.
func (s *Supervisor) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.transition(StateClosed)
	s.cancel()
	s.wg.Wait()
}

// Attempts returns the retry count of the current outage.
func (s *Supervisor) Attempts() int {
	return s.backoff.Attempts()
}

func (s *Supervisor) retryLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
			s.retryUntilConnected()
		}
	}
}

// retryUntilConnected re-establishes with backoff until it succeeds or
// the supervisor closes.
func (s *Supervisor) retryUntilConnected() {
	for {
		s.mu.RLock()
		state := s.state
		s.mu.RUnlock()
		if state != StateReconnecting {
			return
		}

		delay := s.backoff.Next()
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(s.ctx, s.attemptTimeout)
		err := s.establish(ctx)
		cancel()
		if err != nil {
			continue
		}

		s.backoff.Reset()
		s.transition(StateConnected)
		s.fireConnected()
		return
	}
}

// transition moves to newState, logs the change and fires the state
// callback.
func (s *Supervisor) transition(newState State) {
	s.mu.Lock()
	oldState := s.state
	s.state = newState
	fn := s.onState
	s.mu.Unlock()

	if oldState == newState {
		return
	}

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Channel:   log.ChannelCommand,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
		},
	})

	if fn != nil {
		fn(oldState, newState)
	}
}

func (s *Supervisor) fireConnected() {
	s.mu.RLock()
	fn := s.onConnected
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
