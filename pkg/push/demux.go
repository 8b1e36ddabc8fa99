package push

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/feed"
	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/transport"
	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// Schema selects the push envelope layout of the deployed firmware.
type Schema uint8

const (
	// SchemaLegacy is "<topic> <subtopic> <payload...>".
	SchemaLegacy Schema = 0

	// SchemaPushToken is "<topic> push <subtopic> <payload...>", the
	// current-generation layout with a literal "push" marker token.
	SchemaPushToken Schema = 1
)

// String returns the schema name.
func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "LEGACY"
	case SchemaPushToken:
		return "PUSH_TOKEN"
	default:
		return "UNKNOWN"
	}
}

// ErrBadEnvelope indicates a push frame too short for the configured
// schema, or one missing the literal "push" marker.
var ErrBadEnvelope = errors.New("malformed push envelope")

// Envelope is the routing header of one push frame plus its payload
// tokens. Transient: consumed immediately by the demultiplexer.
type Envelope struct {
	Topic    string
	Subtopic string
	Payload  wire.ResponseFrame
}

// SplitEnvelope extracts the envelope from a push frame under the
// given schema.
func SplitEnvelope(schema Schema, frame wire.ResponseFrame) (Envelope, error) {
	switch schema {
	case SchemaPushToken:
		if frame.Len() < 3 || frame.Token(1) != "push" {
			return Envelope{}, fmt.Errorf("%w: %q", ErrBadEnvelope, frame.String())
		}
		return Envelope{
			Topic:    frame.Token(0),
			Subtopic: frame.Token(2),
			Payload:  wire.FrameFromTokens(frame.Tokens()[3:]),
		}, nil
	default:
		if frame.Len() < 2 {
			return Envelope{}, fmt.Errorf("%w: %q", ErrBadEnvelope, frame.String())
		}
		return Envelope{
			Topic:    frame.Token(0),
			Subtopic: frame.Token(1),
			Payload:  wire.FrameFromTokens(frame.Tokens()[2:]),
		}, nil
	}
}

// Handler consumes the payload of one push frame: decode and publish.
// A decode failure is reported back for logging; the frame is dropped
// either way.
type Handler func(payload wire.ResponseFrame) error

// Bind builds a Handler that decodes the payload with decode and
// publishes the result on f.
func Bind[T any](f *feed.Feed[T], decode func(wire.ResponseFrame) (T, error)) Handler {
	return func(payload wire.ResponseFrame) error {
		value, err := decode(payload)
		if err != nil {
			return err
		}
		f.Publish(value)
		return nil
	}
}

// topicKey identifies one registered consumer.
type topicKey struct {
	topic    string
	subtopic string
}

// Demux consumes decoded push frames and routes each to exactly one
// registered handler.
type Demux struct {
	schema Schema

	logger    log.Logger
	sessionID string

	mu       sync.RWMutex
	handlers map[topicKey]Handler
}

// NewDemux creates a demultiplexer for the given envelope schema.
func NewDemux(schema Schema) *Demux {
	return &Demux{
		schema:   schema,
		logger:   log.NoopLogger{},
		handlers: make(map[topicKey]Handler),
	}
}

// SetLogger configures protocol logging. Pass nil to disable.
// Call before Run.
func (d *Demux) SetLogger(logger log.Logger, sessionID string) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	d.logger = logger
	d.sessionID = sessionID
}

// Handle registers the handler for a (topic, subtopic) pair, replacing
// any previous registration.
func (d *Demux) Handle(topic, subtopic string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[topicKey{topic: topic, subtopic: subtopic}] = h
}

// Run decodes frames from the push channel and dispatches them until
// the channel fails or is closed; the terminal error is returned.
// Run shares no state with the command dispatcher - the loops touch
// only the thread-safe feeds behind the handlers.
func (d *Demux) Run(channel transport.Channel) error {
	scanner := wire.NewFrameScanner(channel)
	for {
		frame, err := scanner.Next()
		if err != nil {
			return err
		}
		d.dispatch(frame)
	}
}

// dispatch routes one push frame. Never fatal: unknown topics and
// decode failures are logged and dropped.
func (d *Demux) dispatch(frame wire.ResponseFrame) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Direction: log.DirectionIn,
		Channel:   log.ChannelPush,
		Category:  log.CategoryFrame,
		Frame:     log.NewFrameEvent([]byte(frame.String())),
	})

	env, err := SplitEnvelope(d.schema, frame)
	if err != nil {
		d.drop("malformed push envelope", frame.String())
		return
	}

	d.mu.RLock()
	handler, ok := d.handlers[topicKey{topic: env.Topic, subtopic: env.Subtopic}]
	d.mu.RUnlock()

	if !ok {
		d.drop("unrecognized push topic", env.Topic+" "+env.Subtopic)
		return
	}

	if err := handler(env.Payload); err != nil {
		d.drop(err.Error(), frame.String())
	}
}

// drop records a dropped push frame.
func (d *Demux) drop(reason, context string) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Direction: log.DirectionIn,
		Channel:   log.ChannelPush,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: reason,
			Context: context,
		},
	})
}
