package log

import (
	"time"
)

// Event represents a protocol log event captured on any session channel.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// ChannelID identifies the specific channel within the session.
	ChannelID string `cbor:"3,keyasint,omitempty"`

	// Direction indicates message flow.
	Direction Direction `cbor:"4,keyasint"`

	// Channel indicates which session channel carried the event.
	Channel Channel `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// RemoteAddr is the robot address (IP:port), when known.
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"8,keyasint,omitempty"`  // Raw frame bytes
	Command     *CommandEvent     `cbor:"9,keyasint,omitempty"`  // Command round trip
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Session/channel state
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Channel indicates which session channel an event belongs to.
type Channel uint8

const (
	// ChannelCommand is the TCP command/response channel.
	ChannelCommand Channel = 0
	// ChannelPush is the UDP push-notification channel.
	ChannelPush Channel = 1
	// ChannelVideo is the streamed video channel.
	ChannelVideo Channel = 2
	// ChannelAudio is the streamed audio channel.
	ChannelAudio Channel = 3
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelCommand:
		return "COMMAND"
	case ChannelPush:
		return "PUSH"
	case ChannelVideo:
		return "VIDEO"
	case ChannelAudio:
		return "AUDIO"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a raw protocol frame.
	CategoryFrame Category = 0
	// CategoryCommand indicates a command/response round trip.
	CategoryCommand Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryCommand:
		return "COMMAND"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxLogFrameDataSize is the maximum frame data size to include in log
// events. Larger frames (video chunks) are truncated.
const MaxLogFrameDataSize = 1024

// FrameEvent captures raw frame data on a channel.
type FrameEvent struct {
	// Size is the frame size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent builds a FrameEvent from raw frame bytes, truncating
// oversized payloads.
func NewFrameEvent(data []byte) *FrameEvent {
	ev := &FrameEvent{Size: len(data), Data: data}
	if len(data) > MaxLogFrameDataSize {
		ev.Data = data[:MaxLogFrameDataSize]
		ev.Truncated = true
	}
	return ev
}

// CommandEvent captures a completed command round trip on the command
// channel.
type CommandEvent struct {
	// Command is the wire form of the command, without terminator.
	Command string `cbor:"1,keyasint"`

	// Response is the wire form of the response, without terminator.
	// Empty when the command failed before a response arrived.
	Response string `cbor:"2,keyasint,omitempty"`

	// RoundTrip is the duration from send to response receipt.
	// Stored as nanoseconds.
	RoundTrip *time.Duration `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures session and channel lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures error events at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context provides additional context, e.g. the offending frame.
	Context string `cbor:"2,keyasint,omitempty"`
}
