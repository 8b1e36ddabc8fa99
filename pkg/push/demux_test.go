package push

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robolink-protocol/robolink-go/internal/testconn"
	"github.com/robolink-protocol/robolink-go/pkg/feed"
	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/telemetry"
	"github.com/robolink-protocol/robolink-go/pkg/transport"
	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

func TestSplitEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		schema       Schema
		raw          string
		wantTopic    string
		wantSubtopic string
		wantPayload  string
		wantErr      bool
	}{
		{
			name:   "legacy",
			schema: SchemaLegacy,
			raw:    "chassis position 1.0 2.0;",
			wantTopic: "chassis", wantSubtopic: "position", wantPayload: "1.0 2.0",
		},
		{
			name:   "push token",
			schema: SchemaPushToken,
			raw:    "chassis push position 1.0 2.0;",
			wantTopic: "chassis", wantSubtopic: "position", wantPayload: "1.0 2.0",
		},
		{
			name:   "push token missing marker",
			schema: SchemaPushToken,
			raw:    "chassis position 1.0 2.0;",
			wantErr: true,
		},
		{
			name:   "legacy too short",
			schema: SchemaLegacy,
			raw:    "chassis;",
			wantErr: true,
		},
		{
			name:   "empty payload is valid",
			schema: SchemaLegacy,
			raw:    "chassis position;",
			wantTopic: "chassis", wantSubtopic: "position", wantPayload: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := wire.ParseFrame([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseFrame failed: %v", err)
			}
			env, err := SplitEnvelope(tt.schema, frame)
			if tt.wantErr {
				if !errors.Is(err, ErrBadEnvelope) {
					t.Fatalf("error = %v, want ErrBadEnvelope", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitEnvelope failed: %v", err)
			}
			if env.Topic != tt.wantTopic || env.Subtopic != tt.wantSubtopic {
				t.Errorf("envelope = %s/%s, want %s/%s",
					env.Topic, env.Subtopic, tt.wantTopic, tt.wantSubtopic)
			}
			if env.Payload.String() != tt.wantPayload {
				t.Errorf("payload = %q, want %q", env.Payload.String(), tt.wantPayload)
			}
		})
	}
}

func TestDemuxRoutesToFeed(t *testing.T) {
	positions := feed.New[telemetry.ChassisPosition]()

	d := NewDemux(SchemaLegacy)
	d.Handle("chassis", "position", Bind(positions, telemetry.DecodeChassisPosition))

	got := make(chan telemetry.ChassisPosition, 1)
	sub := positions.Subscribe(func(p telemetry.ChassisPosition) { got <- p })
	defer sub.Cancel()

	ch := testconn.New()
	done := make(chan error, 1)
	go func() { done <- d.Run(ch) }()

	ch.Push("chassis position 1.0 2.0;")

	select {
	case pos := <-got:
		if pos.Z != 1.0 || pos.X != 2.0 {
			t.Errorf("position = %+v, want Z=1 X=2", pos)
		}
		if pos.Clockwise != nil {
			t.Errorf("Clockwise = %v, want nil", *pos.Clockwise)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the push")
	}

	ch.Close()
	if err := <-done; !errors.Is(err, transport.ErrConnectionLost) {
		t.Errorf("Run returned %v, want ErrConnectionLost", err)
	}
}

func TestDemuxDeliversExactlyOnce(t *testing.T) {
	positions := feed.New[telemetry.ChassisPosition]()
	d := NewDemux(SchemaPushToken)
	d.Handle("chassis", "position", Bind(positions, telemetry.DecodeChassisPosition))

	var mu sync.Mutex
	var count int
	sub := positions.Subscribe(func(telemetry.ChassisPosition) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer sub.Cancel()

	ch := testconn.New()
	go d.Run(ch)
	defer ch.Close()

	ch.Push("chassis push position 1.0 2.0;")
	ch.Push("chassis push attitude 1 2 3;") // no handler, dropped

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := count
		mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("subscriber received %d values, want exactly 1", count)
	}
}

// captureLogger records event categories.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) errorEvents() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []log.Event
	for _, e := range c.events {
		if e.Category == log.CategoryError {
			out = append(out, e)
		}
	}
	return out
}

func TestDemuxDropsUnknownAndMalformed(t *testing.T) {
	logger := &captureLogger{}
	d := NewDemux(SchemaPushToken)
	d.SetLogger(logger, "s1")

	lines := feed.New[telemetry.Line]()
	d.Handle("AI", "line", Bind(lines, telemetry.DecodeLine))

	ch := testconn.New()
	done := make(chan error, 1)
	go func() { done <- d.Run(ch) }()

	ch.Push("gimbal push attitude 1 2;")     // unknown topic
	ch.Push("oddball;")                      // malformed envelope
	ch.Push("AI push line not-a-number;")    // decode failure
	ch.Push("AI push line 0;")               // valid, empty line

	var got int
	sub := lines.Subscribe(func(telemetry.Line) { got++ })
	defer sub.Cancel()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(logger.errorEvents()) >= 3 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	drops := logger.errorEvents()
	if len(drops) != 3 {
		t.Errorf("%d drop events, want 3", len(drops))
	}

	// The loop is still alive after every kind of bad frame.
	ch.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
}
