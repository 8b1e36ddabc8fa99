package log

import (
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func sampleEvent(session string, dir Direction, ch Channel) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: session,
		Direction: dir,
		Channel:   ch,
		Category:  CategoryFrame,
		Frame:     NewFrameEvent([]byte("chassis position ?;")),
	}
}

func TestEventRoundTrip(t *testing.T) {
	rt := 42 * time.Millisecond
	event := Event{
		Timestamp: time.Now().Truncate(time.Millisecond),
		SessionID: "session-1",
		Direction: DirectionOut,
		Channel:   ChannelCommand,
		Category:  CategoryCommand,
		Command: &CommandEvent{
			Command:   "chassis position ?",
			Response:  "1.0 2.0",
			RoundTrip: &rt,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID = %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Channel != ChannelCommand {
		t.Errorf("Channel = %v, want ChannelCommand", decoded.Channel)
	}
	if decoded.Command == nil {
		t.Fatal("Command payload missing after round trip")
	}
	if decoded.Command.Response != "1.0 2.0" {
		t.Errorf("Response = %q, want %q", decoded.Command.Response, "1.0 2.0")
	}
	if decoded.Command.RoundTrip == nil || *decoded.Command.RoundTrip != rt {
		t.Errorf("RoundTrip = %v, want %v", decoded.Command.RoundTrip, rt)
	}
}

func TestFrameEventTruncation(t *testing.T) {
	big := make([]byte, MaxLogFrameDataSize*2)
	ev := NewFrameEvent(big)

	if !ev.Truncated {
		t.Error("Truncated = false for oversized frame")
	}
	if len(ev.Data) != MaxLogFrameDataSize {
		t.Errorf("len(Data) = %d, want %d", len(ev.Data), MaxLogFrameDataSize)
	}
	if ev.Size != len(big) {
		t.Errorf("Size = %d, want %d", ev.Size, len(big))
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(sampleEvent("s1", DirectionOut, ChannelCommand))
	logger.Log(sampleEvent("s1", DirectionIn, ChannelPush))
	logger.Log(sampleEvent("s2", DirectionIn, ChannelPush))

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Double close is fine; logging after close is ignored.
	if err := logger.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	logger.Log(sampleEvent("s1", DirectionIn, ChannelPush))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("read %d events, want 3", count)
	}
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(sampleEvent("s1", DirectionOut, ChannelCommand))
	logger.Log(sampleEvent("s1", DirectionIn, ChannelPush))
	logger.Log(sampleEvent("s2", DirectionIn, ChannelPush))
	logger.Close()

	push := ChannelPush
	reader, err := NewFilteredReader(path, Filter{SessionID: "s1", Channel: &push})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.SessionID != "s1" || event.Channel != ChannelPush {
		t.Errorf("got event session=%q channel=%v", event.SessionID, event.Channel)
	}

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Next = %v, want io.EOF", err)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Log(sampleEvent("s1", DirectionIn, ChannelPush))
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != 400 {
		t.Errorf("read %d events, want 400", count)
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b recorder
	multi := NewMultiLogger(&a, &b)

	multi.Log(sampleEvent("s1", DirectionIn, ChannelPush))

	if a.count != 1 || b.count != 1 {
		t.Errorf("counts = %d/%d, want 1/1", a.count, b.count)
	}
}

type recorder struct {
	mu    sync.Mutex
	count int
}

func (r *recorder) Log(Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}
