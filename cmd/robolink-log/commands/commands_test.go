package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/log"
)

func createTestCapture(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func testEvents() []log.Event {
	ts := time.Date(2026, 8, 29, 10, 15, 32, 0, time.UTC)
	rt := 12 * time.Millisecond
	return []log.Event{
		{
			Timestamp: ts,
			SessionID: "abc12345-6789",
			Direction: log.DirectionOut,
			Channel:   log.ChannelCommand,
			Category:  log.CategoryCommand,
			Command: &log.CommandEvent{
				Command:   "chassis speed x 1 y 0 z 0",
				Response:  "ok",
				RoundTrip: &rt,
			},
		},
		{
			Timestamp: ts.Add(time.Second),
			SessionID: "abc12345-6789",
			Direction: log.DirectionIn,
			Channel:   log.ChannelPush,
			Category:  log.CategoryFrame,
			Frame:     log.NewFrameEvent([]byte("chassis push position 1 2 3;")),
		},
		{
			Timestamp: ts.Add(2 * time.Second),
			SessionID: "abc12345-6789",
			Direction: log.DirectionIn,
			Channel:   log.ChannelPush,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Message: "unrecognized push",
				Context: "gimbal push attitude 1 2",
			},
		},
	}
}

func TestRunViewFormatsEvents(t *testing.T) {
	path := createTestCapture(t, testEvents())

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[session:abc12345]",
		"chassis speed x 1 y 0 z 0",
		"RoundTrip: 12.000ms",
		"unrecognized push",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestRunViewAppliesFilter(t *testing.T) {
	path := createTestCapture(t, testEvents())

	filter, err := BuildFilter("", "push", "", "error", "", "")
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "unrecognized push") {
		t.Errorf("filtered view missing error event:\n%s", out)
	}
	if strings.Contains(out, "chassis speed") {
		t.Errorf("filtered view kept command event:\n%s", out)
	}
}

func TestBuildFilterRejectsBadValues(t *testing.T) {
	if _, err := BuildFilter("", "serial", "", "", "", ""); err == nil {
		t.Error("BuildFilter accepted bad channel")
	}
	if _, err := BuildFilter("", "", "sideways", "", "", ""); err == nil {
		t.Error("BuildFilter accepted bad direction")
	}
	if _, err := BuildFilter("", "", "", "noise", "", ""); err == nil {
		t.Error("BuildFilter accepted bad category")
	}
	if _, err := BuildFilter("", "", "", "", "yesterday", ""); err == nil {
		t.Error("BuildFilter accepted bad time-start")
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestCapture(t, testEvents())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("failed to parse line 1: %v", err)
	}
	if event["SessionID"] != "abc12345-6789" {
		t.Errorf("SessionID = %v, want abc12345-6789", event["SessionID"])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestCapture(t, testEvents())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 { // header + 3 events
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,session_id") {
		t.Errorf("unexpected header: %s", lines[0])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestCapture(t, testEvents())
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("RunExport accepted unknown format")
	}
}

func TestRunFilterWritesCapture(t *testing.T) {
	path := createTestCapture(t, testEvents())
	outPath := filepath.Join(t.TempDir(), "filtered.rlog")

	filter, err := BuildFilter("abc12345-6789", "command", "", "", "", "")
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}
	if err := RunFilter(path, filter, outPath); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// The output must itself be a readable capture.
	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open filtered capture: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("failed to read filtered event: %v", err)
	}
	if event.Command == nil || event.Command.Command != "chassis speed x 1 y 0 z 0" {
		t.Errorf("unexpected filtered event: %+v", event)
	}
}

func TestRunStats(t *testing.T) {
	path := createTestCapture(t, testEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Total Events: 3",
		"Sessions: 1",
		"Commands: 1",
		"Errors: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q\noutput:\n%s", want, out)
		}
	}
}
