package telemetry

import (
	"errors"
	"testing"

	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

func frame(t *testing.T, raw string) wire.ResponseFrame {
	t.Helper()
	f, err := wire.ParseFrame([]byte(raw))
	if err != nil {
		t.Fatalf("ParseFrame(%q) failed: %v", raw, err)
	}
	return f
}

func TestDecodeChassisPosition(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantZ, wantX  float64
		wantClockwise *float64
		wantErr       bool
	}{
		{
			name:  "push variant without clockwise",
			raw:   "1.0 2.0;",
			wantZ: 1.0, wantX: 2.0,
		},
		{
			name:  "query variant with clockwise",
			raw:   "1.0 2.0 3.0;",
			wantZ: 1.0, wantX: 2.0,
			wantClockwise: floatPtr(3.0),
		},
		{
			name:    "too few tokens",
			raw:     "1.0;",
			wantErr: true,
		},
		{
			name:    "too many tokens",
			raw:     "1 2 3 4;",
			wantErr: true,
		},
		{
			name:    "non-numeric token",
			raw:     "1.0 abc;",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := DecodeChassisPosition(frame(t, tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrProtocolViolation) {
					t.Fatalf("error = %v, want ErrProtocolViolation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if pos.Z != tt.wantZ || pos.X != tt.wantX {
				t.Errorf("got Z=%v X=%v, want Z=%v X=%v", pos.Z, pos.X, tt.wantZ, tt.wantX)
			}
			switch {
			case tt.wantClockwise == nil && pos.Clockwise != nil:
				t.Errorf("Clockwise = %v, want nil", *pos.Clockwise)
			case tt.wantClockwise != nil && pos.Clockwise == nil:
				t.Errorf("Clockwise = nil, want %v", *tt.wantClockwise)
			case tt.wantClockwise != nil && *pos.Clockwise != *tt.wantClockwise:
				t.Errorf("Clockwise = %v, want %v", *pos.Clockwise, *tt.wantClockwise)
			}
		})
	}
}

func TestDecodeChassisAttitude(t *testing.T) {
	att, err := DecodeChassisAttitude(frame(t, "-2.5 0.1 90.0;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if att.Pitch != -2.5 || att.Roll != 0.1 || att.Yaw != 90.0 {
		t.Errorf("got %+v", att)
	}

	if _, err := DecodeChassisAttitude(frame(t, "1 2;")); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("short frame error = %v, want ErrProtocolViolation", err)
	}
}

func TestDecodeChassisStatus(t *testing.T) {
	status, err := DecodeChassisStatus(frame(t, "1 0 0 0 1 0 0 0 0 0 0;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !status.Static || !status.PickUp {
		t.Errorf("Static/PickUp = %v/%v, want true/true", status.Static, status.PickUp)
	}
	if status.UpHill || status.RollOver || status.HillStatic {
		t.Errorf("unexpected flags set: %+v", status)
	}

	// Any non-"0" token is true.
	status, err = DecodeChassisStatus(frame(t, "2 x 0 0 0 0 0 0 0 0 0;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !status.Static || !status.UpHill {
		t.Error("non-zero tokens should decode as true")
	}

	if _, err := DecodeChassisStatus(frame(t, "1 0 0;")); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("short frame error = %v, want ErrProtocolViolation", err)
	}
}

func TestDecodeChassisSpeed(t *testing.T) {
	speed, err := DecodeChassisSpeed(frame(t, "0.5 0 30 100 101 102 103;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if speed.Z != 0.5 || speed.X != 0 || speed.Clockwise != 30 {
		t.Errorf("velocity = %+v", speed)
	}
	want := WheelSpeed{FrontRight: 100, FrontLeft: 101, BackLeft: 102, BackRight: 103}
	if speed.Wheels != want {
		t.Errorf("Wheels = %+v, want %+v", speed.Wheels, want)
	}
}

func TestDecodeLine(t *testing.T) {
	line, err := DecodeLine(frame(t, "1 0.1 0.2 5 0 0.3 0.4 6 0.01;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if line.Type != LineStraight {
		t.Errorf("Type = %v, want STRAIGHT", line.Type)
	}
	if len(line.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(line.Points))
	}
	if line.Points[1] != (LinePoint{X: 0.3, Y: 0.4, Tangent: 6, Curvature: 0.01}) {
		t.Errorf("Points[1] = %+v", line.Points[1])
	}

	// Type token alone is a valid empty line.
	line, err = DecodeLine(frame(t, "0;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if line.Type != LineNone || len(line.Points) != 0 {
		t.Errorf("got %+v", line)
	}

	if _, err := DecodeLine(frame(t, "1 0.1 0.2;")); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("ragged frame error = %v, want ErrProtocolViolation", err)
	}
}

func TestDecodeMarkers(t *testing.T) {
	markers, err := DecodeMarkers(frame(t, "2 10 0.1 0.2 0.05 0.05 11 0.7 0.8 0.04 0.04;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(markers) != 2 {
		t.Fatalf("got %d markers, want 2", len(markers))
	}
	if markers[0].ID != 10 || markers[1].ID != 11 {
		t.Errorf("IDs = %d/%d, want 10/11", markers[0].ID, markers[1].ID)
	}
	if markers[1].X != 0.7 || markers[1].Height != 0.04 {
		t.Errorf("markers[1] = %+v", markers[1])
	}

	// Zero markers is a valid frame.
	markers, err = DecodeMarkers(frame(t, "0;"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(markers) != 0 {
		t.Errorf("got %d markers, want 0", len(markers))
	}

	if _, err := DecodeMarkers(frame(t, "2 10 0.1 0.2 0.05 0.05;")); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("count mismatch error = %v, want ErrProtocolViolation", err)
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
