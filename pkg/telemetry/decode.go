package telemetry

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// ErrProtocolViolation indicates a frame whose shape does not match
// what a typed decoder expects. Surfaced to the specific caller or
// consumer; never fatal to the session.
var ErrProtocolViolation = errors.New("protocol violation")

// parseFloat parses one numeric token.
func parseFloat(token string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad numeric token %q", ErrProtocolViolation, token)
	}
	return v, nil
}

// parseBool parses one boolean token: "0" is false, anything else true.
func parseBool(token string) bool {
	return token != "0"
}

// floats parses every token of a frame as a float.
func floats(f wire.ResponseFrame) ([]float64, error) {
	out := make([]float64, f.Len())
	for i := 0; i < f.Len(); i++ {
		v, err := parseFloat(f.Token(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DecodeChassisPosition decodes a position frame. Two tokens give Z
// and X; a third, present only in query responses, gives Clockwise.
func DecodeChassisPosition(f wire.ResponseFrame) (ChassisPosition, error) {
	if f.Len() != 2 && f.Len() != 3 {
		return ChassisPosition{}, fmt.Errorf("%w: chassis position wants 2 or 3 tokens, got %d",
			ErrProtocolViolation, f.Len())
	}
	vals, err := floats(f)
	if err != nil {
		return ChassisPosition{}, err
	}
	pos := ChassisPosition{Z: vals[0], X: vals[1]}
	if len(vals) == 3 {
		pos.Clockwise = &vals[2]
	}
	return pos, nil
}

// DecodeChassisAttitude decodes an attitude frame: pitch, roll, yaw.
func DecodeChassisAttitude(f wire.ResponseFrame) (ChassisAttitude, error) {
	if f.Len() != 3 {
		return ChassisAttitude{}, fmt.Errorf("%w: chassis attitude wants 3 tokens, got %d",
			ErrProtocolViolation, f.Len())
	}
	vals, err := floats(f)
	if err != nil {
		return ChassisAttitude{}, err
	}
	return ChassisAttitude{Pitch: vals[0], Roll: vals[1], Yaw: vals[2]}, nil
}

// DecodeChassisStatus decodes the 11-flag chassis status frame.
func DecodeChassisStatus(f wire.ResponseFrame) (ChassisStatus, error) {
	if f.Len() != 11 {
		return ChassisStatus{}, fmt.Errorf("%w: chassis status wants 11 tokens, got %d",
			ErrProtocolViolation, f.Len())
	}
	return ChassisStatus{
		Static:     parseBool(f.Token(0)),
		UpHill:     parseBool(f.Token(1)),
		DownHill:   parseBool(f.Token(2)),
		OnSlope:    parseBool(f.Token(3)),
		PickUp:     parseBool(f.Token(4)),
		Slip:       parseBool(f.Token(5)),
		ImpactX:    parseBool(f.Token(6)),
		ImpactY:    parseBool(f.Token(7)),
		ImpactZ:    parseBool(f.Token(8)),
		RollOver:   parseBool(f.Token(9)),
		HillStatic: parseBool(f.Token(10)),
	}, nil
}

// DecodeChassisSpeed decodes a speed frame: chassis velocity followed
// by the four wheel speeds.
func DecodeChassisSpeed(f wire.ResponseFrame) (ChassisSpeed, error) {
	if f.Len() != 7 {
		return ChassisSpeed{}, fmt.Errorf("%w: chassis speed wants 7 tokens, got %d",
			ErrProtocolViolation, f.Len())
	}
	vals, err := floats(f)
	if err != nil {
		return ChassisSpeed{}, err
	}
	return ChassisSpeed{
		Z:         vals[0],
		X:         vals[1],
		Clockwise: vals[2],
		Wheels: WheelSpeed{
			FrontRight: vals[3],
			FrontLeft:  vals[4],
			BackLeft:   vals[5],
			BackRight:  vals[6],
		},
	}, nil
}

// DecodeLine decodes a line-recognition frame: the line type followed
// by four tokens (x, y, tangent, curvature) per sample point.
func DecodeLine(f wire.ResponseFrame) (Line, error) {
	if f.Len() < 1 || (f.Len()-1)%4 != 0 {
		return Line{}, fmt.Errorf("%w: line wants 1+4n tokens, got %d",
			ErrProtocolViolation, f.Len())
	}
	lineType, err := strconv.Atoi(f.Token(0))
	if err != nil {
		return Line{}, fmt.Errorf("%w: bad line type token %q", ErrProtocolViolation, f.Token(0))
	}

	line := Line{Type: LineType(lineType)}
	for i := 1; i < f.Len(); i += 4 {
		var pt LinePoint
		if pt.X, err = parseFloat(f.Token(i)); err != nil {
			return Line{}, err
		}
		if pt.Y, err = parseFloat(f.Token(i + 1)); err != nil {
			return Line{}, err
		}
		if pt.Tangent, err = parseFloat(f.Token(i + 2)); err != nil {
			return Line{}, err
		}
		if pt.Curvature, err = parseFloat(f.Token(i + 3)); err != nil {
			return Line{}, err
		}
		line.Points = append(line.Points, pt)
	}
	return line, nil
}

// DecodeMarkers decodes a marker-recognition frame: the marker count
// followed by five tokens (id, x, y, width, height) per marker.
func DecodeMarkers(f wire.ResponseFrame) ([]Marker, error) {
	if f.Len() < 1 {
		return nil, fmt.Errorf("%w: marker frame is empty", ErrProtocolViolation)
	}
	count, err := strconv.Atoi(f.Token(0))
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: bad marker count token %q", ErrProtocolViolation, f.Token(0))
	}
	if f.Len() != 1+count*5 {
		return nil, fmt.Errorf("%w: marker frame wants %d tokens for %d markers, got %d",
			ErrProtocolViolation, 1+count*5, count, f.Len())
	}

	markers := make([]Marker, 0, count)
	for i := 1; i < f.Len(); i += 5 {
		id, err := strconv.Atoi(f.Token(i))
		if err != nil {
			return nil, fmt.Errorf("%w: bad marker id token %q", ErrProtocolViolation, f.Token(i))
		}
		var m Marker
		m.ID = id
		if m.X, err = parseFloat(f.Token(i + 1)); err != nil {
			return nil, err
		}
		if m.Y, err = parseFloat(f.Token(i + 2)); err != nil {
			return nil, err
		}
		if m.Width, err = parseFloat(f.Token(i + 3)); err != nil {
			return nil, err
		}
		if m.Height, err = parseFloat(f.Token(i + 4)); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}
