package telemetry

// ChassisPosition is the chassis position relative to power-on.
// Distances are in meters, rotation in degrees.
type ChassisPosition struct {
	// Z is the distance along the forward axis.
	Z float64

	// X is the distance along the lateral axis.
	X float64

	// Clockwise is the rotation since power-on. Only reported by
	// position queries, not by position pushes; nil when absent.
	Clockwise *float64
}

// ChassisAttitude is the chassis attitude in degrees.
type ChassisAttitude struct {
	Pitch float64
	Roll  float64
	Yaw   float64
}

// ChassisStatus is the chassis state flag word.
type ChassisStatus struct {
	// Static indicates the chassis is stationary.
	Static bool

	// UpHill / DownHill / OnSlope describe the slope state.
	UpHill   bool
	DownHill bool
	OnSlope  bool

	// PickUp indicates the chassis is lifted off the ground.
	PickUp bool

	// Slip indicates wheel slip.
	Slip bool

	// ImpactX / ImpactY / ImpactZ indicate an impact on each axis.
	ImpactX bool
	ImpactY bool
	ImpactZ bool

	// RollOver indicates the chassis is upside down.
	RollOver bool

	// HillStatic indicates the chassis is stationary on a slope.
	HillStatic bool
}

// WheelSpeed is the per-wheel speed in rpm.
type WheelSpeed struct {
	FrontRight float64
	FrontLeft  float64
	BackLeft   float64
	BackRight  float64
}

// ChassisSpeed is the chassis velocity plus per-wheel speeds.
type ChassisSpeed struct {
	// Z is the speed along the forward axis in m/s.
	Z float64

	// X is the speed along the lateral axis in m/s.
	X float64

	// Clockwise is the rotation speed in degrees/s.
	Clockwise float64

	// Wheels holds the individual wheel speeds.
	Wheels WheelSpeed
}

// LineType classifies a recognized line.
type LineType int

const (
	// LineNone indicates no line is recognized.
	LineNone LineType = 0

	// LineStraight is a straight line.
	LineStraight LineType = 1

	// LineFork is a forking line.
	LineFork LineType = 2

	// LineCross is a crossing line.
	LineCross LineType = 3
)

// String returns the line type name.
func (t LineType) String() string {
	switch t {
	case LineNone:
		return "NONE"
	case LineStraight:
		return "STRAIGHT"
	case LineFork:
		return "FORK"
	case LineCross:
		return "CROSS"
	default:
		return "UNKNOWN"
	}
}

// LinePoint is one sample point on a recognized line. X and Y are
// normalized view coordinates in [0,1].
type LinePoint struct {
	X         float64
	Y         float64
	Tangent   float64
	Curvature float64
}

// Line is a recognized line: its classification plus sampled points.
type Line struct {
	Type   LineType
	Points []LinePoint
}

// Marker is one recognized vision marker. X, Y, Width and Height are
// normalized view coordinates in [0,1].
type Marker struct {
	ID     int
	X      float64
	Y      float64
	Width  float64
	Height float64
}
