package session

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robolink-protocol/robolink-go/pkg/dispatch"
	"github.com/robolink-protocol/robolink-go/pkg/feed"
	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/push"
	"github.com/robolink-protocol/robolink-go/pkg/telemetry"
	"github.com/robolink-protocol/robolink-go/pkg/transport"
	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// Push topic and subtopic tokens.
const (
	topicChassis = "chassis"
	topicVision  = "AI"

	subtopicPosition = "position"
	subtopicAttitude = "attitude"
	subtopicStatus   = "status"
	subtopicLine     = "line"
	subtopicMarker   = "marker"
)

// Session is one live control session with a robot.
type Session struct {
	cfg    Config
	id     string
	logger log.Logger

	dispatcher *dispatch.Dispatcher
	demux      *push.Demux
	pushConn   transport.Channel

	positions *feed.Feed[telemetry.ChassisPosition]
	attitudes *feed.Feed[telemetry.ChassisAttitude]
	statuses  *feed.Feed[telemetry.ChassisStatus]
	lines     *feed.Feed[telemetry.Line]
	markers   *feed.Feed[[]telemetry.Marker]
	video     *feed.Feed[image.Image]
	audio     *feed.Feed[[]byte]

	controller *streamController

	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

// Open establishes a session: dials the TCP command channel, opens the
// local UDP push port, starts the protocol loops and puts the robot
// into SDK mode. ctx bounds establishment only.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	cmdConn, err := transport.Dial(dialCtx, fmt.Sprintf("%s:%d", cfg.Host, cfg.CommandPort))
	if err != nil {
		return nil, err
	}

	pushConn, err := transport.ListenPush(cfg.PushPort)
	if err != nil {
		cmdConn.Close()
		return nil, err
	}

	s := New(cmdConn, pushConn, cfg)

	// Enter SDK mode; nothing else is accepted before this.
	if _, err := s.dispatcher.Do(ctx, wire.NewCommand(wire.Str("command"))); err != nil {
		s.Close()
		return nil, fmt.Errorf("enter SDK mode: %w", err)
	}
	return s, nil
}

// New assembles a session over already-established channels. The
// session takes ownership of both. Most callers want Open; New exists
// for custom transports and tests.
func New(cmdChannel, pushChannel transport.Channel, cfg Config) *Session {
	cfg = cfg.withDefaults()

	s := &Session{
		cfg:      cfg,
		id:       uuid.NewString(),
		logger:   cfg.ProtocolLogger,
		pushConn: pushChannel,

		positions: feed.New[telemetry.ChassisPosition](),
		attitudes: feed.New[telemetry.ChassisAttitude](),
		statuses:  feed.New[telemetry.ChassisStatus](),
		lines:     feed.New[telemetry.Line](),
		markers:   feed.New[[]telemetry.Marker](),
		video:     feed.New[image.Image](),
		audio:     feed.New[[]byte](),
	}

	s.dispatcher = dispatch.New(cmdChannel)
	s.dispatcher.SetLogger(s.logger, s.id)

	s.demux = push.NewDemux(cfg.PushSchema)
	s.demux.SetLogger(s.logger, s.id)
	s.demux.Handle(topicChassis, subtopicPosition, push.Bind(s.positions, telemetry.DecodeChassisPosition))
	s.demux.Handle(topicChassis, subtopicAttitude, push.Bind(s.attitudes, telemetry.DecodeChassisAttitude))
	s.demux.Handle(topicChassis, subtopicStatus, push.Bind(s.statuses, telemetry.DecodeChassisStatus))
	s.demux.Handle(topicVision, subtopicLine, push.Bind(s.lines, telemetry.DecodeLine))
	s.demux.Handle(topicVision, subtopicMarker, push.Bind(s.markers, telemetry.DecodeMarkers))

	s.controller = newStreamController(s)
	s.controller.wireFeeds()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.demux.Run(s.pushConn)
	}()

	s.logState("", "OPEN", "")
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Close tears the session down: every loop unblocks via its closing
// channel and still-pending command futures resolve with
// ErrConnectionLost. Safe to call multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logState("OPEN", "CLOSED", "")
		s.controller.stop()
		s.closeErr = s.dispatcher.Close()
		s.pushConn.Close()
		s.wg.Wait()
	})
	return s.closeErr
}

// Do submits a raw command and waits for its response frame. The
// response is delivered in strict submission order relative to all
// other commands on this session.
func (s *Session) Do(ctx context.Context, cmd wire.Command) (wire.ResponseFrame, error) {
	return s.dispatcher.Do(ctx, cmd)
}

// Submit enqueues a raw command without waiting.
func (s *Session) Submit(ctx context.Context, cmd wire.Command) (*dispatch.Pending, error) {
	return s.dispatcher.Submit(ctx, cmd)
}

// Version queries the robot's SDK version string.
func (s *Session) Version(ctx context.Context) (string, error) {
	frame, err := s.Do(ctx, wire.NewCommand(wire.Str("version")))
	if err != nil {
		return "", err
	}
	return frame.String(), nil
}

// Quit leaves SDK mode. The session should be closed afterwards.
func (s *Session) Quit(ctx context.Context) error {
	_, err := s.Do(ctx, wire.NewCommand(wire.Str("quit")))
	return err
}

// RobotMode selects which unit leads robot motion.
type RobotMode uint8

const (
	// ModeChassisLead locks the gimbal to the chassis.
	ModeChassisLead RobotMode = 0

	// ModeGimbalLead steers the chassis to follow the gimbal.
	ModeGimbalLead RobotMode = 1

	// ModeFree moves chassis and gimbal independently.
	ModeFree RobotMode = 2
)

// token returns the protocol token for the mode.
func (m RobotMode) token() string {
	switch m {
	case ModeChassisLead:
		return "chassis_lead"
	case ModeGimbalLead:
		return "gimbal_lead"
	default:
		return "free"
	}
}

// String returns the mode name.
func (m RobotMode) String() string {
	switch m {
	case ModeChassisLead:
		return "CHASSIS_LEAD"
	case ModeGimbalLead:
		return "GIMBAL_LEAD"
	case ModeFree:
		return "FREE"
	default:
		return "UNKNOWN"
	}
}

// SetRobotMode switches the robot's motion mode.
func (s *Session) SetRobotMode(ctx context.Context, mode RobotMode) error {
	return s.doOK(ctx, wire.NewCommand(
		wire.Str("robot"), wire.Str("mode"), wire.Str(mode.token())))
}

// SetChassisSpeed commands chassis velocity: z forward m/s, x lateral
// m/s, clockwise rotation degrees/s.
func (s *Session) SetChassisSpeed(ctx context.Context, z, x, clockwise float64) error {
	return s.doOK(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("speed"),
		wire.Str("x"), wire.Float(z),
		wire.Str("y"), wire.Float(x),
		wire.Str("z"), wire.Float(clockwise)))
}

// SetWheelSpeed commands the four wheels individually, in rpm.
func (s *Session) SetWheelSpeed(ctx context.Context, w telemetry.WheelSpeed) error {
	return s.doOK(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("wheel"),
		wire.Str("w1"), wire.Float(w.FrontRight),
		wire.Str("w2"), wire.Float(w.FrontLeft),
		wire.Str("w3"), wire.Float(w.BackLeft),
		wire.Str("w4"), wire.Float(w.BackRight)))
}

// MoveChassis commands a relative move: z forward meters, x lateral
// meters, clockwise rotation degrees.
func (s *Session) MoveChassis(ctx context.Context, z, x, clockwise float64) error {
	return s.doOK(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("move"),
		wire.Str("x"), wire.Float(z),
		wire.Str("y"), wire.Float(x),
		wire.Str("z"), wire.Float(clockwise)))
}

// MoveChassisAt is MoveChassis with explicit speeds: speedXY in m/s
// for the translation, speedZ in degrees/s for the rotation.
func (s *Session) MoveChassisAt(ctx context.Context, z, x, clockwise, speedXY, speedZ float64) error {
	return s.doOK(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("move"),
		wire.Str("x"), wire.Float(z),
		wire.Str("y"), wire.Float(x),
		wire.Str("z"), wire.Float(clockwise),
		wire.Str("vxy"), wire.Float(speedXY),
		wire.Str("vz"), wire.Float(speedZ)))
}

// ChassisPosition queries the chassis position since power-on.
func (s *Session) ChassisPosition(ctx context.Context) (telemetry.ChassisPosition, error) {
	frame, err := s.Do(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("position"), wire.Str("?")))
	if err != nil {
		return telemetry.ChassisPosition{}, err
	}
	return telemetry.DecodeChassisPosition(frame)
}

// ChassisAttitude queries the chassis attitude.
func (s *Session) ChassisAttitude(ctx context.Context) (telemetry.ChassisAttitude, error) {
	frame, err := s.Do(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("attitude"), wire.Str("?")))
	if err != nil {
		return telemetry.ChassisAttitude{}, err
	}
	return telemetry.DecodeChassisAttitude(frame)
}

// ChassisStatus queries the chassis state flags.
func (s *Session) ChassisStatus(ctx context.Context) (telemetry.ChassisStatus, error) {
	frame, err := s.Do(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("status"), wire.Str("?")))
	if err != nil {
		return telemetry.ChassisStatus{}, err
	}
	return telemetry.DecodeChassisStatus(frame)
}

// ChassisSpeed queries chassis velocity and wheel speeds.
func (s *Session) ChassisSpeed(ctx context.Context) (telemetry.ChassisSpeed, error) {
	frame, err := s.Do(ctx, wire.NewCommand(
		wire.Str("chassis"), wire.Str("speed"), wire.Str("?")))
	if err != nil {
		return telemetry.ChassisSpeed{}, err
	}
	return telemetry.DecodeChassisSpeed(frame)
}

// LEDComponent selects which LEDs an LED command addresses.
type LEDComponent string

const (
	LEDAll    LEDComponent = "all"
	LEDTop    LEDComponent = "top_all"
	LEDBottom LEDComponent = "bottom_all"
)

// LEDEffect selects an LED animation.
type LEDEffect string

const (
	EffectSolid LEDEffect = "solid"
	EffectBlink LEDEffect = "blink"
	EffectPulse LEDEffect = "pulse"
	EffectOff   LEDEffect = "off"
)

// SetLED sets the color and effect of a LED component.
func (s *Session) SetLED(ctx context.Context, comp LEDComponent, r, g, b uint8, effect LEDEffect) error {
	return s.doOK(ctx, wire.NewCommand(
		wire.Str("led"), wire.Str("control"),
		wire.Str("comp"), wire.Str(string(comp)),
		wire.Str("r"), wire.Int(int64(r)),
		wire.Str("g"), wire.Int(int64(g)),
		wire.Str("b"), wire.Int(int64(b)),
		wire.Str("effect"), wire.Str(string(effect))))
}

// PositionFeed returns the chassis position push feed. Subscribing
// enables the hardware push stream; unsubscribing the last subscriber
// disables it.
func (s *Session) PositionFeed() *feed.Feed[telemetry.ChassisPosition] {
	return s.positions
}

// AttitudeFeed returns the chassis attitude push feed.
func (s *Session) AttitudeFeed() *feed.Feed[telemetry.ChassisAttitude] {
	return s.attitudes
}

// StatusFeed returns the chassis status push feed.
func (s *Session) StatusFeed() *feed.Feed[telemetry.ChassisStatus] {
	return s.statuses
}

// LineFeed returns the line-recognition push feed.
func (s *Session) LineFeed() *feed.Feed[telemetry.Line] {
	return s.lines
}

// MarkerFeed returns the marker-recognition push feed.
func (s *Session) MarkerFeed() *feed.Feed[[]telemetry.Marker] {
	return s.markers
}

// VideoFeed returns the decoded video frame feed. Subscribing starts
// the video stream and ingestion loop; unsubscribing the last
// subscriber stops both.
func (s *Session) VideoFeed() *feed.Feed[image.Image] {
	return s.video
}

// AudioFeed returns the raw audio chunk feed. Subscribing starts the
// audio stream and ingestion loop; unsubscribing the last subscriber
// stops both.
func (s *Session) AudioFeed() *feed.Feed[[]byte] {
	return s.audio
}

// doOK runs an action command and verifies the "ok" acknowledgement.
func (s *Session) doOK(ctx context.Context, cmd wire.Command) error {
	frame, err := s.Do(ctx, cmd)
	if err != nil {
		return err
	}
	if !frame.IsOK() {
		return fmt.Errorf("%w: expected ok, got %q",
			telemetry.ErrProtocolViolation, frame.String())
	}
	return nil
}

// logState records a session state change.
func (s *Session) logState(oldState, newState, reason string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionOut,
		Channel:   log.ChannelCommand,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
