// Package interactive implements the robolink-shell command loop.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/robolink-protocol/robolink-go/pkg/feed"
	"github.com/robolink-protocol/robolink-go/pkg/session"
	"github.com/robolink-protocol/robolink-go/pkg/telemetry"
	"github.com/robolink-protocol/robolink-go/pkg/transport"
	"github.com/robolink-protocol/robolink-go/pkg/version"
	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// commandTimeout bounds each interactive round trip.
const commandTimeout = 10 * time.Second

// Controller provides the shell with the live session and a way to
// report a lost connection.
type Controller interface {
	// Session returns the current session. It changes after a
	// reconnect, so the shell must not hold on to it across commands.
	Session() *session.Session

	// ReportLoss tells the owner the command channel died.
	ReportLoss()
}

// Shell handles interactive mode for robolink-shell.
type Shell struct {
	ctrl Controller
	rl   *readline.Instance

	// Active push subscriptions by topic name. Guarded by mu because
	// Rewatch runs off the command loop.
	mu      sync.Mutex
	watches map[string]*feed.Subscription
}

// New creates the interactive shell.
func New(ctrl Controller) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "robot> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Shell{
		ctrl:    ctrl,
		rl:      rl,
		watches: make(map[string]*feed.Subscription),
	}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid interfering with input.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "version", "v":
			s.cmdVersion()

		case "mode":
			s.cmdMode(args)

		case "speed":
			s.cmdSpeed(args)

		case "wheel":
			s.cmdWheel(args)

		case "move":
			s.cmdMove(args)

		case "position", "pos":
			s.cmdPosition()

		case "attitude", "att":
			s.cmdAttitude()

		case "chassis-status", "cs":
			s.cmdChassisStatus()

		case "chassis-speed":
			s.cmdChassisSpeed()

		case "watch":
			s.cmdWatch(args)

		case "unwatch":
			s.cmdUnwatch(args)

		case "led":
			s.cmdLED(args)

		case "raw":
			s.cmdRaw(args)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Robot Commands:
  Motion:
    mode <m>             - Set robot mode (chassis_lead, gimbal_lead, free)
    speed <z> <x> <cw>   - Set chassis velocity (m/s, m/s, deg/s)
    wheel <w1..w4>       - Set wheel speeds (rpm)
    move <z> <x> <cw>    - Relative chassis move (m, m, deg)

  Telemetry:
    position             - Query chassis position
    attitude             - Query chassis attitude
    chassis-status       - Query chassis state flags
    chassis-speed        - Query chassis and wheel speeds
    watch <topic>        - Stream pushes (position, attitude, status, line, marker)
    unwatch <topic>      - Stop streaming a topic

  Other:
    version              - Query the robot SDK version
    led <comp> <r> <g> <b> [effect] - Set LEDs (comp: all, top_all, bottom_all)
    raw <tokens...>      - Send a raw protocol command
    help                 - Show this help
    quit                 - Exit the shell`)
}

// session returns the current session, printing a notice when there is
// none (the supervisor is mid-reconnect).
func (s *Shell) session() (*session.Session, bool) {
	sess := s.ctrl.Session()
	if sess == nil {
		fmt.Fprintln(s.rl.Stdout(), "Not connected")
		return nil, false
	}
	return sess, true
}

// commandCtx returns the context for one interactive round trip.
func commandCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// report prints a command result and routes connection losses to the
// controller so reconnection can start.
func (s *Shell) report(err error) {
	if err == nil {
		fmt.Fprintln(s.rl.Stdout(), "OK")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
	if errors.Is(err, transport.ErrConnectionLost) {
		fmt.Fprintln(s.rl.Stdout(), "Connection lost")
		s.ctrl.ReportLoss()
	}
}

func (s *Shell) cmdVersion() {
	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()

	raw, err := sess.Version(ctx)
	if err != nil {
		s.report(err)
		return
	}

	if v, err := version.ParseReply(raw); err == nil {
		fmt.Fprintf(s.rl.Stdout(), "SDK version: %s\n", v)
	} else {
		fmt.Fprintf(s.rl.Stdout(), "SDK version (raw): %s\n", raw)
	}
}

func (s *Shell) cmdMode(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: mode <chassis_lead|gimbal_lead|free>")
		return
	}

	var mode session.RobotMode
	switch strings.ToLower(args[0]) {
	case "chassis_lead", "chassis":
		mode = session.ModeChassisLead
	case "gimbal_lead", "gimbal":
		mode = session.ModeGimbalLead
	case "free":
		mode = session.ModeFree
	default:
		fmt.Fprintf(s.rl.Stdout(), "Unknown mode: %s\n", args[0])
		return
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()
	s.report(sess.SetRobotMode(ctx, mode))
}

func (s *Shell) cmdSpeed(args []string) {
	vals, ok := s.parseFloats(args, 3, "Usage: speed <z> <x> <clockwise>")
	if !ok {
		return
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()
	s.report(sess.SetChassisSpeed(ctx, vals[0], vals[1], vals[2]))
}

func (s *Shell) cmdWheel(args []string) {
	vals, ok := s.parseFloats(args, 4, "Usage: wheel <w1> <w2> <w3> <w4>")
	if !ok {
		return
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()
	s.report(sess.SetWheelSpeed(ctx, telemetry.WheelSpeed{
		FrontRight: vals[0],
		FrontLeft:  vals[1],
		BackLeft:   vals[2],
		BackRight:  vals[3],
	}))
}

func (s *Shell) cmdMove(args []string) {
	vals, ok := s.parseFloats(args, 3, "Usage: move <z> <x> <clockwise>")
	if !ok {
		return
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()
	s.report(sess.MoveChassis(ctx, vals[0], vals[1], vals[2]))
}

func (s *Shell) cmdPosition() {
	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()

	pos, err := sess.ChassisPosition(ctx)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprint(s.rl.Stdout(), formatPosition(pos))
}

func (s *Shell) cmdAttitude() {
	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()

	att, err := sess.ChassisAttitude(ctx)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "pitch=%.2f roll=%.2f yaw=%.2f\n", att.Pitch, att.Roll, att.Yaw)
}

func (s *Shell) cmdChassisStatus() {
	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()

	st, err := sess.ChassisStatus(ctx)
	if err != nil {
		s.report(err)
		return
	}

	flags := []struct {
		name string
		on   bool
	}{
		{"static", st.Static},
		{"uphill", st.UpHill},
		{"downhill", st.DownHill},
		{"on-slope", st.OnSlope},
		{"picked-up", st.PickUp},
		{"slipping", st.Slip},
		{"impact-x", st.ImpactX},
		{"impact-y", st.ImpactY},
		{"impact-z", st.ImpactZ},
		{"rolled-over", st.RollOver},
		{"hill-static", st.HillStatic},
	}

	active := make([]string, 0, len(flags))
	for _, f := range flags {
		if f.on {
			active = append(active, f.name)
		}
	}
	if len(active) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "no flags set")
		return
	}
	fmt.Fprintln(s.rl.Stdout(), strings.Join(active, ", "))
}

func (s *Shell) cmdChassisSpeed() {
	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()

	sp, err := sess.ChassisSpeed(ctx)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "z=%.2f x=%.2f cw=%.2f wheels=[%.0f %.0f %.0f %.0f]\n",
		sp.Z, sp.X, sp.Clockwise,
		sp.Wheels.FrontRight, sp.Wheels.FrontLeft, sp.Wheels.BackLeft, sp.Wheels.BackRight)
}

func (s *Shell) cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch <position|attitude|status|line|marker>")
		return
	}

	topic := strings.ToLower(args[0])
	s.mu.Lock()
	_, exists := s.watches[topic]
	s.mu.Unlock()
	if exists {
		fmt.Fprintf(s.rl.Stdout(), "Already watching %s\n", topic)
		return
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	sub, ok := s.subscribe(sess, topic)
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "Unknown topic: %s\n", topic)
		return
	}

	s.mu.Lock()
	s.watches[topic] = sub
	s.mu.Unlock()
	fmt.Fprintf(s.rl.Stdout(), "Watching %s\n", topic)
}

// subscribe attaches a print callback to the named feed of sess.
func (s *Shell) subscribe(sess *session.Session, topic string) (*feed.Subscription, bool) {
	var sub *feed.Subscription
	switch topic {
	case "position":
		sub = sess.PositionFeed().Subscribe(func(p telemetry.ChassisPosition) {
			s.printPush("position", strings.TrimSuffix(formatPosition(p), "\n"))
		})
	case "attitude":
		sub = sess.AttitudeFeed().Subscribe(func(a telemetry.ChassisAttitude) {
			s.printPush("attitude", fmt.Sprintf("pitch=%.2f roll=%.2f yaw=%.2f", a.Pitch, a.Roll, a.Yaw))
		})
	case "status":
		sub = sess.StatusFeed().Subscribe(func(st telemetry.ChassisStatus) {
			s.printPush("status", fmt.Sprintf("%+v", st))
		})
	case "line":
		sub = sess.LineFeed().Subscribe(func(l telemetry.Line) {
			s.printPush("line", fmt.Sprintf("type=%s points=%d", l.Type, len(l.Points)))
		})
	case "marker":
		sub = sess.MarkerFeed().Subscribe(func(ms []telemetry.Marker) {
			s.printPush("marker", fmt.Sprintf("count=%d", len(ms)))
		})
	default:
		return nil, false
	}
	return sub, true
}

// Rewatch moves the active watches onto the current session. The
// session owner calls this after a reconnect replaces the session;
// subscribing re-enables the hardware push streams.
func (s *Shell) Rewatch() {
	sess := s.ctrl.Session()
	if sess == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, old := range s.watches {
		old.Cancel()
		if sub, ok := s.subscribe(sess, topic); ok {
			s.watches[topic] = sub
		} else {
			delete(s.watches, topic)
		}
	}
}

func (s *Shell) cmdUnwatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: unwatch <topic>")
		return
	}

	topic := strings.ToLower(args[0])
	s.mu.Lock()
	sub, ok := s.watches[topic]
	if ok {
		delete(s.watches, topic)
	}
	s.mu.Unlock()
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "Not watching %s\n", topic)
		return
	}
	sub.Cancel()
	fmt.Fprintf(s.rl.Stdout(), "Stopped watching %s\n", topic)
}

func (s *Shell) cmdLED(args []string) {
	if len(args) < 4 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: led <comp> <r> <g> <b> [effect]")
		fmt.Fprintln(s.rl.Stdout(), "  comp: all, top_all, bottom_all; effect: solid, blink, pulse, off")
		return
	}

	comp := session.LEDComponent(args[0])
	rgb := make([]uint8, 3)
	for i, arg := range args[1:4] {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid color value %q: %v\n", arg, err)
			return
		}
		rgb[i] = uint8(v)
	}

	effect := session.EffectSolid
	if len(args) >= 5 {
		effect = session.LEDEffect(args[4])
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()
	s.report(sess.SetLED(ctx, comp, rgb[0], rgb[1], rgb[2], effect))
}

func (s *Shell) cmdRaw(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: raw <tokens...>")
		return
	}

	cmd, err := wire.ParseCommand(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Invalid command: %v\n", err)
		return
	}

	sess, ok := s.session()
	if !ok {
		return
	}
	ctx, cancel := commandCtx()
	defer cancel()

	frame, err := sess.Do(ctx, cmd)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s\n", frame.String())
}

// printPush prints a push update above the prompt.
func (s *Shell) printPush(topic, detail string) {
	fmt.Fprintf(s.rl.Stdout(), "\n[%s] %s: %s\n", time.Now().Format("15:04:05"), topic, detail)
	s.rl.Refresh()
}

// parseFloats parses exactly n float arguments, printing usage on error.
func (s *Shell) parseFloats(args []string, n int, usage string) ([]float64, bool) {
	if len(args) != n {
		fmt.Fprintln(s.rl.Stdout(), usage)
		return nil, false
	}
	vals := make([]float64, n)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "Invalid number %q: %v\n", arg, err)
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func formatPosition(p telemetry.ChassisPosition) string {
	if p.Clockwise != nil {
		return fmt.Sprintf("z=%.2f x=%.2f cw=%.2f\n", p.Z, p.X, *p.Clockwise)
	}
	return fmt.Sprintf("z=%.2f x=%.2f\n", p.Z, p.X)
}
