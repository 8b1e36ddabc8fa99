// Command robolink-shell is an interactive console for driving a robot
// over its plaintext control protocol.
//
// Usage:
//
//	robolink-shell [flags]
//
// Flags:
//
//	-config string    YAML configuration file path
//	-host string      Robot address (overrides config)
//	-capture string   Write a protocol capture to this .rlog file
//	-discover         Find the robot via UDP broadcast when no host is set
//	-reconnect        Re-establish the session after connection loss
//
// Examples:
//
//	# Connect to a known robot
//	robolink-shell -host 192.168.2.1
//
//	# Discover the robot on the LAN and keep the session alive
//	robolink-shell -discover -reconnect
//
//	# Record everything for later analysis with robolink-log
//	robolink-shell -host 192.168.2.1 -capture session.rlog
//
// Interactive Commands:
//
//	version              - Query the robot SDK version
//	mode <m>             - Set robot mode (chassis_lead, gimbal_lead, free)
//	speed <z> <x> <cw>   - Set chassis velocity
//	wheel <w1..w4>       - Set wheel speeds (rpm)
//	move <z> <x> <cw>    - Relative chassis move
//	position|attitude    - Query chassis telemetry
//	watch <topic>        - Subscribe to a push feed (position, attitude, status, line, marker)
//	unwatch <topic>      - Cancel a push subscription
//	led <comp> <r> <g> <b> [effect] - Set LEDs
//	raw <tokens...>      - Send a raw protocol command
//	quit                 - Exit the shell
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robolink-protocol/robolink-go/cmd/robolink-shell/interactive"
	"github.com/robolink-protocol/robolink-go/pkg/connection"
	"github.com/robolink-protocol/robolink-go/pkg/discovery"
	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/session"
)

type flags struct {
	ConfigFile string
	Host       string
	Capture    string
	Discover   bool
	Reconnect  bool
}

// controller owns the current session and hands connection losses to
// the supervisor. It implements interactive.Controller.
type controller struct {
	mu   sync.RWMutex
	sess *session.Session
	sup  *connection.Supervisor
}

func (c *controller) Session() *session.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

func (c *controller) setSession(s *session.Session) {
	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()
}

// closeSession tears down the current session, freeing the UDP push
// port for the next establishment.
func (c *controller) closeSession() {
	c.mu.Lock()
	old := c.sess
	c.sess = nil
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

func (c *controller) ReportLoss() {
	c.sup.ConnectionLost()
}

func main() {
	var f flags
	flag.StringVar(&f.ConfigFile, "config", "", "YAML configuration file path")
	flag.StringVar(&f.Host, "host", "", "Robot address (overrides config)")
	flag.StringVar(&f.Capture, "capture", "", "Write a protocol capture to this .rlog file")
	flag.BoolVar(&f.Discover, "discover", false, "Find the robot via UDP broadcast when no host is set")
	flag.BoolVar(&f.Reconnect, "reconnect", false, "Re-establish the session after connection loss")
	flag.Parse()

	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	cfg, err := loadConfig(f)
	if err != nil {
		stdlog.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Host == "" {
		if !f.Discover {
			stdlog.Fatal("No robot host configured (use -host, a config file, or -discover)")
		}
		host, err := discoverRobot(ctx)
		if err != nil {
			stdlog.Fatalf("Discovery failed: %v", err)
		}
		stdlog.Printf("Discovered robot at %s", host)
		cfg.Host = host
	}

	ctrl := &controller{}
	establish := func(ctx context.Context) error {
		ctrl.closeSession()
		s, err := session.Open(ctx, cfg)
		if err != nil {
			return err
		}
		ctrl.setSession(s)
		return nil
	}

	ctrl.sup = connection.NewSupervisor(establish, connection.Config{
		AutoReconnect: f.Reconnect,
		Logger:        cfg.ProtocolLogger,
	})
	defer ctrl.sup.Close()

	stdlog.Printf("Connecting to %s ...", cfg.Host)
	if err := ctrl.sup.Connect(ctx); err != nil {
		stdlog.Fatalf("Failed to connect: %v", err)
	}
	stdlog.Printf("Connected (session %s)", ctrl.Session().ID())

	shell, err := interactive.New(ctrl)
	if err != nil {
		stdlog.Fatalf("Failed to start shell: %v", err)
	}
	stdlog.SetOutput(shell.Stdout())

	// After a reconnect the session is new; moving the watches over
	// re-enables the push streams the user had on.
	ctrl.sup.OnConnected(shell.Rewatch)
	go shell.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		stdlog.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	stdlog.Println("Shutting down...")
	cancel()
	if s := ctrl.Session(); s != nil {
		s.Close()
	}
}

// loadConfig builds the session configuration from the config file and
// flag overrides.
func loadConfig(f flags) (session.Config, error) {
	cfg := session.DefaultConfig()
	if f.ConfigFile != "" {
		loaded, err := session.LoadConfig(f.ConfigFile)
		if err != nil {
			return session.Config{}, err
		}
		cfg = loaded
	}
	if f.Host != "" {
		cfg.Host = f.Host
	}
	if f.Capture != "" {
		logger, err := log.NewFileLogger(f.Capture)
		if err != nil {
			return session.Config{}, fmt.Errorf("open capture file: %w", err)
		}
		cfg.ProtocolLogger = logger
	}
	return cfg, nil
}

// discoverRobot waits for the first robot announcement on the LAN.
func discoverRobot(ctx context.Context) (string, error) {
	listener, err := discovery.Listen(0)
	if err != nil {
		return "", err
	}
	defer listener.Close()

	stdlog.Println("Waiting for a robot announcement ...")
	findCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ann, err := listener.FindFirst(findCtx)
	if err != nil {
		return "", err
	}
	return ann.Address, nil
}
