package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/media"
	"github.com/robolink-protocol/robolink-go/pkg/push"
	"github.com/robolink-protocol/robolink-go/pkg/transport"
)

// Config configures a session.
type Config struct {
	// Host is the robot address (IP or name), without port.
	Host string

	// CommandPort is the TCP command/response port.
	CommandPort int

	// PushPort is the local UDP port push frames arrive on.
	PushPort int

	// VideoPort is the TCP video stream port.
	VideoPort int

	// AudioPort is the TCP audio stream port.
	AudioPort int

	// PushSchema selects the push envelope layout of the deployed
	// firmware. Pin per deployment; validate against a live robot.
	PushSchema push.Schema

	// ConnectTimeout bounds channel establishment only.
	ConnectTimeout time.Duration

	// ProtocolLogger receives protocol events. Nil disables capture.
	ProtocolLogger log.Logger

	// Decoder decodes the raw video stream. Nil leaves the video feed
	// silent (stream enable commands are still issued).
	Decoder media.Decoder

	// Uploader transfers auxiliary files (audio clips) to the robot.
	// Nil disables Upload.
	Uploader Uploader

	// OpenVideo opens the raw video byte stream. Nil dials
	// Host:VideoPort over TCP.
	OpenVideo func(ctx context.Context) (io.ReadCloser, error)

	// OpenAudio opens the raw audio byte stream. Nil dials
	// Host:AudioPort over TCP.
	OpenAudio func(ctx context.Context) (io.ReadCloser, error)
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		CommandPort:    transport.DefaultCommandPort,
		PushPort:       transport.DefaultPushPort,
		VideoPort:      transport.DefaultVideoPort,
		AudioPort:      transport.DefaultAudioPort,
		PushSchema:     push.SchemaPushToken,
		ConnectTimeout: transport.DefaultConnectTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CommandPort == 0 {
		c.CommandPort = def.CommandPort
	}
	if c.PushPort == 0 {
		c.PushPort = def.PushPort
	}
	if c.VideoPort == 0 {
		c.VideoPort = def.VideoPort
	}
	if c.AudioPort == 0 {
		c.AudioPort = def.AudioPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.ProtocolLogger == nil {
		c.ProtocolLogger = log.NoopLogger{}
	}
	return c
}

// fileConfig is the YAML form of a session configuration.
type fileConfig struct {
	Host        string `yaml:"host"`
	CommandPort int    `yaml:"command_port"`
	PushPort    int    `yaml:"push_port"`
	VideoPort   int    `yaml:"video_port"`
	AudioPort   int    `yaml:"audio_port"`

	// PushSchema is "legacy" or "push_token".
	PushSchema string `yaml:"push_schema"`

	// CaptureFile enables protocol capture to the given .rlog path.
	CaptureFile string `yaml:"capture_file"`
}

// LoadConfig reads a YAML session configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Host = fc.Host
	if fc.CommandPort != 0 {
		cfg.CommandPort = fc.CommandPort
	}
	if fc.PushPort != 0 {
		cfg.PushPort = fc.PushPort
	}
	if fc.VideoPort != 0 {
		cfg.VideoPort = fc.VideoPort
	}
	if fc.AudioPort != 0 {
		cfg.AudioPort = fc.AudioPort
	}

	switch fc.PushSchema {
	case "", "push_token":
		cfg.PushSchema = push.SchemaPushToken
	case "legacy":
		cfg.PushSchema = push.SchemaLegacy
	default:
		return Config{}, fmt.Errorf("unknown push_schema %q", fc.PushSchema)
	}

	if fc.CaptureFile != "" {
		logger, err := log.NewFileLogger(fc.CaptureFile)
		if err != nil {
			return Config{}, fmt.Errorf("open capture file: %w", err)
		}
		cfg.ProtocolLogger = logger
	}

	return cfg, nil
}
