// Package log provides structured protocol logging for RoboLink.
//
// This package defines the Logger interface and Event types for
// capturing protocol-level traffic on a session's channels (command,
// push, video, audio). It is separate from operational logging (slog) -
// protocol capture provides a complete machine-readable trace of every
// frame for debugging against a live robot.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For a capture file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("session.rlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Frame: raw frame bytes on any channel (FrameEvent)
//   - Command: a command/response round trip (CommandEvent)
//   - State: session or channel state changes (StateChangeEvent)
//   - Error: dropped pushes, decode failures (ErrorEventData)
//
// # File Format
//
// Capture files use CBOR encoding with the .rlog extension. The
// robolink-log CLI tool provides viewing and filtering.
package log
