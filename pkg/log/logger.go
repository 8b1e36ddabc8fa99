package log

// Logger receives protocol events as a session produces them.
//
// Implementations must be safe for concurrent use: the dispatcher, the
// push loop and the stream ingestors all log from their own goroutines.
// Log runs on the protocol hot path, so implementations should return
// quickly or hand the event off.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. The zero value is ready to use; it is
// the default when no capture is configured.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

// MultiLogger fans one event stream out to several loggers, for
// example a console bridge plus a capture file.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines the given loggers into one.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log forwards the event to every sink in order.
func (m *MultiLogger) Log(event Event) {
	for _, sink := range m.sinks {
		sink.Log(event)
	}
}

var (
	_ Logger = NoopLogger{}
	_ Logger = (*MultiLogger)(nil)
)
