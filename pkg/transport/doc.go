// Package transport provides the network channels a RoboLink session
// runs over: the TCP command/response channel, the UDP push channel and
// the TCP video byte stream.
//
// All channels implement the Channel interface: ordered byte chunks via
// Receive, whole-buffer writes via Send, idempotent Close. Framing is
// not a transport concern; pkg/wire's FrameScanner sits on top of any
// Channel.
//
// Connection establishment is the only place timeouts apply. Individual
// command round-trips are unbounded, matching the protocol: a stalled
// response stalls its session rather than desynchronizing the
// command/response pairing.
package transport
