// Package dispatch serializes commands onto the RoboLink command
// channel.
//
// The wire protocol has no request identifiers: a response can only be
// correlated to its command by strict FIFO issuance, with exactly one
// response consumed per command before the next is sent. The
// Dispatcher therefore guarantees at most one in-flight command on the
// channel at any time. Callers Submit concurrently; a single dispatch
// goroutine consumes an ordered queue, writes one encoded command,
// blocks for the next frame on the same channel and resolves that
// command's Pending result with it.
//
// Cancellation is honored only before a command is sent: an entry
// whose context is already canceled when dequeued resolves as
// ErrCanceled without touching the wire, preserving ordering without
// stalling the queue. Once a command is on the wire its reply is
// always consumed, even if the caller has given up - dropping it would
// desynchronize every later command.
//
// Round trips carry no timeout. A stalled robot stalls the dispatcher;
// bounding waits is the caller's business via Await contexts.
package dispatch
