// Package connection keeps a robot link alive across failures.
//
// A Supervisor owns the lifecycle of one logical connection: it runs
// the initial establish, is told by the caller when the link drops,
// and re-establishes with exponential backoff until it succeeds or is
// closed.
//
// # Retry schedule
//
// Delays grow exponentially from the initial value up to the cap and
// stay there until an attempt succeeds, which resets the schedule:
//
//	1s, 2s, 4s, 8s, 16s, 30s, 30s, ...
//
// Each delay gets random jitter of up to a quarter of the base value
// so a fleet of clients does not retry in lockstep.
//
// The supervisor never probes the link itself. Detection belongs to
// the session's command dispatcher, which reports losses via
// ConnectionLost; re-enabling push streams after a successful
// re-establish belongs to the OnConnected callback.
package connection
