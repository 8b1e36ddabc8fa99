// Package session ties the RoboLink protocol engine together: one
// Session owns the command dispatcher on the TCP channel, the push
// demultiplexer on the UDP channel, the typed telemetry feeds and the
// stream controller that keeps hardware push streams enabled exactly
// while their feed has subscribers.
//
// Several loops run for the life of a session: the dispatch loop (one
// command in flight at a time), the push loop (continuous) and the
// video and audio ingestion loops (only while their feed has
// subscribers).
// They share no mutable state beyond the thread-safe feeds and the
// dispatcher's queue.
//
// Closing the session closes the underlying channels, which unblocks
// every loop and resolves still-pending command futures with
// ErrConnectionLost.
package session
