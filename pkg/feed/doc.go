// Package feed provides the in-process broadcast primitive RoboLink
// sessions deliver telemetry on.
//
// A Feed[T] is an explicit broadcast registry: a concurrency-safe
// mapping from subscription identity to callback. Publish delivers a
// value synchronously to every current subscriber; Subscribe returns a
// handle whose Cancel removes the subscriber (idempotent).
//
// Feeds additionally expose edge-triggered lifecycle hooks: OnFirst
// fires when the subscriber set goes from empty to non-empty, OnLast
// when it goes back to empty. The session's stream controller uses
// these to keep hardware push streams enabled exactly while someone is
// listening. Hooks fire synchronously on the goroutine performing the
// (un)subscribe, after the feed's internal lock is released, so a hook
// may itself use the feed.
package feed
