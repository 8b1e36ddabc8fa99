package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/feed"
	"github.com/robolink-protocol/robolink-go/pkg/log"
	"github.com/robolink-protocol/robolink-go/pkg/telemetry"
	"github.com/robolink-protocol/robolink-go/pkg/wire"
)

// streamController translates feed subscriber-count transitions into
// the hardware commands that start and stop push and video streams.
// The first subscriber of a feed enables its stream, the last
// cancellation disables it; subscriptions in between touch nothing.
//
// Toggles are queued synchronously in the transition hook, so they hit
// the wire in transition order; results are awaited on their own
// goroutines and are best effort: a failed toggle is logged and never
// surfaced to subscribers.
type streamController struct {
	s      *Session
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	videoMu     sync.Mutex
	videoCancel context.CancelFunc

	audioMu     sync.Mutex
	audioCancel context.CancelFunc
}

func newStreamController(s *Session) *streamController {
	ctx, cancel := context.WithCancel(context.Background())
	return &streamController{s: s, ctx: ctx, cancel: cancel}
}

// wireFeeds installs the transition hooks. Call before any feed gains
// its first subscriber.
func (c *streamController) wireFeeds() {
	bindToggle(c, c.s.positions, topicChassis, subtopicPosition)
	bindToggle(c, c.s.attitudes, topicChassis, subtopicAttitude)
	bindToggle(c, c.s.statuses, topicChassis, subtopicStatus)
	bindToggle(c, c.s.lines, topicVision, subtopicLine)
	bindToggle(c, c.s.markers, topicVision, subtopicMarker)

	c.s.video.OnFirst(c.startVideo)
	c.s.video.OnLast(c.stopVideo)
	c.s.audio.OnFirst(c.startAudio)
	c.s.audio.OnLast(c.stopAudio)
}

// stop cancels all toggle commands and the video loop, then waits for
// the controller's goroutines to drain.
func (c *streamController) stop() {
	c.cancel()
	c.wg.Wait()
}

// bindToggle drives one push stream from one feed's empty/non-empty
// transitions.
func bindToggle[T any](c *streamController, f *feed.Feed[T], topic, subtopic string) {
	f.OnFirst(func() { c.issue(pushToggle(topic, subtopic, true)) })
	f.OnLast(func() { c.issue(pushToggle(topic, subtopic, false)) })
}

// pushToggle builds "<topic> push <subtopic> on|off".
func pushToggle(topic, subtopic string, enabled bool) wire.Command {
	return wire.NewCommand(
		wire.Str(topic), wire.Str("push"), wire.Str(subtopic), wire.Switch(enabled))
}

// startVideo turns the video stream on and starts the ingestion loop.
func (c *streamController) startVideo() {
	vctx, vcancel := context.WithCancel(c.ctx)
	c.videoMu.Lock()
	c.videoCancel = vcancel
	c.videoMu.Unlock()

	c.issue(wire.NewCommand(wire.Str("stream"), wire.Switch(true)))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.s.runVideo(vctx)
	}()
}

// stopVideo stops the ingestion loop and turns the video stream off.
func (c *streamController) stopVideo() {
	c.videoMu.Lock()
	if c.videoCancel != nil {
		c.videoCancel()
		c.videoCancel = nil
	}
	c.videoMu.Unlock()

	c.issue(wire.NewCommand(wire.Str("stream"), wire.Switch(false)))
}

// startAudio turns the audio stream on and starts the ingestion loop.
func (c *streamController) startAudio() {
	actx, acancel := context.WithCancel(c.ctx)
	c.audioMu.Lock()
	c.audioCancel = acancel
	c.audioMu.Unlock()

	c.issue(wire.NewCommand(wire.Str("audio"), wire.Switch(true)))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.s.runAudio(actx)
	}()
}

// stopAudio stops the ingestion loop and turns the audio stream off.
func (c *streamController) stopAudio() {
	c.audioMu.Lock()
	if c.audioCancel != nil {
		c.audioCancel()
		c.audioCancel = nil
	}
	c.audioMu.Unlock()

	c.issue(wire.NewCommand(wire.Str("audio"), wire.Switch(false)))
}

// issue queues a toggle command. Submission happens synchronously in
// the transition hook: Submit is non-blocking, and queueing here is
// what keeps an enable ordered before a later disable on the wire.
// Only the result is handled asynchronously.
func (c *streamController) issue(cmd wire.Command) {
	pending, err := c.s.dispatcher.Submit(c.ctx, cmd)
	if err != nil {
		c.logToggleFailure(cmd, err)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		frame, err := pending.Await(c.ctx)
		if err != nil {
			if c.ctx.Err() == nil {
				c.logToggleFailure(cmd, err)
			}
			return
		}
		if !frame.IsOK() {
			c.logToggleFailure(cmd, fmt.Errorf("%w: expected ok, got %q",
				telemetry.ErrProtocolViolation, frame.String()))
		}
	}()
}

func (c *streamController) logToggleFailure(cmd wire.Command, err error) {
	c.s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.s.id,
		Direction: log.DirectionOut,
		Channel:   log.ChannelCommand,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: cmd.String(),
		},
	})
}
