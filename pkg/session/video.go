package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/log"
)

// runVideo ingests the raw video stream and publishes decoded frames
// on the video feed until ctx is canceled or the stream ends.
// Ingestion failures are logged on the protocol logger; subscribers
// only ever see frames.
func (s *Session) runVideo(ctx context.Context) {
	if s.cfg.Decoder == nil {
		return
	}

	open := s.cfg.OpenVideo
	if open == nil {
		open = s.dialVideo
	}

	stream, err := open(ctx)
	if err != nil {
		s.logVideoError("open video stream", err)
		return
	}
	defer stream.Close()

	// Closing the stream is what unblocks the decoder when ctx ends.
	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer stop()

	source, err := s.cfg.Decoder.Open(stream)
	if err != nil {
		s.logVideoError("open video decoder", err)
		return
	}
	defer source.Close()

	for {
		frame, err := source.Next()
		if err != nil {
			if ctx.Err() == nil {
				s.logVideoError("decode video frame", err)
			}
			return
		}
		s.video.Publish(frame)
	}
}

// dialVideo is the default video stream opener, a plain TCP dial to
// the robot's video port.
func (s *Session) dialVideo(ctx context.Context) (io.ReadCloser, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.VideoPort))
	if err != nil {
		return nil, fmt.Errorf("dial video stream: %w", err)
	}
	return conn, nil
}

func (s *Session) logVideoError(where string, err error) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionIn,
		Channel:   log.ChannelVideo,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: where,
		},
	})
}
