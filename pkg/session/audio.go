package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/robolink-protocol/robolink-go/pkg/log"
)

// audioChunkSize is the read size for raw audio chunks.
const audioChunkSize = 4096

// runAudio ingests the raw audio stream and publishes chunks on the
// audio feed until ctx is canceled or the stream ends. Each published
// chunk is a fresh slice; subscribers may keep it.
func (s *Session) runAudio(ctx context.Context) {
	open := s.cfg.OpenAudio
	if open == nil {
		open = s.dialAudio
	}

	stream, err := open(ctx)
	if err != nil {
		s.logAudioError("open audio stream", err)
		return
	}
	defer stream.Close()

	// Closing the stream is what unblocks a pending read when ctx ends.
	stop := context.AfterFunc(ctx, func() { stream.Close() })
	defer stop()

	buf := make([]byte, audioChunkSize)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.audio.Publish(chunk)
		}
		if err != nil {
			if ctx.Err() == nil && err != io.EOF {
				s.logAudioError("read audio stream", err)
			}
			return
		}
	}
}

// dialAudio is the default audio stream opener, a plain TCP dial to
// the robot's audio port.
func (s *Session) dialAudio(ctx context.Context) (io.ReadCloser, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.AudioPort))
	if err != nil {
		return nil, fmt.Errorf("dial audio stream: %w", err)
	}
	return conn, nil
}

func (s *Session) logAudioError(where string, err error) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionIn,
		Channel:   log.ChannelAudio,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: where,
		},
	})
}
