// Package media defines the video-decoder collaborator interface
// consumed by sessions.
//
// The codec itself lives outside this module. A session only needs a
// lazy, infinite, non-restartable sequence of decoded frames given the
// robot's raw video byte stream; any H.264 (or other) decoder can be
// plugged in behind these two interfaces.
package media

import (
	"image"
	"io"
)

// FrameSource is a lazy sequence of decoded video frames. It is
// infinite while the underlying stream lives and non-restartable: once
// Next returns an error, the source is exhausted.
type FrameSource interface {
	// Next blocks until the next decoded frame is available.
	Next() (image.Image, error)

	// Close releases decoder resources.
	Close() error
}

// Decoder turns a raw video byte stream into a FrameSource.
type Decoder interface {
	// Open starts decoding the stream. The returned source owns r.
	Open(r io.Reader) (FrameSource, error)
}
