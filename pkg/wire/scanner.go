package wire

import (
	"bytes"
)

// ByteSource yields chunks of received bytes in order. Partial frames
// are allowed; a chunk may also carry more than one frame. Implemented
// by transport channels.
type ByteSource interface {
	// Receive returns the next chunk of bytes, blocking until data is
	// available. A closed or failed channel returns an error.
	Receive() ([]byte, error)
}

// FrameScanner incrementally decodes terminator-delimited frames from a
// byte source. The protocol has no length prefix, so the scanner grows
// a buffer from successive reads and cuts a frame whenever a ';'
// appears; bytes after the terminator are kept for the next frame.
//
// This is correct only because the channel delivers bytes in order and
// the terminator cannot appear mid-payload - a wire protocol invariant,
// not validated here.
//
// FrameScanner is not safe for concurrent use; each channel has exactly
// one reader.
type FrameScanner struct {
	src ByteSource
	buf []byte
}

// NewFrameScanner creates a scanner reading from src.
func NewFrameScanner(src ByteSource) *FrameScanner {
	return &FrameScanner{src: src}
}

// Next blocks until a complete frame is available and returns it.
// A source error aborts the in-progress decode: any buffered partial
// frame is discarded and the error is returned. Next never returns a
// partial frame.
func (s *FrameScanner) Next() (ResponseFrame, error) {
	for {
		if idx := bytes.IndexByte(s.buf, Terminator); idx >= 0 {
			raw := s.buf[:idx+1]
			s.buf = s.buf[idx+1:]

			frame, err := ParseFrame(raw)
			if err == ErrFrameEmpty {
				// Stray terminator with no tokens, skip it.
				continue
			}
			return frame, err
		}

		chunk, err := s.src.Receive()
		if err != nil {
			s.buf = nil
			return ResponseFrame{}, err
		}
		s.buf = append(s.buf, chunk...)
	}
}
