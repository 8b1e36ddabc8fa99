package wire

import (
	"errors"
	"strings"
)

// Frame errors.
var (
	// ErrFrameUnterminated indicates a buffer that does not end with ';'.
	ErrFrameUnterminated = errors.New("frame not terminated")

	// ErrFrameEmpty indicates a frame with no tokens.
	ErrFrameEmpty = errors.New("frame is empty")
)

// ResponseFrame is one received message, tokenized: the trailing ';'
// stripped and the remainder split on spaces. Token order is positional
// and the schema depends on the command that produced the frame.
type ResponseFrame struct {
	tokens []string
}

// ParseFrame decodes a complete terminated message into a frame.
// The buffer must end with the terminator byte; anything else is a
// framing bug in the caller, not a recoverable condition.
func ParseFrame(buf []byte) (ResponseFrame, error) {
	if len(buf) == 0 || buf[len(buf)-1] != Terminator {
		return ResponseFrame{}, ErrFrameUnterminated
	}
	body := strings.TrimSpace(string(buf[:len(buf)-1]))
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return ResponseFrame{}, ErrFrameEmpty
	}
	return ResponseFrame{tokens: tokens}, nil
}

// FrameFromTokens builds a frame directly from tokens. Used by tests
// and by the push demultiplexer when re-slicing an envelope payload.
func FrameFromTokens(tokens []string) ResponseFrame {
	return ResponseFrame{tokens: tokens}
}

// Len returns the number of tokens.
func (f ResponseFrame) Len() int {
	return len(f.tokens)
}

// Token returns the i-th token. Panics if out of range, like a slice.
func (f ResponseFrame) Token(i int) string {
	return f.tokens[i]
}

// Tokens returns the token slice. Callers must not modify it.
func (f ResponseFrame) Tokens() []string {
	return f.tokens
}

// String returns the space-joined token form, without the terminator.
func (f ResponseFrame) String() string {
	return strings.Join(f.tokens, " ")
}

// IsOK reports whether the frame is the single token "ok", the
// acknowledgement most action commands reply with.
func (f ResponseFrame) IsOK() bool {
	return len(f.tokens) == 1 && f.tokens[0] == "ok"
}
