package wire

import (
	"errors"
	"strings"
)

// Terminator is the single byte that delimits every protocol message.
const Terminator = ';'

// Command errors.
var (
	// ErrEmptyCommand indicates a command with no arguments.
	ErrEmptyCommand = errors.New("command is empty")
)

// Command is one protocol command: an ordered sequence of arguments.
// Commands are built per call, encoded once and discarded after send.
type Command struct {
	args []Arg
}

// NewCommand creates a command from the given arguments.
func NewCommand(args ...Arg) Command {
	return Command{args: args}
}

// ParseCommand creates a command from a raw token line, one literal
// argument per whitespace-separated token. A trailing terminator is
// accepted and stripped. Used by interactive tooling to pass through
// hand-typed commands.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), string(Terminator))
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	args := make([]Arg, len(fields))
	for i, f := range fields {
		args[i] = Str(f)
	}
	return Command{args: args}, nil
}

// Len returns the number of arguments.
func (c Command) Len() int {
	return len(c.args)
}

// Name returns the first token of the command, or "" if empty.
// Useful for logging; the protocol itself has no command-name concept
// beyond the leading tokens.
func (c Command) Name() string {
	if len(c.args) == 0 {
		return ""
	}
	return c.args[0].Token()
}

// String returns the wire form without the terminator.
func (c Command) String() string {
	tokens := make([]string, len(c.args))
	for i, a := range c.args {
		tokens[i] = a.Token()
	}
	return strings.Join(tokens, " ")
}

// Encode serializes the command to its wire form: arguments space-joined
// and terminated by a single ';'.
func (c Command) Encode() ([]byte, error) {
	if len(c.args) == 0 {
		return nil, ErrEmptyCommand
	}
	var b strings.Builder
	for i, a := range c.args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.Token())
	}
	b.WriteByte(Terminator)
	return []byte(b.String()), nil
}
