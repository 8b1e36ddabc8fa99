// Package wire defines the text wire format for the RoboLink protocol.
//
// RoboLink messages are ASCII lines of space-separated tokens terminated
// by a single ';' byte. There is no length prefix and no checksum; the
// terminator is the only framing signal, and the protocol guarantees it
// cannot appear inside a payload token.
//
// # Commands
//
// A Command is an ordered list of protocol arguments. Arguments are a
// tagged union (string, integer, float, boolean, switch token) so that
// every supported source type has an explicit constructor and a single
// serialization rule. Encoding joins the serialized arguments with
// spaces and appends the terminator:
//
//	chassis speed x 0.5 y 0 z 30;
//
// # Response frames
//
// A ResponseFrame is the tokenized form of one received message: the
// trailing ';' stripped and the remainder split on spaces. Token order
// is positional; the schema depends entirely on which command produced
// the frame, so callers hand frames to the typed decoders in
// pkg/telemetry (or read tokens directly) knowing the expected shape.
package wire
