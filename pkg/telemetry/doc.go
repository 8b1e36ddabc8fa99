// Package telemetry defines the typed domain records carried by
// RoboLink frames and the decoders that produce them.
//
// Frames are positional: a decoder reads tokens at fixed offsets and
// the expected shape depends entirely on which command (or push topic)
// produced the frame. Numeric tokens are decimal ASCII; boolean tokens
// are "0" for false and anything else for true. Some records have two
// known lengths, with trailing optional fields present only in the
// longer variant.
//
// A frame whose token count or token syntax does not match the decoder
// fails with ErrProtocolViolation. That error is surfaced to the
// specific caller or consumer; it is never fatal to the session.
package telemetry
