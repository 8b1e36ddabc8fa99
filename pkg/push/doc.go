// Package push routes unsolicited frames from the UDP push channel to
// typed consumers.
//
// Each push frame carries a topic and subtopic in its leading tokens,
// followed by a positional payload. The Demux extracts the envelope,
// looks up the handler registered for (topic, subtopic) and hands it
// the payload; handlers decode and publish onto their feed. Unknown
// pairs are logged and dropped - the push channel stays resilient to
// message kinds this client does not know.
//
// Firmware revisions differ in the envelope layout: older robots send
// "<topic> <subtopic> <payload...>", newer ones insert a literal
// "push" token after the topic. The layout is a Schema configuration
// of the Demux, pinned per deployment.
package push
