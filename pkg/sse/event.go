// Package sse provides the SSE (Server-Sent Events) plumbing the gateway
// and its clients share: a Writer that frames completion chunks for the
// response stream, and a Reader that parses events back out on the client
// side.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n" (per the SSE spec, multiple data fields are joined
	// with a single newline).
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// DoneData is the sentinel data payload that terminates a completion
// stream.
const DoneData = "[DONE]"

// Done reports whether the event is the stream-terminating sentinel.
func (e *Event) Done() bool {
	return e.Data == DoneData
}
