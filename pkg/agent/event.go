package agent

// EventType discriminates runtime stream events.
type EventType string

const (
	// EventText carries one incremental unit of assistant output.
	EventText EventType = "text"

	// EventDone is the terminal event of a successful run. It carries the
	// final Result, including the full assistant text and usage.
	EventDone EventType = "done"

	// EventError is the terminal event of a failed run.
	EventError EventType = "error"
)

// Event is one element of a runtime's output stream.
type Event struct {
	Type EventType

	// Text is the content unit for EventText events.
	Text string

	// Result is set on EventDone.
	Result *Result

	// Err describes the failure on EventError.
	Err string
}

// TextEvent builds a content event.
func TextEvent(text string) Event {
	return Event{Type: EventText, Text: text}
}

// DoneEvent builds the terminal success event.
func DoneEvent(result *Result) Event {
	return Event{Type: EventDone, Result: result}
}

// ErrorEvent builds the terminal failure event.
func ErrorEvent(err error) Event {
	return Event{Type: EventError, Err: err.Error()}
}
