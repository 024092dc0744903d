// Package eventstream defines transport-neutral telemetry events emitted
// after each completed exchange, plus the Publisher interface backends
// implement. Publishing is fire-and-forget: the gateway never persists
// conversation state, and a failed publish never fails the request.
package eventstream

import (
	"time"

	"github.com/paddyhq/paddy/pkg/agent"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeCompleted is emitted after an exchange finishes,
	// whether it succeeded or failed.
	EventTypeExchangeCompleted = "paddy.exchange.completed"
)

// ExchangeCompletedEvent is a transport-neutral event payload for a
// completed exchange.
type ExchangeCompletedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Source        EventSource  `json:"source"`
	RequestMeta   RequestMeta  `json:"request_meta"`
	Exchange      ExchangeMeta `json:"exchange"`
	Usage         agent.Usage  `json:"usage"`
}

// EventSource identifies the emitting service instance.
type EventSource struct {
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Runtime string `json:"runtime"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	Path        string    `json:"path,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Streaming   bool      `json:"streaming"`
	HTTPStatus  int       `json:"http_status"`
}

// ExchangeMeta captures what the gateway knows about the exchange without
// carrying conversation content.
type ExchangeMeta struct {
	CompletionID string `json:"completion_id"`
	Model        string `json:"model"`
	HistoryTurns int    `json:"history_turns"`
	Failed       bool   `json:"failed"`
}
