// Package agent defines the contract the gateway consumes from the vault
// agent runtime.
//
// The runtime is an external collaborator: it owns its fixed system
// instructions and its tool surface unconditionally. The gateway hands it a
// prompt, a turn history rebuilt from the client transcript, and a fresh
// request-scoped dependency bundle, and receives either a final result or a
// lazy event stream that terminates in one.
package agent

import "context"

// TurnRole classifies a history turn. System-derived entries never appear
// in a history; the runtime supplies its own instructions.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is one logical user or assistant entry in conversation history.
type Turn struct {
	Role TurnRole
	Text string
}

// UserTurn builds a user history turn.
func UserTurn(text string) Turn {
	return Turn{Role: TurnRoleUser, Text: text}
}

// AssistantTurn builds an assistant history turn.
func AssistantTurn(text string) Turn {
	return Turn{Role: TurnRoleAssistant, Text: text}
}

// Deps is the request-scoped dependency bundle injected into a single
// runtime invocation. A fresh value is built per request; concurrent runs
// never share one.
type Deps struct {
	// VaultPath is the root of the note vault the runtime's tools operate on.
	VaultPath string
}

// Usage is the runtime's token accounting for one run. Zero values are
// valid; the gateway defaults absent counters to 0 on the wire.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is the final value of one run: the full assistant text plus usage.
type Result struct {
	Text  string
	Usage Usage
}

// Runtime is the entry point the gateway drives. Implementations must be
// safe for concurrent invocations: all per-run state lives in the arguments,
// never in the receiver.
type Runtime interface {
	// Run executes one turn to completion and returns the final result.
	Run(ctx context.Context, prompt string, history []Turn, deps Deps) (*Result, error)

	// RunStream executes one turn, emitting events as output is produced.
	// The returned channel yields zero or more text events followed by
	// exactly one terminal done or error event, then closes. The sequence
	// is finite, lazy, and non-restartable. Implementations stop promptly
	// when ctx is cancelled.
	RunStream(ctx context.Context, prompt string, history []Turn, deps Deps) (<-chan Event, error)
}
