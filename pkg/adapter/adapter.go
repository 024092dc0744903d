// Package adapter converts the wire message list into the agent runtime's
// turn history plus the extracted prompt.
//
// The conversion is where the two ownership models meet: clients send a
// stateless full transcript including their own system instructions, while
// the runtime owns its instructions and expects only user/assistant turns.
// Client system messages are therefore dropped on ingest rather than
// forwarded.
package adapter

import (
	"errors"

	"go.uber.org/zap"

	"github.com/paddyhq/paddy/pkg/agent"
	"github.com/paddyhq/paddy/pkg/wire"
)

var (
	// ErrEmptyMessages is returned when the messages array has no entries.
	ErrEmptyMessages = errors.New("messages array must not be empty")

	// ErrNoUserMessage is returned when no message has the user role.
	ErrNoUserMessage = errors.New("messages must contain at least one user message")
)

// Adapter performs wire-to-runtime message conversion.
type Adapter struct {
	logger *zap.Logger
}

// New creates an Adapter.
func New(logger *zap.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Convert scans messages in original order and produces the runtime prompt
// and history.
//
// The last user message by position becomes the prompt. Every other
// user/assistant message becomes history in original order with no merging
// of adjacent same-role entries; assistant messages that appear after the
// prompt position are retained so an interrupted exchange can be resumed.
// System messages are dropped entirely and only counted for diagnostics.
func (a *Adapter) Convert(messages []wire.ChatMessage) (string, []agent.Turn, error) {
	if len(messages) == 0 {
		return "", nil, ErrEmptyMessages
	}

	promptIdx := -1
	for i, msg := range messages {
		if msg.Role == wire.RoleUser {
			promptIdx = i
		}
	}
	if promptIdx == -1 {
		return "", nil, ErrNoUserMessage
	}

	prompt := messages[promptIdx].Text()

	var history []agent.Turn
	systemSkipped := 0
	for i, msg := range messages {
		if i == promptIdx {
			continue
		}

		switch msg.Role {
		case wire.RoleSystem:
			systemSkipped++
		case wire.RoleUser:
			history = append(history, agent.UserTurn(msg.Text()))
		case wire.RoleAssistant:
			history = append(history, agent.AssistantTurn(msg.Text()))
		}
	}

	a.logger.Info("converted wire messages",
		zap.Int("total_messages", len(messages)),
		zap.Int("history_turns", len(history)),
		zap.Int("system_skipped", systemSkipped),
	)

	return prompt, history, nil
}
