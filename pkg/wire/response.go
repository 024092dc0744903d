package wire

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object type discriminators for response payloads.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
)

// FinishReasonStop is the only terminal finish reason the gateway emits.
// There is no length-truncation policy: the runtime always runs to its own
// completion.
const FinishReasonStop = "stop"

// CompletionResponse is the non-streaming response body, matching the format
// the OpenAI SDK and Copilot clients expect.
type CompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice. The gateway never produces parallel
// completions, so there is always exactly one with index 0.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// ResponseMessage is the assistant message inside a completion choice.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting for the completion. Counters default to 0
// rather than null when the runtime reports nothing.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewResponseID generates a chat completion response id in the
// "chatcmpl-<29 hex chars>" format.
func NewResponseID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "chatcmpl-" + hex[:29]
}

// NewCompletionResponse assembles the single-shot response for a finished
// run. Exactly one choice, finish_reason "stop" unconditionally.
func NewCompletionResponse(output, model string, usage Usage) *CompletionResponse {
	return &CompletionResponse{
		ID:      NewResponseID(),
		Object:  ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []Choice{
			{
				Index: 0,
				Message: ResponseMessage{
					Role:    RoleAssistant,
					Content: output,
				},
				FinishReason: FinishReasonStop,
			},
		},
		Usage: usage,
	}
}
