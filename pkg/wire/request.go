// Package wire defines the OpenAI-compatible request, response, and stream
// chunk shapes served by the gateway, along with their validation.
//
// The types here model the chat-completions wire protocol that clients like
// Obsidian Copilot speak. They are deliberately independent of the agent
// runtime's internal representation; pkg/adapter owns the conversion.
package wire

import (
	"encoding/json"
	"fmt"
)

// Message roles accepted on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatCompletionRequest is the request body for POST /v1/chat/completions.
//
// The sampling fields (Temperature, MaxTokens, TopP, FrequencyPenalty) are
// accepted for wire compatibility and validated structurally, but they are
// not forwarded to the agent runtime.
type ChatCompletionRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages"`
	Stream           bool          `json:"stream,omitempty"`
	Temperature      *float64      `json:"temperature,omitempty"`
	MaxTokens        *int          `json:"max_tokens,omitempty"`
	TopP             *float64      `json:"top_p,omitempty"`
	FrequencyPenalty *float64      `json:"frequency_penalty,omitempty"`
}

// ChatMessage is a single message in the OpenAI chat format. Content arrives
// either as a plain string or as an ordered array of content parts.
type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// Text returns the message content normalized to a plain string.
func (m *ChatMessage) Text() string {
	return m.Content.Text()
}

// contentForm tracks which JSON shape a MessageContent was decoded from.
type contentForm int

const (
	formNone contentForm = iota
	formString
	formParts
)

// ContentPart is one element of array-form message content. Only text parts
// carry payload used downstream; image parts are preserved for re-marshaling
// but dropped during normalization.
type ContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *ImagePayload `json:"image_url,omitempty"`
}

// ImagePayload is the image_url object of a multimodal content part.
type ImagePayload struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// MessageContent holds either string-form or array-form message content,
// mirroring the union type the wire protocol allows.
type MessageContent struct {
	form  contentForm
	value string
	parts []ContentPart
}

// NewTextContent builds string-form content. Used by clients and tests.
func NewTextContent(text string) MessageContent {
	return MessageContent{form: formString, value: text}
}

// NewPartsContent builds array-form content.
func NewPartsContent(parts ...ContentPart) MessageContent {
	return MessageContent{form: formParts, parts: parts}
}

// UnmarshalJSON decodes either a JSON string or an array of content parts.
// A JSON null is rejected: the protocol never allows absent content.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.form = formString
		c.value = s
		c.parts = nil
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		c.form = formParts
		c.parts = parts
		c.value = ""
		return nil
	}

	return fmt.Errorf("content must be a string or an array of content parts")
}

// MarshalJSON re-emits the form the content was built with.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch c.form {
	case formParts:
		return json.Marshal(c.parts)
	default:
		return json.Marshal(c.value)
	}
}

// Text normalizes content to a plain string. String content passes through
// unchanged, so normalizing an already-normalized string is a no-op. Array
// content concatenates the text of every text part in original order and
// discards image parts.
func (c *MessageContent) Text() string {
	if c.form != formParts {
		return c.value
	}

	var out string
	for _, part := range c.parts {
		if part.Type == "text" {
			out += part.Text
		}
	}
	return out
}

// isSet reports whether the content key was present in the decoded JSON.
func (c *MessageContent) isSet() bool {
	return c.form != formNone
}

// ParseRequest decodes and validates a chat completion request body.
// All failures are *ValidationError values carrying the offending field.
func ParseRequest(payload []byte) (*ChatCompletionRequest, error) {
	var req ChatCompletionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &ValidationError{Field: "body", Reason: "malformed JSON: " + err.Error()}
	}

	if req.Model == "" {
		return nil, &ValidationError{Field: "model", Reason: "is required"}
	}

	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return nil, &ValidationError{Field: "temperature", Reason: "must be between 0 and 2"}
	}
	if req.TopP != nil && (*req.TopP < 0 || *req.TopP > 1) {
		return nil, &ValidationError{Field: "top_p", Reason: "must be between 0 and 1"}
	}
	if req.FrequencyPenalty != nil && (*req.FrequencyPenalty < -2 || *req.FrequencyPenalty > 2) {
		return nil, &ValidationError{Field: "frequency_penalty", Reason: "must be between -2 and 2"}
	}
	if req.MaxTokens != nil && *req.MaxTokens < 1 {
		return nil, &ValidationError{Field: "max_tokens", Reason: "must be positive"}
	}

	for i, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return nil, &ValidationError{
				Field:  fmt.Sprintf("messages[%d].role", i),
				Reason: fmt.Sprintf("must be one of %q, %q, %q", RoleSystem, RoleUser, RoleAssistant),
			}
		}

		if !msg.Content.isSet() {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("messages[%d].content", i),
				Reason: "is required",
			}
		}
	}

	return &req, nil
}
