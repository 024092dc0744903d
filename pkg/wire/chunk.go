package wire

import "time"

// Delta is the incremental payload of one streaming chunk. Content is a
// pointer so it can be absent entirely (not an empty string) on chunks that
// carry no content, such as the finish chunk.
type Delta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ChunkChoice is the single choice of a streaming chunk. FinishReason
// marshals as null until the terminal chunk.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// StreamChunk is one record of a streaming response. Every chunk belonging
// to the same response shares an identical ID and Created value.
type StreamChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkEncoder stamps every chunk of one streaming response with the same
// id, creation timestamp, and model. Both values are fixed once, when the
// encoder is created at stream start.
//
// The encoder only builds chunks; emission order (role first, content in
// runtime order, finish last) is the execution bridge's contract.
type ChunkEncoder struct {
	id      string
	created int64
	model   string
}

// NewChunkEncoder creates an encoder for one streaming response.
func NewChunkEncoder(model string) *ChunkEncoder {
	return &ChunkEncoder{
		id:      NewResponseID(),
		created: time.Now().Unix(),
		model:   model,
	}
}

// ID returns the response id shared by all chunks of this stream.
func (e *ChunkEncoder) ID() string { return e.id }

// Role builds the role-announcement chunk. It is the only chunk that carries
// delta.role, and it must be the first record of the stream.
func (e *ChunkEncoder) Role() StreamChunk {
	empty := ""
	return e.chunk(Delta{Role: RoleAssistant, Content: &empty}, nil)
}

// Content builds a content-delta chunk for one unit of runtime output.
func (e *ChunkEncoder) Content(text string) StreamChunk {
	return e.chunk(Delta{Content: &text}, nil)
}

// ErrorContent builds a content chunk carrying an in-band failure notice.
// On the wire it is indistinguishable from regular content; streams that
// fail after commit still terminate with a normal finish chunk.
func (e *ChunkEncoder) ErrorContent(notice string) StreamChunk {
	return e.chunk(Delta{Content: &notice}, nil)
}

// Finish builds the terminal chunk: empty delta, finish_reason "stop".
// No content chunk may follow it.
func (e *ChunkEncoder) Finish() StreamChunk {
	reason := FinishReasonStop
	return e.chunk(Delta{}, &reason)
}

func (e *ChunkEncoder) chunk(delta Delta, finishReason *string) StreamChunk {
	return StreamChunk{
		ID:      e.id,
		Object:  ObjectChatCompletionChunk,
		Created: e.created,
		Model:   e.model,
		Choices: []ChunkChoice{
			{
				Index:        0,
				Delta:        delta,
				FinishReason: finishReason,
			},
		},
	}
}
