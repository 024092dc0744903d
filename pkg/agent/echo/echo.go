// Package echo provides a deterministic reference implementation of the
// agent.Runtime contract.
//
// The echo runtime answers by repeating the prompt back. It exists so the
// gateway can run end to end without a configured LLM-backed runtime, and
// so tests can assert exact output: the streamed chunks always concatenate
// to the same text a batch run produces for the same prompt.
package echo

import (
	"context"
	"strings"

	"github.com/paddyhq/paddy/pkg/agent"
)

// Runtime echoes the incoming prompt. It holds no per-run state, so a single
// instance serves concurrent invocations.
type Runtime struct{}

// New creates an echo runtime.
func New() *Runtime { return &Runtime{} }

// Run executes one turn synchronously.
func (r *Runtime) Run(_ context.Context, prompt string, history []agent.Turn, _ agent.Deps) (*agent.Result, error) {
	text := r.reply(prompt)
	return &agent.Result{
		Text:  text,
		Usage: r.usage(prompt, history, text),
	}, nil
}

// RunStream executes one turn, emitting the reply in word-sized units.
func (r *Runtime) RunStream(ctx context.Context, prompt string, history []agent.Turn, _ agent.Deps) (<-chan agent.Event, error) {
	text := r.reply(prompt)
	usage := r.usage(prompt, history, text)

	ch := make(chan agent.Event)
	go func() {
		defer close(ch)

		// SplitAfter keeps separators, so the emitted chunks concatenate
		// back to exactly the batch-mode text.
		for _, chunk := range strings.SplitAfter(text, " ") {
			if chunk == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case ch <- agent.TextEvent(chunk):
			}
		}

		select {
		case <-ctx.Done():
		case ch <- agent.DoneEvent(&agent.Result{Text: text, Usage: usage}):
		}
	}()

	return ch, nil
}

func (r *Runtime) reply(prompt string) string {
	return "Echo: " + prompt
}

// usage approximates token counts by whitespace-separated words, including
// the prior turns the runtime was handed.
func (r *Runtime) usage(prompt string, history []agent.Turn, reply string) agent.Usage {
	promptTokens := len(strings.Fields(prompt))
	for _, turn := range history {
		promptTokens += len(strings.Fields(turn.Text))
	}
	completionTokens := len(strings.Fields(reply))

	return agent.Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}
