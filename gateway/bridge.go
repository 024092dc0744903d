package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paddyhq/paddy/gateway/worker"
	"github.com/paddyhq/paddy/pkg/agent"
	"github.com/paddyhq/paddy/pkg/eventstream"
	"github.com/paddyhq/paddy/pkg/sse"
	"github.com/paddyhq/paddy/pkg/utils"
	"github.com/paddyhq/paddy/pkg/wire"
)

// exchangeState tracks where a request is in its lifecycle. Transitions only
// move forward; failed is reachable from any state.
type exchangeState int

const (
	stateReceived exchangeState = iota
	stateValidated
	stateDispatched
	stateStreaming
	stateCompleted
	stateFailed
	stateTerminated
)

func (s exchangeState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateValidated:
		return "validated"
	case stateDispatched:
		return "dispatched"
	case stateStreaming:
		return "streaming"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// streamFailureNotice is appended in-band when the runtime dies mid-stream.
// By that point the response status is already on the wire, so the failure
// can only be reported inside the stream itself.
const streamFailureNotice = "\n\n[error: the agent runtime failed before completing this response]"

// streamingDisabledDetail tells callers how to proceed when stream=true is
// rejected.
const streamingDisabledDetail = "streaming is disabled on this server; retry with \"stream\": false"

// exchange carries one request through the bridge state machine.
type exchange struct {
	state     exchangeState
	committed bool

	path      string
	model     string
	streaming bool
	startTime time.Time

	prompt  string
	history []agent.Turn

	completionID string
	usage        agent.Usage
	failed       bool
}

// handleCompletions is the POST /v1/chat/completions handler: it validates
// the wire request, converts it through the adapter, and dispatches to the
// runtime in batch or streaming mode.
func (g *Gateway) handleCompletions(c *fiber.Ctx) error {
	ex := &exchange{
		state:     stateReceived,
		path:      c.Path(),
		startTime: time.Now(),
	}

	req, err := wire.ParseRequest(c.Body())
	if err != nil {
		var verr *wire.ValidationError
		if errors.As(err, &verr) {
			return g.failPreCommit(c, ex, fiber.StatusBadRequest, wire.ErrorResponse{
				Error:  verr.Error(),
				Type:   wire.ErrTypeValidation,
				Detail: verr.Field + " " + verr.Reason,
			})
		}
		return g.failPreCommit(c, ex, fiber.StatusBadRequest, wire.ErrorResponse{
			Error: "invalid request",
			Type:  wire.ErrTypeValidation,
		})
	}
	ex.model = req.Model
	ex.streaming = req.Stream

	prompt, history, err := g.adapter.Convert(req.Messages)
	if err != nil {
		return g.failPreCommit(c, ex, fiber.StatusBadRequest, wire.ErrorResponse{
			Error: err.Error(),
			Type:  wire.ErrTypeAdapter,
		})
	}
	ex.prompt = prompt
	ex.history = history
	g.transition(ex, stateValidated)

	if req.Stream && !g.config.StreamingEnabled {
		return g.failPreCommit(c, ex, fiber.StatusBadRequest, wire.ErrorResponse{
			Error:  "streaming not supported",
			Type:   wire.ErrTypeUnsupportedMode,
			Detail: streamingDisabledDetail,
		})
	}

	g.transition(ex, stateDispatched)

	if req.Stream {
		return g.runStreaming(c, ex)
	}

	return g.runBatch(c, ex)
}

// runBatch executes the exchange synchronously and responds with a single
// completion object.
func (g *Gateway) runBatch(c *fiber.Ctx, ex *exchange) error {
	deps := agent.Deps{VaultPath: g.config.VaultPath}

	result, err := g.runtime.Run(c.Context(), ex.prompt, ex.history, deps)
	if err != nil {
		g.logger.Error("runtime run failed",
			zap.Error(err),
			zap.String("model", ex.model),
		)
		return g.failPreCommit(c, ex, fiber.StatusInternalServerError, wire.ErrorResponse{
			Error: "the agent runtime failed to produce a response",
			Type:  wire.ErrTypeRuntime,
		})
	}

	resp := wire.NewCompletionResponse(result.Text, ex.model, wire.Usage{
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
	})
	ex.completionID = resp.ID
	ex.usage = result.Usage
	g.transition(ex, stateCompleted)

	if err := c.JSON(resp); err != nil {
		return err
	}
	ex.committed = true
	g.terminate(ex, fiber.StatusOK)

	return nil
}

// runStreaming executes the exchange against the runtime's event channel and
// relays it as SSE. The response status commits as soon as the body stream is
// handed to fasthttp, so runtime startup errors are still reported as JSON
// while mid-stream failures go in-band.
func (g *Gateway) runStreaming(c *fiber.Ctx, ex *exchange) error {
	deps := agent.Deps{VaultPath: g.config.VaultPath}

	// The producer goroutine outlives this handler, and fasthttp recycles
	// its RequestCtx once the handler returns. Derive the stream context
	// from the background context and cancel it on client disconnect.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := g.runtime.RunStream(streamCtx, ex.prompt, ex.history, deps)
	if err != nil {
		cancel()
		g.logger.Error("runtime stream start failed",
			zap.Error(err),
			zap.String("model", ex.model),
		)
		return g.failPreCommit(c, ex, fiber.StatusInternalServerError, wire.ErrorResponse{
			Error: "the agent runtime failed to start streaming",
			Type:  wire.ErrTypeRuntime,
		})
	}

	enc := wire.NewChunkEncoder(ex.model)
	ex.completionID = enc.ID()
	g.transition(ex, stateStreaming)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// io.Pipe gives direct backpressure: pw.Write blocks until fasthttp's
	// chunked writer flushes the bytes to the TCP socket, and returns an
	// error once the client goes away.
	pr, pw := io.Pipe()
	go g.streamToPipe(events, enc, pw, cancel, ex)

	// Unknown size (-1) triggers chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// streamToPipe relays runtime events to the client as completion chunks:
// the role chunk first, one content chunk per text event in arrival order,
// then the finish chunk and the [DONE] sentinel. A runtime error mid-stream
// is reported as an in-band content chunk before finishing, because the
// status line is already committed.
func (g *Gateway) streamToPipe(events <-chan agent.Event, enc *wire.ChunkEncoder, pw *io.PipeWriter, cancel context.CancelFunc, ex *exchange) {
	defer cancel()
	defer pw.Close()

	w := sse.NewWriter(pw)

	if !g.writeChunk(w, enc.Role(), cancel) {
		g.abandon(ex)
		return
	}
	ex.committed = true

	for ev := range events {
		switch ev.Type {
		case agent.EventText:
			if !g.writeChunk(w, enc.Content(ev.Text), cancel) {
				g.abandon(ex)
				return
			}

		case agent.EventDone:
			if ev.Result != nil {
				ex.usage = ev.Result.Usage
			}

		case agent.EventError:
			g.logger.Error("runtime stream failed mid-response",
				zap.String("completion_id", ex.completionID),
				zap.String("error", ev.Err),
			)
			ex.failed = true
			if !g.writeChunk(w, enc.ErrorContent(streamFailureNotice), cancel) {
				g.abandon(ex)
				return
			}
		}
	}

	if !g.writeChunk(w, enc.Finish(), cancel) {
		g.abandon(ex)
		return
	}
	if err := w.WriteDone(); err != nil {
		g.abandon(ex)
		return
	}

	if ex.failed {
		g.transition(ex, stateFailed)
	} else {
		g.transition(ex, stateCompleted)
	}
	g.terminate(ex, fiber.StatusOK)
}

// writeChunk marshals and frames one chunk. A write error means the client
// disconnected: the stream context is cancelled so the runtime stops working
// on an abandoned response.
func (g *Gateway) writeChunk(w *sse.Writer, chunk wire.StreamChunk, cancel context.CancelFunc) bool {
	payload, err := json.Marshal(chunk)
	if err != nil {
		g.logger.Error("failed to marshal stream chunk", zap.Error(err))
		cancel()
		return false
	}

	if err := w.WriteData(payload); err != nil {
		g.logger.Debug("client disconnected mid-stream", zap.Error(err))
		cancel()
		return false
	}

	return true
}

// failPreCommit reports a failure while the response is still uncommitted,
// as a JSON error body with the given status.
func (g *Gateway) failPreCommit(c *fiber.Ctx, ex *exchange, status int, body wire.ErrorResponse) error {
	g.transition(ex, stateFailed)
	err := c.Status(status).JSON(body)
	ex.committed = true
	g.terminate(ex, status)
	return err
}

// abandon finalizes an exchange whose client went away mid-stream.
func (g *Gateway) abandon(ex *exchange) {
	ex.failed = true
	g.transition(ex, stateFailed)
	g.terminate(ex, fiber.StatusOK)
}

// transition advances the state machine, logging the hop.
func (g *Gateway) transition(ex *exchange, next exchangeState) {
	g.logger.Debug("exchange transition",
		zap.String("from", ex.state.String()),
		zap.String("to", next.String()),
		zap.String("completion_id", ex.completionID),
	)
	ex.state = next
}

// terminate marks the exchange finished and enqueues its telemetry event.
func (g *Gateway) terminate(ex *exchange, status int) {
	failed := ex.failed || ex.state == stateFailed
	g.transition(ex, stateTerminated)

	now := time.Now()
	g.workerPool.Enqueue(worker.Job{
		Event: &eventstream.ExchangeCompletedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeExchangeCompleted,
			EventID:       uuid.NewString(),
			EmittedAt:     now,
			Source: eventstream.EventSource{
				Service: serviceName,
				Version: utils.Version,
				Runtime: g.config.Model,
			},
			RequestMeta: eventstream.RequestMeta{
				Path:        ex.path,
				StartedAt:   ex.startTime,
				CompletedAt: now,
				DurationMs:  now.Sub(ex.startTime).Milliseconds(),
				Streaming:   ex.streaming,
				HTTPStatus:  status,
			},
			Exchange: eventstream.ExchangeMeta{
				CompletionID: ex.completionID,
				Model:        ex.model,
				HistoryTurns: len(ex.history),
				Failed:       failed,
			},
			Usage: ex.usage,
		},
	})
}
