// Package worker provides an asynchronous worker pool for publishing
// exchange telemetry events through an eventstream.Publisher.
//
// The pool decouples publishing from the gateway's HTTP hot path so a slow
// or unavailable event backend never delays a client response.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/paddyhq/paddy/pkg/eventstream"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Event *eventstream.ExchangeCompletedEvent
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher is the event backend jobs are published to.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool publishes telemetry jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := uint(0); i < c.NumWorkers; i++ {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Event == nil {
		p.logger.Error("job not queued, nil event")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("telemetry job queued",
			zap.String("completion_id", job.Event.Exchange.CompletionID),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("completion_id", job.Event.Exchange.CompletionID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("telemetry worker stopped", zap.Uint("worker_id", id))
}

// processJob publishes a single exchange event. Failures are logged, never
// propagated; telemetry loss must not affect served requests.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.Publisher.PublishExchange(ctx, job.Event); err != nil {
		p.logger.Error("async event publish failed",
			zap.String("completion_id", job.Event.Exchange.CompletionID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("exchange event published",
		zap.String("completion_id", job.Event.Exchange.CompletionID),
		zap.Int("history_turns", job.Event.Exchange.HistoryTurns),
	)
}
