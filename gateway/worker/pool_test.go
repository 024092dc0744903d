package worker

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/paddyhq/paddy/pkg/eventstream"
	"github.com/paddyhq/paddy/pkg/logger"
)

// capturePublisher records published events so tests can assert on them
// after the pool drains.
type capturePublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExchangeCompletedEvent
	err    error
}

func (c *capturePublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeCompletedEvent) error {
	if c.err != nil {
		return c.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func (c *capturePublisher) published() []*eventstream.ExchangeCompletedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*eventstream.ExchangeCompletedEvent(nil), c.events...)
}

// blockingPublisher stalls in PublishExchange until release is closed,
// letting tests saturate the queue deterministically.
type blockingPublisher struct {
	started sync.Once
	release chan struct{}
	entered chan struct{}
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
}

func (b *blockingPublisher) PublishExchange(_ context.Context, _ *eventstream.ExchangeCompletedEvent) error {
	b.started.Do(func() { close(b.entered) })
	<-b.release
	return nil
}

func (b *blockingPublisher) Close() error { return nil }

func (b *blockingPublisher) waitUntilBusy() {
	<-b.entered
}

func testEvent(id string) *eventstream.ExchangeCompletedEvent {
	return &eventstream.ExchangeCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeExchangeCompleted,
		EventID:       id,
		Exchange: eventstream.ExchangeMeta{
			CompletionID: "chatcmpl-" + id,
			Model:        "paddy",
		},
	}
}

var _ = Describe("Worker Pool", func() {
	var (
		wp  *Pool
		pub *capturePublisher
	)

	BeforeEach(func() {
		pub = &capturePublisher{}

		var err error
		wp, err = NewPool(&Config{
			Publisher: pub,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewPool", func() {
		It("requires a publisher", func() {
			_, err := NewPool(&Config{Logger: logger.Nop()})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{Event: testEvent("a")})).To(BeTrue())
			wp.Close()
		})

		It("rejects jobs with a nil event", func() {
			Expect(wp.Enqueue(Job{})).To(BeFalse())
			wp.Close()
		})

		It("returns false when the queue is full", func() {
			blocker := newBlockingPublisher()
			full, err := NewPool(&Config{
				Publisher:  blocker,
				NumWorkers: 1,
				QueueSize:  1,
				Logger:     logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			// First job occupies the worker, second fills the queue slot.
			Expect(full.Enqueue(Job{Event: testEvent("a")})).To(BeTrue())
			blocker.waitUntilBusy()
			Expect(full.Enqueue(Job{Event: testEvent("b")})).To(BeTrue())

			Expect(full.Enqueue(Job{Event: testEvent("c")})).To(BeFalse())

			close(blocker.release)
			full.Close()
		})
	})

	Describe("Close", func() {
		It("drains enqueued jobs before returning", func() {
			for i := 0; i < 10; i++ {
				Expect(wp.Enqueue(Job{Event: testEvent(string(rune('a' + i)))})).To(BeTrue())
			}

			wp.Close()

			Expect(pub.published()).To(HaveLen(10))
		})
	})

	Describe("publish failures", func() {
		It("drops the event without blocking the pool", func() {
			failing := &capturePublisher{err: errors.New("broker down")}
			fp, err := NewPool(&Config{
				Publisher: failing,
				Logger:    logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(fp.Enqueue(Job{Event: testEvent("a")})).To(BeTrue())
			fp.Close()

			Expect(failing.published()).To(BeEmpty())
		})
	})
})
