package monitor

import (
	"context"
	"log/slog"

	"pingwatch/internal/models"
)

// DefaultQueueSize is the buffer of the result queue.
const DefaultQueueSize = 256

// Queue hands results from monitor loops to a consumer running on its own
// goroutine. OnResult never blocks: when the buffer is full the result is
// dropped and logged.
type Queue struct {
	results chan models.ProbeResult
	log     *slog.Logger
}

// NewQueue creates a queue with the given buffer size.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		results: make(chan models.ProbeResult, size),
		log:     logger,
	}
}

// OnResult enqueues result without blocking.
func (q *Queue) OnResult(result models.ProbeResult) {
	select {
	case q.results <- result:
	default:
		q.log.Warn("result queue full, dropping result", "target", result.Target, "status", result.Status)
	}
}

// Results exposes the queue for consumers with their own event loop.
func (q *Queue) Results() <-chan models.ProbeResult {
	return q.results
}

// Run drains the queue into obs until ctx is done.
func (q *Queue) Run(ctx context.Context, obs models.Observer) {
	for {
		select {
		case <-ctx.Done():
			return
		case result := <-q.results:
			obs.OnResult(result)
		}
	}
}

// Flush delivers whatever is still buffered to obs and returns how many
// results it delivered. It does not wait for new results.
func (q *Queue) Flush(obs models.Observer) int {
	n := 0
	for {
		select {
		case result := <-q.results:
			obs.OnResult(result)
			n++
		default:
			return n
		}
	}
}
