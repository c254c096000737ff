// Package queue dispatches turns to the graph runtime through a bounded
// pool of goroutines, serializing turns for the same thread while letting
// distinct threads run concurrently.
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull indicates Submit could not enqueue the turn because the
// pool's buffered job channel is already at QueueConfig.QueueDepth.
var ErrQueueFull = errors.New("queue: full")

// ErrPoolStopped indicates Submit was called after Stop.
var ErrPoolStopped = errors.New("queue: stopped")

// Turn runs one turn to its next suspension point or completion. Callers
// submit a closure rather than the pool owning a single fixed executor,
// since a thread's turns arrive as distinct requests (new input, or a
// resume decision) each needing different arguments into graph.Runtime.
type Turn func(ctx context.Context) (any, error)

// PoolHealth reports the pool's current load, mirroring the shape a
// monitoring endpoint needs: how many workers are busy, how deep the
// backlog is, and which threads are currently in flight.
type PoolHealth struct {
	IsHealthy bool `json:"is_healthy"`
	TotalWorkers int `json:"total_workers"`
	ActiveWorkers int `json:"active_workers"`
	ActiveThreads int `json:"active_threads"`
	QueueDepth int `json:"queue_depth"`
	QueueCapacity int `json:"queue_capacity"`
	WorkerStats []WorkerHealth `json:"worker_stats"`
}

// WorkerHealth reports one worker goroutine's current state.
type WorkerHealth struct {
	ID string `json:"id"`
	Status string `json:"status"` // "idle" or "working"
	CurrentThread string `json:"current_thread,omitempty"`
	TurnsProcessed int `json:"turns_processed"`
	LastActivity time.Time `json:"last_activity"`
}
