package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// workerStatus represents the current state of a worker goroutine.
type workerStatus string

const (
	workerStatusIdle    workerStatus = "idle"
	workerStatusWorking workerStatus = "working"
)

// worker pulls jobs off the pool's job channel and runs them one at a
// time, serializing against other workers for the same thread via the
// pool's per-thread lock.
type worker struct {
	id   string
	pool *Pool

	mu             sync.RWMutex
	status         workerStatus
	currentThread  string
	turnsProcessed int
	lastActivity   time.Time
}

func newWorker(id string, pool *Pool) *worker {
	return &worker{id: id, pool: pool, status: workerStatusIdle, lastActivity: time.Now()}
}

func (w *worker) health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		ID:             w.id,
		Status:         string(w.status),
		CurrentThread:  w.currentThread,
		TurnsProcessed: w.turnsProcessed,
		LastActivity:   w.lastActivity,
	}
}

func (w *worker) run() {
	log := slog.With("worker_id", w.id)
	log.Info("turn dispatch worker started")
	defer log.Info("turn dispatch worker stopped")

	for {
		select {
		case <-w.pool.stopCh:
			return
		case j := <-w.pool.jobs:
			w.process(j)
		}
	}
}

// process serializes execution for j.threadID against any other worker
// handling the same thread, runs the turn, and delivers the result.
func (w *worker) process(j job) {
	state := w.pool.stateFor(j.threadID)
	state.mu.Lock()
	defer state.mu.Unlock()

	w.setStatus(workerStatusWorking, j.threadID)
	defer w.setStatus(workerStatusIdle, "")

	turnCtx, cancel := context.WithTimeout(j.ctx, w.pool.config.TurnTimeout)
	w.pool.registerCancel(j.threadID, cancel)
	defer func() {
		cancel()
		w.pool.unregisterCancel(j.threadID)
	}()

	value, err := j.turn(turnCtx)

	w.mu.Lock()
	w.turnsProcessed++
	w.mu.Unlock()

	j.result <- jobResult{value: value, err: err}
}

func (w *worker) setStatus(status workerStatus, threadID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.currentThread = threadID
	w.lastActivity = time.Now()
}
