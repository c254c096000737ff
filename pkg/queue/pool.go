package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ospreyai/osprey/pkg/config"
)

// job is one turn waiting for a worker goroutine.
type job struct {
	ctx      context.Context
	threadID string
	turn     Turn
	result   chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// threadState guards serialized execution for one thread and exposes the
// in-flight turn's cancel function, one level more granular than a
// process-wide active-session registry: per-thread instead of per-pod.
type threadState struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// Pool dispatches submitted Turns across a bounded number of worker
// goroutines. Turns submitted for the same thread ID always run one at a
// time, in submission order; turns for different threads run concurrently
// up to WorkerCount.
type Pool struct {
	config   config.QueueConfig
	jobs     chan job
	workers  []*worker
	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  bool
	wg       sync.WaitGroup

	mu      sync.Mutex
	threads map[string]*threadState
}

// NewPool creates a pool. Start must be called before Submit.
func NewPool(cfg config.QueueConfig) *Pool {
	return &Pool{
		config:  cfg,
		jobs:    make(chan job, cfg.QueueDepth),
		stopCh:  make(chan struct{}),
		threads: make(map[string]*threadState),
	}
}

// Start spawns the worker goroutines. Safe to call once; a second call is
// a no-op.
func (p *Pool) Start() {
	if len(p.workers) > 0 {
		return
	}
	slog.Info("starting turn dispatch pool", "worker_count", p.config.WorkerCount)
	for i := 0; i < p.config.WorkerCount; i++ {
		w := newWorker(fmt.Sprintf("worker-%d", i), p)
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run()
		}()
	}
}

// Stop signals workers to exit once their current turn finishes, and waits
// for them to drain. It does not cancel in-flight turns.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

// Submit enqueues turn for threadID and blocks until it completes, the
// pool is stopped, or ctx is cancelled. It returns ErrQueueFull immediately
// if the job channel is already at QueueConfig.QueueDepth, so a caller can
// surface backpressure to its client instead of blocking indefinitely.
// Two turns submitted for the same threadID never run concurrently,
// regardless of which worker picks each one up.
func (p *Pool) Submit(ctx context.Context, threadID string, turn Turn) (any, error) {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return nil, ErrPoolStopped
	}

	j := job{ctx: ctx, threadID: threadID, turn: turn, result: make(chan jobResult, 1)}
	select {
	case p.jobs <- j:
	default:
		return nil, ErrQueueFull
	}

	select {
	case res := <-j.result:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelThread cancels the in-flight turn for threadID, if one is running
// on this pool. It returns false if no turn for that thread is in flight.
func (p *Pool) CancelThread(threadID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.threads[threadID]
	if !ok || state.cancel == nil {
		return false
	}
	state.cancel()
	return true
}

func (p *Pool) stateFor(threadID string) *threadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.threads[threadID]
	if !ok {
		state = &threadState{}
		p.threads[threadID] = state
	}
	return state
}

func (p *Pool) registerCancel(threadID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threads[threadID].cancel = cancel
}

func (p *Pool) unregisterCancel(threadID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if state, ok := p.threads[threadID]; ok {
		state.cancel = nil
	}
}

// Health reports the pool's current load.
func (p *Pool) Health() *PoolHealth {
	p.mu.Lock()
	activeThreads := 0
	for _, s := range p.threads {
		if s.cancel != nil {
			activeThreads++
		}
	}
	p.mu.Unlock()

	workerStats := make([]WorkerHealth, len(p.workers))
	activeWorkers := 0
	for i, w := range p.workers {
		stats := w.health()
		workerStats[i] = stats
		if stats.Status == string(workerStatusWorking) {
			activeWorkers++
		}
	}

	return &PoolHealth{
		IsHealthy:     len(p.workers) > 0,
		TotalWorkers:  len(p.workers),
		ActiveWorkers: activeWorkers,
		ActiveThreads: activeThreads,
		QueueDepth:    len(p.jobs),
		QueueCapacity: cap(p.jobs),
		WorkerStats:   workerStats,
	}
}
