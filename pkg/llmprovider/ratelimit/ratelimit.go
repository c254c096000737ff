// Package ratelimit wraps an llmprovider.Provider with an adaptive
// tokens-per-minute budget, grounded on goa-ai's
// features/model/middleware/ratelimit.go AIMD limiter: requests wait for
// estimated-token capacity before calling through, successful calls probe
// the budget upward, and a provider signaling llmprovider.ErrRateLimited
// halves it.
package ratelimit

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ospreyai/osprey/pkg/llmprovider"
)

// Limiter applies an AIMD token-bucket budget on top of a Provider.
type Limiter struct {
	mu sync.Mutex

	limiter *rate.Limiter

	currentTPM float64
	minTPM     float64
	maxTPM     float64

	recoveryRate float64
}

// New constructs a Limiter with an initial and maximum tokens-per-minute
// budget. maxTPM is clamped up to initialTPM if it would otherwise be
// lower.
func New(initialTPM, maxTPM float64) *Limiter {
	if initialTPM <= 0 {
		initialTPM = 60000
	}
	if maxTPM < initialTPM {
		maxTPM = initialTPM
	}
	minTPM := initialTPM * 0.1
	if minTPM < 1 {
		minTPM = 1
	}
	recovery := initialTPM * 0.05
	if recovery < 1 {
		recovery = 1
	}
	return &Limiter{
		limiter:      rate.NewLimiter(rate.Limit(initialTPM/60.0), int(initialTPM)),
		currentTPM:   initialTPM,
		minTPM:       minTPM,
		maxTPM:       maxTPM,
		recoveryRate: recovery,
	}
}

// Wrap returns a Provider that enforces this limiter's budget before
// delegating every call to next.
func (l *Limiter) Wrap(next llmprovider.Provider) llmprovider.Provider {
	return &limited{next: next, limiter: l}
}

type limited struct {
	next    llmprovider.Provider
	limiter *Limiter
}

func (p *limited) CreateModel(ctx context.Context, modelRole string) (string, error) {
	return p.next.CreateModel(ctx, modelRole)
}

func (p *limited) CheckHealth(ctx context.Context) error {
	return p.next.CheckHealth(ctx)
}

func (p *limited) ExecuteCompletion(ctx context.Context, req llmprovider.Request) (llmprovider.Response, error) {
	if err := p.limiter.wait(ctx, req); err != nil {
		return llmprovider.Response{}, err
	}
	resp, err := p.next.ExecuteCompletion(ctx, req)
	p.limiter.observe(err)
	return resp, err
}

func (l *Limiter) wait(ctx context.Context, req llmprovider.Request) error {
	return l.limiter.WaitN(ctx, estimateTokens(req))
}

func (l *Limiter) observe(err error) {
	if err == nil {
		l.probe()
		return
	}
	if errors.Is(err, llmprovider.ErrRateLimited) {
		l.backoff()
	}
}

func (l *Limiter) backoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.currentTPM * 0.5
	if next < l.minTPM {
		next = l.minTPM
	}
	l.setBudget(next)
}

func (l *Limiter) probe() {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.currentTPM + l.recoveryRate
	if next > l.maxTPM {
		next = l.maxTPM
	}
	l.setBudget(next)
}

// setBudget must be called with l.mu held.
func (l *Limiter) setBudget(tpm float64) {
	if tpm == l.currentTPM {
		return
	}
	l.currentTPM = tpm
	l.limiter.SetLimit(rate.Limit(tpm / 60.0))
	l.limiter.SetBurst(int(tpm))
}

// estimateTokens is a cheap character-count heuristic, the same shape
// goa-ai's middleware uses: ~1 token per 3 characters plus a fixed buffer
// for system/provider framing.
func estimateTokens(req llmprovider.Request) int {
	chars := 0
	for _, m := range req.Messages {
		chars += len(m.Content)
	}
	if chars <= 0 {
		return 500
	}
	tokens := chars / 3
	if tokens < 1 {
		tokens = 1
	}
	return tokens + 500
}
