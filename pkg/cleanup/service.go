// Package cleanup periodically sweeps expired checkpoints, implementing
// the retention policy `retention.checkpoint_ttl` describes.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/ospreyai/osprey/pkg/checkpoint"
	"github.com/ospreyai/osprey/pkg/config"
)

// Service periodically sweeps checkpoints older than the configured TTL.
// All operations are idempotent and safe to run from multiple instances
// against a shared backend.
type Service struct {
	config config.RetentionConfig
	checkpointer checkpoint.Checkpointer

	cancel context.CancelFunc
	done chan struct{}
}

// NewService creates a new cleanup service. If checkpointer does not
// implement checkpoint.Sweeper (e.g. a future backend that chooses not
// to), the cleanup loop still starts and stops cleanly but every sweep
// is a no-op — there's nothing unsafe about running retention against a
// backend that doesn't support it.
func NewService(cfg config.RetentionConfig, checkpointer checkpoint.Checkpointer) *Service {
	return &Service{config: cfg, checkpointer: checkpointer}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
 return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Cleanup service started",
 "checkpoint_ttl", s.config.CheckpointTTL,
 "interval", s.config.CleanupInterval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
 return
	}
	s.cancel()
	<-s.done
	slog.Info("Cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
 select {
 case <-ctx.Done():
 return
 case <-ticker.C:
 s.runAll(ctx)
 }
	}
}

func (s *Service) runAll(ctx context.Context) {
	s.sweepExpiredCheckpoints(ctx)
}

func (s *Service) sweepExpiredCheckpoints(ctx context.Context) {
	sweeper, ok := s.checkpointer.(checkpoint.Sweeper)
	if !ok {
 return
	}

	olderThan := time.Now().Add(-s.config.CheckpointTTL)
	count, err := sweeper.Sweep(ctx, olderThan)
	if err != nil {
 slog.Error("Retention: checkpoint sweep failed", "error", err)
 return
	}
	if count > 0 {
 slog.Info("Retention: swept expired checkpoints", "count", count)
	}
}
