package slack

import (
	"context"
	"log/slog"
	"time"
)

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token string
	Channel string
}

// Service handles Slack notification delivery. Nil-safe: all methods are
// no-ops when service is nil, so cmd/osprey can pass it through without a
// NoopNotifier wrapper when no webhook is configured.
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService creates a new Slack notification service.
// Returns nil if Token or Channel is empty.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
 return nil
	}
	return &Service{
 client: NewClient(cfg.Token, cfg.Channel),
 logger: slog.Default().With("component", "slack-service"),
	}
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client) *Service {
	return &Service{
 client: client,
 logger: slog.Default().With("component", "slack-service"),
	}
}

// NotifyApprovalRequested implements pkg/graph.Notifier.
func (s *Service) NotifyApprovalRequested(capabilityName, operationSummary string, safetyConcerns []string) error {
	if s == nil {
 return nil
	}

	blocks := BuildApprovalMessage(capabilityName, operationSummary, safetyConcerns)
	if err := s.client.PostMessage(context.Background(), blocks, 5*time.Second); err != nil {
 s.logger.Error("Failed to send Slack approval notification",
 "capability", capabilityName,
 "error", err)
 return err
	}
	return nil
}
