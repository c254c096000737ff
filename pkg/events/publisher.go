package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher delivers a turn-progress event payload to subscribers of a
// thread's channel. Each public method marshals a typed payload (see
// payloads.go) and routes it by thread ID.
//
// Two implementations exist, selected at startup to match the wired
// checkpointer (cmd/osprey/main.go):
//
//   - LocalPublisher broadcasts directly to this process's
//     ConnectionManager. No persistence; a client that connects after an
//     event fired has simply missed it.
//   - Store additionally persists to Postgres and relays through
//     NOTIFY/LISTEN, enabling catchup for late subscribers and fan-out
//     across multiple Osprey instances sharing one Postgres checkpointer.
type Publisher interface {
	PublishNodeStarted(ctx context.Context, threadID string, payload NodeStartedPayload) error
	PublishNodeCompleted(ctx context.Context, threadID string, payload NodeCompletedPayload) error
	PublishCapabilityInvoked(ctx context.Context, threadID string, payload CapabilityInvokedPayload) error
	PublishCapabilityCompleted(ctx context.Context, threadID string, payload CapabilityCompletedPayload) error
	PublishApprovalRequested(ctx context.Context, threadID string, payload ApprovalRequestedPayload) error
	PublishTurnCompleted(ctx context.Context, threadID string, payload TurnCompletedPayload) error
	PublishTurnError(ctx context.Context, threadID string, payload TurnErrorPayload) error
}

// LocalPublisher broadcasts events straight to the process-local
// ConnectionManager, with no persistence. Pairs with the in-memory
// checkpointer, where there is only ever one process to deliver to.
type LocalPublisher struct {
	manager *ConnectionManager
}

// NewLocalPublisher creates a Publisher backed by an in-process
// ConnectionManager only.
func NewLocalPublisher(manager *ConnectionManager) *LocalPublisher {
	return &LocalPublisher{manager: manager}
}

func (p *LocalPublisher) PublishNodeStarted(ctx context.Context, threadID string, payload NodeStartedPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) PublishNodeCompleted(ctx context.Context, threadID string, payload NodeCompletedPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) PublishCapabilityInvoked(ctx context.Context, threadID string, payload CapabilityInvokedPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) PublishCapabilityCompleted(ctx context.Context, threadID string, payload CapabilityCompletedPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) PublishApprovalRequested(ctx context.Context, threadID string, payload ApprovalRequestedPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) PublishTurnCompleted(ctx context.Context, threadID string, payload TurnCompletedPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) PublishTurnError(ctx context.Context, threadID string, payload TurnErrorPayload) error {
	return p.broadcast(threadID, payload)
}

func (p *LocalPublisher) broadcast(threadID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	p.manager.Broadcast(ThreadChannel(threadID), data)
	return nil
}
