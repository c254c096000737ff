// Package events fans out advisory progress events for an in-flight
// conversation turn — node transitions, capability invocations, and
// approval requests — to WebSocket subscribers, independent of the
// agent state the graph runtime checkpoints (: "Generators/
// streams. Real-time progress messages from nodes... are emitted
// through a separate stream channel attached to the runtime, not
// through state. They are advisory to UIs and not part of the
// semantic state.").
//
// Two delivery modes exist, chosen to match the wired checkpointer:
//
// - LocalPublisher broadcasts directly to this process's WebSocket
// connections. No persistence, no cross-process fan-out — the
// right choice alongside the in-memory checkpointer, where there
// is only ever one process to deliver to.
// - Store additionally persists events to Postgres and relays them
// through NOTIFY/LISTEN, so a late-subscribing client can catch up
// on events it missed and multiple Osprey processes sharing one
// Postgres-backed checkpointer stay in sync.
package events

// Event types published for a conversation turn's progress.
const (// EventTypeNodeStarted/Completed track graph node transitions —
	// task extraction, classification, orchestration, respond/clarify/error.
	EventTypeNodeStarted = "node.started"
	EventTypeNodeCompleted = "node.completed"

	// EventTypeCapabilityInvoked/Completed track a single capability
	// execution within the orchestration node.
	EventTypeCapabilityInvoked = "capability.invoked"
	EventTypeCapabilityCompleted = "capability.completed"

	// EventTypeApprovalRequested fires when a capability interrupts the
	// graph pending human approval.
	EventTypeApprovalRequested = "approval.requested"

	// EventTypeTurnCompleted/Error mark the terminal outcome of a turn.
	EventTypeTurnCompleted = "turn.completed"
	EventTypeTurnError = "turn.error")

// ThreadChannel returns the channel name for a thread's progress events.
// Format: "thread:{thread_id}".
func ThreadChannel(threadID string) string {
	return "thread:" + threadID
}

// ClientMessage is the JSON structure for client → server WebSocket messages.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe", "unsubscribe", "catchup", "ping"
	Channel string `json:"channel,omitempty"` // channel name (e.g. "thread:abc-123")
	LastEventID *int `json:"last_event_id,omitempty"` // for catchup
}
