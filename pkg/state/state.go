// Package state defines the agent state record — the sole
// in-band communication medium between graph nodes. Nodes never mutate
// state in place; they return a partial Update, which the graph runtime
// merges using the per-field reducers in reduce.go.
package state

import "time"

// Role tags a chat history entry.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of chat history.
type Message struct {
	Role Role
	Content string
}

// InputOutput holds the user's query and chat history for this turn.
type InputOutput struct {
	Query string
	ChatHistory []Message
	// Response is set by the respond node; it becomes the next turn's
	// trailing assistant message once the gateway appends it to history.
	Response string
}

// Task holds the output of task extraction.
type Task struct {
	TaskObjective string
	DependsOnChatHistory bool
}

// Rationale records why a capability was (or wasn't) selected.
type Rationale struct {
	CapabilityName string
	IsRelevant bool
	Rationale string
}

// Classification holds the output of the classification node.
type Classification struct {
	ActiveCapabilityNames []string
	Rationales []Rationale
}

// Cardinality constrains how many contexts a capability's input may bind
// to (extract_for_step).
type Cardinality string

const (
	CardinalitySingle Cardinality = "single"
	CardinalityMultiple Cardinality = "multiple"
	CardinalityUnconstrained Cardinality = "unconstrained"
)

// PlannedStep is one entry in an execution plan.
type PlannedStep struct {
	CapabilityName string
	ContextKey string
	TaskObjective string
	Inputs []string
	Parameters map[string]any
}

// Planning holds the execution plan and progress through it.
type Planning struct {
	ExecutionPlan []PlannedStep
	CurrentStepIndex int
	ReclassificationAttempts int
}

// Complete reports whether every planned step has executed (invariant 1:
// current_step_index == len(execution_plan)).
func (p Planning) Complete() bool {
	return p.CurrentStepIndex >= len(p.ExecutionPlan)
}

// Summarizable is implemented by stored context values that can render
// themselves as a one-line summary for orchestrator prompts.
type Summarizable interface {
	Summary() string
}

// ContextEntry is one stored capability output, keyed by (type, key) in
// ContextData. TaskObjective records the `_meta.task_objective` field
// requires on every stored value.
type ContextEntry struct {
	Value any
	TaskObjective string
	StoredAt time.Time
}

// ContextData is the two-level `context_type -> context_key -> entry`
// mapping of stored capability outputs. Entries are write-once per
// conversation turn.
type ContextData map[string]map[string]*ContextEntry

// Clone returns a deep-enough copy for safe merging across node
// boundaries (entries themselves are treated as immutable once stored).
func (c ContextData) Clone() ContextData {
	out := make(ContextData, len(c))
	for typ, byKey := range c {
 inner := make(map[string]*ContextEntry, len(byKey))
 for k, v := range byKey {
 inner[k] = v
 }
 out[typ] = inner
	}
	return out
}

// BypassFlags toggles deterministic substitutes for LLM-backed nodes
// (agent_control.bypass.*).
type BypassFlags struct {
	TaskExtraction bool
	Classification bool
}

// AgentControl carries bypass flags, budgets, and session preferences.
type AgentControl struct {
	Bypass BypassFlags
	MaxExecutionRetries int
	MaxReclassifications int
	MaxConcurrentClassifications int
	MaxGenerationRetries int
	MaxSummaryChars int
	PlanningModeApprovalRequired bool
}

// InterruptPayload is what a capability returns to request human approval.
type InterruptPayload struct {
	CapabilityName string
	OperationSummary string
	SafetyConcerns []string
	PendingActions []string
	Extra map[string]any
}

// ResumePayload is what external code supplies to end a suspension.
type ResumePayload struct {
	Approved bool
	Fields map[string]any
}

// Approval is the suspension slot's state machine: empty -> suspended ->
// resumed -> empty.
type Approval struct {
	CapabilityName string
	InterruptPayload *InterruptPayload
	ResumePayload *ResumePayload
}

// Empty reports whether the approval slot holds nothing (the base state).
func (a Approval) Empty() bool {
	return a.InterruptPayload == nil && a.ResumePayload == nil
}

// ErrorSeverity classifies a captured error for the router.
type ErrorSeverity string

const (
	SeverityRetriable ErrorSeverity = "retriable"
	SeverityReclassification ErrorSeverity = "reclassification"
	SeverityFatal ErrorSeverity = "fatal"
)

// ErrorKind is the taxonomy names (not a Go type hierarchy —
// just a label carried on ErrorState for the error node and tests).
type ErrorKind string

const (
	ErrorKindRetriable ErrorKind = "retriable"
	ErrorKindReclassificationReq ErrorKind = "reclassification_required"
	ErrorKindInvalidContextKey ErrorKind = "invalid_context_key"
	ErrorKindCapabilityExecution ErrorKind = "capability_execution_failure"
	ErrorKindBudgetExhausted ErrorKind = "budget_exhausted"
	ErrorKindConfiguration ErrorKind = "configuration"
)

// ErrorState is the optional error sub-record.
type ErrorState struct {
	Kind ErrorKind
	Severity ErrorSeverity
	Message string
	FailingCapability string
	RetryCount int
	Metadata map[string]any
}

// ArtifactType tags a ui artifact's kind.
type ArtifactType string

const (
	ArtifactImage ArtifactType = "image"
	ArtifactNotebook ArtifactType = "notebook"
	ArtifactCommand ArtifactType = "command"
	ArtifactHTML ArtifactType = "html"
	ArtifactFile ArtifactType = "file"
)

// Artifact is one entry in a ui artifact registry.
type Artifact struct {
	Type ArtifactType
	SourceCapability string
	CreatedAt time.Time
	DisplayName string
	ContentRef string // URL, file path, or inline content depending on Type
	Metadata map[string]any
}

// UI holds the append-only artifact registries produced during a turn.
type UI struct {
	Images []Artifact
	Notebooks []Artifact
	Commands []Artifact
	HTML []Artifact
	Files []Artifact
}

// SessionMode names a capability-scoped interaction mode persisted across
// turns (session).
type SessionMode struct {
	Capability string
	Active bool
}

// Session persists across turns within one thread.
type Session struct {
	DirectChatMode bool
	CapabilityMode *SessionMode
	Preferences map[string]string
}

// InterfaceKind names the runtime-detected frontend identity — read-only
// to nodes.
type InterfaceKind string

const (
	InterfaceTerminal InterfaceKind = "terminal"
	InterfaceWeb InterfaceKind = "web"
	InterfaceHTTP InterfaceKind = "http"
)

// Interface identifies the calling frontend; it only influences response
// shape.
type Interface struct {
	Kind InterfaceKind
}

// ClarificationNeeded, when non-empty, is the well-known context key the
// clarify node looks for.
const ClarificationContextType = "CLARIFICATION"

// State is the full agent state record carried through the graph.
// Every node reads it and returns an Update, never mutating State in
// place.
type State struct {
	InputOutput InputOutput
	Task Task
	Classification Classification
	Planning Planning
	ContextData ContextData
	AgentControl AgentControl
	Approval Approval
	Error *ErrorState
	UI UI
	Session Session
	Interface Interface
}

// New returns a zero-valued State with initialized maps/slices, ready for
// the gateway to populate at the first message of a turn.
func New() State {
	return State{
 ContextData: ContextData{},
 Session: Session{Preferences: map[string]string{}},
	}
}
