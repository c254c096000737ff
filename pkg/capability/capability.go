// Package capability defines the common capability interface every
// registered unit of work implements. Capabilities are simple and
// uniform: the runner (pkg/graph) injects a step-local view and handles
// approval interrupts, error classification, and context bookkeeping
// around a single Execute call.
package capability

import (
	"context"

	"github.com/ospreyai/osprey/pkg/state"
)

// Requirement is one (context type, cardinality) tuple a capability
// declares it needs as input (validation rule 4).
type Requirement struct {
	ContextType string
	Cardinality state.Cardinality
}

// Provision is one context type a capability declares it produces.
type Provision struct {
	ContextType string
}

// Example is one few-shot example used to build classifier or
// orchestrator prompts.
type Example struct {
	Query string
	Explanation string
}

// ExtractedInputs is the pre-extracted, cardinality-validated view of a
// step's inputs, keyed by context type (extract_for_step).
// A `single` requirement yields exactly one value; `multiple` always
// yields a slice (even a singleton); unconstrained mirrors how the value
// was stored.
type ExtractedInputs map[string]any

// Single returns the single value extracted for a context type, or false
// if the type was not requested/extracted as single.
func (e ExtractedInputs) Single(contextType string) (any, bool) {
	v, ok := e[contextType]
	return v, ok
}

// Multiple returns the slice extracted for a context type. If the stored
// value was not already a slice, callers should use ExtractedInputs only
// via the runner, which guarantees slice-wrapping for `multiple`
// cardinality.
func (e ExtractedInputs) Multiple(contextType string) ([]any, bool) {
	v, ok := e[contextType]
	if !ok {
 return nil, false
	}
	sl, ok := v.([]any)
	return sl, ok
}

// RunContext is the step-local view injected into a capability's Execute
// call (pre-execute).
type RunContext struct {
	Step state.PlannedStep
	State state.State
	Inputs ExtractedInputs
	// Resume is non-nil when this step is being re-entered after a human
	// approval decision ("resumed" state). The runner clears
	// state.Approval once Execute returns.
	Resume *state.ResumePayload
}

// Capability is the interface every registered unit of work implements.
// Instances are created per-execution by the registry's factory, never
// shared across conversations.
type Capability interface {
	Name() string
	Description() string

	// Requires lists the typed, cardinality-constrained inputs this
	// capability needs. Empty for capabilities with no dependencies.
	Requires() []Requirement

	// Provides lists the context types this capability produces. The
	// runner validates that at least one context of each declared type was
	// stored under the step's context_key after a successful Execute
	// (post-execute), unless Execute returned an approval interrupt.
	Provides() []Provision

	// Execute runs the capability for one planned step. It returns a
	// partial state update — most commonly one NewContextData entry under
	// run.Step.ContextKey — or sets Approval to request human approval, or
	// returns an error to be classified by the runner (or by the
	// capability itself, via ErrorClassifier).
	Execute(ctx context.Context, run *RunContext) (state.Update, error)
}

// ClassifierExampleProvider is implemented by capabilities that supply
// few-shot examples for the classification node's relevance prompt.
type ClassifierExampleProvider interface {
	ClassifierExamples() []Example
}

// OrchestratorExampleProvider is implemented by capabilities that supply
// few-shot examples for the orchestrator's plan-synthesis prompt.
type OrchestratorExampleProvider interface {
	OrchestratorExamples() []Example
}

// ErrorClassifier is implemented by capabilities that know how to map
// their own errors to a severity. Capabilities that don't
// implement it default to state.SeverityFatal.
type ErrorClassifier interface {
	Classify(err error) state.ErrorSeverity
}

// RequestApproval builds a state.Update that suspends the graph for human
// approval. Capabilities call this
// instead of executing a sensitive operation directly.
func RequestApproval(capabilityName string, payload state.InterruptPayload) state.Update {
	payload.CapabilityName = capabilityName
	u := state.Update{}
	u.Approval = &state.Approval{
 CapabilityName: capabilityName,
 InterruptPayload: &payload,
	}
	return u
}
