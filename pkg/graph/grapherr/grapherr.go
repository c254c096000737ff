// Package grapherr holds the structured error types shared between
// pkg/graph and pkg/graph/nodes (error taxonomy). It is a
// leaf package so both can depend on it without an import cycle: nodes
// raises these from plan validation and task/classification logic, and
// pkg/graph's node runner and router inspect them with errors.As.
package grapherr

import "fmt"

// ReclassificationRequiredError signals that the active capability set
// cannot satisfy the current plan — either the orchestrator named a
// capability that isn't active (validation rule 1), or a
// capability rejected its assigned task at runtime. The
// router rolls back the plan and re-enters classification.
type ReclassificationRequiredError struct {
	CapabilityName string
	Reason string
}

func (e *ReclassificationRequiredError) Error() string {
	return fmt.Sprintf("graph: capability %q requires reclassification: %s", e.CapabilityName, e.Reason)
}

// InvalidContextKeyError signals that a step input (a context_key) is
// neither an earlier step's context_key nor an existing context-store key
// (validation rule 3). Raised both at plan-validation time
// (orchestration) and, defensively, at extraction time
// (contextstore.ExtractForStep) right before a capability runs. It
// triggers re-planning, not reclassification: the capability set is
// unchanged.
type InvalidContextKeyError struct {
	ContextKey string
	Available []string
}

func (e *InvalidContextKeyError) Error() string {
	return fmt.Sprintf("graph: orchestration referenced unknown context key %q", e.ContextKey)
}

// DuplicateContextKeyError signals that a candidate plan step reused a
// context_key already produced earlier in the same plan.
type DuplicateContextKeyError struct {
	ContextKey string
}

func (e *DuplicateContextKeyError) Error() string {
	return fmt.Sprintf("graph: context_key %q is reused within the same plan", e.ContextKey)
}

// InputTypeMismatchError signals that a step input's context_key resolved
// to a context type the target capability has no Requires entry for
// (validation rule 4). CapabilityName is set when the error
// originates from plan validation; ContextKey identifies which input was
// rejected.
type InputTypeMismatchError struct {
	CapabilityName string
	ContextKey string
	ContextType string
}

func (e *InputTypeMismatchError) Error() string {
	if e.CapabilityName != "" {
 return fmt.Sprintf("graph: capability %q has no requirement for input %q (resolved to context type %q)", e.CapabilityName, e.ContextKey, e.ContextType)
	}
	return fmt.Sprintf("graph: input %q resolved to context type %q, which is not a declared requirement", e.ContextKey, e.ContextType)
}

// CapabilityExecutionError wraps a capability's Execute failure after its
// own retries (if any) are exhausted (, severity fatal).
type CapabilityExecutionError struct {
	CapabilityName string
	Err error
}

func (e *CapabilityExecutionError) Error() string {
	return fmt.Sprintf("graph: capability %q execution failed: %v", e.CapabilityName, e.Err)
}

func (e *CapabilityExecutionError) Unwrap() error { return e.Err }

// ClassificationFailedError signals that classification selected zero
// capabilities.
type ClassificationFailedError struct {
	TaskObjective string
}

func (e *ClassificationFailedError) Error() string {
	return fmt.Sprintf("graph: no capability was selected for task %q", e.TaskObjective)
}
