// Package graph implements the orchestration core describes:
// task extraction, classification, orchestration, a pure router, a
// generic capability node runner, the approval protocol, and the
// terminal respond/clarify/error nodes, wired together by a small graph
// runtime.
package graph

import "github.com/ospreyai/osprey/pkg/graph/grapherr"

// These are aliased from pkg/graph/grapherr so call sites within this
// package (and pkg/graph/nodes) can share one set of types without an
// import cycle — grapherr is a leaf package both depend on.
type (
	ReclassificationRequiredError = grapherr.ReclassificationRequiredError
	InvalidContextKeyError = grapherr.InvalidContextKeyError
	DuplicateContextKeyError = grapherr.DuplicateContextKeyError
	InputTypeMismatchError = grapherr.InputTypeMismatchError
	CapabilityExecutionError = grapherr.CapabilityExecutionError
	ClassificationFailedError = grapherr.ClassificationFailedError
)
