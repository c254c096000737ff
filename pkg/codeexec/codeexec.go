// Package codeexec defines the code executor contract.4
// describes: a sandboxed Python execution service invoked by code-
// generation capabilities, with static-analysis flags in the request
// driving the approval policy for anything that writes to control-system
// infrastructure.
package codeexec

import "context"

// PythonExecutionRequest carries everything an executor needs to run
// generated code against the current turn's context.
type PythonExecutionRequest struct {
	UserQuery string
	TaskObjective string
	CapabilityPrompts []string
	ExpectedResults []string
	ExecutionFolder string
	CapabilityContext map[string]any

	// StaticAnalysisFlags names concerns a pre-execution static analysis
	// pass detected (e.g. "writes_control_system", "network_access").
	// A non-empty set signals the executor should request approval instead
	// of running immediately.
	StaticAnalysisFlags []string
}

// Result is a successful execution's output.
type Result struct {
	Code string
	ExecutionResult string
}

// ApprovalRequest is what Execute returns instead of a Result when
// StaticAnalysisFlags indicate the generated code needs human approval
// before it runs (suspend/resume protocol, triggered here
// rather than inside the graph runner).
type ApprovalRequest struct {
	Code string
	OperationSummary string
	SafetyConcerns []string
}

// Executor runs generated Python against the sandbox. Code
// generation, the sandbox itself, and specific connector wiring are
// out of scope per — Executor is the seam the core depends on.
type Executor interface {
	Execute(ctx context.Context, req PythonExecutionRequest) (*Result, *ApprovalRequest, error)
}
