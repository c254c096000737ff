// Package stubexec is a reference codeexec.Executor that returns a canned
// result, or an approval request when the request's static-analysis flags
// indicate a write — enough to exercise the approval round-trip scenario
// (scenario 3) without a real sandbox. scopes the
// actual Python sandbox out of the core contract.
package stubexec

import (
	"context"
	"fmt"
	"strings"

	"github.com/ospreyai/osprey/pkg/codeexec"
)

// WriteFlags names the StaticAnalysisFlags values that trigger an
// approval request rather than immediate execution.
var WriteFlags = map[string]bool{
	"writes_control_system": true,
}

// Executor is a deterministic stand-in: it never actually runs Python. It
// echoes the task objective into a canned result, or — when a write flag
// is present — returns an ApprovalRequest describing the pending write.
type Executor struct{}

func New() *Executor { return &Executor{} }

func (e *Executor) Execute(_ context.Context, req codeexec.PythonExecutionRequest) (*codeexec.Result, *codeexec.ApprovalRequest, error) {
	for _, flag := range req.StaticAnalysisFlags {
 if WriteFlags[flag] {
 return nil, &codeexec.ApprovalRequest{
 Code: generatedCode(req),
 OperationSummary: fmt.Sprintf("execute generated code for: %s", req.TaskObjective),
 SafetyConcerns: req.StaticAnalysisFlags,
 }, nil
 }
	}

	code := generatedCode(req)
	return &codeexec.Result{
 Code: code,
 ExecutionResult: fmt.Sprintf("# stub execution for %q\nresult = %q\n", req.TaskObjective, req.TaskObjective),
	}, nil, nil
}

func generatedCode(req codeexec.PythonExecutionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# task: %s\n", req.TaskObjective)
	for _, prompt := range req.CapabilityPrompts {
 fmt.Fprintf(&b, "# %s\n", prompt)
	}
	return b.String()
}
