package stubexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreyai/osprey/pkg/codeexec"
)

func TestExecute_ReturnsResultWhenNoWriteFlags(t *testing.T) {
	e := New()
	result, approval, err := e.Execute(context.Background(), codeexec.PythonExecutionRequest{
		TaskObjective: "plot beam current",
	})
	require.NoError(t, err)
	assert.Nil(t, approval)
	require.NotNil(t, result)
	assert.Contains(t, result.ExecutionResult, "plot beam current")
}

func TestExecute_RequestsApprovalForControlSystemWrite(t *testing.T) {
	e := New()
	result, approval, err := e.Execute(context.Background(), codeexec.PythonExecutionRequest{
		TaskObjective:       "set beam current setpoint",
		StaticAnalysisFlags: []string{"writes_control_system"},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	require.NotNil(t, approval)
	assert.Contains(t, approval.SafetyConcerns, "writes_control_system")
}
