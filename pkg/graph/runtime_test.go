package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/checkpoint/memory"
	"github.com/ospreyai/osprey/pkg/state"
)

type fakeNode struct {
	run func(ctx context.Context, s state.State) (state.Update, error)
}

func (f *fakeNode) Run(ctx context.Context, s state.State) (state.Update, error) {
	return f.run(ctx, s)
}

func taskExtractionNode(objective string) Node {
	return &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
		return state.Update{Task: &state.Task{TaskObjective: objective}}, nil
	}}
}

func classificationNode(names ...string) Node {
	return &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
		return state.Update{Classification: &state.Classification{ActiveCapabilityNames: names}}, nil
	}}
}

func newTestRuntime(t *testing.T, caps ...*fakeCap) (*Runtime, *memory.Store) {
	store := memory.New()
	reg := registryWith(caps...)
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.name
	}
	return &Runtime{
		Limits:         testLimits(),
		Checkpointer:   store,
		NodeRunner:     NewNodeRunner(reg),
		TaskExtraction: taskExtractionNode("plot beam current"),
		Classification: classificationNode(names...),
		Orchestration: &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
			return state.Update{Planning: &state.Planning{
				ExecutionPlan: []state.PlannedStep{{CapabilityName: names[0], ContextKey: "k1"}},
			}}, nil
		}},
		Respond: &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
			return state.Update{InputOutput: &state.InputOutput{Response: "done"}}, nil
		}},
		Clarify: &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
			return state.Update{InputOutput: &state.InputOutput{Response: "clarify?"}}, nil
		}},
		Error: &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
			return state.Update{InputOutput: &state.InputOutput{Response: "error"}}, nil
		}},
	}, store
}

func TestRuntime_HappyPathRunsEndToEndToRespond(t *testing.T) {
	cap := &fakeCap{
		name:     "plot",
		provides: []capability.Provision{{ContextType: "PLOT"}},
		execute: func(_ context.Context, run *capability.RunContext) (state.Update, error) {
			return state.Update{NewContextData: state.ContextData{"PLOT": {run.Step.ContextKey: &state.ContextEntry{Value: "img"}}}}, nil
		},
	}
	rt, _ := newTestRuntime(t, cap)

	s, route, err := rt.Run(context.Background(), RunConfig{ThreadID: "t1"}, state.Update{InputOutput: &state.InputOutput{Query: "plot beam current"}})
	require.NoError(t, err)
	assert.Equal(t, RouteRespond, route)
	assert.Equal(t, "done", s.InputOutput.Response)
}

func TestRuntime_CheckspointsAfterEveryNode(t *testing.T) {
	cap := &fakeCap{
		name:     "plot",
		provides: []capability.Provision{{ContextType: "PLOT"}},
		execute: func(_ context.Context, run *capability.RunContext) (state.Update, error) {
			return state.Update{NewContextData: state.ContextData{"PLOT": {run.Step.ContextKey: &state.ContextEntry{Value: "img"}}}}, nil
		},
	}
	rt, store := newTestRuntime(t, cap)

	_, _, err := rt.Run(context.Background(), RunConfig{ThreadID: "t2"}, state.Update{InputOutput: &state.InputOutput{Query: "plot beam current"}})
	require.NoError(t, err)

	snapshot, ok, err := store.Load(context.Background(), "t2", "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "done", snapshot.InputOutput.Response)
}

func TestRuntime_ApprovalPauseSuspendsWithoutReachingTerminalNode(t *testing.T) {
	cap := &fakeCap{
		name: "code_exec",
		execute: func(_ context.Context, run *capability.RunContext) (state.Update, error) {
			return capability.RequestApproval("code_exec", state.InterruptPayload{OperationSummary: "write setpoint"}), nil
		},
	}
	rt, _ := newTestRuntime(t, cap)

	s, route, err := rt.Run(context.Background(), RunConfig{ThreadID: "t3"}, state.Update{InputOutput: &state.InputOutput{Query: "set channel X"}})
	require.NoError(t, err)
	assert.Equal(t, RouteApprovalPause, route)
	require.NotNil(t, s.Approval.InterruptPayload)
}

func TestRuntime_ResumeReEntersSuspendedCapabilityAndCompletes(t *testing.T) {
	var resumeSeen bool
	cap := &fakeCap{
		name:     "code_exec",
		provides: []capability.Provision{{ContextType: "CODE_RESULT"}},
		execute: func(_ context.Context, run *capability.RunContext) (state.Update, error) {
			if run.Resume == nil {
				return capability.RequestApproval("code_exec", state.InterruptPayload{OperationSummary: "write setpoint"}), nil
			}
			resumeSeen = true
			return state.Update{NewContextData: state.ContextData{"CODE_RESULT": {run.Step.ContextKey: &state.ContextEntry{Value: "ok"}}}}, nil
		},
	}
	rt, _ := newTestRuntime(t, cap)

	cfg := RunConfig{ThreadID: "t4"}
	_, route, err := rt.Run(context.Background(), cfg, state.Update{InputOutput: &state.InputOutput{Query: "set channel X"}})
	require.NoError(t, err)
	require.Equal(t, RouteApprovalPause, route)

	s, route, err := rt.Resume(context.Background(), cfg, state.ResumePayload{Approved: true})
	require.NoError(t, err)
	assert.True(t, resumeSeen)
	assert.Equal(t, RouteRespond, route)
	assert.Equal(t, "done", s.InputOutput.Response)
}

func TestRuntime_RetriableNodeErrorRetriesUnderBudgetThenRoutesToError(t *testing.T) {
	attempts := 0
	rt, _ := newTestRuntime(t)
	rt.TaskExtraction = &fakeNode{run: func(_ context.Context, s state.State) (state.Update, error) {
		attempts++
		return state.Update{}, errors.New("transient LLM failure")
	}}

	s, route, err := rt.Run(context.Background(), RunConfig{ThreadID: "t5"}, state.Update{})
	require.NoError(t, err)
	assert.Equal(t, RouteError, route)
	assert.Equal(t, "error", s.InputOutput.Response)
	assert.Equal(t, testLimits().MaxGenerationRetries+1, attempts)
}
