package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/state"
)

type scriptedProvider struct {
	text string
	err  error
}

func (p *scriptedProvider) CreateModel(ctx context.Context, modelRole string) (string, error) {
	return "fake", nil
}
func (p *scriptedProvider) CheckHealth(ctx context.Context) error { return nil }
func (p *scriptedProvider) ExecuteCompletion(ctx context.Context, req llmprovider.Request) (llmprovider.Response, error) {
	if p.err != nil {
		return llmprovider.Response{}, p.err
	}
	return llmprovider.Response{Text: p.text}, nil
}

func TestRespond_FormatsInterfaceAwareResponse(t *testing.T) {
	node := &Respond{Provider: &scriptedProvider{text: "here is your plot"}}
	s := state.New()
	s.Interface.Kind = state.InterfaceWeb

	update, err := node.Run(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, update.InputOutput)
	assert.Equal(t, "here is your plot", update.InputOutput.Response)
}

func TestClarify_TruncatesPlanAndPreservesQuestion(t *testing.T) {
	node := &Clarify{}
	s := state.New()
	s.Planning.ExecutionPlan = []state.PlannedStep{{CapabilityName: "plot"}}
	s.Planning.CurrentStepIndex = 0
	s.ContextData[state.ClarificationContextType] = map[string]*state.ContextEntry{
		"q1": {Value: "Which channel did you mean?"},
	}

	update, err := node.Run(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, update.Planning)
	assert.Empty(t, update.Planning.ExecutionPlan)
	assert.Equal(t, "Which channel did you mean?", update.InputOutput.Response)
}

func TestClarify_FallsBackToGenericQuestionWhenValueIsNotAString(t *testing.T) {
	node := &Clarify{}
	s := state.New()
	s.ContextData[state.ClarificationContextType] = map[string]*state.ContextEntry{"q1": {Value: 42}}

	update, err := node.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "42", update.InputOutput.Response)
}

func TestErrorNode_ReclassificationBudgetExhaustedNamesCapabilityMismatch(t *testing.T) {
	node := &ErrorNode{}
	s := state.New()
	s.Error = &state.ErrorState{Kind: state.ErrorKindReclassificationReq}

	update, err := node.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Contains(t, update.InputOutput.Response, "map your request")
}

func TestErrorNode_RetriableBudgetExhaustedMentionsAttempts(t *testing.T) {
	node := &ErrorNode{}
	s := state.New()
	s.Error = &state.ErrorState{Kind: state.ErrorKindRetriable, RetryCount: 3}

	update, err := node.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Contains(t, update.InputOutput.Response, "allowed number of attempts")
}

func TestErrorNode_NoErrorStateUsesGenericMessage(t *testing.T) {
	node := &ErrorNode{}
	update, err := node.Run(context.Background(), state.New())
	require.NoError(t, err)
	assert.NotEmpty(t, update.InputOutput.Response)
}
