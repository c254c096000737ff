package graph

import (
	"context"
	"fmt"

	"github.com/ospreyai/osprey/pkg/state"
)

// Clarify is the terminal node names: it fires when a
// capability stores the well-known CLARIFICATION context, truncates the
// in-flight plan (the remaining steps no longer apply until the user
// answers), and preserves every already-stored context across the next
// turn.
type Clarify struct{}

// Run emits the clarifying question and truncates the plan in place
// ("Clarify" contract).
func (n *Clarify) Run(ctx context.Context, s state.State) (state.Update, error) {
	question := firstClarificationQuestion(s)
	if question == "" {
 question = "Could you clarify what you'd like me to do?"
	}

	planning := s.Planning
	planning.ExecutionPlan = nil
	planning.CurrentStepIndex = 0

	return state.Update{
 Planning: &planning,
 InputOutput: &state.InputOutput{
 Query: s.InputOutput.Query,
 ChatHistory: s.InputOutput.ChatHistory,
 Response: question,
 },
	}, nil
}

func firstClarificationQuestion(s state.State) string {
	byKey, ok := s.ContextData[state.ClarificationContextType]
	if !ok {
 return ""
	}
	for _, entry := range byKey {
 if text, ok := entry.Value.(string); ok && text != "" {
 return text
 }
 return fmt.Sprintf("%v", entry.Value)
	}
	return ""
}
