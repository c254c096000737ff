package graph

import (
	"context"

	"github.com/ospreyai/osprey/pkg/state"
)

// ErrorNode is the terminal node names: it turns an
// state.ErrorState into a user-facing explanation that never leaks
// internal messages or stack-trace-shaped text, and names budget
// exhaustion explicitly when that's why the router landed here.
type ErrorNode struct{}

// Run produces the assistant-facing error turn ("Error"
// contract).
func (n *ErrorNode) Run(ctx context.Context, s state.State) (state.Update, error) {
	message := "Something went wrong while handling your request. Please try again."
	if s.Error != nil {
 switch s.Error.Kind {
 case state.ErrorKindReclassificationReq:
 message = "I couldn't map your request onto any of my available capabilities after repeated attempts. Could you rephrase it?"
 case state.ErrorKindRetriable:
 message = "I tried repeatedly but couldn't complete this request within the allowed number of attempts."
 case state.ErrorKindInvalidContextKey:
 message = "I couldn't build a valid plan for this request. Could you rephrase it?"
 case state.ErrorKindCapabilityExecution:
 message = "One of the steps needed to complete your request failed and couldn't be retried further."
 }
	}

	return state.Update{
 InputOutput: &state.InputOutput{
 Query: s.InputOutput.Query,
 ChatHistory: s.InputOutput.ChatHistory,
 Response: message,
 },
	}, nil
}
