package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ospreyai/osprey/pkg/contextstore"
	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/state"
)

// Respond is the terminal node names: it formats a natural-
// language answer from the task objective, classified capabilities, every
// stored context, and the ui artifact registries, tailored to the calling
// interface.
type Respond struct {
	Provider llmprovider.Provider
	MaxSummaryChars int
}

// Run produces the assistant turn ("Respond" contract).
func (n *Respond) Run(ctx context.Context, s state.State) (state.Update, error) {
	if n.Provider == nil {
 return state.Update{}, fmt.Errorf("nodes: respond requires an llmprovider.Provider")
	}

	summaries := contextstore.ListSummaries(s.ContextData, n.MaxSummaryChars)
	summariesJSON, _ := json.Marshal(summaries)

	resp, err := n.Provider.ExecuteCompletion(ctx, llmprovider.Request{
 ModelRole: "response",
 Messages: []llmprovider.Message{
 {Role: llmprovider.RoleSystem, Content: buildResponsePrompt(s, string(summariesJSON))},
 {Role: llmprovider.RoleUser, Content: s.Task.TaskObjective},
 },
	})
	if err != nil {
 return state.Update{}, fmt.Errorf("nodes: response completion failed: %w", err)
	}

	return state.Update{InputOutput: &state.InputOutput{
 Query: s.InputOutput.Query,
 ChatHistory: s.InputOutput.ChatHistory,
 Response: resp.Text,
	}}, nil
}

func buildResponsePrompt(s state.State, summariesJSON string) string {
	style := "Reply in plain text suitable for a terminal."
	switch s.Interface.Kind {
	case state.InterfaceWeb:
 style = "Reply in markdown; embed any image artifacts inline with ![] syntax."
	case state.InterfaceHTTP:
 style = "Reply in markdown; list artifact URLs explicitly since there is no inline rendering."
	}
	return fmt.Sprintf("Summarize the outcome of task %q for capabilities %v using the stored results below. %s\n"+
 "Stored contexts: %s\nImage artifacts: %d, notebooks: %d, commands: %d.",
 s.Task.TaskObjective, s.Classification.ActiveCapabilityNames, style,
 summariesJSON, len(s.UI.Images), len(s.UI.Notebooks), len(s.UI.Commands),)
}
