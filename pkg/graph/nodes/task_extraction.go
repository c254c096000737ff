// Package nodes implements the LLM-backed preprocessing and planning
// nodes: task extraction, classification, and orchestration. Each node
// returns a state.Update; callers (pkg/graph's runtime) merge it and let
// the router (pkg/graph) decide what's next.
package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/datasource"
	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/state"
)

const taskExtractionSchema = `{
	"type": "object",
	"properties": {
 "task": {"type": "string"},
 "depends_on_chat_history": {"type": "boolean"}
	},
	"required": ["task", "depends_on_chat_history"]
}`

// TaskExtractionDefaultExamples is the framework's built-in few-shot set
// for the task-extraction prompt.
var TaskExtractionDefaultExamples = []capability.Example{
	{Query: "plot the beam current for the last hour", Explanation: "task: plot beam_current over the trailing 1h window"},
	{Query: "what's wrong with the vacuum system", Explanation: "task: diagnose anomalies in vacuum subsystem channels"},
}

// TaskExtraction is the node names. Provider and DataSource
// may both be nil-able in the sense that DataSource is optional (no
// registered provider) — Provider is required unless the bypass flag is
// set.
type TaskExtraction struct {
	Provider llmprovider.Provider
	DataSource datasource.Provider // optional
	ExtraExamples []capability.Example
}

// Run extracts the task objective for this turn (contract).
func (n *TaskExtraction) Run(ctx context.Context, s state.State) (state.Update, error) {
	dataSourceContext := n.fetchDataSource(ctx, s)

	if s.AgentControl.Bypass.TaskExtraction {
 return state.Update{Task: &state.Task{
 TaskObjective: formatBypassObjective(s, dataSourceContext),
 DependsOnChatHistory: len(s.InputOutput.ChatHistory) > 0,
 }}, nil
	}

	if n.Provider == nil {
 return state.Update{}, fmt.Errorf("nodes: task extraction requires an llmprovider.Provider when bypass is disabled")
	}

	messages := []llmprovider.Message{{Role: llmprovider.RoleSystem, Content: buildTaskExtractionSystemPrompt(n.ExtraExamples, dataSourceContext)}}
	for _, m := range s.InputOutput.ChatHistory {
 messages = append(messages, llmprovider.Message{Role: llmprovider.Role(m.Role), Content: m.Content})
	}
	messages = append(messages, llmprovider.Message{Role: llmprovider.RoleUser, Content: s.InputOutput.Query})

	resp, err := n.Provider.ExecuteCompletion(ctx, llmprovider.Request{
 ModelRole: "task_extraction",
 Messages: messages,
 Schema: []byte(taskExtractionSchema),
	})
	if err != nil {
 return state.Update{}, fmt.Errorf("nodes: task extraction completion failed: %w", err)
	}

	task, _ := resp.Structured["task"].(string)
	depends, _ := resp.Structured["depends_on_chat_history"].(bool)
	if task == "" {
 return state.Update{}, fmt.Errorf("nodes: task extraction returned an empty task")
	}

	return state.Update{Task: &state.Task{TaskObjective: task, DependsOnChatHistory: depends}}, nil
}

func (n *TaskExtraction) fetchDataSource(ctx context.Context, s state.State) string {
	if n.DataSource == nil {
 return ""
	}
	content, err := n.DataSource.Fetch(ctx, s.InputOutput.Query)
	if err != nil {
 return ""
	}
	return content
}

func formatBypassObjective(s state.State, dataSourceContext string) string {
	var b strings.Builder
	for _, m := range s.InputOutput.ChatHistory {
 fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "[%s] %s\n", state.RoleUser, s.InputOutput.Query)
	if dataSourceContext != "" {
 fmt.Fprintf(&b, "[data_source] %s\n", dataSourceContext)
	}
	return strings.TrimSpace(b.String())
}

func buildTaskExtractionSystemPrompt(extra []capability.Example, dataSourceContext string) string {
	var b strings.Builder
	b.WriteString("Distill the conversation into a single task_objective string and report whether it depends on prior chat history. Examples:\n")
	for i, ex := range append(append([]capability.Example{}, TaskExtractionDefaultExamples...), extra...) {
 fmt.Fprintf(&b, "%d. %s -> %s\n", i+1, ex.Query, ex.Explanation)
	}
	if dataSourceContext != "" {
 b.WriteString("\nSupplementary reference material:\n")
 b.WriteString(dataSourceContext)
	}
	return b.String()
}
