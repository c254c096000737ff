package nodes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/contextstore"
	"github.com/ospreyai/osprey/pkg/graph/grapherr"
	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

const orchestrationSchema = `{
	"type": "object",
	"properties": {
 "steps": {
 "type": "array",
 "items": {
 "type": "object",
 "properties": {
 "capability_name": {"type": "string"},
 "context_key": {"type": "string"},
 "task_objective": {"type": "string"},
 "inputs": {"type": "array", "items": {"type": "string"}}
 },
 "required": ["capability_name", "context_key", "task_objective"]
 }
 }
	},
	"required": ["steps"]
}`

// Orchestration is the node names: given the task and the
// active capability set, synthesize an execution plan and validate it
// before committing it to state.
type Orchestration struct {
	Registry *registry.Registry
	Provider llmprovider.Provider
	MaxSummaryChars int
}

type candidateStep struct {
	CapabilityName string `json:"capability_name"`
	ContextKey string `json:"context_key"`
	TaskObjective string `json:"task_objective"`
	Inputs []string `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
}

// Run synthesizes and validates an execution plan (contract).
func (n *Orchestration) Run(ctx context.Context, s state.State) (state.Update, error) {
	if n.Provider == nil {
 return state.Update{}, fmt.Errorf("nodes: orchestration requires an llmprovider.Provider")
	}

	prompt := n.buildPrompt(s)
	resp, err := n.Provider.ExecuteCompletion(ctx, llmprovider.Request{
 ModelRole: "orchestrator",
 Messages: []llmprovider.Message{
 {Role: llmprovider.RoleSystem, Content: prompt},
 {Role: llmprovider.RoleUser, Content: s.Task.TaskObjective},
 },
 Schema: []byte(orchestrationSchema),
	})
	if err != nil {
 return state.Update{}, fmt.Errorf("nodes: orchestration completion failed: %w", err)
	}

	candidates, err := parseCandidateSteps(resp.Structured)
	if err != nil {
 return state.Update{}, fmt.Errorf("nodes: orchestration produced an unparseable plan: %w", err)
	}

	plan, err := n.validate(s, candidates)
	if err != nil {
 return state.Update{}, err
	}

	planning := state.Planning{ExecutionPlan: plan, CurrentStepIndex: 0, ReclassificationAttempts: s.Planning.ReclassificationAttempts}
	update := state.Update{Planning: &planning}

	if s.AgentControl.PlanningModeApprovalRequired && len(plan) > 0 {
 update.Approval = &state.Approval{
 CapabilityName: plan[0].CapabilityName,
 InterruptPayload: &state.InterruptPayload{
 CapabilityName: plan[0].CapabilityName,
 OperationSummary: fmt.Sprintf("execute a %d-step plan for: %s", len(plan), s.Task.TaskObjective),
 PendingActions: stepSummaries(plan),
 },
 }
	}

	return update, nil
}

// validate implements four validation rules, in order,
// first violation wins.
func (n *Orchestration) validate(s state.State, candidates []candidateStep) ([]state.PlannedStep, error) {
	active := make(map[string]bool, len(s.Classification.ActiveCapabilityNames))
	for _, name := range s.Classification.ActiveCapabilityNames {
 active[name] = true
	}

	seenKeys := make(map[string]bool)
	existingTypesByKey := make(map[string][]string)
	for contextType, byKey := range s.ContextData {
 for k := range byKey {
 existingTypesByKey[k] = append(existingTypesByKey[k], contextType)
 }
	}

	plan := make([]state.PlannedStep, 0, len(candidates))
	for _, c := range candidates {
 if !active[c.CapabilityName] {
 return nil, &grapherr.ReclassificationRequiredError{
 CapabilityName: c.CapabilityName,
 Reason: fmt.Sprintf("orchestrator selected %q, which is not in the active capability set", c.CapabilityName),
 }
 }

 if seenKeys[c.ContextKey] {
 return nil, &grapherr.DuplicateContextKeyError{ContextKey: c.ContextKey}
 }
 seenKeys[c.ContextKey] = true

 cap, err := registry.LookupTyped[capability.Capability](n.Registry, registry.KindCapability, c.CapabilityName)
 if err != nil {
 return nil, &grapherr.ReclassificationRequiredError{CapabilityName: c.CapabilityName, Reason: "capability failed to resolve"}
 }

 requiredTypes := make(map[string]bool, len(cap.Requires()))
 for _, r := range cap.Requires() {
 requiredTypes[r.ContextType] = true
 }

 for _, input := range c.Inputs {
 // rule 3: input must be a context_key either already in the
 // context store or produced by an earlier step in this plan.
 types := existingTypesByKey[input]
 if produced := producedTypesFor(plan, input, n.Registry); len(produced) > 0 {
 types = append(types, produced...)
 }
 if len(types) == 0 {
 return nil, &grapherr.InvalidContextKeyError{ContextKey: input, Available: sortedKeys(existingTypesByKey)}
 }

 // rule 4: the key's stored type must be one the capability
 // declares a Requires entry for.
 resolvedType := ""
 for _, t := range types {
 if requiredTypes[t] {
 resolvedType = t
 break
 }
 }
 if resolvedType == "" {
 return nil, &grapherr.InputTypeMismatchError{CapabilityName: c.CapabilityName, ContextKey: input, ContextType: types[0]}
 }
 }

 plan = append(plan, state.PlannedStep{
 CapabilityName: c.CapabilityName,
 ContextKey: c.ContextKey,
 TaskObjective: c.TaskObjective,
 Inputs: c.Inputs,
 Parameters: c.Parameters,
 })
	}
	return plan, nil
}

// producedTypesFor returns the context types that contextKey resolves to
// among steps already placed in planSoFar, i.e. the Provides list of
// whichever earlier step declared that context_key.
func producedTypesFor(planSoFar []state.PlannedStep, contextKey string, reg *registry.Registry) []string {
	var types []string
	for _, step := range planSoFar {
 if step.ContextKey != contextKey {
 continue
 }
 cap, err := registry.LookupTyped[capability.Capability](reg, registry.KindCapability, step.CapabilityName)
 if err != nil {
 continue
 }
 for _, p := range cap.Provides() {
 types = append(types, p.ContextType)
 }
	}
	return types
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
 out = append(out, k)
	}
	return out
}

func (n *Orchestration) buildPrompt(s state.State) string {
	var examples []capability.Example
	for _, name := range s.Classification.ActiveCapabilityNames {
 inst, err := registry.LookupTyped[capability.Capability](n.Registry, registry.KindCapability, name)
 if err != nil {
 continue
 }
 if provider, ok := inst.(capability.OrchestratorExampleProvider); ok {
 examples = append(examples, provider.OrchestratorExamples()...)
 }
	}

	summaries := contextstore.ListSummaries(s.ContextData, n.MaxSummaryChars)

	examplesJSON, _ := json.Marshal(examples)
	summariesJSON, _ := json.Marshal(summaries)

	return fmt.Sprintf("Build a step-by-step execution plan using only these active capabilities: %v.\n"+
 "Each step needs a unique context_key, a task_objective, and an inputs list naming the"+
 " context_key of each earlier step (or already-stored context) it consumes.\n"+
 "Examples: %s\nAlready stored contexts this turn: %s\n",
 s.Classification.ActiveCapabilityNames, string(examplesJSON), string(summariesJSON))
}

func stepSummaries(plan []state.PlannedStep) []string {
	out := make([]string, len(plan))
	for i, step := range plan {
 out[i] = fmt.Sprintf("%d. %s -> %s", i+1, step.CapabilityName, step.TaskObjective)
	}
	return out
}

func parseCandidateSteps(structured map[string]any) ([]candidateStep, error) {
	raw, ok := structured["steps"]
	if !ok {
 return nil, fmt.Errorf("missing steps field")
	}
	b, err := json.Marshal(raw)
	if err != nil {
 return nil, err
	}
	var steps []candidateStep
	if err := json.Unmarshal(b, &steps); err != nil {
 return nil, err
	}
	return steps, nil
}
