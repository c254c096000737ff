package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/graph/grapherr"
	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

const classificationSchema = `{
	"type": "object",
	"properties": {
 "is_relevant": {"type": "boolean"},
 "rationale": {"type": "string"}
	},
	"required": ["is_relevant", "rationale"]
}`

// Classification is the node names: one relevance call per
// registered capability, run concurrently under a semaphore, aggregated
// in registry declaration order.
type Classification struct {
	Registry *registry.Registry
	Provider llmprovider.Provider
	Concurrency int // max_concurrent_classifications; <=0 means unbounded
}

type classificationResult struct {
	name string
	isRelevant bool
	rationale string
	err error
}

// Run classifies every registered capability against the extracted task
// objective (contract).
func (n *Classification) Run(ctx context.Context, s state.State) (state.Update, error) {
	names := n.Registry.Names(registry.KindCapability)
	if len(names) == 0 {
 return state.Update{}, fmt.Errorf("nodes: no capabilities are registered")
	}

	if s.AgentControl.Bypass.Classification {
 return state.Update{Classification: &state.Classification{ActiveCapabilityNames: names}}, nil
	}

	if n.Provider == nil {
 return state.Update{}, fmt.Errorf("nodes: classification requires an llmprovider.Provider when bypass is disabled")
	}

	sem := make(chan struct{}, n.semSize(len(names)))
	results := make([]classificationResult, len(names))
	var wg sync.WaitGroup

	for i, name := range names {
 i, name := i, name
 wg.Add(1)
 go func {
 defer wg.Done()
 sem <- struct{}{}
 defer func { <-sem }
 results[i] = n.classifyOne(ctx, s, name)
 }
	}
	wg.Wait()

	var active []string
	var rationales []state.Rationale
	for _, r := range results {
 if r.err != nil {
 return state.Update{}, fmt.Errorf("nodes: classifying capability %q: %w", r.name, r.err)
 }
 rationales = append(rationales, state.Rationale{CapabilityName: r.name, IsRelevant: r.isRelevant, Rationale: r.rationale})
 if r.isRelevant {
 active = append(active, r.name)
 }
	}

	if len(active) == 0 {
 return state.Update{}, &grapherr.ClassificationFailedError{TaskObjective: s.Task.TaskObjective}
	}

	return state.Update{Classification: &state.Classification{ActiveCapabilityNames: active, Rationales: rationales}}, nil
}

func (n *Classification) semSize(count int) int {
	if n.Concurrency <= 0 || n.Concurrency > count {
 return count
	}
	return n.Concurrency
}

func (n *Classification) classifyOne(ctx context.Context, s state.State, capabilityName string) classificationResult {
	reg, ok := n.Registry.Describe(registry.KindCapability, capabilityName)
	if !ok {
 return classificationResult{name: capabilityName, err: fmt.Errorf("capability %q is not registered", capabilityName)}
	}

	var examples []capability.Example
	if inst, err := registry.LookupTyped[capability.Capability](n.Registry, registry.KindCapability, capabilityName); err == nil {
 if provider, ok := inst.(capability.ClassifierExampleProvider); ok {
 examples = provider.ClassifierExamples()
 }
	}

	messages := []llmprovider.Message{
 {Role: llmprovider.RoleSystem, Content: buildClassificationPrompt(reg.Name, reg.Description, examples)},
 {Role: llmprovider.RoleUser, Content: s.Task.TaskObjective},
	}

	resp, err := n.Provider.ExecuteCompletion(ctx, llmprovider.Request{
 ModelRole: "classifier",
 Messages: messages,
 Schema: []byte(classificationSchema),
	})
	if err != nil {
 return classificationResult{name: capabilityName, err: err}
	}

	isRelevant, _ := resp.Structured["is_relevant"].(bool)
	rationale, _ := resp.Structured["rationale"].(string)
	return classificationResult{name: capabilityName, isRelevant: isRelevant, rationale: rationale}
}

func buildClassificationPrompt(name, description string, examples []capability.Example) string {
	b, _ := json.Marshal(examples)
	return fmt.Sprintf("Decide whether the capability %q is relevant to the task. %s\nExamples: %s\nRespond with is_relevant and a one-sentence rationale.",
 name, description, string(b),)
}
