package nodes

import (
	"context"
	"sync"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/llmprovider"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

// fakeProvider is a scripted llmprovider.Provider for node tests. respond
// decides the reply from the request itself (rather than call order), so
// it's safe for classification's concurrent per-capability fan-out where
// call order isn't deterministic.
type fakeProvider struct {
	mu       sync.Mutex
	respond  func(req llmprovider.Request) (llmprovider.Response, error)
	numCalls int
}

func (p *fakeProvider) CreateModel(ctx context.Context, modelRole string) (string, error) {
	return "fake-model", nil
}

func (p *fakeProvider) CheckHealth(ctx context.Context) error { return nil }

func (p *fakeProvider) ExecuteCompletion(ctx context.Context, req llmprovider.Request) (llmprovider.Response, error) {
	p.mu.Lock()
	p.numCalls++
	p.mu.Unlock()
	return p.respond(req)
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numCalls
}

var _ llmprovider.Provider = (*fakeProvider)(nil)

type fakeCapability struct {
	name                  string
	description           string
	requires              []capability.Requirement
	provides              []capability.Provision
	classifierExamples    []capability.Example
	orchestratorExamples  []capability.Example
}

func (f *fakeCapability) Name() string                      { return f.name }
func (f *fakeCapability) Description() string               { return f.description }
func (f *fakeCapability) Requires() []capability.Requirement { return f.requires }
func (f *fakeCapability) Provides() []capability.Provision   { return f.provides }
func (f *fakeCapability) Execute(ctx context.Context, run *capability.RunContext) (state.Update, error) {
	return state.Update{}, nil
}
func (f *fakeCapability) ClassifierExamples() []capability.Example   { return f.classifierExamples }
func (f *fakeCapability) OrchestratorExamples() []capability.Example { return f.orchestratorExamples }

func registryWithCapabilities(caps ...*fakeCapability) *registry.Registry {
	entries := make([]registry.Registration, 0, len(caps))
	for _, c := range caps {
		c := c
		entries = append(entries, registry.Registration{
			Kind:        registry.KindCapability,
			Name:        c.name,
			Description: c.description,
			Factory:     func() (any, error) { return capability.Capability(c), nil },
		})
	}
	fw := registry.ProviderFunc(func() any {
		return registry.StandaloneConfig{Entries: registry.RegistrySet{Capabilities: entries}}
	})
	reg, err := registry.Init(fw, nil)
	if err != nil {
		panic(err)
	}
	return reg
}
