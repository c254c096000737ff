package registry

import (
	"fmt"
	"sync"
)

// Registry is the process-wide component catalog. It is initialized
// once from a framework provider and at most one application provider,
// then treated as read-mostly: lookups instantiate and cache, but never
// re-merge.
type Registry struct {
	mu sync.Mutex
	order map[Kind][]string
	byName map[Kind]map[string]Registration
	instances map[Kind]map[string]any
}

// Init builds a Registry from a framework registry provider and an
// optional application registry provider. app may be nil, in which case
// the framework defaults are used as-is (this is distinct from an
// application StandaloneConfig, which replaces the framework set
// entirely).
//
// app.Provide must return an ExtendConfig or a StandaloneConfig; any
// other concrete type is an InvalidRegistration error.
func Init(framework RegistryProvider, app RegistryProvider) (*Registry, error) {
	if framework == nil {
 return nil, fmt.Errorf("registry: framework provider is required")
	}
	frameworkCfg, ok := framework.Provide().(StandaloneConfig)
	if !ok {
 return nil, fmt.Errorf("registry: framework provider must return a StandaloneConfig")
	}
	d, err := standaloneSet(frameworkCfg)
	if err != nil {
 return nil, err
	}

	var merged RegistrySet
	if app == nil {
 merged = d
	} else {
 switch cfg := app.Provide().(type) {
 case ExtendConfig:
 merged, err = mergeExtend(d, cfg)
 case StandaloneConfig:
 merged, err = standaloneSet(cfg)
 default:
 err = fmt.Errorf("registry: application provider returned unrecognized config type %T", cfg)
 }
 if err != nil {
 return nil, err
 }
	}

	r := &Registry{
 order: map[Kind][]string{},
 byName: map[Kind]map[string]Registration{},
 instances: map[Kind]map[string]any{},
	}
	for _, kind := range kinds {
 entries := merged.byKind(kind)
 names := make([]string, 0, len(entries))
 byName := make(map[string]Registration, len(entries))
 for _, entry := range entries {
 names = append(names, entry.Name)
 byName[entry.Name] = entry
 }
 r.order[kind] = names
 r.byName[kind] = byName
 r.instances[kind] = map[string]any{}
	}
	return r, nil
}

// Lookup instantiates (on first use) and returns the component registered
// under name for kind, caching the instance for subsequent calls.
func (r *Registry) Lookup(kind Kind, name string) (any, error) {
	if r == nil {
 return nil, ErrRegistryNotInitialized
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.instances[kind][name]; ok {
 return cached, nil
	}
	reg, ok := r.byName[kind][name]
	if !ok {
 return nil, ComponentNotFound(kind, name)
	}
	instance, err := reg.Factory()
	if err != nil {
 return nil, InvalidRegistration(kind, name, err)
	}
	r.instances[kind][name] = instance
	return instance, nil
}

// Names returns the registered names for a kind in declaration order
// (classification relies on this order to aggregate results
// deterministically).
func (r *Registry) Names(kind Kind) []string {
	if r == nil {
 return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order[kind]))
	copy(out, r.order[kind])
	return out
}

// Describe returns the Registration metadata (without instantiating) for
// a name, useful for building classifier/orchestrator prompts that need a
// capability's description without its live instance.
func (r *Registry) Describe(kind Kind, name string) (Registration, bool) {
	if r == nil {
 return Registration{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byName[kind][name]
	return reg, ok
}

// ConnectorsByCategory returns registered connector names restricted to
// one ConnectorCategory (control_system or archiver), preserving
// declaration order.
func (r *Registry) ConnectorsByCategory(category string) []string {
	if r == nil {
 return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, name := range r.order[KindConnector] {
 if r.byName[KindConnector][name].ConnectorCategory == category {
 out = append(out, name)
 }
	}
	return out
}

// LookupTyped performs a typed lookup, type-asserting the instantiated
// component to T. It is the Go-generic equivalent of a typed accessor per
// kind, usable from any package without registry importing
// capability/connector/etc. and risking an import cycle.
func LookupTyped[T any](r *Registry, kind Kind, name string) (T, error) {
	var zero T
	inst, err := r.Lookup(kind, name)
	if err != nil {
 return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
 return zero, InvalidRegistration(kind, name, fmt.Errorf("registered instance does not satisfy the requested type"))
	}
	return typed, nil
}
