package builtincaps

import "github.com/ospreyai/osprey/pkg/registry"

// RegistryRef breaks the bootstrap cycle between a registry and
// capabilities that need to look other components up from it:
// Registrations below builds capability factories before registry.Init
// has anything to return, so those factories close over a RegistryRef
// instead of a *registry.Registry directly. The caller wires
//
//	ref := &builtincaps.RegistryRef{}
//	entries := builtincaps.Registrations(ref, renderer)
//	reg, err := registry.Init(framework, app) // app's config embeds entries
//	ref.Set(reg)
//
// before the first capability Execute call — lookups are lazy, so this
// is always well before it matters.
type RegistryRef struct {
	reg *registry.Registry
}

// Set records the fully-built registry. Safe to call exactly once during
// startup, before any capability runs.
func (r *RegistryRef) Set(reg *registry.Registry) { r.reg = reg }

// Get returns the registry, or nil if Set hasn't run yet.
func (r *RegistryRef) Get() *registry.Registry { return r.reg }
