package builtincaps

import "github.com/ospreyai/osprey/pkg/registry"

// Registrations returns the framework-default capability registrations
// for the reference capabilities in this package, in the declaration
// order classification and orchestration prompts rely on.
// ref is the RegistryRef these capabilities resolve their connectors from
// at Execute time — see RegistryRef's doc comment for why a box is
// needed instead of a *registry.Registry directly.
func Registrations(ref *RegistryRef, renderer Renderer) []registry.Registration {
	return []registry.Registration{
 {
 Kind: registry.KindCapability,
 Name: "channel_read",
 Description: "Reads the current value of a named control-system channel.",
 Factory: func() (any, error) { return &ChannelRead{Registry: ref}, nil },
 },
 {
 Kind: registry.KindCapability,
 Name: "channel_write",
 Description: "Writes a value to a named control-system channel, subject to approval.",
 Factory: func() (any, error) { return &ChannelWrite{Registry: ref}, nil },
 },
 {
 Kind: registry.KindCapability,
 Name: "time_range_parse",
 Description: "Parses a natural-language time phrase into a concrete start/end range.",
 Factory: func() (any, error) { return &TimeRangeParse{}, nil },
 },
 {
 Kind: registry.KindCapability,
 Name: "archiver_read",
 Description: "Retrieves historical channel samples over a time range from the archiver.",
 Factory: func() (any, error) { return &ArchiverRead{Registry: ref}, nil },
 },
 {
 Kind: registry.KindCapability,
 Name: "plot",
 Description: "Renders a retrieved time series as a plot image.",
 Factory: func() (any, error) { return &Plot{Renderer: renderer}, nil },
 },
	}
}
