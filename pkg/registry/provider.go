package registry

// NameSet is a per-kind list of registration names, used for exclusion and
// override lists.
type NameSet map[Kind][]string

// ExtendConfig is the config an application's registry provider returns to
// run in Extend mode: framework defaults load first,
// application entries are appended, Exclude removes framework entries by
// name, Override replaces same-named framework entries.
type ExtendConfig struct {
	Entries RegistrySet
	Exclude NameSet
	Override NameSet
}

// StandaloneConfig is the config an application's registry provider returns
// to run in Standalone mode: the application supplies the
// complete set and framework defaults are not loaded at all.
type StandaloneConfig struct {
	Entries RegistrySet
}

// RegistryProvider is implemented by framework defaults and by exactly one
// application-supplied value named in osprey.yaml's registry_path
//. Provide returns either an ExtendConfig or a
// StandaloneConfig; Init tells them apart by concrete Go type, matching
// "Detected by the concrete type of the returned config."
type RegistryProvider interface {
	Provide() any
}

// ProviderFunc adapts a plain function to RegistryProvider, the way an
// application typically supplies one from its main package.
type ProviderFunc func() any

func (f ProviderFunc) Provide() any { return f() }
