// Package registry implements the component catalog: capabilities,
// context classes, data sources, LLM providers, connectors, code
// generators, and prompt providers, merged from a framework-default set
// and one application extension.
//
// Go has no runtime "module path, class name" loading, so a registration's
// lazy-import target is represented as a Factory function value — the
// constructor the registry calls on first lookup.
package registry

// Kind names one of the seven registrable component families.
type Kind string

const (
	KindCapability Kind = "capability"
	KindContextClass Kind = "context_class"
	KindDataSource Kind = "data_source"
	KindProvider Kind = "provider"
	KindConnector Kind = "connector"
	KindCodeGenerator Kind = "code_generator"
	KindPromptProvider Kind = "prompt_provider"
)

// kinds lists every Kind in a fixed order, used when a merge or
// enumeration needs to walk all seven families deterministically.
var kinds = []Kind{
	KindCapability,
	KindContextClass,
	KindDataSource,
	KindProvider,
	KindConnector,
	KindCodeGenerator,
	KindPromptProvider,
}

// Factory lazily constructs the instance a Registration names. The
// registry calls it at most once per name.
type Factory func() (any, error)

// Registration is one catalog entry. ConnectorCategory is only meaningful
// for Kind == KindConnector (ConnectorRegistration's
// control_system/archiver distinction).
type Registration struct {
	Kind Kind
	Name string
	Description string
	ConnectorCategory string
	Factory Factory
}

// ConnectorCategory values for Registration.ConnectorCategory.
const (
	ConnectorControlSystem = "control_system"
	ConnectorArchiver = "archiver"
)

// RegistrySet is the complete set of registrations one registry provider
// contributes, grouped by kind (seven entry types).
type RegistrySet struct {
	Capabilities []Registration
	ContextClasses []Registration
	DataSources []Registration
	Providers []Registration
	Connectors []Registration
	CodeGenerators []Registration
	PromptProviders []Registration
}

// byKind returns the entry slice for a given kind, so merge code can treat
// the seven families uniformly.
func (s RegistrySet) byKind(k Kind) []Registration {
	switch k {
	case KindCapability:
 return s.Capabilities
	case KindContextClass:
 return s.ContextClasses
	case KindDataSource:
 return s.DataSources
	case KindProvider:
 return s.Providers
	case KindConnector:
 return s.Connectors
	case KindCodeGenerator:
 return s.CodeGenerators
	case KindPromptProvider:
 return s.PromptProviders
	default:
 return nil
	}
}
