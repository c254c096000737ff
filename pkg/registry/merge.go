package registry

import "log/slog"

// mergedKind is the resolved entry list and declaration order for one
// kind, produced by mergeKind.
type mergedKind struct {
	order []string
	byName map[string]Registration
}

func newMergedKind() mergedKind {
	return mergedKind{byName: map[string]Registration{}}
}

func (m mergedKind) entries() []Registration {
	out := make([]Registration, 0, len(m.order))
	for _, name := range m.order {
 out = append(out, m.byName[name])
	}
	return out
}

// mergeKind implements Extend-mode algorithm for a single
// kind:
// 1. start from D's entries (framework defaults), in declaration order.
// 2. remove entries excluded by name.
// 3. replace same-named D entries with A's override entries.
// 4. append A's remaining entries.
// 5. reject duplicate names within A itself with DuplicateRegistration.
// 6. warn (not fail) when an A entry shadows a D entry it did not declare
// as an override.
//
// Simultaneous exclusion+override of the same name is rejected before any
// of the above runs (open question, resolved as a load error).
func mergeKind(kind Kind, d, a []Registration, exclude, override []string) ([]Registration, []string, error) {
	excludeSet := toSet(exclude)
	overrideSet := toSet(override)
	for name := range excludeSet {
 if overrideSet[name] {
 return nil, nil, &ExcludeOverrideConflictError{Kind: kind, Name: name}
 }
	}

	merged := newMergedKind()
	for _, entry := range d {
 if excludeSet[entry.Name] {
 continue
 }
 merged.order = append(merged.order, entry.Name)
 merged.byName[entry.Name] = entry
	}

	seenA := make(map[string]bool, len(a))
	for _, entry := range a {
 if seenA[entry.Name] {
 return nil, nil, DuplicateRegistration(kind, entry.Name)
 }
 seenA[entry.Name] = true
	}

	present := make(map[string]bool, len(merged.order))
	for _, n := range merged.order {
 present[n] = true
	}

	var shadowed []string
	for _, entry := range a {
 name := entry.Name
 switch {
 case overrideSet[name]:
 merged.byName[name] = entry
 if !present[name] {
 merged.order = append(merged.order, name)
 present[name] = true
 }
 case present[name]:
 // Implicit shadow: an application entry redefines a framework
 // default without declaring it as an override..1
 // step 7 says warn, not fail; the application entry wins.
 shadowed = append(shadowed, name)
 merged.byName[name] = entry
 default:
 merged.byName[name] = entry
 merged.order = append(merged.order, name)
 present[name] = true
 }
	}

	return merged.entries(), shadowed, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
 set[n] = true
	}
	return set
}

// mergeExtend resolves a full RegistrySet pair (framework D, application A)
// across all seven kinds, logging a warning for every implicit shadow.
func mergeExtend(d RegistrySet, cfg ExtendConfig) (RegistrySet, error) {
	var out RegistrySet
	for _, kind := range kinds {
 merged, shadowed, err := mergeKind(kind, d.byKind(kind), cfg.Entries.byKind(kind), cfg.Exclude[kind], cfg.Override[kind])
 if err != nil {
 return RegistrySet{}, err
 }
 for _, name := range shadowed {
 slog.Warn("registry: application entry shadows framework default without declaring override",
 "kind", kind, "name", name)
 }
 setByKind(&out, kind, merged)
	}
	return out, nil
}

// standaloneSet validates and returns an application's complete set
// unmodified, rejecting duplicate names within each kind.
func standaloneSet(cfg StandaloneConfig) (RegistrySet, error) {
	var out RegistrySet
	for _, kind := range kinds {
 entries := cfg.Entries.byKind(kind)
 seen := make(map[string]bool, len(entries))
 for _, entry := range entries {
 if seen[entry.Name] {
 return RegistrySet{}, DuplicateRegistration(kind, entry.Name)
 }
 seen[entry.Name] = true
 }
 setByKind(&out, kind, entries)
	}
	return out, nil
}

func setByKind(s *RegistrySet, k Kind, entries []Registration) {
	switch k {
	case KindCapability:
 s.Capabilities = entries
	case KindContextClass:
 s.ContextClasses = entries
	case KindDataSource:
 s.DataSources = entries
	case KindProvider:
 s.Providers = entries
	case KindConnector:
 s.Connectors = entries
	case KindCodeGenerator:
 s.CodeGenerators = entries
	case KindPromptProvider:
 s.PromptProviders = entries
	}
}
