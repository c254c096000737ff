package contextstore

import (
	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/graph/grapherr"
	"github.com/ospreyai/osprey/pkg/state"
)

// ExtractForStep resolves a planned step's inputs — each one a
// context_key produced by an earlier step or already present in the
// context store — against the executing capability's Requires list, and
// returns the values keyed by context type for RunContext.Inputs.
//
// Each input key is looked up in data to find the context type it was
// actually stored under; a key absent from data is an InvalidContextKeyError
// and a key whose stored type isn't one of requires is an
// InputTypeMismatchError. Once resolved, matches for a type are grouped in
// the order their keys appear in step.Inputs and checked against that
// type's declared cardinality:
//
// - single — exactly one match; zero or more than one is an error.
// - multiple — always a slice, even a singleton.
// - unconstrained — a single value if there's exactly one match, a slice
// otherwise, mirroring how it was stored.
func ExtractForStep(data state.ContextData, step state.PlannedStep, requires []capability.Requirement) (capability.ExtractedInputs, error) {
	cardinalityFor := make(map[string]state.Cardinality, len(requires))
	for _, r := range requires {
 cardinalityFor[r.ContextType] = r.Cardinality
	}

	matchesByType := make(map[string][]any, len(requires))
	for _, key := range step.Inputs {
 contextType, entry, ok := findByKey(data, key, cardinalityFor)
 if !ok {
 return nil, &grapherr.InvalidContextKeyError{ContextKey: key}
 }
 if _, declared := cardinalityFor[contextType]; !declared {
 return nil, &grapherr.InputTypeMismatchError{CapabilityName: step.CapabilityName, ContextKey: key, ContextType: contextType}
 }
 matchesByType[contextType] = append(matchesByType[contextType], entry.Value)
	}

	out := make(capability.ExtractedInputs, len(requires))
	for _, r := range requires {
 matches := matchesByType[r.ContextType]
 switch r.Cardinality {
 case state.CardinalitySingle:
 if len(matches) != 1 {
 return nil, &CardinalityError{ContextType: r.ContextType, Cardinality: string(r.Cardinality), Matches: len(matches)}
 }
 out[r.ContextType] = matches[0]
 case state.CardinalityMultiple:
 out[r.ContextType] = matches
 default: // unconstrained
 if len(matches) == 1 {
 out[r.ContextType] = matches[0]
 } else {
 out[r.ContextType] = matches
 }
 }
	}
	return out, nil
}

// findByKey locates the context type key is stored under. A key can in
// principle be stored under more than one type (a capability may provide
// several types under the same context_key); when that happens, the type
// the caller's cardinalityFor declares a requirement for wins, so a
// capability never has to guess which of a key's types it meant.
func findByKey(data state.ContextData, key string, cardinalityFor map[string]state.Cardinality) (string, *state.ContextEntry, bool) {
	var fallbackType string
	var fallbackEntry *state.ContextEntry
	for contextType, byKey := range data {
 entry, ok := byKey[key]
 if !ok {
 continue
 }
 if _, wanted := cardinalityFor[contextType]; wanted {
 return contextType, entry, true
 }
 if fallbackEntry == nil {
 fallbackType, fallbackEntry = contextType, entry
 }
	}
	if fallbackEntry != nil {
 return fallbackType, fallbackEntry, true
	}
	return "", nil, false
}
