// Package contextstore implements the typed context store.2
// describes: operations over the `context_type -> context_key -> entry`
// map that lives inside agent state (state.ContextData). The store itself
// holds no state of its own — every function here is a pure
// transformation over a state.ContextData snapshot, matching the graph's
// "nodes never mutate state in place" design (pkg/state/reduce.go).
package contextstore

import (
	"time"

	"github.com/ospreyai/osprey/pkg/state"
)

// Store builds the state.Update a capability returns to record one
// output (store). It is write-once: if existing already
// holds a value at (contextType, contextKey), it returns
// DuplicateContextKeyError instead of silently overwriting — the same
// invariant pkg/state/reduce.go's appendContextData defends in depth.
func Store(existing state.ContextData, contextType, contextKey string, value any, taskObjective string) (state.Update, error) {
	if inner, ok := existing[contextType]; ok {
 if _, exists := inner[contextKey]; exists {
 return state.Update{}, &DuplicateContextKeyError{ContextType: contextType, ContextKey: contextKey}
 }
	}
	return state.Update{
 NewContextData: state.ContextData{
 contextType: {
 contextKey: &state.ContextEntry{
 Value: value,
 TaskObjective: taskObjective,
 StoredAt: time.Now(),
 },
 },
 },
	}, nil
}

// Get returns the value stored at (contextType, contextKey), or false if
// nothing is stored there (get).
func Get(data state.ContextData, contextType, contextKey string) (any, bool) {
	inner, ok := data[contextType]
	if !ok {
 return nil, false
	}
	entry, ok := inner[contextKey]
	if !ok {
 return nil, false
	}
	return entry.Value, true
}
