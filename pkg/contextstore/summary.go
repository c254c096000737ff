package contextstore

import (
	"fmt"
	"sort"

	"github.com/ospreyai/osprey/pkg/state"
)

// Summary is one line of the orchestrator prompt's "already stored
// contexts" listing (list_summaries).
type Summary struct {
	ContextType string
	ContextKey string
	TaskObjective string
	Text string
}

// ListSummaries returns one Summary per stored context, ordered by
// context type then key for a stable prompt. A value contributes its own
// line if it implements state.Summarizable; otherwise a truncated
// generic rendering is used.
func ListSummaries(data state.ContextData, maxChars int) []Summary {
	types := make([]string, 0, len(data))
	for t := range data {
 types = append(types, t)
	}
	sort.Strings(types)

	var out []Summary
	for _, contextType := range types {
 byKey := data[contextType]
 keys := make([]string, 0, len(byKey))
 for k := range byKey {
 keys = append(keys, k)
 }
 sort.Strings(keys)

 for _, key := range keys {
 entry := byKey[key]
 out = append(out, Summary{
 ContextType: contextType,
 ContextKey: key,
 TaskObjective: entry.TaskObjective,
 Text: summaryText(entry.Value, maxChars),
 })
 }
	}
	return out
}

func summaryText(value any, maxChars int) string {
	if s, ok := value.(state.Summarizable); ok {
 return Truncate(s.Summary(), maxChars).(string)
	}
	return Truncate(fmt.Sprintf("%v", value), maxChars).(string)
}
