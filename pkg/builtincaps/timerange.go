package builtincaps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/connector"
	"github.com/ospreyai/osprey/pkg/state"
)

// TimeRangeContextType is the context type TimeRangeParse stores its
// result under (scenario 2, step A).
const TimeRangeContextType = "TIME_RANGE"

// TimeRangeValue wraps connector.TimeRange with a human-readable label
// for orchestrator prompt summaries.
type TimeRangeValue struct {
	connector.TimeRange
	Label string
}

func (v TimeRangeValue) Summary() string {
	return fmt.Sprintf("%s (%s to %s)", v.Label, v.Start.Format(time.RFC3339), v.End.Format(time.RFC3339))
}

// relativeWindows maps a handful of common phrasings to a duration
// looking back from now. A real deployment would parse this with an NLP
// component or a dedicated date-phrase library; this reference
// implementation covers the phrasing scenarios exercise.
var relativeWindows = map[string]time.Duration{
	"last hour": time.Hour,
	"last day": 24 * time.Hour,
	"last week": 7 * 24 * time.Hour,
	"last 24h": 24 * time.Hour,
	"last 30 min": 30 * time.Minute,
	"last minute": time.Minute,
}

// TimeRangeParse turns a natural-language time phrase (carried on the
// planned step's Parameters) into a concrete TimeRange, e.g. "Plot beam
// current for the last hour".
type TimeRangeParse struct {
	Now func() time.Time
}

func (t *TimeRangeParse) Name() string { return "time_range_parse" }
func (t *TimeRangeParse) Description() string { return "Parses a natural-language time phrase into a concrete start/end range." }

func (t *TimeRangeParse) Requires() []capability.Requirement { return nil }
func (t *TimeRangeParse) Provides() []capability.Provision {
	return []capability.Provision{{ContextType: TimeRangeContextType}}
}

func (t *TimeRangeParse) OrchestratorExamples() []capability.Example {
	return []capability.Example{
 {Query: "for the last hour", Explanation: "a relative time phrase naming the window to parse"},
	}
}

func (t *TimeRangeParse) Execute(_ context.Context, run *capability.RunContext) (state.Update, error) {
	phrase, _ := run.Step.Parameters["phrase"].(string)
	now := time.Now()
	if t.Now != nil {
 now = t.Now()
	}
	window, ok := relativeWindows[strings.ToLower(strings.TrimSpace(phrase))]
	if !ok {
 return state.Update{}, fmt.Errorf("time_range_parse: unrecognized time phrase %q", phrase)
	}

	end := now
	value := TimeRangeValue{TimeRange: connector.TimeRange{Start: end.Add(-window), End: end}, Label: phrase}
	return state.Update{NewContextData: state.ContextData{
 TimeRangeContextType: {run.Step.ContextKey: &state.ContextEntry{Value: value, TaskObjective: run.Step.TaskObjective, StoredAt: end}},
	}}, nil
}
