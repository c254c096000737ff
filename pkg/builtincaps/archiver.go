package builtincaps

import (
	"context"
	"fmt"
	"time"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/connector"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

// ArchiverDataContextType is the context type ArchiverRead stores its
// time series under (scenario 2, step B).
const ArchiverDataContextType = "ARCHIVER_DATA"

// TimeSeries is what ArchiverRead stores per context_key.
type TimeSeries struct {
	Channel string
	Samples []connector.Sample
}

func (t TimeSeries) Summary() string {
	return fmt.Sprintf("%s: %d samples", t.Channel, len(t.Samples))
}

// ArchiverRead retrieves historical samples for a channel over a
// previously-parsed time range (scenario 2, depends on
// time_range_parse's output via Requires).
type ArchiverRead struct {
	Registry *RegistryRef
	ConnectorName string
}

func (a *ArchiverRead) Name() string { return "archiver_read" }
func (a *ArchiverRead) Description() string { return "Retrieves historical channel samples over a time range from the archiver." }

func (a *ArchiverRead) Requires() []capability.Requirement {
	return []capability.Requirement{{ContextType: TimeRangeContextType, Cardinality: state.CardinalitySingle}}
}

func (a *ArchiverRead) Provides() []capability.Provision {
	return []capability.Provision{{ContextType: ArchiverDataContextType}}
}

func (a *ArchiverRead) ClassifierExamples() []capability.Example {
	return []capability.Example{
 {Query: "Plot beam current for the last hour", Explanation: "needs historical samples over a time window, not just a live reading"},
	}
}

func (a *ArchiverRead) Execute(ctx context.Context, run *capability.RunContext) (state.Update, error) {
	channelName, _ := run.Step.Parameters["channel"].(string)
	if channelName == "" {
 return state.Update{}, fmt.Errorf("archiver_read: planned step %q did not carry a \"channel\" parameter", run.Step.ContextKey)
	}

	rangeVal, ok := run.Inputs.Single(TimeRangeContextType)
	if !ok {
 return state.Update{}, fmt.Errorf("archiver_read: no %s input resolved for step %q", TimeRangeContextType, run.Step.ContextKey)
	}
	tr, ok := rangeVal.(TimeRangeValue)
	if !ok {
 return state.Update{}, fmt.Errorf("archiver_read: %s input is a %T, not a TimeRangeValue", TimeRangeContextType, rangeVal)
	}

	conn, err := registry.LookupTyped[connector.Connector](a.Registry.Get, registry.KindConnector, a.connectorName)
	if err != nil {
 return state.Update{}, fmt.Errorf("archiver_read: resolve connector: %w", err)
	}

	samples, err := conn.GetData(ctx, channelName, tr.TimeRange)
	if err != nil {
 return state.Update{}, err
	}

	value := TimeSeries{Channel: channelName, Samples: samples}
	return state.Update{NewContextData: state.ContextData{
 ArchiverDataContextType: {run.Step.ContextKey: &state.ContextEntry{Value: value, TaskObjective: run.Step.TaskObjective, StoredAt: time.Now()}},
	}}, nil
}

func (a *ArchiverRead) Classify(err error) state.ErrorSeverity {
	return classifyConnectorError(err)
}

func (a *ArchiverRead) connectorName() string {
	if a.ConnectorName == "" {
 return "archiver"
	}
	return a.ConnectorName
}
