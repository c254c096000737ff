// Package builtincaps holds reference capability implementations
// grounding end-to-end scenarios: reading and writing
// control-system channels, parsing time ranges, pulling archiver
// history, and plotting a time series. Applications are expected to
// register their own domain capabilities the same way; these exist so
// the framework registry defaults have something to exercise and so the
// approval/retry/plan-validation machinery in pkg/graph has a concrete
// capability to drive it.
package builtincaps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/connector"
	"github.com/ospreyai/osprey/pkg/registry"
	"github.com/ospreyai/osprey/pkg/state"
)

// ChannelValuesContextType is the context type a ChannelRead step stores
// its reading under (scenario 1).
const ChannelValuesContextType = "CHANNEL_VALUES"

// ChannelValue is what ChannelRead stores per context_key: the channel
// name, its value, and when it was sampled.
type ChannelValue struct {
	Channel string
	Value any
	Units string
	Timestamp time.Time
}

// Summary implements state.Summarizable so orchestrator prompts can show
// a one-line rendering of an already-read channel.
func (v ChannelValue) Summary() string {
	return fmt.Sprintf("%s = %v %s", v.Channel, v.Value, v.Units)
}

// ChannelRead reads the current value of a single control-system channel
// (scenario 1: "What is the current value of channel X?").
// The channel name is carried on the planned step's Parameters, since
// it comes from orchestration, not from another capability's output.
type ChannelRead struct {
	Registry *RegistryRef
	ConnectorName string
}

func (c *ChannelRead) Name() string { return "channel_read" }
func (c *ChannelRead) Description() string { return "Reads the current value of a named control-system channel." }

func (c *ChannelRead) Requires() []capability.Requirement { return nil }
func (c *ChannelRead) Provides() []capability.Provision {
	return []capability.Provision{{ContextType: ChannelValuesContextType}}
}

func (c *ChannelRead) ClassifierExamples() []capability.Example {
	return []capability.Example{
 {Query: "What is the current value of channel BEAM:CURRENT?", Explanation: "directly asks for a live channel reading"},
 {Query: "Read the vacuum gauge for sector 3", Explanation: "asks for a current instrument reading"},
	}
}

func (c *ChannelRead) Execute(ctx context.Context, run *capability.RunContext) (state.Update, error) {
	channelName, _ := run.Step.Parameters["channel"].(string)
	if channelName == "" {
 return state.Update{}, fmt.Errorf("channel_read: planned step %q did not carry a \"channel\" parameter", run.Step.ContextKey)
	}

	conn, err := registry.LookupTyped[connector.Connector](c.Registry.Get, registry.KindConnector, c.connectorName)
	if err != nil {
 return state.Update{}, fmt.Errorf("channel_read: resolve connector: %w", err)
	}

	sample, err := conn.ReadChannel(ctx, channelName)
	if err != nil {
 return state.Update{}, err
	}

	units := ""
	if meta, metaErr := conn.Metadata(ctx, channelName); metaErr == nil {
 units = meta.Units
	}

	value := ChannelValue{Channel: channelName, Value: sample.Value, Units: units, Timestamp: sample.Timestamp}
	return state.Update{NewContextData: state.ContextData{
 ChannelValuesContextType: {run.Step.ContextKey: &state.ContextEntry{Value: value, TaskObjective: run.Step.TaskObjective, StoredAt: sample.Timestamp}},
	}}, nil
}

// Classify maps connector errors to severity: not-found and
// permission-denied are not worth retrying (fatal), unavailable is
// transient (retriable).
func (c *ChannelRead) Classify(err error) state.ErrorSeverity {
	return classifyConnectorError(err)
}

func (c *ChannelRead) connectorName() string {
	if c.ConnectorName == "" {
 return "control_system"
	}
	return c.ConnectorName
}

// ChannelWrite sets a control-system channel's value. Writes are
// inherently sensitive, so Execute always requests approval on its
// first entry and only performs the write once resumed with Approved
// (scenario 3).
type ChannelWrite struct {
	Registry *RegistryRef
	ConnectorName string
}

func (c *ChannelWrite) Name() string { return "channel_write" }
func (c *ChannelWrite) Description() string { return "Writes a value to a named control-system channel, subject to approval." }

func (c *ChannelWrite) Requires() []capability.Requirement { return nil }
func (c *ChannelWrite) Provides() []capability.Provision {
	return []capability.Provision{{ContextType: ChannelValuesContextType}}
}

func (c *ChannelWrite) ClassifierExamples() []capability.Example {
	return []capability.Example{
 {Query: "Set channel BEAM:CURRENT to 5.0", Explanation: "asks to change a live control-system value"},
	}
}

func (c *ChannelWrite) Execute(ctx context.Context, run *capability.RunContext) (state.Update, error) {
	channelName, _ := run.Step.Parameters["channel"].(string)
	value := run.Step.Parameters["value"]
	if channelName == "" {
 return state.Update{}, fmt.Errorf("channel_write: planned step %q did not carry a \"channel\" parameter", run.Step.ContextKey)
	}

	if run.Resume == nil {
 return capability.RequestApproval(c.Name, state.InterruptPayload{
 OperationSummary: fmt.Sprintf("set %s to %v", channelName, value),
 SafetyConcerns: []string{"direct hardware write"},
 Extra: map[string]any{"channel": channelName, "value": value},
 }), nil
	}

	if !run.Resume.Approved {
 return state.Update{NewContextData: state.ContextData{
 ChannelValuesContextType: {run.Step.ContextKey: &state.ContextEntry{
 Value: ChannelValue{Channel: channelName, Value: "cancelled"},
 TaskObjective: run.Step.TaskObjective,
 StoredAt: timeNow(),
 }},
 }}, nil
	}

	conn, err := registry.LookupTyped[connector.Connector](c.Registry.Get, registry.KindConnector, c.connectorName)
	if err != nil {
 return state.Update{}, fmt.Errorf("channel_write: resolve connector: %w", err)
	}
	if err := conn.WriteChannel(ctx, channelName, value); err != nil {
 return state.Update{}, err
	}

	return state.Update{NewContextData: state.ContextData{
 ChannelValuesContextType: {run.Step.ContextKey: &state.ContextEntry{
 Value: ChannelValue{Channel: channelName, Value: value, Timestamp: timeNow()},
 TaskObjective: run.Step.TaskObjective,
 StoredAt: timeNow(),
 }},
	}}, nil
}

func (c *ChannelWrite) Classify(err error) state.ErrorSeverity {
	return classifyConnectorError(err)
}

func (c *ChannelWrite) connectorName() string {
	if c.ConnectorName == "" {
 return "control_system"
	}
	return c.ConnectorName
}

func classifyConnectorError(err error) state.ErrorSeverity {
	var cerr *connector.Error
	if !errors.As(err, &cerr) {
 return state.SeverityFatal
	}
	switch cerr.Kind {
	case connector.ErrorUnavailable:
 return state.SeverityRetriable
	default:
 return state.SeverityFatal
	}
}

func timeNow() time.Time { return time.Now() }
