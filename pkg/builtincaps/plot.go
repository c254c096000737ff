package builtincaps

import (
	"context"
	"fmt"
	"time"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/state"
)

// PlotContextType is the context type Plot stores a reference to its
// rendered image under.
const PlotContextType = "PLOT"

// PlotValue is what Plot stores per context_key.
type PlotValue struct {
	Channel string
	ImageRef string
	Samples int
}

func (p PlotValue) Summary() string {
	return fmt.Sprintf("plot of %s (%d samples) at %s", p.Channel, p.Samples, p.ImageRef)
}

// Renderer draws a time series to an image file and returns a reference
// to it (a path or URL, depending on deployment). Kept as a seam so the
// reference implementation can use a trivial renderer in tests without
// pulling in a plotting library at the capability layer.
type Renderer interface {
	Render(ctx context.Context, series TimeSeries) (imageRef string, err error)
}

// Plot renders a time series retrieved by archiver_read into an image
// artifact (scenario 2: "a plot artifact is appended to
// ui.images").
type Plot struct {
	Renderer Renderer
}

func (p *Plot) Name() string { return "plot" }
func (p *Plot) Description() string { return "Renders a retrieved time series as a plot image." }

func (p *Plot) Requires() []capability.Requirement {
	return []capability.Requirement{{ContextType: ArchiverDataContextType, Cardinality: state.CardinalitySingle}}
}

func (p *Plot) Provides() []capability.Provision {
	return []capability.Provision{{ContextType: PlotContextType}}
}

func (p *Plot) ClassifierExamples() []capability.Example {
	return []capability.Example{
 {Query: "Plot beam current for the last hour", Explanation: "explicitly asks for a plotted visualization"},
	}
}

func (p *Plot) OrchestratorExamples() []capability.Example {
	return []capability.Example{
 {Query: "Plot beam current for the last hour", Explanation: "plot depends on archiver_read's time series output"},
	}
}

func (p *Plot) Execute(ctx context.Context, run *capability.RunContext) (state.Update, error) {
	seriesVal, ok := run.Inputs.Single(ArchiverDataContextType)
	if !ok {
 return state.Update{}, fmt.Errorf("plot: no %s input resolved for step %q", ArchiverDataContextType, run.Step.ContextKey)
	}
	series, ok := seriesVal.(TimeSeries)
	if !ok {
 return state.Update{}, fmt.Errorf("plot: %s input is a %T, not a TimeSeries", ArchiverDataContextType, seriesVal)
	}

	imageRef, err := p.Renderer.Render(ctx, series)
	if err != nil {
 return state.Update{}, err
	}

	now := time.Now()
	value := PlotValue{Channel: series.Channel, ImageRef: imageRef, Samples: len(series.Samples)}
	return state.Update{
 NewContextData: state.ContextData{
 PlotContextType: {run.Step.ContextKey: &state.ContextEntry{Value: value, TaskObjective: run.Step.TaskObjective, StoredAt: now}},
 },
 UI: &state.UI{Images: []state.Artifact{{
 Type: state.ArtifactImage,
 SourceCapability: p.Name,
 CreatedAt: now,
 DisplayName: fmt.Sprintf("%s time series", series.Channel),
 ContentRef: imageRef,
 }}},
	}, nil
}
