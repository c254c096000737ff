package builtincaps

import (
	"context"
	"fmt"
)

// StubRenderer is a reference Renderer that never actually draws an
// image; it returns a deterministic path so the plot capability can be
// exercised end to end without a plotting dependency. No library in the
// example pack covers chart rendering, so this stays a small stdlib
// stand-in rather than reaching for an unseen dependency.
type StubRenderer struct {
	Dir string
}

func (r *StubRenderer) Render(_ context.Context, series TimeSeries) (string, error) {
	dir := r.Dir
	if dir == "" {
		dir = "/tmp/osprey-plots"
	}
	return fmt.Sprintf("%s/%s-%d.png", dir, series.Channel, len(series.Samples)), nil
}
