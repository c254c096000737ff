// Package checkpoint defines the checkpointer contract: save/load a
// state snapshot keyed by (thread_id, checkpoint_ns), safe for
// concurrent conversations, where a save either fully succeeds or leaves
// the previous snapshot intact.
package checkpoint

import (
	"context"
	"time"

	"github.com/ospreyai/osprey/pkg/state"
)

// Checkpointer persists and restores agent state snapshots. The graph
// runtime calls Save at every node boundary and Load once when a
// conversation's first message of a turn arrives, to resume prior
// session state.
type Checkpointer interface {
	// Save persists snapshot under (threadID, checkpointNS), replacing any
	// prior snapshot at that key. Implementations must guarantee a failed
	// Save leaves the previous snapshot intact.
	Save(ctx context.Context, threadID, checkpointNS string, snapshot state.State) error

	// Load returns the most recently saved snapshot for (threadID,
	// checkpointNS), or ok=false if nothing has been saved there yet.
	Load(ctx context.Context, threadID, checkpointNS string) (snapshot state.State, ok bool, err error)

	// Delete discards every checkpoint for threadID, implementing
	// cancellation.
	Delete(ctx context.Context, threadID string) error
}

// Sweeper is an optional capability a Checkpointer backend may implement
// to support retention (pkg/cleanup). Both memory.Store and
// postgres.Store implement it; a Checkpointer lacking it simply never
// has its checkpoints swept.
type Sweeper interface {
	// Sweep deletes every checkpoint last saved before olderThan and
	// reports how many were removed.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
}
