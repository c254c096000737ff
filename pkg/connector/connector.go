// Package connector defines the control-system connector contract:
// read/write channel access, metadata, subscription, bulk/historical
// reads, with categorized errors so capabilities can react to
// "not found" differently from "permission denied."
package connector

import (
	"context"
	"time"
)

// Category names which of the two registered connector kinds a
// ConnectorRegistration distinguishes.
type Category string

const (
	CategoryControlSystem Category = "control_system"
	CategoryArchiver Category = "archiver"
)

// Sample is one timestamped channel value.
type Sample struct {
	Channel string
	Value any
	Timestamp time.Time
}

// ChannelMetadata describes a channel's static properties.
type ChannelMetadata struct {
	Channel string
	Units string
	Description string
	Writable bool
}

// TimeRange bounds a historical or bulk query.
type TimeRange struct {
	Start time.Time
	End time.Time
}

// Update is one value delivered by Subscribe.
type Update struct {
	Sample Sample
	Err error
}

// Connector is the contract a control-system or archiver connector
// implements.
type Connector interface {
	// ReadChannel returns the current value of one channel.
	ReadChannel(ctx context.Context, channel string) (Sample, error)

	// WriteChannel sets a channel's value. Connectors that are read-only
	// (archivers) return ErrUnsupported.
	WriteChannel(ctx context.Context, channel string, value any) error

	// Metadata returns static channel properties.
	Metadata(ctx context.Context, channel string) (ChannelMetadata, error)

	// Subscribe streams updates for a channel until ctx is canceled. The
	// returned channel is closed when the subscription ends.
	Subscribe(ctx context.Context, channel string) (<-chan Update, error)

	// BulkRead returns the current value of several channels at once.
	BulkRead(ctx context.Context, channels []string) ([]Sample, error)

	// GetData returns historical samples for a channel over a time range
	// (the archiver "historical get_data" operation).
	GetData(ctx context.Context, channel string, span TimeRange) ([]Sample, error)
}
