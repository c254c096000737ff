// Package mockconnector is an in-memory reference Connector implementation
// used by the built-in example capabilities and end-to-end tests. It is
// not meant for production use — real control-system connectors
// (EPICS/Mock/Tango) are replaceable behind the connector.Connector
// interface.
package mockconnector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ospreyai/osprey/pkg/connector"
)

// Channel seeds one channel's current value and history.
type Channel struct {
	Value any
	Units string
	Writable bool
	History []connector.Sample
}

// Connector is a sharded in-memory control-system/archiver connector.
type Connector struct {
	mu sync.Mutex
	channels map[string]*Channel
	subs map[string][]chan connector.Update
}

// New builds a Connector seeded with the given channels.
func New(seed map[string]Channel) *Connector {
	c := &Connector{
 channels: make(map[string]*Channel, len(seed)),
 subs: make(map[string][]chan connector.Update),
	}
	for name, ch := range seed {
 copyCh := ch
 c.channels[name] = &copyCh
	}
	return c
}

func (c *Connector) ReadChannel(_ context.Context, channel string) (connector.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[channel]
	if !ok {
 return connector.Sample{}, connector.NotFound(channel)
	}
	return connector.Sample{Channel: channel, Value: ch.Value, Timestamp: time.Now()}, nil
}

func (c *Connector) WriteChannel(_ context.Context, channel string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[channel]
	if !ok {
 return connector.NotFound(channel)
	}
	if !ch.Writable {
 return connector.PermissionDenied(channel)
	}
	ch.Value = value
	sample := connector.Sample{Channel: channel, Value: value, Timestamp: time.Now()}
	ch.History = append(ch.History, sample)
	for _, sub := range c.subs[channel] {
 sub <- connector.Update{Sample: sample}
	}
	return nil
}

func (c *Connector) Metadata(_ context.Context, channel string) (connector.ChannelMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[channel]
	if !ok {
 return connector.ChannelMetadata{}, connector.NotFound(channel)
	}
	return connector.ChannelMetadata{Channel: channel, Units: ch.Units, Writable: ch.Writable}, nil
}

func (c *Connector) Subscribe(ctx context.Context, channel string) (<-chan connector.Update, error) {
	c.mu.Lock()
	if _, ok := c.channels[channel]; !ok {
 c.mu.Unlock()
 return nil, connector.NotFound(channel)
	}
	ch := make(chan connector.Update, 8)
	c.subs[channel] = append(c.subs[channel], ch)
	c.mu.Unlock()

	go func {
 <-ctx.Done()
 c.mu.Lock()
 defer c.mu.Unlock()
 subs := c.subs[channel]
 for i, sub := range subs {
 if sub == ch {
 c.subs[channel] = append(subs[:i], subs[i+1:]...)
 break
 }
 }
 close(ch)
	}
	return ch, nil
}

func (c *Connector) BulkRead(ctx context.Context, channels []string) ([]connector.Sample, error) {
	out := make([]connector.Sample, 0, len(channels))
	for _, channel := range channels {
 sample, err := c.ReadChannel(ctx, channel)
 if err != nil {
 return nil, err
 }
 out = append(out, sample)
	}
	return out, nil
}

func (c *Connector) GetData(_ context.Context, channel string, span connector.TimeRange) ([]connector.Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[channel]
	if !ok {
 return nil, connector.NotFound(channel)
	}
	out := make([]connector.Sample, 0, len(ch.History))
	for _, sample := range ch.History {
 if !sample.Timestamp.Before(span.Start) && !sample.Timestamp.After(span.End) {
 out = append(out, sample)
 }
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
