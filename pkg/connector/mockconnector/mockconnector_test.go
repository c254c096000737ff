package mockconnector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreyai/osprey/pkg/connector"
)

func TestReadChannel_NotFound(t *testing.T) {
	c := New(nil)
	_, err := c.ReadChannel(context.Background(), "BEAM:CURRENT")
	var connErr *connector.Error
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, connector.ErrorNotFound, connErr.Kind)
}

func TestReadChannel_ReturnsSeededValue(t *testing.T) {
	c := New(map[string]Channel{"BEAM:CURRENT": {Value: 12.5, Units: "mA"}})
	sample, err := c.ReadChannel(context.Background(), "BEAM:CURRENT")
	require.NoError(t, err)
	assert.Equal(t, 12.5, sample.Value)
}

func TestWriteChannel_PermissionDeniedWhenReadOnly(t *testing.T) {
	c := New(map[string]Channel{"BEAM:CURRENT": {Value: 1.0, Writable: false}})
	err := c.WriteChannel(context.Background(), "BEAM:CURRENT", 2.0)
	var connErr *connector.Error
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, connector.ErrorPermissionDenied, connErr.Kind)
}

func TestWriteChannel_UpdatesValueAndHistory(t *testing.T) {
	c := New(map[string]Channel{"SETPOINT": {Value: 0.0, Writable: true}})
	require.NoError(t, c.WriteChannel(context.Background(), "SETPOINT", 5.0))

	sample, err := c.ReadChannel(context.Background(), "SETPOINT")
	require.NoError(t, err)
	assert.Equal(t, 5.0, sample.Value)
}

func TestBulkRead_StopsAtFirstMissingChannel(t *testing.T) {
	c := New(map[string]Channel{"A": {Value: 1}})
	_, err := c.BulkRead(context.Background(), []string{"A", "B"})
	assert.Error(t, err)
}

func TestGetData_FiltersByTimeRangeAndSorts(t *testing.T) {
	now := time.Now()
	c := New(map[string]Channel{"ARCHIVE:CH": {History: []connector.Sample{
		{Value: 3, Timestamp: now.Add(2 * time.Hour)},
		{Value: 1, Timestamp: now},
		{Value: 2, Timestamp: now.Add(time.Hour)},
	}}})

	got, err := c.GetData(context.Background(), "ARCHIVE:CH", connector.TimeRange{
		Start: now, End: now.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Value)
	assert.Equal(t, 2, got[1].Value)
}

func TestSubscribe_DeliversWriteUpdatesAndClosesOnCancel(t *testing.T) {
	c := New(map[string]Channel{"SETPOINT": {Value: 0.0, Writable: true}})
	ctx, cancel := context.WithCancel(context.Background())

	updates, err := c.Subscribe(ctx, "SETPOINT")
	require.NoError(t, err)

	require.NoError(t, c.WriteChannel(context.Background(), "SETPOINT", 9.0))
	select {
	case update := <-updates:
		assert.Equal(t, 9.0, update.Sample.Value)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription update")
	}

	cancel()
	select {
	case _, ok := <-updates:
		assert.False(t, ok, "channel must close once the subscription context is canceled")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription channel to close")
	}
}
