package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow is a hand-rolled Row standing in for *sql.Row.
type fakeRow struct {
	id int64
}

func (r fakeRow) Scan(dest ...any) error {
	ptr := dest[0].(*int64)
	*ptr = r.id
	return nil
}

// fakeRows is a hand-rolled Rows standing in for *sql.Rows, iterating a
// pre-filtered in-memory slice.
type fakeRows struct {
	entries []fakeEventRow
	pos     int
}

type fakeEventRow struct {
	id      int
	payload []byte
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.entries) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	e := r.entries[r.pos-1]
	*dest[0].(*int) = e.id
	*dest[1].(*[]byte) = e.payload
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

// fakeQuerier is a minimal in-memory stand-in for the querier interface,
// keyed the same way the real `events` table is: an auto-incrementing id
// per channel insert, with pg_notify calls recorded for inspection.
type fakeQuerier struct {
	nextID    int64
	rows      []fakeEventRow
	notifies  []fakeNotify
	execError error
}

type fakeNotify struct {
	channel string
	payload string
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{}
}

func (f *fakeQuerier) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	if f.execError != nil {
		return nil, f.execError
	}
	if indexOf(query, "pg_notify") >= 0 {
		f.notifies = append(f.notifies, fakeNotify{channel: args[0].(string), payload: args[1].(string)})
	}
	return driverResult{}, nil
}

func (f *fakeQuerier) QueryRowContext(_ context.Context, _ string, args ...any) Row {
	f.nextID++
	payload := args[1].([]byte)
	f.rows = append(f.rows, fakeEventRow{id: int(f.nextID), payload: payload})
	return fakeRow{id: f.nextID}
}

func (f *fakeQuerier) QueryContext(_ context.Context, _ string, args ...any) (Rows, error) {
	sinceID := args[1].(int)
	limit := args[2].(int)
	var matched []fakeEventRow
	for _, e := range f.rows {
		if e.id > sinceID {
			matched = append(matched, e)
		}
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return &fakeRows{entries: matched}, nil
}

type driverResult struct{}

func (driverResult) LastInsertId() (int64, error) { return 0, nil }
func (driverResult) RowsAffected() (int64, error) { return 0, nil }

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestStore_PublishPersistsAndNotifies(t *testing.T) {
	q := newFakeQuerier()
	s := NewWithQuerier(q)

	err := s.PublishNodeStarted(context.Background(), "thread-1", NodeStartedPayload{
		Type: EventTypeNodeStarted, ThreadID: "thread-1", Node: "classification",
	})
	require.NoError(t, err)

	require.Len(t, q.rows, 1)
	require.Len(t, q.notifies, 1)
	assert.Equal(t, "thread:thread-1", q.notifies[0].channel)
	assert.Contains(t, q.notifies[0].payload, `"db_event_id":1`)
}

func TestStore_GetCatchupEventsFiltersBySinceID(t *testing.T) {
	q := newFakeQuerier()
	s := NewWithQuerier(q)
	ctx := context.Background()

	require.NoError(t, s.PublishNodeStarted(ctx, "thread-1", NodeStartedPayload{Type: EventTypeNodeStarted, ThreadID: "thread-1"}))
	require.NoError(t, s.PublishNodeCompleted(ctx, "thread-1", NodeCompletedPayload{Type: EventTypeNodeCompleted, ThreadID: "thread-1"}))
	require.NoError(t, s.PublishTurnCompleted(ctx, "thread-1", TurnCompletedPayload{Type: EventTypeTurnCompleted, ThreadID: "thread-1"}))

	events, err := s.GetCatchupEvents(ctx, "thread:thread-1", 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2, events[0].ID)
	assert.Equal(t, 3, events[1].ID)
}

func TestStore_GetCatchupEventsRespectsLimit(t *testing.T) {
	q := newFakeQuerier()
	s := NewWithQuerier(q)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.PublishNodeStarted(ctx, "thread-1", NodeStartedPayload{Type: EventTypeNodeStarted, ThreadID: "thread-1"}))
	}

	events, err := s.GetCatchupEvents(ctx, "thread:thread-1", 0, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestStore_PublishErrorOnNotifyFailure(t *testing.T) {
	q := newFakeQuerier()
	q.execError = assert.AnError
	s := NewWithQuerier(q)

	err := s.PublishNodeStarted(context.Background(), "thread-1", NodeStartedPayload{Type: EventTypeNodeStarted, ThreadID: "thread-1"})
	assert.Error(t, err)
}

func TestGetCatchupEvents_PayloadUnmarshalsToMap(t *testing.T) {
	q := newFakeQuerier()
	s := NewWithQuerier(q)
	ctx := context.Background()

	require.NoError(t, s.PublishCapabilityInvoked(ctx, "thread-1", CapabilityInvokedPayload{
		Type: EventTypeCapabilityInvoked, ThreadID: "thread-1", CapabilityName: "read_channel",
	}))

	events, err := s.GetCatchupEvents(ctx, "thread:thread-1", 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	var roundtrip map[string]any
	raw, _ := json.Marshal(events[0].Payload)
	require.NoError(t, json.Unmarshal(raw, &roundtrip))
	assert.Equal(t, "read_channel", roundtrip["capability_name"])
}
