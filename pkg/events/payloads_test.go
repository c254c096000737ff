package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeStartedPayload_RoundTrips(t *testing.T) {
	payload := NodeStartedPayload{
		Type:      EventTypeNodeStarted,
		ThreadID:  "thread-abc",
		Node:      "classification",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var got NodeStartedPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload, got)
}

func TestNodeCompletedPayload_OmitsEmptyRoute(t *testing.T) {
	payload := NodeCompletedPayload{
		Type:      EventTypeNodeCompleted,
		ThreadID:  "thread-abc",
		Node:      "task_extraction",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"route"`)
}

func TestCapabilityInvokedPayload_RoundTrips(t *testing.T) {
	payload := CapabilityInvokedPayload{
		Type:           EventTypeCapabilityInvoked,
		ThreadID:       "thread-abc",
		CapabilityName: "read_channel",
		ContextKey:     "beam_current",
		Timestamp:      time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var got CapabilityInvokedPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload, got)
}

func TestCapabilityCompletedPayload_TracksFailure(t *testing.T) {
	payload := CapabilityCompletedPayload{
		Type:           EventTypeCapabilityCompleted,
		ThreadID:       "thread-abc",
		CapabilityName: "write_setpoint",
		Failed:         true,
		Timestamp:      time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"failed":true`)
}

func TestApprovalRequestedPayload_CarriesSafetyConcerns(t *testing.T) {
	payload := ApprovalRequestedPayload{
		Type:             EventTypeApprovalRequested,
		ThreadID:         "thread-abc",
		CapabilityName:   "write_setpoint",
		OperationSummary: "Set RF amplitude to 12.5 MV/m",
		SafetyConcerns:   []string{"exceeds nominal operating range"},
		Timestamp:        time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var got ApprovalRequestedPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload.SafetyConcerns, got.SafetyConcerns)
}

func TestTurnCompletedPayload_RoundTrips(t *testing.T) {
	payload := TurnCompletedPayload{
		Type:      EventTypeTurnCompleted,
		ThreadID:  "thread-abc",
		Route:     "respond",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var got TurnCompletedPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload, got)
}

func TestTurnErrorPayload_RoundTrips(t *testing.T) {
	payload := TurnErrorPayload{
		Type:      EventTypeTurnError,
		ThreadID:  "thread-abc",
		Message:   "classification exceeded retry budget",
		Timestamp: time.Now().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var got TurnErrorPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload, got)
}
