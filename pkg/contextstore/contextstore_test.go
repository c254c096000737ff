package contextstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreyai/osprey/pkg/capability"
	"github.com/ospreyai/osprey/pkg/graph/grapherr"
	"github.com/ospreyai/osprey/pkg/state"
)

func TestStore_WriteOnceRejectsCollision(t *testing.T) {
	data := state.ContextData{"CHANNEL_VALUES": {"cv_1": &state.ContextEntry{Value: 1}}}

	_, err := Store(data, "CHANNEL_VALUES", "cv_1", 2, "retry")
	var dup *DuplicateContextKeyError
	require.True(t, errors.As(err, &dup))
}

func TestStore_FirstWriteSucceeds(t *testing.T) {
	data := state.ContextData{}
	update, err := Store(data, "CHANNEL_VALUES", "cv_1", 42, "read the channel")
	require.NoError(t, err)
	entry := update.NewContextData["CHANNEL_VALUES"]["cv_1"]
	assert.Equal(t, 42, entry.Value)
	assert.Equal(t, "read the channel", entry.TaskObjective)
}

func TestGet_MissingReturnsFalse(t *testing.T) {
	_, ok := Get(state.ContextData{}, "CHANNEL_VALUES", "cv_1")
	assert.False(t, ok)
}

func TestExtractForStep_SingleExactlyOne(t *testing.T) {
	now := time.Now()
	data := state.ContextData{"CHANNEL_VALUES": {"cv_1": &state.ContextEntry{Value: 7, StoredAt: now}}}
	step := state.PlannedStep{Inputs: []string{"cv_1"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalitySingle}}

	got, err := ExtractForStep(data, step, requires)
	require.NoError(t, err)
	assert.Equal(t, 7, got["CHANNEL_VALUES"])
}

func TestExtractForStep_SingleWithMultipleMatchesErrors(t *testing.T) {
	now := time.Now()
	data := state.ContextData{"CHANNEL_VALUES": {
		"cv_1": &state.ContextEntry{Value: 1, StoredAt: now},
		"cv_2": &state.ContextEntry{Value: 2, StoredAt: now.Add(time.Second)},
	}}
	step := state.PlannedStep{Inputs: []string{"cv_1", "cv_2"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalitySingle}}

	_, err := ExtractForStep(data, step, requires)
	var cardErr *CardinalityError
	require.True(t, errors.As(err, &cardErr))
	assert.Equal(t, 2, cardErr.Matches)
}

func TestExtractForStep_MultipleAlwaysWrapsSingleton(t *testing.T) {
	now := time.Now()
	data := state.ContextData{"CHANNEL_VALUES": {"cv_1": &state.ContextEntry{Value: 9, StoredAt: now}}}
	step := state.PlannedStep{Inputs: []string{"cv_1"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalityMultiple}}

	got, err := ExtractForStep(data, step, requires)
	require.NoError(t, err)
	assert.Equal(t, []any{9}, got["CHANNEL_VALUES"])
}

func TestExtractForStep_MultiplePreservesInputOrder(t *testing.T) {
	base := time.Now()
	data := state.ContextData{"CHANNEL_VALUES": {
		"cv_2": &state.ContextEntry{Value: "second", StoredAt: base.Add(time.Second)},
		"cv_1": &state.ContextEntry{Value: "first", StoredAt: base},
	}}
	step := state.PlannedStep{Inputs: []string{"cv_1", "cv_2"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalityMultiple}}

	got, err := ExtractForStep(data, step, requires)
	require.NoError(t, err)
	assert.Equal(t, []any{"first", "second"}, got["CHANNEL_VALUES"])
}

func TestExtractForStep_UnconstrainedMirrorsStorage(t *testing.T) {
	now := time.Now()
	single := state.ContextData{"CHANNEL_VALUES": {"cv_1": &state.ContextEntry{Value: "solo", StoredAt: now}}}
	step := state.PlannedStep{Inputs: []string{"cv_1"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalityUnconstrained}}

	got, err := ExtractForStep(single, step, requires)
	require.NoError(t, err)
	assert.Equal(t, "solo", got["CHANNEL_VALUES"])
}

func TestExtractForStep_UnknownKeyIsInvalidContextKeyError(t *testing.T) {
	step := state.PlannedStep{Inputs: []string{"missing_key"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalitySingle}}

	_, err := ExtractForStep(state.ContextData{}, step, requires)
	var invalid *grapherr.InvalidContextKeyError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "missing_key", invalid.ContextKey)
}

func TestExtractForStep_KeyNotInRequiresIsInputTypeMismatchError(t *testing.T) {
	now := time.Now()
	data := state.ContextData{"ARCHIVER_DATA": {"ad_1": &state.ContextEntry{Value: 1, StoredAt: now}}}
	step := state.PlannedStep{CapabilityName: "plot", Inputs: []string{"ad_1"}}
	requires := []capability.Requirement{{ContextType: "CHANNEL_VALUES", Cardinality: state.CardinalitySingle}}

	_, err := ExtractForStep(data, step, requires)
	var mismatch *grapherr.InputTypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "ad_1", mismatch.ContextKey)
	assert.Equal(t, "ARCHIVER_DATA", mismatch.ContextType)
}

type summarizableValue struct{ text string }

func (s summarizableValue) Summary() string { return s.text }

func TestListSummaries_UsesSummarizableAndSortsDeterministically(t *testing.T) {
	data := state.ContextData{
		"CHANNEL_VALUES": {"cv_1": &state.ContextEntry{Value: summarizableValue{"channel is 3.2"}, TaskObjective: "read channel"}},
		"ARCHIVER_DATA":  {"ad_1": &state.ContextEntry{Value: 123, TaskObjective: "fetch history"}},
	}

	summaries := ListSummaries(data, 4000)
	require.Len(t, summaries, 2)
	assert.Equal(t, "ARCHIVER_DATA", summaries[0].ContextType)
	assert.Equal(t, "CHANNEL_VALUES", summaries[1].ContextType)
	assert.Equal(t, "channel is 3.2", summaries[1].Text)
}

func TestTruncate_ShortensLongStrings(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	got := Truncate(string(long), 20)
	assert.LessOrEqual(t, len(got.(string)), 20)
}

func TestTruncate_ZeroBudgetDisablesTruncation(t *testing.T) {
	got := Truncate("anything at all", 0)
	assert.Equal(t, "anything at all", got)
}
