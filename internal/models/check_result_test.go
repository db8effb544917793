package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgate/internal/models"
)

func sampleResults() models.ResultSet {
	now := time.Now().UTC().Truncate(time.Second)
	return models.ResultSet{
		{Rule: "content_length_check", Validator: "content_length", Passed: true, Message: "ok", ExecutedAt: now},
		{Rule: "metadata_validation", Validator: "metadata", Passed: false, Message: "missing author", ExecutedAt: now},
		{Rule: "asset_attribution_check", Validator: "asset_attribution", Passed: true, Message: "ok", ExecutedAt: now},
	}
}

func TestResultSetAllPassed(t *testing.T) {
	assert.False(t, sampleResults().AllPassed())

	passing := models.ResultSet{
		{Rule: "a", Passed: true},
		{Rule: "b", Passed: true},
	}
	assert.True(t, passing.AllPassed())

	// An empty set passes vacuously.
	assert.True(t, models.ResultSet{}.AllPassed())
}

func TestResultSetFailed(t *testing.T) {
	failed := sampleResults().Failed()
	require.Len(t, failed, 1)

	result, ok := failed["metadata_validation"]
	require.True(t, ok)
	assert.Equal(t, "missing author", result.Message)
}

func TestResultSetGet(t *testing.T) {
	rs := sampleResults()

	result, ok := rs.Get("content_length_check")
	require.True(t, ok)
	assert.True(t, result.Passed)

	_, ok = rs.Get("nonexistent")
	assert.False(t, ok)
}

func TestResultSetRoundTripPreservesOrder(t *testing.T) {
	rs := sampleResults()

	value, err := rs.Value()
	require.NoError(t, err)

	var restored models.ResultSet
	require.NoError(t, restored.Scan(value))

	require.Len(t, restored, len(rs))
	assert.Equal(t, rs.RuleNames(), restored.RuleNames())
	assert.Equal(t, "metadata", restored[1].Validator)
}

func TestResultSetScanNil(t *testing.T) {
	var rs models.ResultSet
	require.NoError(t, rs.Scan(nil))
	assert.Nil(t, rs)
}
