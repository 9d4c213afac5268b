package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateVelocity(t *testing.T) {
	t.Run("northward motion", func(t *testing.T) {
		table := Table{
			bestRecord(testTime(28, 0), 25.0, -85.0),
			bestRecord(testTime(28, 6), 26.0, -85.0),
		}
		got := EstimateVelocity(table)

		require.Len(t, got, 2)
		// one degree of latitude over six hours, just over 5 m/s due north
		assert.InDelta(t, 0.0, got[1].Direction, 0.5)
		assert.InDelta(t, 5.1, got[1].Speed, 0.2)
		// first record backfills from its successor
		assert.Equal(t, got[1].Speed, got[0].Speed)
		assert.Equal(t, got[1].Direction, got[0].Direction)
	})

	t.Run("eastward motion", func(t *testing.T) {
		table := Table{
			bestRecord(testTime(28, 0), 25.0, -85.0),
			bestRecord(testTime(28, 6), 25.0, -84.0),
		}
		got := EstimateVelocity(table)
		assert.InDelta(t, 90.0, got[1].Direction, 1.0)
		assert.Greater(t, got[1].Speed, 0.0)
	})

	t.Run("single record defaults to zero", func(t *testing.T) {
		got := EstimateVelocity(Table{bestRecord(testTime(28, 0), 25.0, -85.0)})
		assert.Equal(t, 0.0, got[0].Speed)
		assert.Equal(t, 0.0, got[0].Direction)
	})

	t.Run("input table is not mutated", func(t *testing.T) {
		table := Table{
			bestRecord(testTime(28, 0), 25.0, -85.0),
			bestRecord(testTime(28, 6), 26.0, -85.0),
		}
		snapshot := table.Clone()
		EstimateVelocity(table)
		assert.True(t, table.Equal(snapshot))
	})

	t.Run("duplicate valid times share the first occurrence's velocity", func(t *testing.T) {
		dup := bestRecord(testTime(28, 6), 26.0, -85.0)
		table := Table{
			bestRecord(testTime(28, 0), 25.0, -85.0),
			bestRecord(testTime(28, 6), 26.0, -85.0),
			dup,
		}
		got := EstimateVelocity(table)
		assert.Equal(t, got[1].Speed, got[2].Speed)
		assert.Equal(t, got[1].Direction, got[2].Direction)
		assert.Greater(t, got[1].Speed, 0.0)
	})
}

// A later forecast cycle restarts the time axis mid-advisory. The first
// record of the second cycle must not difference against the last record
// of the first cycle when that record lies in its future; the reference
// becomes the nearest earlier record anywhere in the advisory.
func TestEstimateVelocityCycleRestart(t *testing.T) {
	cycle1 := testTime(28, 0)
	cycle2 := testTime(28, 6)

	table := Table{
		forecastRecord(AdvisoryOFCL, cycle1, 0, 25.0, -85.0),  // valid 00z
		forecastRecord(AdvisoryOFCL, cycle1, 12, 26.0, -85.5), // valid 12z
		forecastRecord(AdvisoryOFCL, cycle2, 0, 25.5, -85.2),  // valid 06z, after a 12z row
		forecastRecord(AdvisoryOFCL, cycle2, 12, 26.5, -85.8), // valid 18z
	}

	got := EstimateVelocity(table)

	// nearest earlier valid time to 06z is the 00z row; northwestward
	// displacement from (25.0, -85.0) to (25.5, -85.2) over 6 hours
	assert.Greater(t, got[2].Speed, 0.0)
	assert.Greater(t, got[2].Direction, 270.0)
	assert.Less(t, got[2].Direction, 360.0)

	for _, r := range got {
		assert.GreaterOrEqual(t, r.Speed, 0.0)
		assert.GreaterOrEqual(t, r.Direction, 0.0)
		assert.Less(t, r.Direction, 360.0)
	}
}
