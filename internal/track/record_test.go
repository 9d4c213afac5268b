package track

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanQuadrantRadius(t *testing.T) {
	t.Run("averages positive radii", func(t *testing.T) {
		r := withRadii(Record{}, 34, 100, 80, nan, 60)
		assert.InDelta(t, 80.0, r.MeanQuadrantRadius(), 1e-9)
	})

	t.Run("zero radii are skipped", func(t *testing.T) {
		r := withRadii(Record{}, 34, 0, 0, 90, 0)
		assert.InDelta(t, 90.0, r.MeanQuadrantRadius(), 1e-9)
	})

	t.Run("no usable radius is NaN", func(t *testing.T) {
		r := withRadii(Record{}, 34, nan, nan, 0, nan)
		assert.True(t, math.IsNaN(r.MeanQuadrantRadius()))
	})
}

func TestRecordEqual(t *testing.T) {
	a := bestRecord(testTime(28, 0), 25.0, -85.0)
	b := a

	assert.True(t, a.Equal(b))

	t.Run("NaN compares equal to NaN", func(t *testing.T) {
		a.RadiusOfMaximumWinds = math.NaN()
		b.RadiusOfMaximumWinds = math.NaN()
		assert.True(t, a.Equal(b))
	})

	t.Run("NaN differs from a value", func(t *testing.T) {
		b.RadiusOfMaximumWinds = 20
		assert.False(t, a.Equal(b))
	})
}

func TestTableSortCanonical(t *testing.T) {
	table := Table{
		forecastRecord(AdvisoryOFCL, testTime(28, 0), 0, 25.0, -85.0),
		bestRecord(testTime(28, 0), 25.0, -85.0),
		bestRecord(testTime(27, 18), 24.5, -84.8),
	}
	table.SortCanonical()

	require.Len(t, table, 3)
	assert.Equal(t, testTime(27, 18), table[0].Datetime)
	assert.Equal(t, AdvisoryBEST, table[1].Advisory)
	assert.Equal(t, AdvisoryOFCL, table[2].Advisory)
}

func TestTableWindow(t *testing.T) {
	table := Table{
		bestRecord(testTime(27, 18), 24.5, -84.8),
		bestRecord(testTime(28, 0), 25.0, -85.0),
		bestRecord(testTime(28, 6), 25.5, -85.2),
	}

	t.Run("inclusive bounds", func(t *testing.T) {
		got := table.Window(testTime(28, 0), testTime(28, 6))
		require.Len(t, got, 2)
		assert.Equal(t, testTime(28, 0), got[0].Datetime)
		assert.Equal(t, testTime(28, 6), got[1].Datetime)
	})

	t.Run("zero bounds are open", func(t *testing.T) {
		assert.Len(t, table.Window(time.Time{}, time.Time{}), 3)
		assert.Len(t, table.Window(testTime(28, 0), time.Time{}), 2)
		assert.Len(t, table.Window(time.Time{}, testTime(27, 18)), 1)
	})
}

func TestTableAdvisories(t *testing.T) {
	table := Table{
		forecastRecord(AdvisoryOFCL, testTime(28, 0), 0, 25.0, -85.0),
		bestRecord(testTime(28, 0), 25.0, -85.0),
		forecastRecord(AdvisoryOFCL, testTime(28, 0), 12, 26.0, -85.5),
	}
	assert.Equal(t, []AdvisoryCode{AdvisoryOFCL, AdvisoryBEST}, table.Advisories())
}
