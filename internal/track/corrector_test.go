package track

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRMWFillMethod(t *testing.T) {
	for _, name := range []string{"none", "persistent", "regression", "regression_with_smoothing"} {
		method, err := ParseRMWFillMethod(name)
		require.NoError(t, err)
		assert.Equal(t, RMWFillMethod(name), method)
	}

	_, err := ParseRMWFillMethod("splines")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// correctionFixture returns a table with one OFCL cycle missing RMW and
// pressures, plus a matching CARQ reference carrying them.
func correctionFixture() Table {
	cycle := testTime(28, 0)

	carq := forecastRecord(AdvisoryCARQ, cycle, 0, 25.0, -85.0)
	carq.RadiusOfMaximumWinds = 15
	carq.CentralPressure = 960
	carq.BackgroundPressure = 1013
	carq.MaxSustainedWindSpeed = 100

	table := Table{carq}
	for _, hour := range []int{0, 12, 24} {
		f := forecastRecord(AdvisoryOFCL, cycle, hour, 25.0+float64(hour)/24, -85.0)
		f.RadiusOfMaximumWinds = nan
		f.CentralPressure = nan
		f.BackgroundPressure = nan
		f.MaxSustainedWindSpeed = 90
		table = append(table, f)
	}
	table.SortCanonical()
	return table
}

func ofclRows(table Table) []Record {
	var out []Record
	for _, r := range table {
		if r.Advisory == AdvisoryOFCL {
			out = append(out, r)
		}
	}
	return out
}

func TestCorrectorPressureFill(t *testing.T) {
	corrector := NewCorrector(RMWFillNone, slog.Default())
	got := ofclRows(corrector.Correct(correctionFixture()))
	require.Len(t, got, 3)

	for _, r := range got {
		assert.Equal(t, 1013.0, r.BackgroundPressure)
		assert.False(t, math.IsNaN(r.CentralPressure))
		assert.Less(t, r.CentralPressure, r.BackgroundPressure)
		// none policy leaves RMW untouched
		assert.True(t, math.IsNaN(r.RadiusOfMaximumWinds))
	}
}

func TestCorrectorPersistentFill(t *testing.T) {
	corrector := NewCorrector(RMWFillPersistent, slog.Default())
	got := ofclRows(corrector.Correct(correctionFixture()))
	require.Len(t, got, 3)

	for _, r := range got {
		assert.Equal(t, 15.0, r.RadiusOfMaximumWinds)
	}
}

func TestCorrectorRegressionFill(t *testing.T) {
	corrector := NewCorrector(RMWFillRegression, slog.Default())
	got := ofclRows(corrector.Correct(correctionFixture()))
	require.Len(t, got, 3)

	for _, r := range got {
		assert.False(t, math.IsNaN(r.RadiusOfMaximumWinds))
		assert.GreaterOrEqual(t, r.RadiusOfMaximumWinds, 5.0)
		assert.LessOrEqual(t, r.RadiusOfMaximumWinds, 120.0)
	}
}

func TestCorrectorRegressionWithSmoothing(t *testing.T) {
	corrector := NewCorrector(RMWFillRegressionSmoothed, slog.Default())
	got := ofclRows(corrector.Correct(correctionFixture()))
	require.Len(t, got, 3)

	for _, r := range got {
		assert.False(t, math.IsNaN(r.RadiusOfMaximumWinds))
		assert.Greater(t, r.RadiusOfMaximumWinds, 0.0)
	}
}

func TestCorrectorMissingReferenceIsNoOp(t *testing.T) {
	cycle := testTime(28, 0)
	table := Table{
		forecastRecord(AdvisoryOFCL, cycle, 0, 25.0, -85.0),
		forecastRecord(AdvisoryOFCL, cycle, 12, 25.5, -85.2),
	}
	table.SortCanonical()

	corrector := NewCorrector(RMWFillPersistent, slog.Default())
	got := corrector.Correct(table)

	assert.True(t, got.Equal(table))
}

func TestCorrectorFallsBackToEarliestReference(t *testing.T) {
	table := correctionFixture()

	// shift every CARQ row to an earlier cycle so no key matches
	early := testTime(27, 18)
	for i := range table {
		if table[i].Advisory == AdvisoryCARQ {
			table[i].TrackStartTime = early
			table[i].Datetime = early
		}
	}
	table.SortCanonical()

	corrector := NewCorrector(RMWFillPersistent, slog.Default())
	got := ofclRows(corrector.Correct(table))
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, 15.0, r.RadiusOfMaximumWinds)
	}
}

func TestMeanHollandBSkipsDegeneratePressures(t *testing.T) {
	corrector := NewCorrector(RMWFillNone, slog.Default())

	good := bestRecord(testTime(28, 0), 25.0, -85.0)
	good.MaxSustainedWindSpeed = 100
	good.CentralPressure = 960
	good.BackgroundPressure = 1013

	degenerate := good
	degenerate.CentralPressure = 1013

	withBoth := corrector.meanHollandB(Table{good, degenerate})
	onlyGood := corrector.meanHollandB(Table{good})
	assert.InDelta(t, onlyGood, withBoth, 1e-9)

	assert.True(t, math.IsNaN(corrector.meanHollandB(Table{degenerate})))
}

func TestBiasTablesNearestLead(t *testing.T) {
	b := DefaultBiasTables()
	assert.Equal(t, 0, b.NearestLead(0))
	assert.Equal(t, 12, b.NearestLead(14))
	assert.Equal(t, 96, b.NearestLead(100))
	assert.Equal(t, 120, b.NearestLead(200))
}
