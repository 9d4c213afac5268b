package track

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
)

// RMWFillMethod selects how missing OFCL radius-of-maximum-winds values
// are reconstructed.
type RMWFillMethod string

const (
	// RMWFillNone leaves RMW untouched.
	RMWFillNone RMWFillMethod = "none"
	// RMWFillPersistent copies the reference track's 0-hour RMW to
	// every missing lead hour.
	RMWFillPersistent RMWFillMethod = "persistent"
	// RMWFillRegression applies the lead-hour bias-corrected
	// regression (Penny et al. 2023 method).
	RMWFillRegression RMWFillMethod = "regression"
	// RMWFillRegressionSmoothed applies the regression followed by a
	// centered 24-hour rolling mean.
	RMWFillRegressionSmoothed RMWFillMethod = "regression_with_smoothing"
)

// ParseRMWFillMethod validates an RMW fill policy name.
func ParseRMWFillMethod(s string) (RMWFillMethod, error) {
	method := RMWFillMethod(strings.ToLower(strings.TrimSpace(s)))
	switch method {
	case RMWFillNone, RMWFillPersistent, RMWFillRegression, RMWFillRegressionSmoothed:
		return method, nil
	}
	return "", fmt.Errorf("%w: rmw fill method %q", ErrInvalidArgument, s)
}

// Corrector fills missing OFCL physical fields (RMW, central pressure,
// background pressure) from the CARQ reference track via the Holland B
// relation and the RMW regression tables.
type Corrector struct {
	Relation HollandBRelation
	Bias     *BiasTables
	Method   RMWFillMethod
	Logger   *slog.Logger
}

// NewCorrector builds a corrector with default air density and bias
// tables.
func NewCorrector(method RMWFillMethod, logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corrector{
		Relation: NewHollandBRelation(0),
		Bias:     DefaultBiasTables(),
		Method:   method,
		Logger:   logger,
	}
}

// Correct returns a new table with OFCL gaps filled. When either OFCL
// or CARQ is absent the input passes through unmodified: callers must
// inspect the output for fields that remain missing, this is a
// documented no-op rather than an error.
func (c *Corrector) Correct(data Table) Table {
	tracks := SeparateTracks(data)

	ofclTracks, haveOFCL := tracks[AdvisoryOFCL]
	carqTracks, haveCARQ := tracks[AdvisoryCARQ]
	if !haveOFCL || !haveCARQ || len(ofclTracks) == 0 || len(carqTracks) == 0 {
		c.Logger.Debug("ofcl correction skipped",
			"have_ofcl", haveOFCL && len(ofclTracks) > 0,
			"have_carq", haveCARQ && len(carqTracks) > 0)
		return data
	}

	carqKeys := sortedCycleKeys(carqTracks)

	for cycleKey, forecast := range ofclTracks {
		reference, ok := carqTracks[cycleKey]
		if !ok {
			reference = carqTracks[carqKeys[0]]
		}

		corrected := forecast.Clone()
		c.correctTrack(corrected, reference, cycleKey)
		ofclTracks[cycleKey] = corrected
	}

	tracks[AdvisoryOFCL] = ofclTracks
	return CombineTracks(tracks)
}

func (c *Corrector) correctTrack(forecast, reference Table, cycleKey string) {
	meanB := c.meanHollandB(reference)
	refZero := zeroHourRecord(reference)

	for i := range forecast {
		if missingValue(forecast[i].BackgroundPressure) {
			forecast[i].BackgroundPressure = refZero.BackgroundPressure
		}
		if missingValue(forecast[i].CentralPressure) && !math.IsNaN(meanB) {
			forecast[i].CentralPressure = c.Relation.CentralPressure(
				forecast[i].MaxSustainedWindSpeed,
				forecast[i].BackgroundPressure,
				meanB,
			)
		}
	}

	switch c.Method {
	case RMWFillNone:
	case RMWFillPersistent:
		for i := range forecast {
			if missingValue(forecast[i].RadiusOfMaximumWinds) {
				forecast[i].RadiusOfMaximumWinds = refZero.RadiusOfMaximumWinds
			}
		}
	case RMWFillRegression:
		c.fillRMWRegression(forecast, refZero, cycleKey)
	case RMWFillRegressionSmoothed:
		c.fillRMWRegression(forecast, refZero, cycleKey)
		c.smoothRMW(forecast)
	}
}

// meanHollandB averages the Holland B parameter over the reference
// track, silently ignoring non-finite values from degenerate pressure
// pairs (background ≤ central).
func (c *Corrector) meanHollandB(reference Table) float64 {
	sum, n := 0.0, 0
	for _, r := range reference {
		b := c.Relation.HollandB(r.MaxSustainedWindSpeed, r.BackgroundPressure, r.CentralPressure)
		if math.IsNaN(b) || math.IsInf(b, 0) {
			continue
		}
		sum += b
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// fillRMWRegression reconstructs missing RMW values one distinct lead
// hour at a time, seeding each regression with the reference 0-hour RMW.
func (c *Corrector) fillRMWRegression(forecast Table, refZero Record, cycleKey string) {
	seed := refZero.RadiusOfMaximumWinds
	if missingValue(seed) {
		c.Logger.Warn("rmw regression skipped: reference has no 0-hour rmw", "cycle", cycleKey)
		return
	}
	upper := math.Max(120, seed)

	var prevRadii []float64
	for _, hour := range distinctLeadHours(forecast) {
		rows := rowsAtLeadHour(forecast, hour)
		lead := c.Bias.NearestLead(hour)

		vmax := firstFinite(forecast, rows, func(r Record) float64 { return r.MaxSustainedWindSpeed })
		lat := firstFinite(forecast, rows, func(r Record) float64 { return r.Latitude })

		radii := quadrantMeanRadii(forecast, rows)
		for i := range radii {
			radii[i] *= c.Bias.Radii[lead]
		}

		if len(radii) == 0 {
			// No radii reported at this hour: synthesize a fallback
			// list from the wind speed, carrying prior radii forward.
			switch {
			case vmax > 50 && len(prevRadii) > 0:
				n := min(2, len(prevRadii))
				radii = append(radii, prevRadii[len(prevRadii)-n:]...)
			case vmax > 34 && len(prevRadii) > 0:
				radii = append(radii, prevRadii[len(prevRadii)-1])
			}
		} else {
			prevRadii = append([]float64{}, radii...)
		}

		if !anyMissingRMW(forecast, rows) {
			continue
		}

		coeffs := c.Bias.Coefficients[lead][min(len(radii), 3)]
		vmaxBC := vmax + c.Bias.WindSpeed[lead]
		latBC := lat + c.Bias.Latitude[lead]

		logRMW := coeffs.Intercept + coeffs.Latitude*latBC + coeffs.Seed*math.Log(seed)
		if vmaxBC > 0 {
			logRMW += coeffs.Wind * math.Log(vmaxBC)
		}
		for i, radius := range radii {
			if i >= len(coeffs.Radii) {
				break
			}
			if radius > 0 && !math.IsNaN(radius) {
				logRMW += coeffs.Radii[i] * math.Log(radius)
			}
		}

		rmw := math.Exp(logRMW)
		if math.IsNaN(rmw) || math.IsInf(rmw, 0) {
			c.Logger.Warn("rmw regression produced non-finite value",
				"cycle", cycleKey, "lead_hour", hour)
			continue
		}
		rmw = math.Min(math.Max(rmw, 5), upper)

		for _, i := range rows {
			if missingValue(forecast[i].RadiusOfMaximumWinds) {
				forecast[i].RadiusOfMaximumWinds = rmw
			}
		}
	}
}

// smoothRMW applies a centered 24-hour (±1 minute tolerance) rolling
// mean over the RMW series resampled onto a uniform lead-hour grid
// augmented with hours 60, 84 and 108. At each valid time the rolled
// value is adopted unless it exceeds the maximum isotach radius there,
// in which case it is rescaled by that radius over the record's peak
// wind speed.
func (c *Corrector) smoothRMW(forecast Table) {
	hours := distinctLeadHours(forecast)
	if len(hours) < 2 {
		return
	}

	known := make(map[int]float64)
	for _, hour := range hours {
		v := firstFinite(forecast, rowsAtLeadHour(forecast, hour), func(r Record) float64 {
			return r.RadiusOfMaximumWinds
		})
		if !math.IsNaN(v) && v > 0 {
			known[hour] = v
		}
	}
	if len(known) == 0 {
		return
	}

	grid := augmentedGrid(hours)
	values := make(map[int]float64, len(grid))
	for _, hour := range grid {
		if v, ok := known[hour]; ok {
			values[hour] = v
			continue
		}
		if v, ok := interpolateRMW(known, hour); ok {
			values[hour] = v
		}
	}

	const halfWindow = 12*time.Hour + time.Minute
	rolled := make(map[int]float64, len(grid))
	for _, hour := range grid {
		if _, ok := values[hour]; !ok {
			continue
		}
		sum, n := 0.0, 0
		for _, other := range grid {
			v, ok := values[other]
			if !ok {
				continue
			}
			gap := time.Duration(abs(other-hour)) * time.Hour
			if gap <= halfWindow {
				sum += v
				n++
			}
		}
		if n > 0 {
			rolled[hour] = sum / float64(n)
		}
	}

	for _, hour := range hours {
		value, ok := rolled[hour]
		if !ok {
			continue
		}
		rows := rowsAtLeadHour(forecast, hour)

		maxRadius := math.NaN()
		for _, i := range rows {
			for _, radius := range forecast[i].QuadrantRadii() {
				if !math.IsNaN(radius) && (math.IsNaN(maxRadius) || radius > maxRadius) {
					maxRadius = radius
				}
			}
		}
		if !math.IsNaN(maxRadius) && maxRadius > 0 && value > maxRadius {
			vmax := firstFinite(forecast, rows, func(r Record) float64 { return r.MaxSustainedWindSpeed })
			if vmax > 0 {
				value *= maxRadius / vmax
			}
		}

		for _, i := range rows {
			forecast[i].RadiusOfMaximumWinds = value
		}
	}
}

// augmentedGrid merges the track's lead hours with the off-synoptic
// hours 60, 84 and 108 used to steady the rolling window.
func augmentedGrid(hours []int) []int {
	set := make(map[int]bool, len(hours)+3)
	for _, h := range hours {
		set[h] = true
	}
	for _, h := range []int{60, 84, 108} {
		set[h] = true
	}
	grid := make([]int, 0, len(set))
	for h := range set {
		grid = append(grid, h)
	}
	sort.Ints(grid)
	return grid
}

// interpolateRMW linearly interpolates an RMW value at hour from the
// bracketing known hours. No extrapolation beyond the known range.
func interpolateRMW(known map[int]float64, hour int) (float64, bool) {
	lo, hi := math.MinInt32, math.MaxInt32
	for h := range known {
		if h <= hour && h > lo {
			lo = h
		}
		if h >= hour && h < hi {
			hi = h
		}
	}
	if lo == math.MinInt32 || hi == math.MaxInt32 {
		return 0, false
	}
	if lo == hi {
		return known[lo], true
	}
	frac := float64(hour-lo) / float64(hi-lo)
	return known[lo] + frac*(known[hi]-known[lo]), true
}

func missingValue(v float64) bool { return math.IsNaN(v) || v == 0 }

func zeroHourRecord(reference Table) Record {
	for _, r := range reference {
		if r.ForecastHours == 0 {
			return r
		}
	}
	if len(reference) > 0 {
		return reference[0]
	}
	return Record{}
}

func distinctLeadHours(forecast Table) []int {
	seen := make(map[int]bool)
	var hours []int
	for _, r := range forecast {
		if !seen[r.ForecastHours] {
			seen[r.ForecastHours] = true
			hours = append(hours, r.ForecastHours)
		}
	}
	sort.Ints(hours)
	return hours
}

func anyMissingRMW(forecast Table, rows []int) bool {
	for _, i := range rows {
		if missingValue(forecast[i].RadiusOfMaximumWinds) {
			return true
		}
	}
	return false
}

func rowsAtLeadHour(forecast Table, hour int) []int {
	var rows []int
	for i, r := range forecast {
		if r.ForecastHours == hour {
			rows = append(rows, i)
		}
	}
	return rows
}

func firstFinite(forecast Table, rows []int, field func(Record) float64) float64 {
	for _, i := range rows {
		if v := field(forecast[i]); !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

// quadrantMeanRadii returns the quadrant-mean isotach radius per
// wind-speed bin present at a lead hour, ordered by ascending bin.
func quadrantMeanRadii(forecast Table, rows []int) []float64 {
	byBin := make(map[float64]float64)
	var bins []float64
	for _, i := range rows {
		mean := forecast[i].MeanQuadrantRadius()
		if math.IsNaN(mean) || mean <= 0 {
			continue
		}
		bin := forecast[i].IsotachRadius
		if _, ok := byBin[bin]; !ok {
			bins = append(bins, bin)
		}
		byBin[bin] = mean
	}
	sort.Float64s(bins)

	radii := make([]float64, 0, len(bins))
	for _, bin := range bins {
		radii = append(radii, byBin[bin])
	}
	return radii
}
