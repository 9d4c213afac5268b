package track

import (
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/vortex-track/internal/geo"
)

// Record is one line of an ATCF deck after canonicalization: Datetime is
// the valid time of the record (cycle start plus forecast hour for
// forecast advisories), TrackStartTime identifies the forecast cycle the
// record belongs to. Missing numeric fields are NaN, never zero: several
// ATCF columns legitimately hold zero (forecast hour, direction), while
// NaN unambiguously means "not reported".
type Record struct {
	Basin          string
	StormNumber    int
	Datetime       time.Time
	TrackStartTime time.Time
	AdvisoryNumber string
	Advisory       AdvisoryCode
	ForecastHours  int

	Latitude  float64
	Longitude float64

	MaxSustainedWindSpeed float64 // knots
	CentralPressure       float64 // hPa
	DevelopmentLevel      string

	// Quadrant radii for the wind-speed bin named by IsotachRadius
	// (34, 50 or 64 kt), in nautical miles, clockwise from northeast.
	IsotachRadius       float64
	IsotachQuadrantCode string
	IsotachRadiusNEQ    float64
	IsotachRadiusSEQ    float64
	IsotachRadiusSWQ    float64
	IsotachRadiusNWQ    float64

	BackgroundPressure       float64 // hPa
	RadiusOfLastClosedIsobar float64 // nmi
	RadiusOfMaximumWinds     float64 // nmi
	GustSpeed                float64 // knots
	EyeDiameter              float64 // nmi
	SubregionCode            string
	MaximumWaveHeight        float64
	ForecasterInitials       string

	Direction float64 // degrees clockwise from north, derived
	Speed     float64 // meters per second, derived
	Name      string
	UserData  string
}

// Position returns the record's location as a WGS84 point.
func (r Record) Position() geo.Point {
	return geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}
}

// QuadrantRadii returns the four isotach radii in nautical miles,
// clockwise from the northeast quadrant.
func (r Record) QuadrantRadii() [4]float64 {
	return [4]float64{r.IsotachRadiusNEQ, r.IsotachRadiusSEQ, r.IsotachRadiusSWQ, r.IsotachRadiusNWQ}
}

// MeanQuadrantRadius averages the positive, finite quadrant radii.
// Returns NaN when no quadrant reports a usable radius.
func (r Record) MeanQuadrantRadius() float64 {
	sum, n := 0.0, 0
	for _, radius := range r.QuadrantRadii() {
		if !math.IsNaN(radius) && radius > 0 {
			sum += radius
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Equal compares two records field by field, treating NaN as equal to
// NaN so that untouched missing values compare as unchanged.
func (r Record) Equal(other Record) bool {
	return r.Basin == other.Basin &&
		r.StormNumber == other.StormNumber &&
		r.Datetime.Equal(other.Datetime) &&
		r.TrackStartTime.Equal(other.TrackStartTime) &&
		r.AdvisoryNumber == other.AdvisoryNumber &&
		r.Advisory == other.Advisory &&
		r.ForecastHours == other.ForecastHours &&
		floatEq(r.Latitude, other.Latitude) &&
		floatEq(r.Longitude, other.Longitude) &&
		floatEq(r.MaxSustainedWindSpeed, other.MaxSustainedWindSpeed) &&
		floatEq(r.CentralPressure, other.CentralPressure) &&
		r.DevelopmentLevel == other.DevelopmentLevel &&
		floatEq(r.IsotachRadius, other.IsotachRadius) &&
		r.IsotachQuadrantCode == other.IsotachQuadrantCode &&
		floatEq(r.IsotachRadiusNEQ, other.IsotachRadiusNEQ) &&
		floatEq(r.IsotachRadiusSEQ, other.IsotachRadiusSEQ) &&
		floatEq(r.IsotachRadiusSWQ, other.IsotachRadiusSWQ) &&
		floatEq(r.IsotachRadiusNWQ, other.IsotachRadiusNWQ) &&
		floatEq(r.BackgroundPressure, other.BackgroundPressure) &&
		floatEq(r.RadiusOfLastClosedIsobar, other.RadiusOfLastClosedIsobar) &&
		floatEq(r.RadiusOfMaximumWinds, other.RadiusOfMaximumWinds) &&
		floatEq(r.GustSpeed, other.GustSpeed) &&
		floatEq(r.EyeDiameter, other.EyeDiameter) &&
		r.SubregionCode == other.SubregionCode &&
		floatEq(r.MaximumWaveHeight, other.MaximumWaveHeight) &&
		r.ForecasterInitials == other.ForecasterInitials &&
		floatEq(r.Direction, other.Direction) &&
		floatEq(r.Speed, other.Speed) &&
		r.Name == other.Name &&
		r.UserData == other.UserData
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// Table is the canonical record collection, sorted by (valid datetime,
// advisory). Two advisories may share a timestamp; duplicates within an
// advisory carry same-instant isotach rows.
type Table []Record

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// SortCanonical sorts the table in place by (datetime, advisory) with a
// stable sort so same-key rows keep their relative order.
func (t Table) SortCanonical() {
	sort.SliceStable(t, func(i, j int) bool {
		if !t[i].Datetime.Equal(t[j].Datetime) {
			return t[i].Datetime.Before(t[j].Datetime)
		}
		return t[i].Advisory < t[j].Advisory
	})
}

// Window returns the rows whose valid time falls in [start, end],
// inclusive on both ends. Zero bounds are open.
func (t Table) Window(start, end time.Time) Table {
	out := make(Table, 0, len(t))
	for _, r := range t {
		if !start.IsZero() && r.Datetime.Before(start) {
			continue
		}
		if !end.IsZero() && r.Datetime.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Advisories lists the distinct advisory codes in order of first appearance.
func (t Table) Advisories() []AdvisoryCode {
	seen := make(map[AdvisoryCode]bool)
	var out []AdvisoryCode
	for _, r := range t {
		if !seen[r.Advisory] {
			seen[r.Advisory] = true
			out = append(out, r.Advisory)
		}
	}
	return out
}

// Equal reports row-for-row equality of two tables.
func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !t[i].Equal(other[i]) {
			return false
		}
	}
	return true
}
