package track

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/vortex-track/internal/geo"
)

// MetersPerNauticalMile converts ATCF radii to meters.
const MetersPerNauticalMile = 1852.0

// DefaultSegments is the number of discretization points per quadrant
// arc when building isotach polygons.
const DefaultSegments = 91

// IsotachSet holds one polygon per (advisory, cycle, valid time):
// the locus of a wind-speed threshold at that instant. Records whose
// quadrants all degenerate contribute no entry.
type IsotachSet map[AdvisoryCode]map[string]map[time.Time]geo.Polygon

// SwathSet holds one cumulative wind-extent polygon per
// (advisory, cycle).
type SwathSet map[AdvisoryCode]map[string]geo.Polygon

// ValidIsotachSpeed reports whether an isotach wind-speed threshold is
// one of the ATCF bins (34, 50 or 64 knots).
func ValidIsotachSpeed(windSpeed float64) bool {
	return windSpeed == 34 || windSpeed == 50 || windSpeed == 64
}

// Isotachs builds the isotach polygon for the given wind-speed bin at
// every valid time in the table. Velocity must already be estimated:
// each record's direction orients its quadrants. Wind speeds outside
// {34, 50, 64} abort with ErrInvalidArgument and no partial result.
func Isotachs(data Table, windSpeed float64, segments int) (IsotachSet, error) {
	if !ValidIsotachSpeed(windSpeed) {
		return nil, fmt.Errorf("%w: isotach wind speed %v not one of [34 50 64]", ErrInvalidArgument, windSpeed)
	}
	if segments < 2 {
		segments = DefaultSegments
	}

	isotachs := make(IsotachSet)
	for _, r := range data {
		if r.IsotachRadius != windSpeed {
			continue
		}

		polygon, err := recordIsotach(r, segments)
		if err != nil {
			return nil, err
		}
		if polygon.IsEmpty() {
			continue
		}

		byCycle, ok := isotachs[r.Advisory]
		if !ok {
			byCycle = make(map[string]map[time.Time]geo.Polygon)
			isotachs[r.Advisory] = byCycle
		}
		key := CycleKey(r.TrackStartTime)
		if byCycle[key] == nil {
			byCycle[key] = make(map[time.Time]geo.Polygon)
		}
		byCycle[key][r.Datetime] = polygon
	}

	return isotachs, nil
}

// recordIsotach builds one record's isotach from its quadrant radii:
// four 90° sectors in NE, SE, SW, NW order, rotated so the first sector
// starts at 360−direction, each sampled as a geodesic arc and closed
// through the storm center, then unioned.
func recordIsotach(r Record, segments int) (geo.Polygon, error) {
	center := r.Position()
	rotation := 360 - r.Direction

	var sectors []geo.Polygon
	startAngle := rotation
	for _, radiusNM := range r.QuadrantRadii() {
		radius := radiusNM * MetersPerNauticalMile
		if math.IsNaN(radius) || radius <= 1 {
			// zero-extent quadrant, not an error
			startAngle += 90
			continue
		}

		sector := make(geo.Polygon, 0, segments+2)
		sector = append(sector, center)
		for s := 0; s < segments; s++ {
			bearing := startAngle + 90*float64(s)/float64(segments-1)
			sector = append(sector, geo.Forward(center, bearing, radius))
		}
		sector = append(sector, center)
		sectors = append(sectors, sector)

		startAngle += 90
	}

	if len(sectors) == 0 {
		return nil, nil
	}
	polygon, err := geo.UnionPolygons(sectors)
	if err != nil {
		return nil, fmt.Errorf("isotach union at %s: %w", r.Datetime.Format(time.RFC3339), err)
	}
	return polygon, nil
}
