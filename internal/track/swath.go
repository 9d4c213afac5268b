package track

import (
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/vortex-track/internal/geo"
)

// WindSwaths computes the cumulative wind-extent polygon per
// (advisory, cycle): the union of convex hulls of each temporally
// consecutive isotach pair. Pairwise hulls preserve track curvature
// that a single global hull would flatten. A track with fewer than two
// isotach polygons yields no swath.
func WindSwaths(data Table, windSpeed float64, segments int) (SwathSet, error) {
	isotachs, err := Isotachs(data, windSpeed, segments)
	if err != nil {
		return nil, err
	}

	swaths := make(SwathSet)
	for advisory, byCycle := range isotachs {
		for cycleKey, byTime := range byCycle {
			ordered := orderedIsotachs(byTime)
			if len(ordered) < 2 {
				continue
			}

			hulls := make([]geo.Polygon, 0, len(ordered)-1)
			for i := 0; i < len(ordered)-1; i++ {
				pair := append([]geo.Point{}, ordered[i].Closed()...)
				pair = append(pair, ordered[i+1].Closed()...)
				hulls = append(hulls, geo.ConvexHull(pair))
			}

			swath, err := geo.UnionPolygons(hulls)
			if err != nil {
				return nil, fmt.Errorf("swath union for %s/%s: %w", advisory, cycleKey, err)
			}
			if swath.IsEmpty() {
				continue
			}

			if swaths[advisory] == nil {
				swaths[advisory] = make(map[string]geo.Polygon)
			}
			swaths[advisory][cycleKey] = swath
		}
	}

	return swaths, nil
}

func orderedIsotachs(byTime map[time.Time]geo.Polygon) []geo.Polygon {
	times := make([]time.Time, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	out := make([]geo.Polygon, 0, len(times))
	for _, t := range times {
		out = append(out, byTime[t])
	}
	return out
}
