package track

import (
	"math"
	"time"

	"github.com/couchcryptid/vortex-track/internal/geo"
)

// EstimateVelocity derives translation speed (m/s) and direction of
// motion (degrees, [0, 360)) for every record and returns a new table;
// the input is not mutated.
//
// The pass runs per advisory over the whole advisory slice, not per
// forecast cycle. For each record the reference predecessor is the
// previous record by index; when that predecessor's valid time lies
// after the current record's (a forecast cycle restarted the index
// order), the predecessor becomes the nearest record across the whole
// advisory with a strictly earlier valid time, or failing that the
// nearest strictly later one. This whole-advisory search mirrors the
// reference behavior and is pinned by tests; do not narrow it to the
// current cycle.
//
// Same-instant duplicate rows and the first record of each advisory are
// covered by a forward then backward fill; anything still missing ends
// up with speed 0 and direction 0.
func EstimateVelocity(data Table) Table {
	out := data.Clone()

	for _, advisory := range out.Advisories() {
		var idx []int
		for i, r := range out {
			if r.Advisory == advisory {
				idx = append(idx, i)
			}
		}

		// The derived velocity replaces whatever the deck carried in
		// its DIR/SPEED columns.
		for _, i := range idx {
			out[i].Speed = math.NaN()
			out[i].Direction = math.NaN()
		}

		// First occurrence of each distinct valid time, in index order.
		var unique []int
		seen := make(map[time.Time]bool)
		for _, i := range idx {
			if !seen[out[i].Datetime] {
				seen[out[i].Datetime] = true
				unique = append(unique, i)
			}
		}

		for k := 1; k < len(unique); k++ {
			cur := unique[k]
			pred := unique[k-1]

			if out[pred].Datetime.After(out[cur].Datetime) {
				pred = findReferencePredecessor(out, idx, cur)
				if pred < 0 {
					continue
				}
			}

			speed, bearing, ok := velocityBetween(out[pred], out[cur])
			if !ok {
				continue
			}
			out[cur].Speed = speed
			out[cur].Direction = bearing
		}

		fillVelocity(out, idx)
	}

	return out
}

// findReferencePredecessor searches the whole advisory for the record
// nearest in time to out[cur] with a strictly smaller valid time, else
// the nearest with a strictly larger one. Returns -1 when the advisory
// holds no other distinct valid time.
func findReferencePredecessor(out Table, idx []int, cur int) int {
	target := out[cur].Datetime
	before, after := -1, -1
	for _, i := range idx {
		if i == cur {
			continue
		}
		dt := out[i].Datetime
		switch {
		case dt.Before(target):
			if before < 0 || dt.After(out[before].Datetime) {
				before = i
			}
		case dt.After(target):
			if after < 0 || dt.Before(out[after].Datetime) {
				after = i
			}
		}
	}
	if before >= 0 {
		return before
	}
	return after
}

// velocityBetween computes speed and direction of motion between a
// reference record and the current one. For an earlier reference the
// bearing points from the reference toward the current position; for
// the corrective later-reference case it points from the current
// position toward the reference, keeping the bearing aligned with the
// direction of travel.
func velocityBetween(ref, cur Record) (speed, bearing float64, ok bool) {
	dt := cur.Datetime.Sub(ref.Datetime)
	if dt == 0 {
		return 0, 0, false
	}

	var azimuth, dist float64
	if dt > 0 {
		azimuth, _, dist = geo.Inverse(ref.Position(), cur.Position())
	} else {
		azimuth, _, dist = geo.Inverse(cur.Position(), ref.Position())
		dt = -dt
	}

	return dist / dt.Seconds(), geo.NormalizeBearing(azimuth), true
}

// fillVelocity forward-fills then backward-fills speed and direction
// across an advisory's records, defaulting stragglers to zero.
func fillVelocity(out Table, idx []int) {
	lastSpeed, lastDir := math.NaN(), math.NaN()
	for _, i := range idx {
		if math.IsNaN(out[i].Speed) {
			out[i].Speed = lastSpeed
		} else {
			lastSpeed = out[i].Speed
		}
		if math.IsNaN(out[i].Direction) {
			out[i].Direction = lastDir
		} else {
			lastDir = out[i].Direction
		}
	}

	lastSpeed, lastDir = math.NaN(), math.NaN()
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		if math.IsNaN(out[i].Speed) {
			out[i].Speed = lastSpeed
		} else {
			lastSpeed = out[i].Speed
		}
		if math.IsNaN(out[i].Direction) {
			out[i].Direction = lastDir
		} else {
			lastDir = out[i].Direction
		}
	}

	for _, i := range idx {
		if math.IsNaN(out[i].Speed) {
			out[i].Speed = 0
		}
		if math.IsNaN(out[i].Direction) {
			out[i].Direction = 0
		}
	}
}
