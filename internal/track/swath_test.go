package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/vortex-track/internal/geo"
)

func TestWindSwaths(t *testing.T) {
	mk := func(hour int, lat float64) Record {
		r := withRadii(bestRecord(testTime(28, hour), lat, -85.0), 34, 100, 90, 80, 110)
		r.Direction = 0
		r.Speed = 5
		r.TrackStartTime = testTime(28, 0)
		return r
	}

	t.Run("fewer than two isotachs yields no swath", func(t *testing.T) {
		swaths, err := WindSwaths(Table{mk(0, 25.0)}, 34, DefaultSegments)
		require.NoError(t, err)
		assert.Empty(t, swaths)
	})

	t.Run("two isotachs produce one hull", func(t *testing.T) {
		table := Table{mk(0, 25.0), mk(6, 26.0)}
		swaths, err := WindSwaths(table, 34, DefaultSegments)
		require.NoError(t, err)

		byCycle := swaths[AdvisoryBEST]
		require.Len(t, byCycle, 1)
		swath := byCycle[CycleKey(testTime(28, 0))]
		require.False(t, swath.IsEmpty())
		assert.True(t, swath.IsValid())

		// the hull spans both centers
		minLat, maxLat := swath[0].Latitude, swath[0].Latitude
		for _, p := range swath {
			if p.Latitude < minLat {
				minLat = p.Latitude
			}
			if p.Latitude > maxLat {
				maxLat = p.Latitude
			}
		}
		assert.Less(t, minLat, 25.0)
		assert.Greater(t, maxLat, 26.0)

		// with a single pair the swath is exactly the convex hull of
		// both isotach rings
		isotachs, err := Isotachs(table, 34, DefaultSegments)
		require.NoError(t, err)
		byTime := isotachs[AdvisoryBEST][CycleKey(testTime(28, 0))]
		pair := append([]geo.Point{}, byTime[testTime(28, 0)].Closed()...)
		pair = append(pair, byTime[testTime(28, 6)].Closed()...)
		assert.Equal(t, geo.ConvexHull(pair), swath)
	})

	t.Run("invalid wind speed propagates", func(t *testing.T) {
		_, err := WindSwaths(Table{mk(0, 25.0)}, 45, DefaultSegments)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
