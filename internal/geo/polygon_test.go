package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(lat, lon, side float64) Polygon {
	return Polygon{
		{Latitude: lat, Longitude: lon},
		{Latitude: lat, Longitude: lon + side},
		{Latitude: lat + side, Longitude: lon + side},
		{Latitude: lat + side, Longitude: lon},
	}
}

func TestPolygonClosed(t *testing.T) {
	p := square(0, 0, 1)
	closed := p.Closed()
	require.Len(t, closed, 5)
	assert.Equal(t, closed[0], closed[4])

	// closing an already-closed ring is a no-op
	assert.Len(t, closed.Closed(), 5)
	assert.True(t, Polygon(nil).IsEmpty())
}

func TestPolygonWKTRoundTrip(t *testing.T) {
	p := square(10, 20, 2)
	parsed, err := ParsePolygonWKT("POLYGON" + p.WKT())
	require.NoError(t, err)
	require.Len(t, parsed, 5)
	assert.InDelta(t, 10.0, parsed[0].Latitude, 1e-6)
	assert.InDelta(t, 20.0, parsed[0].Longitude, 1e-6)
}

func TestParsePolygonWKT(t *testing.T) {
	t.Run("multipolygon takes the first ring", func(t *testing.T) {
		wkt := "MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))"
		ring, err := ParsePolygonWKT(wkt)
		require.NoError(t, err)
		require.Len(t, ring, 4)
		assert.Equal(t, 0.0, ring[0].Longitude)
	})

	t.Run("unsupported geometry", func(t *testing.T) {
		_, err := ParsePolygonWKT("LINESTRING(0 0, 1 1)")
		assert.Error(t, err)
	})
}

func TestUnionPolygons(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got, err := UnionPolygons(nil)
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("single polygon passes through", func(t *testing.T) {
		p := square(0, 0, 1)
		got, err := UnionPolygons([]Polygon{p})
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("overlapping squares merge into one ring", func(t *testing.T) {
		got, err := UnionPolygons([]Polygon{square(0, 0, 2), square(1, 1, 2)})
		require.NoError(t, err)
		require.False(t, got.IsEmpty())
		assert.True(t, got.IsValid())

		// the union spans both squares
		minLat, maxLat := got[0].Latitude, got[0].Latitude
		for _, pt := range got {
			if pt.Latitude < minLat {
				minLat = pt.Latitude
			}
			if pt.Latitude > maxLat {
				maxLat = pt.Latitude
			}
		}
		assert.InDelta(t, 0.0, minLat, 1e-6)
		assert.InDelta(t, 3.0, maxLat, 1e-6)
	})

	t.Run("disjoint squares coalesce via buffer", func(t *testing.T) {
		got, err := UnionPolygons([]Polygon{square(0, 0, 1), square(5, 5, 1)})
		require.NoError(t, err)
		assert.False(t, got.IsEmpty())
	})
}

func TestConvexHull(t *testing.T) {
	points := []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 4},
		{Latitude: 4, Longitude: 4},
		{Latitude: 4, Longitude: 0},
		{Latitude: 2, Longitude: 2}, // interior
		{Latitude: 0, Longitude: 2}, // collinear on an edge
	}
	hull := ConvexHull(points)

	assert.Len(t, hull, 4)
	assert.True(t, hull.IsValid())

	for _, corner := range []Point{{0, 0}, {0, 4}, {4, 4}, {4, 0}} {
		assert.Contains(t, hull, corner)
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	two := []Point{{Latitude: 0, Longitude: 0}, {Latitude: 1, Longitude: 1}}
	assert.Len(t, ConvexHull(two), 2)
}

func TestPolygonFeatures(t *testing.T) {
	p := square(0, 0, 1)
	feature := PolygonFeature(p)
	require.NotNil(t, feature.Geometry)
	assert.True(t, feature.Geometry.IsPolygon())
	assert.Len(t, feature.Geometry.Polygon[0], 5)

	line := LineStringFeature([]Point{{0, 0}, {1, 1}, {2, 2}})
	require.NotNil(t, line.Geometry)
	assert.True(t, line.Geometry.IsLineString())
	assert.Len(t, line.Geometry.LineString, 3)
}
