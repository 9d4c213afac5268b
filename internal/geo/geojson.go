package geo

import geojson "github.com/paulmach/go.geojson"

// PolygonFeature converts an exterior ring into a GeoJSON polygon feature.
func PolygonFeature(p Polygon) *geojson.Feature {
	closed := p.Closed()
	ring := make([][]float64, 0, len(closed))
	for _, pt := range closed {
		ring = append(ring, []float64{pt.Longitude, pt.Latitude})
	}
	return geojson.NewPolygonFeature([][][]float64{ring})
}

// LineStringFeature converts an ordered point sequence into a GeoJSON
// linestring feature.
func LineStringFeature(points []Point) *geojson.Feature {
	coords := make([][]float64, 0, len(points))
	for _, pt := range points {
		coords = append(coords, []float64{pt.Longitude, pt.Latitude})
	}
	return geojson.NewLineStringFeature(coords)
}
