// Package geo provides the WGS84 geodesic math and polygon plumbing used
// to turn storm track records into isotach and swath geometry. Polygon
// set operations (union, buffering) are delegated to GEOS via WKT; the
// rest is plain coordinate arithmetic.
package geo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/twpayne/go-geos"
)

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Polygon is a simple polygon's exterior ring. The ring is implicitly
// closed; the first vertex is not required to be repeated at the end.
type Polygon []Point

// IsEmpty reports whether the polygon has no vertices.
func (p Polygon) IsEmpty() bool { return len(p) == 0 }

// Closed returns the ring with the first vertex repeated at the end.
func (p Polygon) Closed() Polygon {
	if len(p) == 0 {
		return p
	}
	if p[0] == p[len(p)-1] {
		return p
	}
	out := make(Polygon, len(p)+1)
	copy(out, p)
	out[len(p)] = p[0]
	return out
}

// WKT renders the ring as a parenthesized coordinate list, longitude
// first, suitable for embedding in POLYGON or MULTIPOLYGON text.
func (p Polygon) WKT() string {
	closed := p.Closed()
	coords := make([]string, len(closed))
	for i, pt := range closed {
		coords[i] = fmt.Sprintf("%f %f", pt.Longitude, pt.Latitude)
	}
	return fmt.Sprintf("((%s))", strings.Join(coords, ", "))
}

// MultiPolygonWKT builds a MULTIPOLYGON WKT string from exterior rings.
func MultiPolygonWKT(polygons []Polygon) string {
	parts := make([]string, len(polygons))
	for i, poly := range polygons {
		parts[i] = poly.WKT()
	}
	return fmt.Sprintf("MULTIPOLYGON(%s)", strings.Join(parts, ", "))
}

// ParsePolygonWKT extracts the exterior ring from POLYGON text. For
// MULTIPOLYGON input the first component polygon's exterior ring is
// returned; interior rings are dropped.
func ParsePolygonWKT(wkt string) (Polygon, error) {
	wkt = strings.TrimSpace(wkt)
	switch {
	case strings.HasPrefix(wkt, "POLYGON"):
		wkt = strings.TrimPrefix(wkt, "POLYGON")
	case strings.HasPrefix(wkt, "MULTIPOLYGON"):
		wkt = strings.TrimPrefix(wkt, "MULTIPOLYGON")
	default:
		return nil, fmt.Errorf("parse wkt: unsupported geometry %.24q", wkt)
	}

	// Exterior ring is everything up to the first closing parenthesis
	// after the deepest opening run.
	start := strings.IndexFunc(wkt, func(r rune) bool { return r != '(' && r != ' ' })
	if start < 0 {
		return nil, fmt.Errorf("parse wkt: empty geometry")
	}
	end := strings.IndexAny(wkt[start:], ")")
	if end < 0 {
		return nil, fmt.Errorf("parse wkt: unterminated ring")
	}

	var ring Polygon
	for _, pair := range strings.Split(wkt[start:start+end], ",") {
		fields := strings.Fields(pair)
		if len(fields) != 2 {
			return nil, fmt.Errorf("parse wkt: invalid coordinate pair %q", pair)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("parse wkt: longitude: %w", err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse wkt: latitude: %w", err)
		}
		ring = append(ring, Point{Latitude: lat, Longitude: lon})
	}
	return ring, nil
}

// UnionPolygons merges a set of possibly-overlapping rings into one
// simple polygon. Degenerate results that remain disjoint after the
// union are coalesced with a minimal buffer (1e-10 degrees).
func UnionPolygons(polygons []Polygon) (Polygon, error) {
	switch len(polygons) {
	case 0:
		return nil, nil
	case 1:
		return polygons[0], nil
	}

	geom, err := geos.NewGeomFromWKT(MultiPolygonWKT(polygons))
	if err != nil {
		return nil, fmt.Errorf("union: %w", err)
	}
	merged := geom.Buffer(0, 32)
	if merged.NumGeometries() > 1 {
		merged = merged.Buffer(1e-10, 8)
	}
	return ParsePolygonWKT(merged.ToWKT())
}

// ConvexHull computes the convex hull of a point set with a Graham
// scan over (longitude, latitude) coordinates.
func ConvexHull(points []Point) Polygon {
	n := len(points)
	if n < 3 {
		return Polygon(points)
	}

	pts := make([]Point, n)
	copy(pts, points)

	p0 := pts[0]
	for _, p := range pts[1:] {
		if p.Latitude < p0.Latitude ||
			(p.Latitude == p0.Latitude && p.Longitude < p0.Longitude) {
			p0 = p
		}
	}

	sort.Slice(pts, func(i, j int) bool {
		o := orientation(p0, pts[i], pts[j])
		if o == 0 {
			return planarDist(p0, pts[i]) < planarDist(p0, pts[j])
		}
		return o < 0
	})

	hull := Polygon{pts[0], pts[1]}
	for _, p := range pts[2:] {
		for len(hull) > 1 && orientation(hull[len(hull)-2], hull[len(hull)-1], p) >= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

func orientation(p, q, r Point) int {
	v := (q.Longitude-p.Longitude)*(r.Latitude-q.Latitude) -
		(q.Latitude-p.Latitude)*(r.Longitude-q.Longitude)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func planarDist(a, b Point) float64 {
	dLat := b.Latitude - a.Latitude
	dLon := b.Longitude - a.Longitude
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// IsValid reports whether the ring forms a valid polygon according to
// GEOS: closed, at least three distinct vertices, exterior ring free of
// self-intersection.
func (p Polygon) IsValid() bool {
	if len(p) < 3 {
		return false
	}
	geom, err := geos.NewGeomFromWKT("POLYGON" + p.WKT())
	if err != nil {
		return false
	}
	return geom.IsValid()
}
