package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/vortex-track/internal/geo"
	"github.com/couchcryptid/vortex-track/internal/track"
)

// BuildProducts assembles the publishable product set for a loaded
// store: one linestring message per track and one swath message per
// cycle for each isotach wind-speed bin that yields geometry.
func BuildProducts(ctx context.Context, store *track.Store, computedAt time.Time) ([]ProductMessage, error) {
	stormID := store.Config().StormID

	lines, err := store.Linestrings(ctx)
	if err != nil {
		return nil, fmt.Errorf("build track products: %w", err)
	}

	var products []ProductMessage
	for advisory, byCycle := range lines {
		for cycleKey, line := range byCycle {
			payload, err := featurePayload(geo.LineStringFeature(line))
			if err != nil {
				return nil, err
			}
			products = append(products, ProductMessage{
				StormID:    stormID,
				Product:    "track",
				Advisory:   string(advisory),
				Cycle:      cycleKey,
				ComputedAt: computedAt,
				GeoJSON:    payload,
			})
		}
	}

	for _, windSpeed := range []float64{34, 50, 64} {
		swaths, err := store.WindSwaths(ctx, windSpeed, track.DefaultSegments)
		if err != nil {
			return nil, fmt.Errorf("build swath products: %w", err)
		}
		for advisory, byCycle := range swaths {
			for cycleKey, polygon := range byCycle {
				feature := geo.PolygonFeature(polygon)
				feature.SetProperty("wind_speed", windSpeed)
				payload, err := featurePayload(feature)
				if err != nil {
					return nil, err
				}
				products = append(products, ProductMessage{
					StormID:    stormID,
					Product:    "swaths",
					Advisory:   string(advisory),
					Cycle:      cycleKey,
					ComputedAt: computedAt,
					GeoJSON:    payload,
				})
			}
		}
	}

	return products, nil
}

func featurePayload(feature *geojson.Feature) (json.RawMessage, error) {
	data, err := json.Marshal(feature)
	if err != nil {
		return nil, fmt.Errorf("encode product feature: %w", err)
	}
	return data, nil
}
