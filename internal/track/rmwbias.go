package track

// RegressionCoefficients parameterize the radius-of-maximum-winds
// regression at one forecast lead hour, for a given count of available
// isotach radius bases. The model is log-linear in the intercept,
// latitude and seed terms and a power law in the wind and radius bases:
//
//	ln(RMW) = Intercept + Latitude·lat + Seed·ln(RMW₀)
//	        + Wind·ln(Vmax) + Σ Radii[i]·ln(rᵢ)
//
// with RMW₀ the reference-track seed and rᵢ the ascending-bin
// quadrant-mean isotach radii.
type RegressionCoefficients struct {
	Intercept float64
	Latitude  float64
	Seed      float64
	Wind      float64
	Radii     []float64
}

// BiasTables hold the lead-hour-indexed corrections applied before the
// RMW regression: additive wind-speed and latitude biases and a
// multiplicative bias on quadrant-mean radii, plus per-lead-hour
// regression coefficients keyed by the number of available radii (0–3).
// The tables are static lookup data, constructed once and passed
// explicitly into the corrector.
type BiasTables struct {
	LeadHours []int
	WindSpeed map[int]float64
	Radii     map[int]float64
	Latitude  map[int]float64

	Coefficients map[int]map[int]RegressionCoefficients
}

// NearestLead snaps an arbitrary forecast hour onto the closest tabled
// lead hour, preferring the earlier one on ties.
func (b *BiasTables) NearestLead(hour int) int {
	best := b.LeadHours[0]
	for _, lead := range b.LeadHours {
		d, bd := abs(hour-lead), abs(hour-best)
		if d < bd {
			best = lead
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DefaultBiasTables returns the built-in correction tables for the
// NHC official forecast, indexed at the standard verification hours.
func DefaultBiasTables() *BiasTables {
	leads := []int{0, 12, 24, 36, 48, 60, 72, 96, 120}

	b := &BiasTables{
		LeadHours: leads,
		WindSpeed: map[int]float64{
			0: 0.0, 12: 1.1, 24: 1.9, 36: 2.6, 48: 3.1,
			60: 3.4, 72: 3.8, 96: 4.1, 120: 4.6,
		},
		Radii: map[int]float64{
			0: 1.00, 12: 0.98, 24: 0.96, 36: 0.95, 48: 0.94,
			60: 0.93, 72: 0.92, 96: 0.90, 120: 0.89,
		},
		Latitude: map[int]float64{
			0: 0.0, 12: -0.1, 24: -0.2, 36: -0.3, 48: -0.4,
			60: -0.5, 72: -0.6, 96: -0.8, 120: -1.0,
		},
		Coefficients: make(map[int]map[int]RegressionCoefficients),
	}

	// Coefficient growth with lead hour reflects the weakening pull of
	// the analyzed seed and the growing weight of forecast radii.
	for i, lead := range leads {
		decay := float64(i) / float64(len(leads)-1)
		seed := 0.70 - 0.45*decay
		b.Coefficients[lead] = map[int]RegressionCoefficients{
			0: {Intercept: 1.10 + 0.50*decay, Latitude: 0.012, Seed: seed, Wind: 0.25},
			1: {Intercept: 0.55 + 0.35*decay, Latitude: 0.009, Seed: seed, Wind: -0.12, Radii: []float64{0.38}},
			2: {Intercept: 0.40 + 0.30*decay, Latitude: 0.008, Seed: seed, Wind: -0.18, Radii: []float64{0.22, 0.24}},
			3: {Intercept: 0.30 + 0.28*decay, Latitude: 0.007, Seed: seed, Wind: -0.22, Radii: []float64{0.15, 0.17, 0.20}},
		}
	}

	return b
}
