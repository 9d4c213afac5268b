package track

import "math"

// DefaultAirDensity is the air density ρ (kg/m³) used by the Holland
// wind-pressure profile when none is given.
const DefaultAirDensity = 1.15

// HollandBRelation relates maximum sustained wind speed, background
// pressure and central pressure through the Holland B shape parameter.
// The functions are pure; callers must avoid background == central
// pressure, which divides by zero (the corrector filters the resulting
// non-finite values instead of failing).
type HollandBRelation struct {
	Rho float64
}

// NewHollandBRelation returns a relation with the given air density,
// or the default 1.15 when rho is zero.
func NewHollandBRelation(rho float64) HollandBRelation {
	if rho == 0 {
		rho = DefaultAirDensity
	}
	return HollandBRelation{Rho: rho}
}

// HollandB computes B = Vmax² · ρ · e / (Pbg − Pc).
func (h HollandBRelation) HollandB(maxWindSpeed, backgroundPressure, centralPressure float64) float64 {
	return maxWindSpeed * maxWindSpeed * h.Rho * math.E / (backgroundPressure - centralPressure)
}

// CentralPressure computes Pc = Pbg − Vmax² · ρ · e / B.
func (h HollandBRelation) CentralPressure(maxWindSpeed, backgroundPressure, hollandB float64) float64 {
	return backgroundPressure - maxWindSpeed*maxWindSpeed*h.Rho*math.E/hollandB
}

// MaxWindSpeed computes Vmax = sqrt(B · (Pbg − Pc) / (ρ · e)).
func (h HollandBRelation) MaxWindSpeed(hollandB, backgroundPressure, centralPressure float64) float64 {
	return math.Sqrt(hollandB * (backgroundPressure - centralPressure) / (h.Rho * math.E))
}
