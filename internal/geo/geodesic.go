package geo

import "math"

// WGS84 ellipsoid parameters.
const (
	wgs84A = 6378137.0           // semi-major axis, meters
	wgs84F = 1 / 298.257223563   // flattening
	wgs84B = wgs84A * (1 - wgs84F)
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// NormalizeBearing wraps an azimuth in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Forward solves the direct geodesic problem on the WGS84 ellipsoid
// (Vincenty): starting at p, travel dist meters along the initial
// azimuth (degrees clockwise from north) and return the destination.
func Forward(p Point, azimuthDeg, dist float64) Point {
	if dist == 0 {
		return p
	}

	lat1 := degToRad(p.Latitude)
	lon1 := degToRad(p.Longitude)
	alpha1 := degToRad(azimuthDeg)

	sinAlpha1, cosAlpha1 := math.Sincos(alpha1)

	tanU1 := (1 - wgs84F) * math.Tan(lat1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := dist / (wgs84B * a)
	var sinSigma, cosSigma, cos2SigmaM float64
	for i := 0; i < 100; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := b * sinSigma * (cos2SigmaM + b/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		sigmaNext := dist/(wgs84B*a) + deltaSigma
		if math.Abs(sigmaNext-sigma) < 1e-12 {
			sigma = sigmaNext
			break
		}
		sigma = sigmaNext
	}
	cos2SigmaM = math.Cos(2*sigma1 + sigma)
	sinSigma, cosSigma = math.Sincos(sigma)

	tmp := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	lat2 := math.Atan2(sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-wgs84F)*math.Sqrt(sinAlpha*sinAlpha+tmp*tmp))
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
	l := lambda - (1-c)*wgs84F*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
	lon2 := lon1 + l

	return Point{
		Latitude:  radToDeg(lat2),
		Longitude: math.Mod(radToDeg(lon2)+540, 360) - 180,
	}
}

// Inverse solves the inverse geodesic problem on the WGS84 ellipsoid
// (Vincenty): it returns the initial azimuth at p1 toward p2, the final
// azimuth at p2, and the distance in meters. Azimuths are degrees
// clockwise from north in [0, 360). Falls back to a spherical solution
// for the rare nearly-antipodal pairs where Vincenty fails to converge.
func Inverse(p1, p2 Point) (azimuth1, azimuth2, dist float64) {
	lat1 := degToRad(p1.Latitude)
	lat2 := degToRad(p2.Latitude)
	l := degToRad(p2.Longitude - p1.Longitude)

	tanU1 := (1 - wgs84F) * math.Tan(lat1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1
	tanU2 := (1 - wgs84F) * math.Tan(lat2)
	cosU2 := 1 / math.Sqrt(1+tanU2*tanU2)
	sinU2 := tanU2 * cosU2

	lambda := l
	var sinSigma, cosSigma, sigma, sinAlpha, cosSqAlpha, cos2SigmaM float64
	var sinLambda, cosLambda float64
	converged := false
	for i := 0; i < 200; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			// coincident points
			return 0, 0, 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		lambdaNext := l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambdaNext-lambda) < 1e-12 {
			lambda = lambdaNext
			converged = true
			break
		}
		lambda = lambdaNext
	}
	if !converged {
		return sphericalInverse(p1, p2)
	}

	uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := b * sinSigma * (cos2SigmaM + b/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	dist = wgs84B * a * (sigma - deltaSigma)

	azimuth1 = NormalizeBearing(radToDeg(math.Atan2(cosU2*sinLambda,
		cosU1*sinU2-sinU1*cosU2*cosLambda)))
	azimuth2 = NormalizeBearing(radToDeg(math.Atan2(cosU1*sinLambda,
		-sinU1*cosU2+cosU1*sinU2*cosLambda)))
	return azimuth1, azimuth2, dist
}

// sphericalInverse is the haversine/initial-bearing fallback on a mean-radius sphere.
func sphericalInverse(p1, p2 Point) (float64, float64, float64) {
	const r = 6371008.8

	lat1 := degToRad(p1.Latitude)
	lat2 := degToRad(p2.Latitude)
	dLat := lat2 - lat1
	dLon := degToRad(p2.Longitude - p1.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	dist := 2 * r * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	az1 := NormalizeBearing(radToDeg(math.Atan2(y, x)))

	y2 := math.Sin(-dLon) * math.Cos(lat1)
	x2 := math.Cos(lat2)*math.Sin(lat1) - math.Sin(lat2)*math.Cos(lat1)*math.Cos(dLon)
	az2 := NormalizeBearing(radToDeg(math.Atan2(y2, x2)) + 180)

	return az1, az2, dist
}
