// Package geo provides the spherical-trigonometry primitives used to derive
// kinematics from consecutive GPS fixes.
package geo

import "math"

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371000.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

func radians(deg float64) float64 { return deg * (math.Pi / 180.0) }

func degrees(rad float64) float64 { return rad * (180.0 / math.Pi) }

// Distance returns the haversine great-circle distance between p1 and p2
// in meters.
func Distance(p1, p2 Point) float64 {
	lat1 := radians(p1.Lat)
	lat2 := radians(p2.Lat)
	dLat := radians(p2.Lat - p1.Lat)
	dLon := radians(p2.Lon - p1.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Bearing returns the initial bearing (forward azimuth) from p1 to p2,
// normalized to [0, 360) degrees.
func Bearing(p1, p2 Point) float64 {
	lat1 := radians(p1.Lat)
	lat2 := radians(p2.Lat)
	dLon := radians(p2.Lon - p1.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return math.Mod(degrees(math.Atan2(y, x))+360.0, 360.0)
}

// DestinationPoint returns the point reached by traveling distMeters from
// start along the given initial bearing in degrees. Used to synthesize
// tracks with known kinematics.
func DestinationPoint(start Point, distMeters, bearing float64) Point {
	lat1 := radians(start.Lat)
	lon1 := radians(start.Lon)
	brng := radians(bearing)
	ang := distMeters / earthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ang) +
		math.Cos(lat1)*math.Sin(ang)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(ang)*math.Cos(lat1),
		math.Cos(ang)-math.Sin(lat1)*math.Sin(lat2))

	return Point{Lat: degrees(lat2), Lon: degrees(lon2)}
}
