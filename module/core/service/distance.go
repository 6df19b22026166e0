package service

import "math"

const earthRadiusMeters = 6371000

// ProximityRadiusM is the shared threshold for load pickup/delivery
// detection and for auto-created load zones.
const ProximityRadiusM = 500

// haversineMeters is the great-circle distance on a spherical earth. The
// geofence and proximity contracts only need correct ordering relative to
// the configured radius, not sub-meter precision.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
