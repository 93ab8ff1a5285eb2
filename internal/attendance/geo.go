package attendance

import "math"

const (
	earthRadiusKM = 6371

	// geofenceRadiusKM is a fixed policy constant, not per-course config.
	geofenceRadiusKM = 0.1
)

// Haversine returns the great-circle distance in kilometers between two
// points given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// checkGeofence applies the proximity rule when the course has coordinates
// configured. Courses without both coordinates skip the check entirely.
func checkGeofence(courseLat, courseLon, userLat, userLon *float64) error {
	if courseLat == nil || courseLon == nil {
		return nil
	}
	if userLat == nil || userLon == nil {
		return ErrGeolocationRequired
	}
	if Haversine(*courseLat, *courseLon, *userLat, *userLon) > geofenceRadiusKM {
		return ErrOutOfRange
	}
	return nil
}
