// README: Pure great-circle distance helpers shared by the ride engine and the maps module.
package geo

import (
	"math"

	"fleet/internal/types"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two points in kilometres,
// rounded to one decimal place.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusKm*c*10) / 10
}

func Between(a, b types.Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// EstimateMinutes converts a distance into whole minutes at the given average speed.
func EstimateMinutes(distanceKm, averageSpeedKmh float64) int {
	if averageSpeedKmh <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / averageSpeedKmh * 60))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
