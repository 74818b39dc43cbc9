package services

import (
	"math"

	"binroute-backend/internal/models"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two GPS coordinates in
// kilometers. Inputs are not validated.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// RouteDistance sums the hops between consecutive stops, rounded to two
// decimals. Fewer than two stops is a zero-length route.
func RouteDistance(stops models.RouteStops) float64 {
	if len(stops) < 2 {
		return 0
	}

	total := 0.0
	for i := 0; i < len(stops)-1; i++ {
		total += Haversine(stops[i].Latitude, stops[i].Longitude, stops[i+1].Latitude, stops[i+1].Longitude)
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
