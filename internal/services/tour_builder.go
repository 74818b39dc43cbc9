package services

import (
	"math"

	"binroute-backend/internal/models"
)

// BuildTour orders a truck's batch with nearest-neighbor over the complete
// graph of pairwise haversine distances. The tour starts at bins[0] and ties
// go to the bin that comes first in the input.
func BuildTour(bins []models.Bin) models.RouteStops {
	n := len(bins)
	if n == 0 {
		return models.RouteStops{}
	}

	// Edge weights of the complete graph. Every edge is direct, so the
	// shortest path between two bins is the edge itself.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Haversine(bins[i].Latitude, bins[i].Longitude, bins[j].Latitude, bins[j].Longitude)
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	visited := make([]bool, n)
	tour := make(models.RouteStops, 0, n)

	current := 0
	visited[current] = true
	tour = append(tour, bins[current].Snapshot())

	for len(tour) < n {
		next := -1
		best := math.Inf(1)
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if dist[current][j] < best {
				best = dist[current][j]
				next = j
			}
		}
		// NaN coordinates never compare smaller; fall back to input order
		if next == -1 {
			for j := 0; j < n; j++ {
				if !visited[j] {
					next = j
					break
				}
			}
		}

		visited[next] = true
		tour = append(tour, bins[next].Snapshot())
		current = next
	}

	return tour
}
