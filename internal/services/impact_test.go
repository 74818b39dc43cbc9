package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"binroute-backend/internal/models"
)

func TestEstimateImpact(t *testing.T) {
	report := EstimateImpact(map[string]models.FleetRoute{
		"Truck 1": {DistanceKm: 3.2},
		"Truck 2": {DistanceKm: 1.8},
	})

	assert.Equal(t, models.ImpactReport{
		FixedDistanceKm:     20,
		OptimizedDistanceKm: 5,
		FuelSavedLiters:     3,
		CO2SavedKg:          6.9,
	}, report)
}

func TestEstimateImpactWithoutRoutes(t *testing.T) {
	report := EstimateImpact(nil)

	assert.Equal(t, 0.0, report.OptimizedDistanceKm)
	assert.Equal(t, 4.0, report.FuelSavedLiters)
	assert.Equal(t, 9.2, report.CO2SavedKg)
}

func TestEstimateImpactCanGoNegative(t *testing.T) {
	report := EstimateImpact(map[string]models.FleetRoute{"Truck 1": {DistanceKm: 25}})

	assert.Equal(t, -1.0, report.FuelSavedLiters)
	assert.Equal(t, -2.3, report.CO2SavedKg)
}
