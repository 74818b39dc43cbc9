package services

import "binroute-backend/internal/models"

// Baseline used for the savings estimate: a fixed 20 km round, 5 km per
// liter, 2.3 kg of CO2 per liter burned.
const (
	FixedRouteDistanceKm = 20.0
	TruckMileageKmPerL   = 5.0
	CO2KgPerLiter        = 2.3
)

// EstimateImpact compares the fleet's routed distance against the fixed
// baseline. Savings go negative when the fleet drives more than the baseline.
func EstimateImpact(routes map[string]models.FleetRoute) models.ImpactReport {
	total := 0.0
	for _, r := range routes {
		total += r.DistanceKm
	}

	fixedFuel := FixedRouteDistanceKm / TruckMileageKmPerL
	optimizedFuel := total / TruckMileageKmPerL
	fuelSaved := round2(fixedFuel - optimizedFuel)

	return models.ImpactReport{
		FixedDistanceKm:     FixedRouteDistanceKm,
		OptimizedDistanceKm: round2(total),
		FuelSavedLiters:     fuelSaved,
		CO2SavedKg:          round2(fuelSaved * CO2KgPerLiter),
	}
}
