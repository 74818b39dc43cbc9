package handlers

import (
	"log"
	"net/http"

	"binroute-backend/internal/services"
	"binroute-backend/pkg/utils"
)

// GetOptimizedRoute computes (or returns the locked) route of every truck.
func GetOptimizedRoute(engine *services.RouteEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes, err := engine.ComputeFleetRoutes(r.Context())
		if err != nil {
			log.Printf("❌ Fleet route computation failed: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to compute routes")
			return
		}

		utils.JSON(w, http.StatusOK, routes)
	}
}

// GetImpact estimates fuel and CO2 saved by the current fleet routes.
func GetImpact(engine *services.RouteEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routes, err := engine.ComputeFleetRoutes(r.Context())
		if err != nil {
			log.Printf("❌ Fleet route computation failed: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to compute routes")
			return
		}

		utils.JSON(w, http.StatusOK, services.EstimateImpact(routes))
	}
}
