package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"binroute-backend/internal/database"
	"binroute-backend/internal/services"
	"binroute-backend/pkg/utils"
)

// GetTruckLocation advances the truck one stop and returns where it is now.
// The body is JSON null when the truck does not exist or has nothing to do.
func GetTruckLocation(engine *services.RouteEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid truck id")
			return
		}

		pos, err := engine.AdvanceTruck(r.Context(), id)
		if err != nil {
			log.Printf("❌ Failed to advance truck %d: %v", id, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to advance truck")
			return
		}

		utils.JSON(w, http.StatusOK, pos)
	}
}

func GetTrucks(store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trucks, err := store.ListTrucks(r.Context())
		if err != nil {
			log.Printf("❌ Failed to fetch trucks: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch trucks")
			return
		}

		utils.JSON(w, http.StatusOK, trucks)
	}
}
