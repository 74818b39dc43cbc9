package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"binroute-backend/internal/database"
	"binroute-backend/internal/models"
	"binroute-backend/internal/services"
	"binroute-backend/pkg/utils"
)

// PostSensorData stores one sensor reading.
func PostSensorData(ingest *services.IngestionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SensorReading
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if _, err := ingest.IngestReading(r.Context(), req); err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				utils.Error(w, http.StatusBadRequest, verr.Error())
				return
			}
			log.Printf("❌ Failed to save sensor reading for bin %d: %v", req.ID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to save sensor data")
			return
		}

		utils.JSON(w, http.StatusOK, map[string]string{"message": "Data saved successfully"})
	}
}

func GetBins(store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := store.ListBins(r.Context())
		if err != nil {
			log.Printf("❌ Failed to fetch bins: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}

		// Convert to response format
		responses := make([]models.BinResponse, len(bins))
		for i, bin := range bins {
			responses[i] = bin.ToBinResponse()
		}

		utils.JSON(w, http.StatusOK, responses)
	}
}
