package handlers

import (
	"net/http"

	"binroute-backend/pkg/utils"
)

type clientCounter interface {
	GetClientCount() int
}

func Health(clients clientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.JSON(w, http.StatusOK, map[string]interface{}{
			"status":            "ok",
			"websocket_clients": clients.GetClientCount(),
		})
	}
}
