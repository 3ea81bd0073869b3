package handlers

import (
	"net/http"

	"parkinglot/backend/services/parking-service/internal/service"
)

// NewFreeSpacesHandler returns GET /freeSpaces handler.
func NewFreeSpacesHandler(svc ParkingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		free, err := svc.FreeSpaces(r.Context())
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, service.MsgSomethingWrong)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{
			"free_parking_spaces": free,
		})
	}
}
