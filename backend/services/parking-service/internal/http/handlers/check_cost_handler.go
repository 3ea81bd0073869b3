package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"parkinglot/backend/services/parking-service/internal/service"
)

// NewCheckCostHandler returns GET /checkCost handler.
func NewCheckCostHandler(svc ParkingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg, err := regNumberFromRequest(r)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, service.MsgInvalidData)
			return
		}

		cost, err := svc.CheckCost(r.Context(), reg)
		switch {
		case errors.Is(err, service.ErrInvalidRegNumber):
			writeFailure(w, http.StatusBadRequest, service.MsgInvalidData)
			return
		case errors.Is(err, service.ErrNotParked):
			writeFailure(w, http.StatusNotFound, service.MsgCostNotParked)
			return
		case err != nil:
			writeFailure(w, http.StatusInternalServerError, service.MsgSomethingWrong)
			return
		}

		writeJSON(w, http.StatusOK, map[string]json.Number{
			"due_amount": json.Number(cost.String()),
		})
	}
}
