package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parkinglot/backend/services/parking-service/internal/service"
)

const defaultListLimit = 50

// NewActiveSessionsHandler returns GET /sessions/active handler.
func NewActiveSessionsHandler(svc ParkingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeFailure(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		sessions, err := svc.ListActive(r.Context(), limit)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, service.MsgSomethingWrong)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": sessions,
		})
	}
}

// NewSessionEventsHandler returns GET /sessions/{sessionId}/events handler.
func NewSessionEventsHandler(svc ParkingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "sessionId"), 10, 64)
		if err != nil || id <= 0 {
			writeFailure(w, http.StatusBadRequest, "invalid session id")
			return
		}

		events, err := svc.SessionEvents(r.Context(), id)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, service.MsgSomethingWrong)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"events": events,
		})
	}
}
