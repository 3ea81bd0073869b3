package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/service"
)

const maxBodyBytes = 1 << 16

// ParkingService is what the handlers need from the service layer.
type ParkingService interface {
	FreeSpaces(ctx context.Context) (int, error)
	Enter(ctx context.Context, carRegNumber string) (*service.EnterResult, error)
	Exit(ctx context.Context, carRegNumber string) (*service.ExitResult, error)
	CheckCost(ctx context.Context, carRegNumber string) (decimal.Decimal, error)
	ListActive(ctx context.Context, limit int) ([]models.Session, error)
	SessionEvents(ctx context.Context, sessionID int64) ([]models.SessionEvent, error)
}

type regNumberRequest struct {
	CarRegNumber string `json:"car_reg_number"`
}

type failureResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, failureResponse{Message: message, Success: false})
}

// statusFor maps service errors to HTTP status codes. Clients that only look at
// the body still get {message, success:false} on every failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRegNumber):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrLotFull), errors.Is(err, service.ErrAlreadyParked):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotParked):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// regNumberFromRequest reads car_reg_number from the query string, a form body
// or a JSON body, in that order.
func regNumberFromRequest(r *http.Request) (string, error) {
	if v := r.URL.Query().Get("car_reg_number"); v != "" {
		return v, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.PostForm.Get("car_reg_number"), nil
	}

	var req regNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", err
	}
	return req.CarRegNumber, nil
}
