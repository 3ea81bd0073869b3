package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/service"
)

// ParkingHandler serves vehicle entry and exit.
type ParkingHandler struct {
	svc    ParkingService
	logger *zap.Logger
}

// NewParkingHandler builds handler set.
func NewParkingHandler(svc ParkingService, logger *zap.Logger) *ParkingHandler {
	return &ParkingHandler{
		svc:    svc,
		logger: logger,
	}
}

type enterResponse struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	CarInfo *models.Session `json:"car_info,omitempty"`
}

type exitResponse struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Car     *models.Session `json:"car,omitempty"`
}

// HandleEnter handles POST /enterParking.
func (h *ParkingHandler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	reg, err := regNumberFromRequest(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, service.MsgInvalidData)
		return
	}

	res, err := h.svc.Enter(r.Context(), reg)
	if err != nil {
		h.logger.Debug("enter refused", zap.String("car_reg_number", reg), zap.Error(err))
		var msg string
		if res != nil {
			msg = res.Message
		}
		writeFailure(w, statusFor(err), failureMessage(msg, err))
		return
	}
	writeJSON(w, http.StatusOK, enterResponse{
		Message: res.Message,
		Success: res.Success,
		CarInfo: res.Session,
	})
}

// HandleExit handles POST /exitParking.
func (h *ParkingHandler) HandleExit(w http.ResponseWriter, r *http.Request) {
	reg, err := regNumberFromRequest(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, service.MsgInvalidData)
		return
	}

	res, err := h.svc.Exit(r.Context(), reg)
	if err != nil {
		h.logger.Debug("exit refused", zap.String("car_reg_number", reg), zap.Error(err))
		var msg string
		if res != nil {
			msg = res.Message
		}
		writeFailure(w, statusFor(err), failureMessage(msg, err))
		return
	}
	writeJSON(w, http.StatusOK, exitResponse{
		Message: res.Message,
		Success: res.Success,
		Car:     res.Session,
	})
}

func failureMessage(message string, err error) string {
	if statusFor(err) == http.StatusBadRequest {
		return service.MsgInvalidData
	}
	if message == "" {
		return service.MsgSomethingWrong
	}
	return message
}
