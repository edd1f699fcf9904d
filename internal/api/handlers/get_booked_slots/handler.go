package get_booked_slots

import (
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
)

const (
	msgInvalidFacilityID = "некорректный ID объекта"
	msgMissingParams     = "параметры facilityId и date обязательны"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/booked-slots
// Query params: facilityId (required), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.QueryInt64(r, "facilityId")
	if err != nil {
		h.logger.Warn("GET /bookings/booked-slots - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	date, err := handlers.QueryDate(r, "date", nil)
	if err != nil {
		h.logger.Warn("GET /bookings/booked-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	if facilityID == nil || date == nil {
		h.logger.Warn("GET /bookings/booked-slots - Missing facilityId or date")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	result, err := h.service.GetBookedSlots(r.Context(), *facilityID, *date)
	if err != nil {
		h.logger.Error("GET /bookings/booked-slots - Failed to get booked slots: facility_id=%d, error=%v", *facilityID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
