package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SportsBookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidFacilityID = "некорректный ID объекта"
	msgMissingParams     = "параметры facilityId и date обязательны"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgPastDate          = "дата уже прошла"
	msgDateTooFar        = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/available-slots
// Query params: facilityId (required), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	facilityID, err := handlers.QueryInt64(r, "facilityId")
	if err != nil {
		h.logger.Warn("GET /bookings/available-slots - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	date, err := handlers.QueryDate(r, "date", nil)
	if err != nil {
		h.logger.Warn("GET /bookings/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	if facilityID == nil || date == nil {
		h.logger.Warn("GET /bookings/available-slots - Missing facilityId or date")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{FacilityID: *facilityID, Date: *date})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /bookings/available-slots - Date in the past: facility_id=%d", *facilityID)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /bookings/available-slots - Date too far in future: facility_id=%d", *facilityID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /bookings/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFacilityID)

		default:
			h.logger.Error("GET /bookings/available-slots - Failed to get slots: facility_id=%d, error=%v", *facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/available-slots - Slots retrieved successfully: facility_id=%d, slots_count=%d",
		*facilityID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
