package report_payment_outcome

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidOutcome     = "outcome должен быть success или failure"
	msgPaymentNotFound    = "платеж не найден"
)

// ReportOutcomeRequest HTTP request model
type ReportOutcomeRequest struct {
	Outcome string `json:"outcome"` // success | failure
}

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/payments/{reference}/outcome
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	var req ReportOutcomeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/payments/{ref}/outcome - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ReportOutcome(r.Context(), reference, domain.PaymentOutcome(req.Outcome))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidInput):
			h.logger.Warn("POST /admin/payments/{ref}/outcome - Invalid outcome %q for %s", req.Outcome, reference)
			handlers.RespondBadRequest(w, msgInvalidOutcome)

		case errors.Is(err, payments.ErrPaymentNotFound):
			h.logger.Warn("POST /admin/payments/{ref}/outcome - Payment not found: %s", reference)
			handlers.RespondNotFound(w, msgPaymentNotFound)

		default:
			h.logger.Error("POST /admin/payments/{ref}/outcome - Failed to report outcome: reference=%s, error=%v", reference, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/payments/{ref}/outcome - reference=%s, state=%s, repeated=%t",
		reference, result.State, result.AlreadyProcessed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
