package payment_callback

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments"
)

const (
	msgInvalidCallback = "некорректная подпись или параметры ответа шлюза"
	msgPaymentNotFound = "платеж не найден"
	msgAmountMismatch  = "сумма платежа не совпадает"
	msgAlreadyApplied  = "результат оплаты уже обработан"
	msgApplied         = "результат оплаты принят"
)

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

// Handle GET /api/v1/payments/callback
// Query params: vnp_* от платежного шлюза, подписанные vnp_SecureHash
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.HandleCallback(r.Context(), r.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidCallback):
			h.logger.Warn("GET /payments/callback - Invalid callback: %v", err)
			handlers.RespondBadRequest(w, msgInvalidCallback)

		case errors.Is(err, payments.ErrPaymentNotFound):
			h.logger.Warn("GET /payments/callback - Payment not found: %v", err)
			handlers.RespondNotFound(w, msgPaymentNotFound)

		case errors.Is(err, payments.ErrAmountMismatch):
			h.logger.Warn("GET /payments/callback - Amount mismatch: %v", err)
			handlers.RespondBadRequest(w, msgAmountMismatch)

		default:
			h.logger.Error("GET /payments/callback - Failed to apply outcome: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	msg := msgApplied
	if result.AlreadyProcessed {
		msg = msgAlreadyApplied
	}

	h.logger.Info("GET /payments/callback - Outcome applied: reference=%s, state=%s, repeated=%t",
		result.Reference, result.State, result.AlreadyProcessed)
	handlers.RespondMessage(w, http.StatusOK, msg, result)
}
