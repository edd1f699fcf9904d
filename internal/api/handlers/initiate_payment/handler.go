package initiate_payment

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректный тип или ID оплачиваемого объекта"
	msgTargetNotFound     = "оплачиваемый объект не найден"
	msgForbidden          = "доступ запрещен"
	msgNotPayable         = "объект не ожидает оплаты"
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

// Handle POST /api/v1/payments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /payments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.InitiatePaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.ClientIP = clientIP(r)

	result, err := h.service.Initiate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidInput):
			h.logger.Warn("POST /payments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, payments.ErrTargetNotFound):
			h.logger.Warn("POST /payments - Target not found: type=%s, id=%d", req.Type, req.TargetID)
			handlers.RespondNotFound(w, msgTargetNotFound)

		case errors.Is(err, payments.ErrAccessDenied):
			h.logger.Warn("POST /payments - Access denied: type=%s, id=%d, user_id=%d", req.Type, req.TargetID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, payments.ErrNotPayable):
			h.logger.Warn("POST /payments - Not payable: type=%s, id=%d", req.Type, req.TargetID)
			handlers.RespondConflict(w, msgNotPayable)

		default:
			h.logger.Error("POST /payments - Failed to initiate payment: type=%s, id=%d, error=%v", req.Type, req.TargetID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments - Payment initiated: reference=%s, type=%s, id=%d", result.Reference, result.Type, result.TargetID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// clientIP адрес клиента для шлюза: первый из X-Forwarded-For или RemoteAddr
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
