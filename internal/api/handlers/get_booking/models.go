package get_booking

import (
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

// Действия над бронированием, которые клиент может показать пользователю
const (
	actionPay      = "pay"
	actionCancel   = "cancel"
	actionCheckIn  = "check_in"
	actionCheckOut = "check_out"
	actionNoShow   = "no_show"
)

// Response бронирование и действия, доступные запрашивающему
type Response struct {
	*models.BookingResponse
	Actions []string `json:"actions"`
}

// availableActions определяет действия по статусу бронирования и роли.
// Срок отмены (не позже чем за 2 часа) проверяется при самой отмене.
func availableActions(b *models.BookingResponse, identity domain.Identity) []string {
	status := domain.BookingStatus(b.Status)
	owner := b.UserID == identity.UserID

	actions := make([]string, 0, 2)

	if owner && status == domain.StatusPending && b.Price > 0 &&
		domain.PaymentStatus(b.PaymentStatus) != domain.PaymentPaid {
		actions = append(actions, actionPay)
	}
	if (owner || identity.IsAdmin()) && domain.CanTransition(status, domain.StatusCancelled) {
		actions = append(actions, actionCancel)
	}
	if identity.IsStaff() {
		if domain.CanTransition(status, domain.StatusCheckedIn) {
			actions = append(actions, actionCheckIn)
		}
		if domain.CanTransition(status, domain.StatusCompleted) {
			actions = append(actions, actionCheckOut)
		}
	}
	if identity.IsAdmin() && domain.CanTransition(status, domain.StatusNoShow) {
		actions = append(actions, actionNoShow)
	}

	return actions
}
