package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// UseCase use case для получения сетки слотов объекта на дату
type UseCase struct {
	bookingRepo  BookingRepository
	schedule     domain.SlotSchedule
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	schedule domain.SlotSchedule,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		schedule:     schedule,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет use case получения сетки слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: facility=%d, date=%s", req.FacilityID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.location)
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.location)

	// 2. Валидация даты
	if err := validateDate(date, now, uc.schedule.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Генерируем сетку слотов
	timeSlots := generateTimeSlots(uc.schedule, date, now)

	// 4. Получаем занятые слоты
	booked, err := uc.bookingRepo.GetBookedSlots(ctx, req.FacilityID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get booked slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get booked slots: %v", ErrInternal, err)
	}

	// 5. Отмечаем занятость
	slots := markBooked(timeSlots, booked)

	uc.logger.Info("GetAvailableSlots: generated %d slots for facility=%d, date=%s",
		len(slots), req.FacilityID, date.Format(domain.DateFormat))

	return &Response{
		Date:       date,
		FacilityID: req.FacilityID,
		Slots:      slots,
	}, nil
}
