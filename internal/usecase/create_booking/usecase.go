package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SportsBookingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotCache    SlotCache
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// slotCache может быть nil, если кэш отключен
func NewUseCase(
	bookingRepo BookingRepository,
	slotCache SlotCache,
	txManager TransactionManager,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotCache:    slotCache,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка занятости и вставка идут в одной сериализуемой транзакции,
// частичный уникальный индекс закрывает оставшееся окно гонки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, facility=%d, date=%s, slot=%q",
		req.UserID, req.FacilityID, req.Date.Format(domain.DateFormat), req.TimeSlot)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Разбираем метку слота
	slot, err := domain.ParseTimeSlot(req.TimeSlot)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid slot %q: %v", req.TimeSlot, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}

	// 3. Проверяем дату и время относительно текущего момента в часовом поясе сервиса
	now := uc.timeProvider.Now().In(uc.location)
	date := dateOnly(req.Date, uc.location)

	if err := validateSchedule(date, slot, now); err != nil {
		uc.logger.Warn("CreateBooking: schedule validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking

	// 4. Проверка конфликта и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Ищем неотмененное бронирование на тот же слот
		exists, err := uc.bookingRepo.ExistsActive(txCtx, req.FacilityID, date, slot.Label())
		if err != nil {
			uc.logger.Error("CreateBooking: failed to check slot: %v", err)
			return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
		}

		if exists {
			return ErrSlotAlreadyBooked
		}

		// 4.2. Создаем бронирование в статусе pending/unpaid,
		// бесплатный слот оплачивать нечем, он сразу confirmed/paid
		booking := &domain.Booking{
			UserID:        req.UserID,
			FacilityID:    req.FacilityID,
			BookingDate:   date,
			TimeSlot:      slot.Label(),
			StartTime:     slot.Start,
			EndTime:       slot.End,
			Price:         req.Price,
			Status:        domain.StatusPending,
			PaymentStatus: domain.PaymentUnpaid,
		}
		if req.Price == 0 {
			booking.Status = domain.StatusConfirmed
			booking.PaymentStatus = domain.PaymentPaid
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotAlreadyBooked) {
				return ErrSlotAlreadyBooked
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Конкурентная транзакция успела занять слот
		if errors.Is(err, ErrSlotAlreadyBooked) || txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateBooking: slot %q on %s already booked for facility=%d",
				slot.Label(), date.Format(domain.DateFormat), req.FacilityID)
			uc.metrics.BookingConflict()
			return nil, ErrSlotAlreadyBooked
		}
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	uc.metrics.BookingCreated()

	// 5. Сбрасываем кэш занятых слотов, ошибка кэша не влияет на результат
	if uc.slotCache != nil {
		if err := uc.slotCache.Invalidate(ctx, result.FacilityID, result.BookingDate); err != nil {
			uc.logger.Warn("CreateBooking: failed to invalidate slot cache: %v", err)
		}
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	return &Response{
		ID:            result.ID,
		UserID:        result.UserID,
		FacilityID:    result.FacilityID,
		BookingDate:   result.BookingDate,
		TimeSlot:      result.TimeSlot,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		Price:         result.Price,
		Status:        string(result.Status),
		PaymentStatus: string(result.PaymentStatus),
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}
