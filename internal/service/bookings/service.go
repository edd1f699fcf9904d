package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	slotCache    SlotCache
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
// slotCache и notifier могут быть nil
func NewService(
	bookingRepo BookingRepository,
	slotCache SlotCache,
	notifier Notifier,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		bookingRepo:  bookingRepo,
		slotCache:    slotCache,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только своё бронирование, персонал видит любое
func (s *Service) GetByID(ctx context.Context, id int64, identity domain.Identity) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, identity.UserID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !booking.IsOwnedBy(identity.UserID) && !identity.IsStaff() {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", identity.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// List возвращает бронирования для администратора с фильтрацией
// по объекту, пользователю, периоду и статусу
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: endDate before startDate", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// GetBookedSlots возвращает метки слотов всех неотмененных бронирований объекта на дату.
// Кэш используется в режиме fail-open: при его недоступности читаем из БД.
func (s *Service) GetBookedSlots(ctx context.Context, facilityID int64, date time.Time) (*models.BookedSlotsResponse, error) {
	if facilityID <= 0 {
		return nil, fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.location)
	resp := &models.BookedSlotsResponse{
		FacilityID: facilityID,
		Date:       date.Format(domain.DateFormat),
	}

	if s.slotCache != nil {
		slots, found, err := s.slotCache.Get(ctx, facilityID, date)
		switch {
		case err != nil:
			s.logger.Warn("GetBookedSlots: cache read failed for facility=%d: %v", facilityID, err)
		case found:
			resp.BookedSlots = slots
			return resp, nil
		}
	}

	slots, err := s.bookingRepo.GetBookedSlots(ctx, facilityID, date)
	if err != nil {
		s.logger.Error("GetBookedSlots: repository error for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: GetBookedSlots - repository error: %v", ErrInternal, err)
	}
	if slots == nil {
		slots = []string{}
	}

	if s.slotCache != nil {
		if err := s.slotCache.Set(ctx, facilityID, date, slots); err != nil {
			s.logger.Warn("GetBookedSlots: cache write failed for facility=%d: %v", facilityID, err)
		}
	}

	resp.BookedSlots = slots
	return resp, nil
}

// Cancel отменяет бронирование по запросу владельца.
// Отмена невозможна из конечного статуса и позже чем за 2 часа до начала слота.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if err := validateReason(req.CancellationReason); err != nil {
		return nil, err
	}

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.IsOwnedBy(req.UserID) {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	now := s.timeProvider.Now().In(s.location)

	startsAt, err := s.slotStart(booking)
	if err != nil {
		s.logger.Error("Cancel: booking id=%d has broken start time %q: %v", bookingID, booking.StartTime, err)
		return nil, fmt.Errorf("%w: Cancel - start time: %v", ErrInternal, err)
	}

	if startsAt.Sub(now) < domain.MinCancellationNotice {
		s.logger.Warn("Cancel: booking id=%d starts at %s, too late to cancel", bookingID, startsAt.Format(time.RFC3339))
		return nil, ErrCancellationTooLate
	}

	return s.cancel(ctx, booking, req, now)
}

// AdminCancel отменяет бронирование от имени администратора.
// Владение и срок до начала слота не проверяются.
func (s *Service) AdminCancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("AdminCancel: cancelling booking id=%d by admin=%d", bookingID, req.UserID)

	if err := validateReason(req.CancellationReason); err != nil {
		return nil, err
	}

	booking, err := s.getBooking(ctx, "AdminCancel", bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("AdminCancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	return s.cancel(ctx, booking, req, s.timeProvider.Now().In(s.location))
}

// CheckIn отмечает приход: confirmed -> checked_in
func (s *Service) CheckIn(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, "CheckIn", bookingID, domain.StatusCheckedIn, func(b *domain.Booking, at time.Time) error {
		if err := s.bookingRepo.CheckIn(ctx, b.ID, at); err != nil {
			return err
		}
		b.CheckInAt = &at
		return nil
	})
}

// CheckOut завершает посещение: checked_in -> completed
func (s *Service) CheckOut(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, "CheckOut", bookingID, domain.StatusCompleted, func(b *domain.Booking, at time.Time) error {
		if b.CheckInAt == nil {
			return ErrInvalidTransition
		}
		if err := s.bookingRepo.CheckOut(ctx, b.ID, at); err != nil {
			return err
		}
		b.CheckOutAt = &at
		return nil
	})
}

// MarkNoShow отмечает неявку: confirmed -> no_show
func (s *Service) MarkNoShow(ctx context.Context, bookingID int64) (*models.BookingResponse, error) {
	return s.transition(ctx, "MarkNoShow", bookingID, domain.StatusNoShow, func(b *domain.Booking, at time.Time) error {
		return s.bookingRepo.MarkNoShow(ctx, b.ID, at)
	})
}

// transition выполняет условный переход статуса.
// Если статус изменился между чтением и записью, возвращается ErrInvalidTransition.
func (s *Service) transition(
	ctx context.Context,
	op string,
	bookingID int64,
	target domain.BookingStatus,
	apply func(b *domain.Booking, at time.Time) error,
) (*models.BookingResponse, error) {
	s.logger.Info("%s: booking id=%d -> %s", op, bookingID, target)

	booking, err := s.getBooking(ctx, op, bookingID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(booking.Status, target) {
		s.logger.Warn("%s: booking id=%d in status %s", op, bookingID, booking.Status)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
	}

	now := s.timeProvider.Now().In(s.location)

	if err := apply(booking, now); err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, bookingRepo.ErrStatusChanged):
			s.logger.Warn("%s: booking id=%d changed concurrently: %v", op, bookingID, err)
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		default:
			s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}
	}

	booking.Status = target
	booking.UpdatedAt = now
	s.metrics.BookingTransition(string(target))

	s.logger.Info("%s: booking id=%d is now %s", op, bookingID, target)
	return models.FromDomainBooking(booking), nil
}

func (s *Service) cancel(
	ctx context.Context,
	booking *domain.Booking,
	req *models.CancelBookingRequest,
	now time.Time,
) (*models.BookingResponse, error) {
	if err := s.bookingRepo.Cancel(ctx, booking.ID, req.CancellationReason, req.UserID, now); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrStatusChanged):
			s.logger.Warn("Cancel: booking id=%d changed concurrently", booking.ID)
			return nil, ErrCannotCancel
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		default:
			s.logger.Error("Cancel: repository error for booking id=%d: %v", booking.ID, err)
			return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
	}

	booking.Status = domain.StatusCancelled
	booking.CancelledAt = &now
	booking.CancelledBy = &req.UserID
	booking.CancellationReason = req.CancellationReason
	booking.UpdatedAt = now

	s.metrics.BookingTransition(string(domain.StatusCancelled))

	if s.slotCache != nil {
		if err := s.slotCache.Invalidate(ctx, booking.FacilityID, booking.BookingDate); err != nil {
			s.logger.Warn("Cancel: failed to invalidate slot cache: %v", err)
		}
	}

	if s.notifier != nil {
		reason := ""
		if req.CancellationReason != nil {
			reason = *req.CancellationReason
		}
		s.notifier.NotifyBookingCancelled(booking, reason)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", booking.ID)
	return models.FromDomainBooking(booking), nil
}

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// slotStart возвращает начало слота в часовом поясе сервиса
func (s *Service) slotStart(b *domain.Booking) (time.Time, error) {
	date := time.Date(b.BookingDate.Year(), b.BookingDate.Month(), b.BookingDate.Day(), 0, 0, 0, 0, s.location)
	return b.StartTime.On(date)
}

func validateReason(reason *string) error {
	if reason != nil && utf8.RuneCountInString(*reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return nil
}
