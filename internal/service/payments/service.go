// Package payments создает платежи через шлюз и применяет их исход
// к бронированиям и арендам
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/payment"
	rentalRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/rental"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
)

// Service сервис оплат
type Service struct {
	paymentRepo  PaymentRepository
	bookingRepo  BookingRepository
	rentalRepo   RentalRepository
	gateway      Gateway
	notifier     Notifier
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса оплат
// notifier может быть nil
func NewService(
	paymentRepo PaymentRepository,
	bookingRepo BookingRepository,
	rentalRepo RentalRepository,
	gateway Gateway,
	notifier Notifier,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		rentalRepo:   rentalRepo,
		gateway:      gateway,
		notifier:     notifier,
		metrics:      metrics,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// payable оплачиваемый объект: бронирование или аренда
type payable struct {
	userID     int64
	amount     int64
	isPayable  bool
	paymentRef *string // ссылка последнего созданного платежа
	booking    *domain.Booking
	rental    *domain.EquipmentRental
}

// Initiate создает платеж для бронирования или аренды владельца
// и возвращает подписанную ссылку на шлюз
func (s *Service) Initiate(ctx context.Context, req *models.InitiatePaymentRequest) (*models.InitiatePaymentResponse, error) {
	s.logger.Info("Initiate: user=%d, type=%s, target=%d", req.UserID, req.Type, req.TargetID)

	paymentType := domain.PaymentType(req.Type)
	if !paymentType.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, req.Type)
	}
	if req.TargetID <= 0 {
		return nil, fmt.Errorf("%w: referenceId must be positive", ErrInvalidInput)
	}

	var resp *models.InitiatePaymentResponse

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		target, err := s.loadTarget(txCtx, paymentType, req.TargetID)
		if err != nil {
			return err
		}

		if target.userID != req.UserID {
			s.logger.Warn("Initiate: user=%d is not the owner of %s id=%d", req.UserID, paymentType, req.TargetID)
			return ErrAccessDenied
		}
		if !target.isPayable {
			s.logger.Warn("Initiate: %s id=%d is not awaiting payment", paymentType, req.TargetID)
			return ErrNotPayable
		}
		if target.amount <= 0 {
			return fmt.Errorf("%w: nothing to pay for %s id=%d", ErrNotPayable, paymentType, req.TargetID)
		}

		now := s.timeProvider.Now()
		payment, err := s.paymentRepo.Create(txCtx, &domain.Payment{
			Reference: uuid.NewString(),
			Type:      paymentType,
			TargetID:  req.TargetID,
			UserID:    req.UserID,
			Amount:    target.amount,
			State:     domain.PaymentStatePending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			s.logger.Error("Initiate: failed to create payment: %v", err)
			return fmt.Errorf("%w: Initiate - create payment: %v", ErrInternal, err)
		}

		if err := s.attachReference(txCtx, paymentType, req.TargetID, payment.Reference); err != nil {
			return err
		}

		paymentURL, err := s.gateway.BuildPaymentURL(paymentgateway.PaymentRequest{
			Reference: payment.Reference,
			Amount:    payment.Amount,
			OrderInfo: fmt.Sprintf("Payment for %s #%d", paymentType, req.TargetID),
			ClientIP:  req.ClientIP,
		})
		if err != nil {
			s.logger.Error("Initiate: failed to build payment url: %v", err)
			return fmt.Errorf("%w: Initiate - build payment url: %v", ErrInternal, err)
		}

		resp = &models.InitiatePaymentResponse{
			Reference:  payment.Reference,
			PaymentURL: paymentURL,
			Amount:     payment.Amount,
			Type:       string(paymentType),
			TargetID:   req.TargetID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Initiate: created payment %s for %s id=%d", resp.Reference, resp.Type, resp.TargetID)
	return resp, nil
}

// ReportOutcome применяет исход оплаты по ссылке платежа.
// Повторный вызов для уже обработанной ссылки ничего не меняет.
func (s *Service) ReportOutcome(ctx context.Context, reference string, outcome domain.PaymentOutcome) (*models.OutcomeResponse, error) {
	return s.reportOutcome(ctx, reference, outcome, nil)
}

// HandleCallback проверяет подпись ответа шлюза и применяет исход оплаты
func (s *Service) HandleCallback(ctx context.Context, values url.Values) (*models.OutcomeResponse, error) {
	cb, err := s.gateway.VerifyCallback(values)
	if err != nil {
		s.logger.Warn("HandleCallback: rejected callback: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidCallback, err)
	}

	outcome := domain.OutcomeFailure
	if cb.Success {
		outcome = domain.OutcomeSuccess
	}

	s.logger.Info("HandleCallback: reference=%s, code=%s, transaction=%s", cb.Reference, cb.ResponseCode, cb.TransactionNo)
	return s.reportOutcome(ctx, cb.Reference, outcome, &cb.Amount)
}

func (s *Service) reportOutcome(
	ctx context.Context,
	reference string,
	outcome domain.PaymentOutcome,
	paidAmount *int64,
) (*models.OutcomeResponse, error) {
	s.logger.Info("ReportOutcome: reference=%s, outcome=%s", reference, outcome)

	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	state := domain.PaymentStateFailed
	switch outcome {
	case domain.OutcomeSuccess:
		state = domain.PaymentStateSuccess
	case domain.OutcomeFailure:
	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInvalidInput, outcome)
	}

	var (
		payment *domain.Payment
		target  *payable
		applied bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		payment, err = s.paymentRepo.GetByReference(txCtx, reference)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
				s.logger.Warn("ReportOutcome: payment %s not found", reference)
				return ErrPaymentNotFound
			}
			s.logger.Error("ReportOutcome: repository error for payment %s: %v", reference, err)
			return fmt.Errorf("%w: ReportOutcome - get payment: %v", ErrInternal, err)
		}

		if payment.State != domain.PaymentStatePending {
			s.logger.Info("ReportOutcome: payment %s already %s", reference, payment.State)
			return nil
		}

		if paidAmount != nil && *paidAmount != payment.Amount {
			s.logger.Warn("ReportOutcome: payment %s amount %d, gateway reported %d", reference, payment.Amount, *paidAmount)
			return ErrAmountMismatch
		}

		now := s.timeProvider.Now()
		if err := s.paymentRepo.Resolve(txCtx, reference, state, now); err != nil {
			if errors.Is(err, paymentRepo.ErrStateChanged) {
				s.logger.Info("ReportOutcome: payment %s resolved concurrently", reference)
				return nil
			}
			s.logger.Error("ReportOutcome: failed to resolve payment %s: %v", reference, err)
			return fmt.Errorf("%w: ReportOutcome - resolve payment: %v", ErrInternal, err)
		}

		target, err = s.applyOutcome(txCtx, payment, outcome)
		if err != nil {
			return err
		}

		payment.State = state
		applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &models.OutcomeResponse{
		Reference:        payment.Reference,
		Type:             string(payment.Type),
		TargetID:         payment.TargetID,
		State:            string(payment.State),
		AlreadyProcessed: !applied,
	}

	if !applied {
		return resp, nil
	}

	s.metrics.PaymentOutcome(string(payment.Type), string(outcome))
	if target != nil && target.booking != nil && target.booking.Status == domain.StatusConfirmed {
		s.metrics.BookingTransition(string(domain.StatusConfirmed))
	}
	s.notify(target, outcome)

	s.logger.Info("ReportOutcome: payment %s is now %s", reference, payment.State)
	return resp, nil
}

// applyOutcome переносит исход оплаты на бронирование или аренду.
// Если объект уже изменился (например, отменен) или для него создан более новый
// платеж, исход платежа сохраняется, а расхождение логируется для ручного разбора.
// Для вытесненного платежа возвращается nil.
func (s *Service) applyOutcome(ctx context.Context, payment *domain.Payment, outcome domain.PaymentOutcome) (*payable, error) {
	target, err := s.loadTarget(ctx, payment.Type, payment.TargetID)
	if err != nil {
		return nil, err
	}

	if target.paymentRef == nil || *target.paymentRef != payment.Reference {
		if outcome == domain.OutcomeSuccess {
			s.logger.Error("ReportOutcome: payment %s succeeded but %s id=%d awaits another payment, needs manual review",
				payment.Reference, payment.Type, payment.TargetID)
		} else {
			s.logger.Warn("ReportOutcome: ignoring outcome of superseded payment %s for %s id=%d",
				payment.Reference, payment.Type, payment.TargetID)
		}
		return nil, nil
	}

	now := s.timeProvider.Now()

	switch payment.Type {
	case domain.PaymentTypeBooking:
		b := target.booking
		if outcome == domain.OutcomeSuccess {
			err = s.bookingRepo.Confirm(ctx, b.ID, now)
			if err == nil {
				b.Status = domain.StatusConfirmed
				b.PaymentStatus = domain.PaymentPaid
			}
		} else {
			err = s.bookingRepo.MarkPaymentFailed(ctx, b.ID, now)
			if err == nil {
				b.PaymentStatus = domain.PaymentFailed
			}
		}
		if errors.Is(err, bookingRepo.ErrStatusChanged) {
			s.logger.Error("ReportOutcome: booking id=%d in status %s/%s, payment %s (%s) needs manual review",
				b.ID, b.Status, b.PaymentStatus, payment.Reference, outcome)
			return target, nil
		}

	case domain.PaymentTypeEquipmentRental:
		r := target.rental
		status := domain.PaymentFailed
		if outcome == domain.OutcomeSuccess {
			status = domain.PaymentPaid
		}
		err = s.rentalRepo.SetPaymentStatus(ctx, r.ID, status, now)
		if err == nil {
			r.PaymentStatus = status
		}
		if errors.Is(err, rentalRepo.ErrStatusChanged) {
			s.logger.Error("ReportOutcome: rental id=%d already paid, payment %s (%s) needs manual review",
				r.ID, payment.Reference, outcome)
			return target, nil
		}
	}

	if err != nil {
		s.logger.Error("ReportOutcome: failed to apply payment %s: %v", payment.Reference, err)
		return nil, fmt.Errorf("%w: ReportOutcome - apply outcome: %v", ErrInternal, err)
	}

	return target, nil
}

func (s *Service) loadTarget(ctx context.Context, paymentType domain.PaymentType, id int64) (*payable, error) {
	switch paymentType {
	case domain.PaymentTypeBooking:
		b, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil, fmt.Errorf("%w: booking id=%d", ErrTargetNotFound, id)
			}
			return nil, fmt.Errorf("%w: get booking: %v", ErrInternal, err)
		}
		return &payable{userID: b.UserID, amount: b.Price, isPayable: b.IsPayable(), paymentRef: b.PaymentRef, booking: b}, nil

	case domain.PaymentTypeEquipmentRental:
		r, err := s.rentalRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, rentalRepo.ErrRentalNotFound) {
				return nil, fmt.Errorf("%w: rental id=%d", ErrTargetNotFound, id)
			}
			return nil, fmt.Errorf("%w: get rental: %v", ErrInternal, err)
		}
		return &payable{userID: r.UserID, amount: r.TotalPrice, isPayable: r.IsPayable(), paymentRef: r.PaymentRef, rental: r}, nil
	}

	return nil, fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, paymentType)
}

func (s *Service) attachReference(ctx context.Context, paymentType domain.PaymentType, id int64, reference string) error {
	now := s.timeProvider.Now()

	var err error
	if paymentType == domain.PaymentTypeBooking {
		err = s.bookingRepo.SetPaymentRef(ctx, id, reference, now)
	} else {
		err = s.rentalRepo.SetPaymentRef(ctx, id, reference, now)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookingRepo.ErrStatusChanged), errors.Is(err, rentalRepo.ErrStatusChanged):
		return ErrNotPayable
	default:
		s.logger.Error("Initiate: failed to store payment reference on %s id=%d: %v", paymentType, id, err)
		return fmt.Errorf("%w: Initiate - store reference: %v", ErrInternal, err)
	}
}

func (s *Service) notify(target *payable, outcome domain.PaymentOutcome) {
	if s.notifier == nil || target == nil {
		return
	}

	success := outcome == domain.OutcomeSuccess
	switch {
	case target.booking != nil && success && target.booking.Status == domain.StatusConfirmed:
		s.notifier.NotifyBookingConfirmed(target.booking)
	case target.booking != nil && !success:
		s.notifier.NotifyBookingPaymentFailed(target.booking)
	case target.rental != nil && success && target.rental.PaymentStatus == domain.PaymentPaid:
		s.notifier.NotifyRentalPaid(target.rental)
	case target.rental != nil && !success:
		s.notifier.NotifyRentalPaymentFailed(target.rental)
	}
}
