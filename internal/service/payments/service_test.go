package payments

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/booking"
	paymentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/payment"
	rentalRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/rental"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

type memPayments struct {
	byRef     map[string]domain.Payment
	createErr error
}

func (m *memPayments) Create(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	cp := *p
	cp.ID = int64(len(m.byRef) + 1)
	m.byRef[cp.Reference] = cp
	return &cp, nil
}

func (m *memPayments) GetByReference(_ context.Context, ref string) (*domain.Payment, error) {
	p, ok := m.byRef[ref]
	if !ok {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	return &p, nil
}

func (m *memPayments) Resolve(_ context.Context, ref string, state domain.PaymentState, at time.Time) error {
	p, ok := m.byRef[ref]
	if !ok || p.State != domain.PaymentStatePending {
		return paymentRepo.ErrStateChanged
	}
	p.State = state
	p.UpdatedAt = at
	m.byRef[ref] = p
	return nil
}

type memBookings struct {
	byID map[int64]domain.Booking
}

func (m *memBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := m.byID[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (m *memBookings) SetPaymentRef(_ context.Context, id int64, ref string, _ time.Time) error {
	b := m.byID[id]
	if !b.IsPayable() {
		return bookingRepo.ErrStatusChanged
	}
	b.PaymentRef = &ref
	m.byID[id] = b
	return nil
}

func (m *memBookings) Confirm(_ context.Context, id int64, _ time.Time) error {
	b := m.byID[id]
	if b.Status != domain.StatusPending {
		return bookingRepo.ErrStatusChanged
	}
	b.Status = domain.StatusConfirmed
	b.PaymentStatus = domain.PaymentPaid
	m.byID[id] = b
	return nil
}

func (m *memBookings) MarkPaymentFailed(_ context.Context, id int64, _ time.Time) error {
	b := m.byID[id]
	if b.Status != domain.StatusPending {
		return bookingRepo.ErrStatusChanged
	}
	b.PaymentStatus = domain.PaymentFailed
	m.byID[id] = b
	return nil
}

type memRentals struct {
	byID map[int64]domain.EquipmentRental
}

func (m *memRentals) GetByID(_ context.Context, id int64) (*domain.EquipmentRental, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, rentalRepo.ErrRentalNotFound
	}
	return &r, nil
}

func (m *memRentals) SetPaymentRef(_ context.Context, id int64, ref string, _ time.Time) error {
	r := m.byID[id]
	if !r.IsPayable() {
		return rentalRepo.ErrStatusChanged
	}
	r.PaymentRef = &ref
	m.byID[id] = r
	return nil
}

func (m *memRentals) SetPaymentStatus(_ context.Context, id int64, status domain.PaymentStatus, _ time.Time) error {
	r := m.byID[id]
	if r.PaymentStatus == domain.PaymentPaid {
		return rentalRepo.ErrStatusChanged
	}
	r.PaymentStatus = status
	m.byID[id] = r
	return nil
}

type stubGateway struct {
	callback  *paymentgateway.Callback
	verifyErr error
	requests  []paymentgateway.PaymentRequest
}

func (g *stubGateway) BuildPaymentURL(req paymentgateway.PaymentRequest) (string, error) {
	g.requests = append(g.requests, req)
	return "https://pay.example.test/?vnp_TxnRef=" + req.Reference, nil
}

func (g *stubGateway) VerifyCallback(url.Values) (*paymentgateway.Callback, error) {
	return g.callback, g.verifyErr
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) NotifyBookingConfirmed(*domain.Booking) {
	n.events = append(n.events, "booking_confirmed")
}

func (n *recordingNotifier) NotifyBookingPaymentFailed(*domain.Booking) {
	n.events = append(n.events, "booking_payment_failed")
}

func (n *recordingNotifier) NotifyRentalPaid(*domain.EquipmentRental) {
	n.events = append(n.events, "rental_paid")
}

func (n *recordingNotifier) NotifyRentalPaymentFailed(*domain.EquipmentRental) {
	n.events = append(n.events, "rental_payment_failed")
}

type recordingMetrics struct {
	outcomes    []string
	transitions []string
}

func (m *recordingMetrics) PaymentOutcome(paymentType, outcome string) {
	m.outcomes = append(m.outcomes, paymentType+":"+outcome)
}

func (m *recordingMetrics) BookingTransition(status string) {
	m.transitions = append(m.transitions, status)
}

// rollbackTx откатывает изменения бронирований и платежей при ошибке fn
type rollbackTx struct {
	payments *memPayments
	bookings *memBookings
}

func (tx rollbackTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	payments := make(map[string]domain.Payment, len(tx.payments.byRef))
	for k, v := range tx.payments.byRef {
		payments[k] = v
	}
	bookings := make(map[int64]domain.Booking, len(tx.bookings.byID))
	for k, v := range tx.bookings.byID {
		bookings[k] = v
	}

	if err := fn(ctx); err != nil {
		tx.payments.byRef = payments
		tx.bookings.byID = bookings
		return err
	}
	return nil
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fixture struct {
	svc      *Service
	payments *memPayments
	bookings *memBookings
	rentals  *memRentals
	gateway  *stubGateway
	notifier *recordingNotifier
	metrics  *recordingMetrics
}

func newFixture() *fixture {
	f := &fixture{
		payments: &memPayments{byRef: map[string]domain.Payment{}},
		bookings: &memBookings{byID: map[int64]domain.Booking{
			1: {ID: 1, UserID: 42, FacilityID: 7, Price: 150000, Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid},
			2: {ID: 2, UserID: 42, FacilityID: 7, Price: 150000, Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentPaid},
			3: {ID: 3, UserID: 42, FacilityID: 7, Price: 0, Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid},
		}},
		rentals: &memRentals{byID: map[int64]domain.EquipmentRental{
			5: {ID: 5, UserID: 42, EquipmentID: 3, UnitIDs: []int64{11, 12}, TotalPrice: 80000, Status: domain.RentalRenting, PaymentStatus: domain.PaymentUnpaid},
		}},
		gateway:  &stubGateway{},
		notifier: &recordingNotifier{},
		metrics:  &recordingMetrics{},
	}
	f.svc = NewService(
		f.payments, f.bookings, f.rentals, f.gateway, f.notifier, f.metrics,
		rollbackTx{payments: f.payments, bookings: f.bookings}, logger.NewNop(),
	)
	f.svc.timeProvider = fixedTime{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	return f
}

func (f *fixture) initiate(t *testing.T, paymentType string, targetID int64) *models.InitiatePaymentResponse {
	t.Helper()
	resp, err := f.svc.Initiate(context.Background(), &models.InitiatePaymentRequest{
		UserID: 42, Type: paymentType, TargetID: targetID, ClientIP: "127.0.0.1",
	})
	require.NoError(t, err)
	return resp
}

func TestService_BookingPaidEndToEnd(t *testing.T) {
	f := newFixture()

	started := f.initiate(t, "booking", 1)
	assert.NotEmpty(t, started.Reference)
	assert.Equal(t, int64(150000), started.Amount)
	assert.Contains(t, started.PaymentURL, started.Reference)
	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, "127.0.0.1", f.gateway.requests[0].ClientIP)

	b := f.bookings.byID[1]
	require.NotNil(t, b.PaymentRef)
	assert.Equal(t, started.Reference, *b.PaymentRef)
	assert.Equal(t, domain.StatusPending, b.Status)

	resp, err := f.svc.ReportOutcome(context.Background(), started.Reference, domain.OutcomeSuccess)
	require.NoError(t, err)
	assert.False(t, resp.AlreadyProcessed)
	assert.Equal(t, "success", resp.State)

	b = f.bookings.byID[1]
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, domain.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, domain.PaymentStateSuccess, f.payments.byRef[started.Reference].State)
	assert.Equal(t, []string{"booking_confirmed"}, f.notifier.events)
	assert.Equal(t, []string{"booking:success"}, f.metrics.outcomes)
	assert.Equal(t, []string{"confirmed"}, f.metrics.transitions)

	// повторный исход ничего не меняет
	again, err := f.svc.ReportOutcome(context.Background(), started.Reference, domain.OutcomeFailure)
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)
	assert.Equal(t, "success", again.State)
	assert.Equal(t, domain.PaymentPaid, f.bookings.byID[1].PaymentStatus)
	assert.Len(t, f.notifier.events, 1)
	assert.Len(t, f.metrics.outcomes, 1)
}

func TestService_BookingPaymentFailed(t *testing.T) {
	f := newFixture()
	started := f.initiate(t, "booking", 1)

	resp, err := f.svc.ReportOutcome(context.Background(), started.Reference, domain.OutcomeFailure)

	require.NoError(t, err)
	assert.Equal(t, "failed", resp.State)
	b := f.bookings.byID[1]
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, domain.PaymentFailed, b.PaymentStatus)
	assert.Equal(t, []string{"booking_payment_failed"}, f.notifier.events)
	assert.Empty(t, f.metrics.transitions)

	// после неудачи можно начать новую оплату
	retry := f.initiate(t, "booking", 1)
	assert.NotEqual(t, started.Reference, retry.Reference)
}

func TestService_BookingCancelledBeforeSuccess(t *testing.T) {
	f := newFixture()
	started := f.initiate(t, "booking", 1)

	b := f.bookings.byID[1]
	b.Status = domain.StatusCancelled
	f.bookings.byID[1] = b

	resp, err := f.svc.ReportOutcome(context.Background(), started.Reference, domain.OutcomeSuccess)

	require.NoError(t, err)
	assert.Equal(t, "success", resp.State)
	assert.Equal(t, domain.StatusCancelled, f.bookings.byID[1].Status)
	assert.Empty(t, f.notifier.events)
	assert.Empty(t, f.metrics.transitions)
	assert.Equal(t, []string{"booking:success"}, f.metrics.outcomes)
}

func TestService_SupersededPaymentSucceedsLate(t *testing.T) {
	f := newFixture()
	first := f.initiate(t, "booking", 1)
	second := f.initiate(t, "booking", 1)
	require.Equal(t, second.Reference, *f.bookings.byID[1].PaymentRef)

	resp, err := f.svc.ReportOutcome(context.Background(), first.Reference, domain.OutcomeSuccess)

	require.NoError(t, err)
	assert.Equal(t, "success", resp.State)
	assert.False(t, resp.AlreadyProcessed)
	b := f.bookings.byID[1]
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, domain.PaymentUnpaid, b.PaymentStatus)
	assert.Empty(t, f.notifier.events)
	assert.Empty(t, f.metrics.transitions)

	// текущий платеж по-прежнему подтверждает бронирование
	_, err = f.svc.ReportOutcome(context.Background(), second.Reference, domain.OutcomeSuccess)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, f.bookings.byID[1].Status)
	assert.Equal(t, []string{"booking_confirmed"}, f.notifier.events)
}

func TestService_SupersededPaymentFailsLate(t *testing.T) {
	f := newFixture()
	first := f.initiate(t, "equipment_rental", 5)
	f.initiate(t, "equipment_rental", 5)

	_, err := f.svc.ReportOutcome(context.Background(), first.Reference, domain.OutcomeFailure)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, f.rentals.byID[5].PaymentStatus)
	assert.Empty(t, f.notifier.events)
}

func TestService_RentalPaid(t *testing.T) {
	f := newFixture()
	started := f.initiate(t, "equipment_rental", 5)
	assert.Equal(t, int64(80000), started.Amount)

	_, err := f.svc.ReportOutcome(context.Background(), started.Reference, domain.OutcomeSuccess)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, f.rentals.byID[5].PaymentStatus)
	assert.Equal(t, domain.RentalRenting, f.rentals.byID[5].Status)
	assert.Equal(t, []string{"rental_paid"}, f.notifier.events)
	assert.Equal(t, []string{"equipment_rental:success"}, f.metrics.outcomes)
}

func TestService_Initiate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.InitiatePaymentRequest
		wantErr error
	}{
		{
			name:    "unknown type",
			req:     &models.InitiatePaymentRequest{UserID: 42, Type: "membership", TargetID: 1},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "non-positive target",
			req:     &models.InitiatePaymentRequest{UserID: 42, Type: "booking"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing booking",
			req:     &models.InitiatePaymentRequest{UserID: 42, Type: "booking", TargetID: 99},
			wantErr: ErrTargetNotFound,
		},
		{
			name:    "missing rental",
			req:     &models.InitiatePaymentRequest{UserID: 42, Type: "equipment_rental", TargetID: 99},
			wantErr: ErrTargetNotFound,
		},
		{
			name:    "foreign booking",
			req:     &models.InitiatePaymentRequest{UserID: 7, Type: "booking", TargetID: 1},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "already paid",
			req:     &models.InitiatePaymentRequest{UserID: 42, Type: "booking", TargetID: 2},
			wantErr: ErrNotPayable,
		},
		{
			name:    "free booking",
			req:     &models.InitiatePaymentRequest{UserID: 42, Type: "booking", TargetID: 3},
			wantErr: ErrNotPayable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			resp, err := f.svc.Initiate(context.Background(), tt.req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.payments.byRef)
			assert.Empty(t, f.gateway.requests)
		})
	}
}

func TestService_Initiate_RepositoryError(t *testing.T) {
	f := newFixture()
	f.payments.createErr = errors.New("connection reset")

	_, err := f.svc.Initiate(context.Background(), &models.InitiatePaymentRequest{UserID: 42, Type: "booking", TargetID: 1})

	assert.ErrorIs(t, err, ErrInternal)
	assert.Nil(t, f.bookings.byID[1].PaymentRef)
}

func TestService_ReportOutcome_Errors(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ReportOutcome(context.Background(), "missing", domain.OutcomeSuccess)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = f.svc.ReportOutcome(context.Background(), "", domain.OutcomeSuccess)
	assert.ErrorIs(t, err, ErrInvalidInput)

	started := f.initiate(t, "booking", 1)
	_, err = f.svc.ReportOutcome(context.Background(), started.Reference, domain.PaymentOutcome("maybe"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, domain.PaymentStatePending, f.payments.byRef[started.Reference].State)
}

func TestService_HandleCallback(t *testing.T) {
	t.Run("valid success", func(t *testing.T) {
		f := newFixture()
		started := f.initiate(t, "booking", 1)
		f.gateway.callback = &paymentgateway.Callback{
			Reference: started.Reference, Amount: started.Amount, Success: true, ResponseCode: "00", TransactionNo: "14000001",
		}

		resp, err := f.svc.HandleCallback(context.Background(), url.Values{})

		require.NoError(t, err)
		assert.Equal(t, "success", resp.State)
		assert.Equal(t, domain.StatusConfirmed, f.bookings.byID[1].Status)
	})

	t.Run("invalid signature", func(t *testing.T) {
		f := newFixture()
		f.gateway.verifyErr = paymentgateway.ErrInvalidSignature

		_, err := f.svc.HandleCallback(context.Background(), url.Values{})

		assert.ErrorIs(t, err, ErrInvalidCallback)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		f := newFixture()
		started := f.initiate(t, "booking", 1)
		f.gateway.callback = &paymentgateway.Callback{Reference: started.Reference, Amount: 1, Success: true}

		_, err := f.svc.HandleCallback(context.Background(), url.Values{})

		assert.ErrorIs(t, err, ErrAmountMismatch)
		assert.Equal(t, domain.PaymentStatePending, f.payments.byRef[started.Reference].State)
		assert.Equal(t, domain.StatusPending, f.bookings.byID[1].Status)
	})
}
