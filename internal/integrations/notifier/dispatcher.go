// Package notifier доставляет уведомления через исходящую очередь.
// Постановка в очередь не блокирует вызывающего, ошибки доставки
// не влияют на изменение состояния, которое вызвало уведомление.
package notifier

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// Options параметры диспетчера
type Options struct {
	BufferSize     int
	Workers        int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	PublishTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 30 * time.Second
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = 5 * time.Second
	}
}

// Dispatcher асинхронно публикует уведомления с повторными попытками
type Dispatcher struct {
	publisher Publisher
	contacts  ContactResolver
	logger    Logger
	opts      Options
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewDispatcher создает диспетчер. contacts может быть nil
func NewDispatcher(publisher Publisher, contacts ContactResolver, logger Logger, opts Options) *Dispatcher {
	opts.applyDefaults()
	return &Dispatcher{
		publisher: publisher,
		contacts:  contacts,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		queue:     make(chan Event, opts.BufferSize),
	}
}

// Start запускает воркеры
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.Info("Notification dispatcher started: workers=%d, buffer=%d", d.opts.Workers, d.opts.BufferSize)
}

// Stop прекращает прием событий, дожидается отправки накопленных и останавливает воркеры.
// Если ctx истекает раньше, оставшиеся события отбрасываются.
func (d *Dispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("Notification dispatcher: stop timeout, %d events dropped", len(d.queue))
	}
	if d.cancel != nil {
		d.cancel()
	}
}

// Enqueue ставит событие в очередь без блокировки.
// При переполнении буфера событие отбрасывается с предупреждением.
func (d *Dispatcher) Enqueue(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = d.now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notification dispatcher stopped, event %s for user=%d dropped", ev.Type, ev.UserID)
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("Notification queue full, event %s for user=%d dropped", ev.Type, ev.UserID)
	}
}

// NotifyBookingConfirmed уведомляет о подтверждении бронирования после оплаты
func (d *Dispatcher) NotifyBookingConfirmed(b *domain.Booking) {
	d.Enqueue(bookingEvent(EventBookingConfirmed, b, ""))
}

// NotifyBookingPaymentFailed уведомляет о неуспешной оплате бронирования
func (d *Dispatcher) NotifyBookingPaymentFailed(b *domain.Booking) {
	d.Enqueue(bookingEvent(EventBookingPaymentFailed, b, ""))
}

// NotifyBookingCancelled уведомляет об отмене бронирования
func (d *Dispatcher) NotifyBookingCancelled(b *domain.Booking, reason string) {
	d.Enqueue(bookingEvent(EventBookingCancelled, b, reason))
}

// NotifyRentalPaid уведомляет об оплате аренды
func (d *Dispatcher) NotifyRentalPaid(r *domain.EquipmentRental) {
	d.Enqueue(rentalEvent(EventRentalPaid, r))
}

// NotifyRentalPaymentFailed уведомляет о неуспешной оплате аренды
func (d *Dispatcher) NotifyRentalPaymentFailed(r *domain.EquipmentRental) {
	d.Enqueue(rentalEvent(EventRentalPaymentFailed, r))
}

// NotifyRentalCancelled уведомляет об отмене аренды
func (d *Dispatcher) NotifyRentalCancelled(r *domain.EquipmentRental) {
	d.Enqueue(rentalEvent(EventRentalCancelled, r))
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for ev := range d.queue {
		d.deliver(ctx, ev)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	d.enrich(ctx, &ev)

	body, err := json.Marshal(ev)
	if err != nil {
		d.logger.Error("Notification %s: marshal failed: %v", ev.Type, err)
		return
	}

	backoff := d.opts.InitialBackoff
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		pubCtx, cancel := context.WithTimeout(ctx, d.opts.PublishTimeout)
		err = d.publisher.Publish(pubCtx, string(ev.Type), body)
		cancel()

		if err == nil {
			return
		}

		d.logger.Warn("Notification %s for user=%d: attempt %d/%d failed: %v",
			ev.Type, ev.UserID, attempt, d.opts.MaxAttempts, err)

		if attempt == d.opts.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			d.logger.Error("Notification %s for user=%d abandoned: %v", ev.Type, ev.UserID, ctx.Err())
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > d.opts.MaxBackoff {
			backoff = d.opts.MaxBackoff
		}
	}

	d.logger.Error("Notification %s for user=%d dropped after %d attempts: %v",
		ev.Type, ev.UserID, d.opts.MaxAttempts, err)
}

func (d *Dispatcher) enrich(ctx context.Context, ev *Event) {
	if d.contacts == nil || ev.Email != "" {
		return
	}

	contact, ok := d.contacts.Recipient(ctx, ev.UserID)
	if !ok {
		return
	}

	ev.Email = contact.Email
	ev.FullName = contact.FullName
}

func bookingEvent(t EventType, b *domain.Booking, reason string) Event {
	return Event{
		Type:       t,
		UserID:     b.UserID,
		BookingID:  b.ID,
		FacilityID: b.FacilityID,
		Date:       b.BookingDate.Format(domain.DateFormat),
		TimeSlot:   b.TimeSlot,
		Amount:     b.Price,
		Reason:     reason,
	}
}

func rentalEvent(t EventType, r *domain.EquipmentRental) Event {
	return Event{
		Type:     t,
		UserID:   r.UserID,
		RentalID: r.ID,
		Date:     r.RentalDate.Format(domain.DateFormat),
		Amount:   r.TotalPrice,
	}
}
