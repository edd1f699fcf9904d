package metrics

// Методы безопасны для nil-получателя: при выключенных метриках
// сервисы получают nil и вызовы становятся no-op

// BookingCreated учитывает созданное бронирование
func (m *Metrics) BookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

// BookingConflict учитывает отказ из-за занятого слота
func (m *Metrics) BookingConflict() {
	if m == nil {
		return
	}
	m.BookingConflicts.Inc()
}

// BookingTransition учитывает переход бронирования в статус
func (m *Metrics) BookingTransition(status string) {
	if m == nil {
		return
	}
	m.BookingStatus.WithLabelValues(status).Inc()
}

// UnitsRented учитывает выданные единицы инвентаря
func (m *Metrics) UnitsRented(n int) {
	if m == nil {
		return
	}
	m.UnitsAllocated.Add(float64(n))
}

// UnitsReturned учитывает возвращенные единицы инвентаря
func (m *Metrics) UnitsReturned(n int) {
	if m == nil {
		return
	}
	m.UnitsReleased.Add(float64(n))
}

// InsufficientInventory учитывает отказ в аренде из-за нехватки единиц
func (m *Metrics) InsufficientInventory() {
	if m == nil {
		return
	}
	m.AllocationFailed.Inc()
}

// PaymentOutcome учитывает результат оплаты
func (m *Metrics) PaymentOutcome(paymentType, outcome string) {
	if m == nil {
		return
	}
	m.PaymentOutcomes.WithLabelValues(paymentType, outcome).Inc()
}
