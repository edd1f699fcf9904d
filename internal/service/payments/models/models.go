package models

// InitiatePaymentRequest запрос на создание платежа
type InitiatePaymentRequest struct {
	UserID   int64  `json:"userId"`
	Type     string `json:"type"`        // booking | equipment_rental
	TargetID int64  `json:"referenceId"` // ID бронирования или аренды
	ClientIP string `json:"-"`
}

// InitiatePaymentResponse ссылка на оплату
type InitiatePaymentResponse struct {
	Reference  string `json:"reference"`
	PaymentURL string `json:"paymentUrl"`
	Amount     int64  `json:"amount"`
	Type       string `json:"type"`
	TargetID   int64  `json:"referenceId"`
}

// OutcomeResponse результат обработки исхода оплаты
type OutcomeResponse struct {
	Reference string `json:"reference"`
	Type      string `json:"type"`
	TargetID  int64  `json:"referenceId"`
	State     string `json:"state"`
	// AlreadyProcessed true, если исход по этой ссылке уже был применен ранее
	AlreadyProcessed bool `json:"alreadyProcessed"`
}
