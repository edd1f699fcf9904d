package paymentgateway

// PaymentRequest параметры платежа для формирования ссылки на шлюз
type PaymentRequest struct {
	Reference string // уникальная ссылка платежа (vnp_TxnRef)
	Amount    int64  // сумма в валюте без дробной части
	OrderInfo string
	ClientIP  string
}

// Callback разобранный и проверенный ответ шлюза
type Callback struct {
	Reference     string
	Amount        int64
	Success       bool
	ResponseCode  string
	TransactionNo string
}
