package paymentgateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"

	responseCodeSuccess = "00"
	createDateLayout    = "20060102150405"
	amountMultiplier    = 100
)

// Config параметры подключения к платежному шлюзу
type Config struct {
	PaymentURL string
	TmnCode    string
	HashSecret string
	ReturnURL  string
	Version    string
	Locale     string
	CurrCode   string
	Location   *time.Location
	ExpireIn   time.Duration
}

// Client формирует подписанные ссылки на оплату и проверяет ответы шлюза
type Client struct {
	cfg Config
	now func() time.Time
}

// NewClient создает клиент платежного шлюза
func NewClient(cfg Config) *Client {
	if cfg.Version == "" {
		cfg.Version = "2.1.0"
	}
	if cfg.Locale == "" {
		cfg.Locale = "vn"
	}
	if cfg.CurrCode == "" {
		cfg.CurrCode = "VND"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ExpireIn <= 0 {
		cfg.ExpireIn = 15 * time.Minute
	}
	return &Client{cfg: cfg, now: time.Now}
}

// BuildPaymentURL возвращает ссылку для перенаправления пользователя на оплату
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if c.cfg.HashSecret == "" {
		return "", ErrNotConfigured
	}
	if req.Reference == "" {
		return "", fmt.Errorf("%w: reference is required", ErrInvalidRequest)
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	now := c.now().In(c.cfg.Location)
	orderInfo := req.OrderInfo
	if orderInfo == "" {
		orderInfo = "Payment " + req.Reference
	}
	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	params := url.Values{}
	params.Set("vnp_Version", c.cfg.Version)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*amountMultiplier, 10))
	params.Set("vnp_CurrCode", c.cfg.CurrCode)
	params.Set("vnp_TxnRef", req.Reference)
	params.Set("vnp_OrderInfo", orderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", c.cfg.Locale)
	params.Set("vnp_ReturnUrl", c.cfg.ReturnURL)
	params.Set("vnp_IpAddr", clientIP)
	params.Set("vnp_CreateDate", now.Format(createDateLayout))
	params.Set("vnp_ExpireDate", now.Add(c.cfg.ExpireIn).Format(createDateLayout))

	signData := canonicalQuery(params)
	signature := c.sign(signData)

	return fmt.Sprintf("%s?%s&%s=%s", c.cfg.PaymentURL, signData, paramSecureHash, signature), nil
}

// VerifyCallback проверяет подпись параметров, пришедших от шлюза, и разбирает результат.
// Без секрета любой callback отклоняется: подпись пустым ключом может собрать кто угодно.
func (c *Client) VerifyCallback(values url.Values) (*Callback, error) {
	if c.cfg.HashSecret == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, ErrNotConfigured)
	}

	received := values.Get(paramSecureHash)
	if received == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, paramSecureHash)
	}

	params := url.Values{}
	for key, vals := range values {
		if key == paramSecureHash || key == paramSecureHashType || !strings.HasPrefix(key, "vnp_") {
			continue
		}
		params[key] = vals
	}

	expected := c.sign(canonicalQuery(params))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	reference := params.Get("vnp_TxnRef")
	if reference == "" {
		return nil, fmt.Errorf("%w: vnp_TxnRef", ErrMissingField)
	}

	var amount int64
	if raw := params.Get("vnp_Amount"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 || parsed%amountMultiplier != 0 {
			return nil, fmt.Errorf("%w: vnp_Amount %q", ErrInvalidRequest, raw)
		}
		amount = parsed / amountMultiplier
	}

	responseCode := params.Get("vnp_ResponseCode")
	success := responseCode == responseCodeSuccess
	if status := params.Get("vnp_TransactionStatus"); status != "" {
		success = success && status == responseCodeSuccess
	}

	return &Callback{
		Reference:     reference,
		Amount:        amount,
		Success:       success,
		ResponseCode:  responseCode,
		TransactionNo: params.Get("vnp_TransactionNo"),
	}, nil
}

func (c *Client) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery сортирует параметры по ключу и кодирует значения (пробел -> "+")
// Пустые значения в подпись не входят
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params.Get(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params.Get(k)))
	}
	return sb.String()
}
