// Package userservice получает адресатов уведомлений из UserService
package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody сколько байт тела ошибки попадает в сообщение
const maxErrorBody = 512

// Client клиент UserService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает клиент; timeout ограничивает каждый запрос
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Lookup запрашивает контакт пользователя: GET /internal/users/{id}/contact
func (c *Client) Lookup(ctx context.Context, userID int64) (*Contact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/internal/users/%d/contact", c.baseURL, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrInvalidResponse, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}

	var contact Contact
	if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
		return nil, fmt.Errorf("%w: decode contact: %v", ErrInvalidResponse, err)
	}
	if contact.ID != 0 && contact.ID != userID {
		return nil, fmt.Errorf("%w: asked for user %d, got %d", ErrInvalidResponse, userID, contact.ID)
	}

	return &contact, nil
}

// Recipient возвращает адресата уведомления о бронировании или аренде.
// ok=false, если писать некуда: пользователь отписан, неизвестен или
// UserService недоступен. Событие в этом случае уходит только с userID.
func (c *Client) Recipient(ctx context.Context, userID int64) (*Contact, bool) {
	contact, err := c.Lookup(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		c.log.Info("UserService: no contact for user=%d", userID)
		return nil, false
	default:
		c.log.Warn("UserService: contact lookup failed for user=%d, sending without email: %v", userID, err)
		return nil, false
	}

	if !contact.Reachable() {
		c.log.Info("UserService: user=%d has no email or opted out of notifications", userID)
		return nil, false
	}

	return contact, true
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, body)
	}
}
