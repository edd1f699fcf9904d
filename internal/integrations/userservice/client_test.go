package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/internal/users/42/contact":
			_, _ = w.Write([]byte(`{"id":42,"email":"student@uni.test","full_name":"Student","student_id":"S-2041"}`))
		case "/internal/users/43/contact":
			_, _ = w.Write([]byte(`{"id":43,"email":"quiet@uni.test","notifications_opt_out":true}`))
		case "/internal/users/44/contact":
			_, _ = w.Write([]byte(`{"id":99,"email":"other@uni.test"}`))
		case "/internal/users/45/contact":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"bad id"}`))
		case "/internal/users/7/contact":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Lookup(t *testing.T) {
	c := NewClient(newTestServer(t).URL, time.Second, logger.NewNop())
	ctx := context.Background()

	contact, err := c.Lookup(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "student@uni.test", contact.Email)
	assert.Equal(t, "S-2041", contact.StudentID)
	assert.True(t, contact.Reachable())

	_, err = c.Lookup(ctx, 7)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = c.Lookup(ctx, 44)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.Lookup(ctx, 45)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.Lookup(ctx, 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Recipient(t *testing.T) {
	c := NewClient(newTestServer(t).URL, time.Second, logger.NewNop())
	ctx := context.Background()

	contact, ok := c.Recipient(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, "Student", contact.FullName)

	_, ok = c.Recipient(ctx, 43)
	assert.False(t, ok, "opted out")

	_, ok = c.Recipient(ctx, 7)
	assert.False(t, ok, "unknown user")

	_, ok = c.Recipient(ctx, 1)
	assert.False(t, ok, "service error")
}

func TestClient_Recipient_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 100*time.Millisecond, logger.NewNop())

	_, err := c.Lookup(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, ok := c.Recipient(context.Background(), 42)
	assert.False(t, ok)
}
