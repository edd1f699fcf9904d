package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) Cancel(ctx context.Context, id int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*models.BookingResponse)
	return resp, args.Error(1)
}

func (m *mockService) AdminCancel(ctx context.Context, id int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*models.BookingResponse)
	return resp, args.Error(1)
}

func serve(h *Handler, id, body string, identity *domain.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+id+"/cancel", strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *identity))
	}
	req = mux.SetURLVars(req, map[string]string{"bookingId": id})

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

var student = &domain.Identity{UserID: 42, Role: domain.RoleStudent}

func TestHandler_OwnerCancel(t *testing.T) {
	svc := new(mockService)
	svc.On("Cancel", mock.Anything, int64(10), mock.MatchedBy(func(r *models.CancelBookingRequest) bool {
		return r.UserID == 42 && r.CancellationReason != nil && *r.CancellationReason == "rain"
	})).Return(&models.BookingResponse{ID: 10, Status: "cancelled"}, nil)

	rec := serve(NewHandler(svc, logger.NewNop()), "10", `{"cancellationReason":"rain"}`, student)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	svc.AssertExpectations(t)
}

func TestHandler_EmptyBody(t *testing.T) {
	svc := new(mockService)
	svc.On("Cancel", mock.Anything, int64(10), mock.MatchedBy(func(r *models.CancelBookingRequest) bool {
		return r.CancellationReason == nil
	})).Return(&models.BookingResponse{ID: 10, Status: "cancelled"}, nil)

	rec := serve(NewHandler(svc, logger.NewNop()), "10", "", student)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_AdminCancel(t *testing.T) {
	svc := new(mockService)
	svc.On("AdminCancel", mock.Anything, int64(10), mock.Anything).
		Return(&models.BookingResponse{ID: 10, Status: "cancelled"}, nil)

	rec := serve(NewAdminHandler(svc, logger.NewNop()), "10", "", &domain.Identity{UserID: 1, Role: domain.RoleAdmin})

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		identity   *domain.Identity
		body       string
		svcErr     error
		wantStatus int
	}{
		{name: "bad id", id: "x", identity: student, wantStatus: http.StatusBadRequest},
		{name: "anonymous", id: "10", wantStatus: http.StatusUnauthorized},
		{name: "bad body", id: "10", identity: student, body: `{"reason":1}`, wantStatus: http.StatusBadRequest},
		{name: "not found", id: "10", identity: student, svcErr: bookings.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "not owner", id: "10", identity: student, svcErr: bookings.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "too late", id: "10", identity: student, svcErr: bookings.ErrCancellationTooLate, wantStatus: http.StatusUnprocessableEntity},
		{name: "terminal", id: "10", identity: student, svcErr: bookings.ErrCannotCancel, wantStatus: http.StatusUnprocessableEntity},
		{name: "internal", id: "10", identity: student, svcErr: bookings.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.svcErr != nil {
				svc.On("Cancel", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			}

			rec := serve(NewHandler(svc, logger.NewNop()), tt.id, tt.body, tt.identity)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
