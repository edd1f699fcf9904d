package report_payment_outcome

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/payments/models"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) ReportOutcome(ctx context.Context, reference string, outcome domain.PaymentOutcome) (*models.OutcomeResponse, error) {
	args := m.Called(ctx, reference, outcome)
	resp, _ := args.Get(0).(*models.OutcomeResponse)
	return resp, args.Error(1)
}

func serve(svc *mockService, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments/ref-1/outcome", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"reference": "ref-1"})
	rec := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(rec, req)
	return rec
}

func TestHandler_Success(t *testing.T) {
	svc := new(mockService)
	svc.On("ReportOutcome", mock.Anything, "ref-1", domain.OutcomeSuccess).
		Return(&models.OutcomeResponse{Reference: "ref-1", State: "success"}, nil)

	rec := serve(svc, `{"outcome":"success"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"success"`)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{name: "no body", body: "", wantStatus: http.StatusBadRequest},
		{name: "bad outcome", body: `{"outcome":"maybe"}`, svcErr: payments.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "unknown reference", body: `{"outcome":"failure"}`, svcErr: payments.ErrPaymentNotFound, wantStatus: http.StatusNotFound},
		{name: "internal", body: `{"outcome":"failure"}`, svcErr: payments.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.svcErr != nil {
				svc.On("ReportOutcome", mock.Anything, "ref-1", mock.Anything).Return(nil, tt.svcErr)
			}

			assert.Equal(t, tt.wantStatus, serve(svc, tt.body).Code)
		})
	}
}
