package create_rental

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	createRental "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_rental"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createRental.Request) (*createRental.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*createRental.Response)
	return resp, args.Error(1)
}

const body = `{"equipmentId":3,"quantity":2,"rentalDate":"2025-01-10","durationHours":2}`

func serve(uc *mockUseCase, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals", strings.NewReader(payload))
	req = req.WithContext(middleware.WithIdentity(req.Context(), domain.Identity{UserID: 42, Role: domain.RoleStudent}))
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(rec, req)
	return rec
}

func TestHandler_Created(t *testing.T) {
	uc := new(mockUseCase)
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, &createRental.Request{
		UserID: 42, EquipmentID: 3, Quantity: 2, RentalDate: date, DurationHours: 2,
	}).Return(&createRental.Response{
		ID: 5, UserID: 42, EquipmentID: 3, UnitIDs: []int64{11, 12}, RentalDate: date,
		DurationHours: 2, TotalPrice: 80000, Status: "renting", PaymentStatus: "unpaid",
	}, nil)

	rec := serve(uc, body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unitIds":[11,12]`)
	assert.Contains(t, rec.Body.String(), `"quantity":2`)
	uc.AssertExpectations(t)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		ucErr      error
		wantStatus int
	}{
		{name: "bad json", payload: `[]`, wantStatus: http.StatusBadRequest},
		{name: "bad date", payload: `{"equipmentId":3,"quantity":2,"rentalDate":"soon","durationHours":2}`, wantStatus: http.StatusBadRequest},
		{name: "insufficient", payload: body, ucErr: createRental.ErrInsufficientInventory, wantStatus: http.StatusConflict},
		{name: "no equipment", payload: body, ucErr: createRental.ErrEquipmentNotFound, wantStatus: http.StatusNotFound},
		{name: "past date", payload: body, ucErr: createRental.ErrInvalidDate, wantStatus: http.StatusBadRequest},
		{name: "bad quantity", payload: body, ucErr: createRental.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", payload: body, ucErr: createRental.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUseCase)
			if tt.ucErr != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.ucErr)
			}

			assert.Equal(t, tt.wantStatus, serve(uc, tt.payload).Code)
		})
	}
}
