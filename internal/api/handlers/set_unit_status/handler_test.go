package set_unit_status

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
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) SetUnitStatus(ctx context.Context, equipmentID, unitID int64, status domain.UnitStatus) (*models.UnitResponse, error) {
	args := m.Called(ctx, equipmentID, unitID, status)
	resp, _ := args.Get(0).(*models.UnitResponse)
	return resp, args.Error(1)
}

func serve(h *Handler, unitID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"equipmentId": "4", "unitId": unitID})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Success(t *testing.T) {
	svc := new(mockService)
	svc.On("SetUnitStatus", mock.Anything, int64(4), int64(12), domain.UnitMaintenance).
		Return(&models.UnitResponse{ID: 12, EquipmentID: 4, SerialNumber: "BALL-0001", Status: "maintenance"}, nil)

	rec := serve(NewHandler(svc, logger.NewNop()), "12", `{"status":"maintenance"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"maintenance"`)
	svc.AssertExpectations(t)
}

func TestHandler_RejectsStatusBeforeService(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "rented is reserved for allocation", body: `{"status":"rented"}`},
		{name: "unknown status", body: `{"status":"lost"}`},
		{name: "empty body", body: ``},
		{name: "unknown field", body: `{"status":"broken","force":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)

			rec := serve(NewHandler(svc, logger.NewNop()), "12", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "SetUnitStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unit not found", err: inventory.ErrUnitNotFound, wantStatus: http.StatusNotFound},
		{name: "equipment not found", err: inventory.ErrEquipmentNotFound, wantStatus: http.StatusNotFound},
		{name: "unit rented", err: inventory.ErrUnitRented, wantStatus: http.StatusConflict},
		{name: "internal", err: inventory.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			svc.On("SetUnitStatus", mock.Anything, int64(4), int64(12), domain.UnitBroken).Return(nil, tt.err)

			rec := serve(NewHandler(svc, logger.NewNop()), "12", `{"status":"broken"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestHandler_InvalidUnitID(t *testing.T) {
	svc := new(mockService)

	rec := serve(NewHandler(svc, logger.NewNop()), "abc", `{"status":"broken"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
