package list_bookings

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SportsBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/bookings/models"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ToServiceRequest собирает фильтр из query параметров
func ToServiceRequest(r *http.Request) (*models.ListBookingsRequest, error) {
	var (
		req = &models.ListBookingsRequest{Limit: defaultLimit}
		err error
	)

	if req.FacilityID, err = handlers.QueryInt64(r, "facilityId"); err != nil {
		return nil, err
	}
	if req.UserID, err = handlers.QueryInt64(r, "userId"); err != nil {
		return nil, err
	}
	if req.StartDate, err = handlers.QueryDate(r, "startDate", nil); err != nil {
		return nil, err
	}
	if req.EndDate, err = handlers.QueryDate(r, "endDate", nil); err != nil {
		return nil, err
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || limit == 0 {
			return nil, handlers.ErrInvalidParam
		}
		req.Limit = min(limit, maxLimit)
	}
	if raw := q.Get("offset"); raw != "" {
		if req.Offset, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return nil, handlers.ErrInvalidParam
		}
	}

	return req, nil
}
