package create_rental

import (
	"context"

	createRental "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_rental"
)

type CreateRentalUseCase interface {
	Execute(ctx context.Context, req *createRental.Request) (*createRental.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
