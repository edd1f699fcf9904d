package unit

import "github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
