// Package scheduler запускает фоновые задачи сервиса по расписанию cron
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

// ErrInvalidSchedule возвращается для некорректного cron-выражения
var ErrInvalidSchedule = errors.New("scheduler: invalid schedule")

// defaultJobTimeout ограничивает время одного прогона задачи
const defaultJobTimeout = 5 * time.Minute

// Reconciler пересчет сводок инвентаря
type Reconciler interface {
	RecomputeAll(ctx context.Context) (*models.ReconcileReport, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler планировщик фоновых задач
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	logger     Logger
	timeout    time.Duration
}

// New создает планировщик и регистрирует задачу пересчета инвентаря.
// reconcileSpec принимает стандартный cron (5 полей) и дескрипторы вида "@every 1h".
func New(reconciler Reconciler, reconcileSpec string, location *time.Location, logger Logger) (*Scheduler, error) {
	if location == nil {
		location = time.UTC
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		reconciler: reconciler,
		logger:     logger,
		timeout:    defaultJobTimeout,
	}

	if _, err := s.cron.AddFunc(reconcileSpec, s.ReconcileInventory); err != nil {
		return nil, fmt.Errorf("%w: reconcile %q: %v", ErrInvalidSchedule, reconcileSpec, err)
	}

	return s, nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler (%d jobs)", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач
// или отмены ctx
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("Stopping cron scheduler...")
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("Cron scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Cron scheduler stop timed out: %v", ctx.Err())
	}
}

// ReconcileInventory один прогон пересчета сводок всех позиций инвентаря
func (s *Scheduler) ReconcileInventory() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.reconciler.RecomputeAll(ctx)
	if err != nil {
		s.logger.Error("ReconcileInventory - failed: %v", err)
		return
	}

	if report.Failed > 0 {
		s.logger.Warn("ReconcileInventory - done with failures: checked=%d, fixed=%d, failed=%d, took=%s",
			report.Checked, report.Fixed, report.Failed, time.Since(start))
		return
	}

	s.logger.Info("ReconcileInventory - done: checked=%d, fixed=%d, took=%s",
		report.Checked, report.Fixed, time.Since(start))
}
