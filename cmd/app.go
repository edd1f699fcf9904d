package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-SportsBookingService/internal/config"
	equipmentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/equipment"
	unitRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/unit"
	inventoryService "github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
	"github.com/m04kA/SMC-SportsBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SportsBookingService/pkg/logger"
	"github.com/m04kA/SMC-SportsBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SportsBookingService/pkg/txmanager"
)

// app общие зависимости serve и reconcile
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	db       *sql.DB
	wrapped  *dbmetrics.DB
	txMgr    *txmanager.TransactionManager
	location *time.Location

	stopMetricsCh chan struct{}
}

// newApp загружает конфигурацию, поднимает логгер и подключается к базе данных
func newApp(ctx context.Context, configPath string, withMetrics bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load time zone %q: %w", cfg.Booking.TimeZone, err)
	}

	a := &app{
		cfg:           cfg,
		log:           log,
		location:      location,
		stopMetricsCh: make(chan struct{}),
	}

	// Метрики регистрируются в глобальном реестре, поэтому только для serve
	if withMetrics && cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		log.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	a.db = db
	if a.metrics != nil {
		a.wrapped = dbmetrics.WrapWithDefault(db, a.metrics, cfg.Metrics.ServiceName, a.stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		a.wrapped = dbmetrics.Wrap(db, nil)
	}
	a.txMgr = txmanager.NewTransactionManager(a.wrapped)

	return a, nil
}

// inventory собирает сервис инвентаря, общий для HTTP и фонового пересчета
func (a *app) inventory() *inventoryService.Service {
	return inventoryService.NewService(
		equipmentRepo.NewRepository(a.wrapped),
		unitRepo.NewRepository(a.wrapped),
		a.txMgr,
		a.metrics,
		a.log,
	)
}

func (a *app) close() {
	close(a.stopMetricsCh)
	if err := a.db.Close(); err != nil {
		a.log.Error("Failed to close database: %v", err)
	}
	a.log.Close()
}

// runReconcile однократный пересчет сводок инвентаря (для cron вне сервиса)
func runReconcile(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath, false)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.inventory().RecomputeAll(ctx)
	if err != nil {
		a.log.Error("Reconcile failed: %v", err)
		return err
	}

	a.log.Info("Reconcile finished: checked=%d, fixed=%d, failed=%d", report.Checked, report.Fixed, report.Failed)
	fmt.Printf("checked=%d fixed=%d failed=%d\n", report.Checked, report.Fixed, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("reconcile: %d equipment summaries failed", report.Failed)
	}
	return nil
}
