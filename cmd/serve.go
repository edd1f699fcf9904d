package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addUnitHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/add_unit"
	cancelBookingHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/create_booking"
	createEquipmentHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/create_equipment"
	createRentalHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/create_rental"
	deleteEquipmentHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/delete_equipment"
	deleteUnitHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/delete_unit"
	finishRentalHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/finish_rental"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_available_slots"
	getBookedSlotsHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_booked_slots"
	getBookingHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_booking"
	getEquipmentHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_equipment"
	getRentalHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_rental"
	getUserBookingsHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_user_bookings"
	getUserRentalsHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/get_user_rentals"
	initiatePaymentHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/initiate_payment"
	listBookingsHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/list_bookings"
	listEquipmentHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/list_equipment"
	paymentCallbackHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/payment_callback"
	reconcileEquipmentHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/reconcile_equipment"
	reportPaymentOutcomeHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/report_payment_outcome"
	setUnitStatusHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/set_unit_status"
	updateBookingStatusHandler "github.com/m04kA/SMC-SportsBookingService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-SportsBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/booking"
	equipmentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/equipment"
	paymentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/payment"
	rentalRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/rental"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/notifier"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SportsBookingService/internal/integrations/slotcache"
	userServiceClient "github.com/m04kA/SMC-SportsBookingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-SportsBookingService/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-SportsBookingService/internal/service/bookings"
	paymentsService "github.com/m04kA/SMC-SportsBookingService/internal/service/payments"
	rentalsService "github.com/m04kA/SMC-SportsBookingService/internal/service/rentals"
	createBookingUC "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_booking"
	createRentalUC "github.com/m04kA/SMC-SportsBookingService/internal/usecase/create_rental"
	getAvailableSlotsUC "github.com/m04kA/SMC-SportsBookingService/internal/usecase/get_available_slots"
)

func runServe(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, log := a.cfg, a.log
	log.Info("Starting SMC-SportsBookingService...")

	// Кэш занятых слотов (опционально, при недоступности Redis работаем без него)
	var (
		bookingCache bookingsService.SlotCache
		createCache  createBookingUC.SlotCache
	)
	if cfg.Redis.Enabled {
		client, err := slotcache.NewClient(ctx, slotcache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, slot cache disabled: %v", err)
		} else {
			defer client.Close()
			cache := slotcache.New(client, time.Duration(cfg.Redis.TTL)*time.Second)
			bookingCache, createCache = cache, cache
			log.Info("Slot cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Уведомления: RabbitMQ или журнал, контакты из UserService
	var publisher notifier.Publisher = notifier.NewLogPublisher(log)
	if cfg.RabbitMQ.Enabled {
		amqpPublisher := notifier.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("Notifications published to RabbitMQ queue %s", cfg.RabbitMQ.Queue)
	}

	var contacts notifier.ContactResolver
	if cfg.UserService.URL != "" {
		contacts = userServiceClient.NewClient(
			cfg.UserService.URL,
			time.Duration(cfg.UserService.Timeout)*time.Second,
			log,
		)
		log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)
	}

	dispatcher := notifier.NewDispatcher(publisher, contacts, log, notifier.Options{
		BufferSize:  cfg.RabbitMQ.BufferSize,
		Workers:     cfg.RabbitMQ.Workers,
		MaxAttempts: cfg.RabbitMQ.MaxAttempts,
	})
	dispatcher.Start(ctx)

	gateway := paymentgateway.NewClient(paymentgateway.Config{
		PaymentURL: cfg.PaymentGateway.PaymentURL,
		TmnCode:    cfg.PaymentGateway.TmnCode,
		HashSecret: cfg.PaymentGateway.HashSecret,
		ReturnURL:  cfg.PaymentGateway.ReturnURL,
		Location:   a.location,
		ExpireIn:   time.Duration(cfg.PaymentGateway.ExpireMinutes) * time.Minute,
	})

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(a.wrapped)
	equipmentRepository := equipmentRepo.NewRepository(a.wrapped)
	rentalRepository := rentalRepo.NewRepository(a.wrapped)
	paymentRepository := paymentRepo.NewRepository(a.wrapped)

	// Сервисы
	inventorySvc := a.inventory()
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		bookingCache,
		dispatcher,
		a.metrics,
		a.location,
		log,
	)
	rentalSvc := rentalsService.NewService(
		rentalRepository,
		inventorySvc,
		dispatcher,
		a.txMgr,
		log,
	)
	paymentSvc := paymentsService.NewService(
		paymentRepository,
		bookingRepository,
		rentalRepository,
		gateway,
		dispatcher,
		a.metrics,
		a.txMgr,
		log,
	)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		createCache,
		a.txMgr,
		a.metrics,
		a.location,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		cfg.Booking.Schedule(),
		a.location,
		log,
	)
	createRentalUseCase := createRentalUC.NewUseCase(
		equipmentRepository,
		rentalRepository,
		inventorySvc,
		a.txMgr,
		a.location,
		log,
	)

	router := newRouter(a, routeHandlers{
		createBooking:        createBookingHandler.NewHandler(createBookingUseCase, log),
		getAvailableSlots:    getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log),
		getBookedSlots:       getBookedSlotsHandler.NewHandler(bookingSvc, log),
		getBooking:           getBookingHandler.NewHandler(bookingSvc, log),
		getUserBookings:      getUserBookingsHandler.NewHandler(bookingSvc, log),
		cancelBooking:        cancelBookingHandler.NewHandler(bookingSvc, log),
		adminCancelBooking:   cancelBookingHandler.NewAdminHandler(bookingSvc, log),
		listBookings:         listBookingsHandler.NewHandler(bookingSvc, log),
		checkIn:              updateBookingStatusHandler.NewCheckInHandler(bookingSvc, log),
		checkOut:             updateBookingStatusHandler.NewCheckOutHandler(bookingSvc, log),
		noShow:               updateBookingStatusHandler.NewNoShowHandler(bookingSvc, log),
		initiatePayment:      initiatePaymentHandler.NewHandler(paymentSvc, log),
		paymentCallback:      paymentCallbackHandler.NewHandler(paymentSvc, log),
		reportPaymentOutcome: reportPaymentOutcomeHandler.NewHandler(paymentSvc, log),
		createRental:         createRentalHandler.NewHandler(createRentalUseCase, log),
		getRental:            getRentalHandler.NewHandler(rentalSvc, log),
		getUserRentals:       getUserRentalsHandler.NewHandler(rentalSvc, log),
		cancelRental:         finishRentalHandler.NewCancelHandler(rentalSvc, log),
		completeRental:       finishRentalHandler.NewCompleteHandler(rentalSvc, log),
		listEquipment:        listEquipmentHandler.NewHandler(inventorySvc, log),
		getEquipment:         getEquipmentHandler.NewHandler(inventorySvc, log),
		createEquipment:      createEquipmentHandler.NewHandler(inventorySvc, log),
		deleteEquipment:      deleteEquipmentHandler.NewHandler(inventorySvc, log),
		addUnit:              addUnitHandler.NewHandler(inventorySvc, log),
		deleteUnit:           deleteUnitHandler.NewHandler(inventorySvc, log),
		setUnitStatus:        setUnitStatusHandler.NewHandler(inventorySvc, log),
		syncEquipment:        reconcileEquipmentHandler.NewSyncHandler(inventorySvc, log),
		recomputeEquipment:   reconcileEquipmentHandler.NewRecomputeHandler(inventorySvc, log),
	})

	// Фоновый пересчет сводок инвентаря
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(inventorySvc, cfg.Scheduler.ReconcileCron, a.location, log)
		if err != nil {
			return err
		}
		sched.Start()
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
		log.Error("Server failed: %v", runErr)
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	// После остановки HTTP новых событий нет, дожидаемся доставки очереди
	dispatcher.Stop(shutdownCtx)

	log.Info("Server stopped gracefully")
	return runErr
}

// routeHandlers все HTTP обработчики сервиса
type routeHandlers struct {
	createBooking        *createBookingHandler.Handler
	getAvailableSlots    *getAvailableSlotsHandler.Handler
	getBookedSlots       *getBookedSlotsHandler.Handler
	getBooking           *getBookingHandler.Handler
	getUserBookings      *getUserBookingsHandler.Handler
	cancelBooking        *cancelBookingHandler.Handler
	adminCancelBooking   *cancelBookingHandler.Handler
	listBookings         *listBookingsHandler.Handler
	checkIn              *updateBookingStatusHandler.Handler
	checkOut             *updateBookingStatusHandler.Handler
	noShow               *updateBookingStatusHandler.Handler
	initiatePayment      *initiatePaymentHandler.Handler
	paymentCallback      *paymentCallbackHandler.Handler
	reportPaymentOutcome *reportPaymentOutcomeHandler.Handler
	createRental         *createRentalHandler.Handler
	getRental            *getRentalHandler.Handler
	getUserRentals       *getUserRentalsHandler.Handler
	cancelRental         *finishRentalHandler.Handler
	completeRental       *finishRentalHandler.Handler
	listEquipment        *listEquipmentHandler.Handler
	getEquipment         *getEquipmentHandler.Handler
	createEquipment      *createEquipmentHandler.Handler
	deleteEquipment      *deleteEquipmentHandler.Handler
	addUnit              *addUnitHandler.Handler
	deleteUnit           *deleteUnitHandler.Handler
	setUnitStatus        *setUnitStatusHandler.Handler
	syncEquipment        *reconcileEquipmentHandler.Handler
	recomputeEquipment   *reconcileEquipmentHandler.Handler
}

func newRouter(a *app, h routeHandlers) *mux.Router {
	r := mux.NewRouter()

	// Metrics middleware и endpoint (публичный, без аутентификации)
	if a.metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(a.cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		a.log.Info("Prometheus metrics endpoint exposed at %s", a.cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/bookings/booked-slots", h.getBookedSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/available-slots", h.getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/equipment", h.listEquipment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{equipmentId}", h.getEquipment.Handle).Methods(http.MethodGet)

	// Ответ платежного шлюза, подлинность проверяется подписью
	api.HandleFunc("/payments/callback", h.paymentCallback.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (JWT или X-User-ID/X-User-Role от gateway)
	// ============================================================

	if a.cfg.Auth.JWTSecret == "" && a.cfg.Auth.TrustGatewayHeaders {
		a.log.Warn("JWT secret is not set, trusting X-User-ID/X-User-Role headers: the service must only be reachable through the API gateway")
	}

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.NewAuth(a.cfg.Auth.JWTSecret, a.cfg.Auth.TrustGatewayHeaders))

	// --- Бронирования ---
	protected.HandleFunc("/bookings", h.createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/my-bookings", h.getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", h.getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", h.cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Оплата ---
	protected.HandleFunc("/payments", h.initiatePayment.Handle).Methods(http.MethodPost)

	// --- Прокат инвентаря ---
	protected.HandleFunc("/rentals", h.createRental.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/rentals/my-rentals", h.getUserRentals.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/rentals/{rentalId}", h.getRental.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/rentals/{rentalId}/cancel", h.cancelRental.Handle).Methods(http.MethodPatch)

	// ============================================================
	// STAFF ROUTES (персонал и администраторы)
	// ============================================================

	staff := protected.PathPrefix("").Subrouter()
	staff.Use(middleware.RequireRole(domain.RoleStaff, domain.RoleAdmin))

	staff.HandleFunc("/bookings/{bookingId}/checkin", h.checkIn.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/bookings/{bookingId}/checkout", h.checkOut.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/admin/bookings", h.listBookings.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/rentals/{rentalId}/complete", h.completeRental.Handle).Methods(http.MethodPatch)

	// ============================================================
	// ADMIN ROUTES
	// ============================================================

	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	noShowRoute := protected.Path("/bookings/{bookingId}/no-show").Subrouter()
	noShowRoute.Use(adminOnly)
	noShowRoute.Methods(http.MethodPatch).HandlerFunc(h.noShow.Handle)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly)

	admin.HandleFunc("/bookings/{bookingId}/cancel", h.adminCancelBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/payments/{reference}/outcome", h.reportPaymentOutcome.Handle).Methods(http.MethodPost)

	// --- Управление инвентарем ---
	admin.HandleFunc("/equipment", h.createEquipment.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/equipment/{equipmentId}", h.deleteEquipment.Handle).Methods(http.MethodDelete)
	admin.HandleFunc("/equipment/{equipmentId}/units", h.addUnit.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/equipment/{equipmentId}/units/{unitId}", h.deleteUnit.Handle).Methods(http.MethodDelete)
	admin.HandleFunc("/equipment/{equipmentId}/units/{unitId}/status", h.setUnitStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/equipment/{equipmentId}/sync", h.syncEquipment.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/equipment/{equipmentId}/recompute", h.recomputeEquipment.Handle).Methods(http.MethodPost)

	return r
}
