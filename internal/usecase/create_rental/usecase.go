package create_rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	equipmentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/equipment"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory"
)

// UseCase use case для аренды оборудования
type UseCase struct {
	equipmentRepo EquipmentRepository
	rentalRepo    RentalRepository
	inventory     Inventory
	txManager     TransactionManager
	timeProvider  TimeProvider
	location      *time.Location
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	equipmentRepo EquipmentRepository,
	rentalRepo RentalRepository,
	inventory Inventory,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		equipmentRepo: equipmentRepo,
		rentalRepo:    rentalRepo,
		inventory:     inventory,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		location:      location,
		logger:        logger,
	}
}

// Execute выполняет use case аренды оборудования.
// Выделение единиц, запись аренды и пересчет сводки идут в одной транзакции:
// при любой ошибке единицы остаются свободными.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateRental: user=%d, equipment=%d, quantity=%d, date=%s, hours=%d",
		req.UserID, req.EquipmentID, req.Quantity, req.RentalDate.Format(domain.DateFormat), req.DurationHours)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateRental: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата аренды не может быть в прошлом
	now := uc.timeProvider.Now().In(uc.location)
	date := dateOnly(req.RentalDate, uc.location)
	if date.Before(dateOnly(now, uc.location)) {
		uc.logger.Warn("CreateRental: rental date %s is in the past", date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	var result *domain.EquipmentRental

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем карточку оборудования и берем цену
		equipment, err := uc.equipmentRepo.GetByID(txCtx, req.EquipmentID)
		if err != nil {
			if errors.Is(err, equipmentRepo.ErrEquipmentNotFound) {
				return ErrEquipmentNotFound
			}
			uc.logger.Error("CreateRental: failed to get equipment id=%d: %v", req.EquipmentID, err)
			return fmt.Errorf("%w: failed to get equipment: %v", ErrInternal, err)
		}

		// 3.2. Выделяем единицы
		unitIDs, err := uc.inventory.AllocateUnits(txCtx, equipment.ID, req.Quantity)
		if err != nil {
			return mapInventoryError(err)
		}

		// 3.3. Создаем аренду
		rental, err := uc.rentalRepo.Create(txCtx, &domain.EquipmentRental{
			UserID:        req.UserID,
			EquipmentID:   equipment.ID,
			UnitIDs:       unitIDs,
			RentalDate:    date,
			DurationHours: req.DurationHours,
			TotalPrice:    domain.RentalPrice(equipment.PricePerHour, req.DurationHours, len(unitIDs)),
			Status:        domain.RentalRenting,
			PaymentStatus: domain.PaymentUnpaid,
		})
		if err != nil {
			uc.logger.Error("CreateRental: failed to create rental: %v", err)
			return fmt.Errorf("%w: failed to create rental: %v", ErrInternal, err)
		}

		// 3.4. Пересчитываем сводку оборудования
		if _, err := uc.inventory.Recompute(txCtx, equipment.ID); err != nil {
			return mapInventoryError(err)
		}

		result = rental
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientInventory), errors.Is(err, ErrEquipmentNotFound), errors.Is(err, ErrInternal):
			return nil, err
		default:
			uc.logger.Error("CreateRental: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("CreateRental: created rental id=%d with units %v", result.ID, result.UnitIDs)

	return &Response{
		ID:            result.ID,
		UserID:        result.UserID,
		EquipmentID:   result.EquipmentID,
		UnitIDs:       result.UnitIDs,
		RentalDate:    result.RentalDate,
		DurationHours: result.DurationHours,
		TotalPrice:    result.TotalPrice,
		Status:        string(result.Status),
		PaymentStatus: string(result.PaymentStatus),
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}

func mapInventoryError(err error) error {
	switch {
	case errors.Is(err, inventory.ErrInsufficientInventory):
		return fmt.Errorf("%w: %v", ErrInsufficientInventory, err)
	case errors.Is(err, inventory.ErrEquipmentNotFound):
		return ErrEquipmentNotFound
	default:
		return fmt.Errorf("%w: inventory: %v", ErrInternal, err)
	}
}
