// Package inventory поддерживает сводку оборудования (quantity, available)
// в согласии со статусами его единиц и выдает единицы в аренду
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	equipmentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/equipment"
	unitRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/unit"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

// Service сервис инвентаря
type Service struct {
	equipmentRepo EquipmentRepository
	unitRepo      UnitRepository
	txManager     TransactionManager
	metrics       Metrics
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса инвентаря
func NewService(
	equipmentRepo EquipmentRepository,
	unitRepo UnitRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		equipmentRepo: equipmentRepo,
		unitRepo:      unitRepo,
		txManager:     txManager,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// AllocateUnits переводит count свободных единиц оборудования в rented.
// Выделение атомарно: при нехватке единиц ничего не меняется.
// Внутри внешней транзакции откат выполняет вызывающий.
func (s *Service) AllocateUnits(ctx context.Context, equipmentID int64, count int) ([]int64, error) {
	s.logger.Info("AllocateUnits: equipment=%d, count=%d", equipmentID, count)

	if count < 1 || count > domain.MaxUnitsPerRental {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidInput, domain.MaxUnitsPerRental)
	}

	var allocated []int64

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.getEquipment(txCtx, "AllocateUnits", equipmentID); err != nil {
			return err
		}

		ids, err := s.unitRepo.Allocate(txCtx, equipmentID, count, s.timeProvider.Now())
		if err != nil {
			if errors.Is(err, unitRepo.ErrInsufficientUnits) {
				s.logger.Warn("AllocateUnits: equipment=%d has %d of %d requested units", equipmentID, len(ids), count)
				return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientInventory, count, len(ids))
			}
			s.logger.Error("AllocateUnits: repository error for equipment=%d: %v", equipmentID, err)
			return fmt.Errorf("%w: AllocateUnits - repository error: %v", ErrInternal, err)
		}

		allocated = ids
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientInventory) {
			s.metrics.InsufficientInventory()
		}
		return nil, err
	}

	s.metrics.UnitsRented(len(allocated))
	s.logger.Info("AllocateUnits: equipment=%d allocated units %v", equipmentID, allocated)
	return allocated, nil
}

// Release возвращает единицы в available
// Единицы, которые уже не в аренде, пропускаются
func (s *Service) Release(ctx context.Context, unitIDs []int64) (int, error) {
	if len(unitIDs) == 0 {
		return 0, nil
	}

	released, err := s.unitRepo.Release(ctx, unitIDs, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("Release: repository error for units %v: %v", unitIDs, err)
		return 0, fmt.Errorf("%w: Release - repository error: %v", ErrInternal, err)
	}

	if released != len(unitIDs) {
		s.logger.Warn("Release: released %d of %d units %v", released, len(unitIDs), unitIDs)
	}

	s.metrics.UnitsReturned(released)
	return released, nil
}

// ReturnUnits освобождает единицы аренды и пересчитывает сводку в одной транзакции.
// Строка оборудования блокируется раньше единиц, в том же порядке, что и при выдаче
// и административных изменениях единиц.
func (s *Service) ReturnUnits(ctx context.Context, equipmentID int64, unitIDs []int64) (*models.SummaryResponse, error) {
	var resp *models.SummaryResponse

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		equipment, err := s.getEquipment(txCtx, "ReturnUnits", equipmentID)
		if err != nil {
			return err
		}

		if _, err := s.Release(txCtx, unitIDs); err != nil {
			return err
		}

		resp, err = s.recompute(txCtx, equipment)
		return err
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Recompute пересчитывает quantity и available по единицам оборудования.
// Операция идемпотентна: сводка записывается только при расхождении.
func (s *Service) Recompute(ctx context.Context, equipmentID int64) (*models.SummaryResponse, error) {
	var resp *models.SummaryResponse

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		equipment, err := s.getEquipment(txCtx, "Recompute", equipmentID)
		if err != nil {
			return err
		}

		resp, err = s.recompute(txCtx, equipment)
		return err
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// RecomputeAll пересчитывает сводки всего оборудования.
// Ошибка по одной позиции не прерывает обход.
func (s *Service) RecomputeAll(ctx context.Context) (*models.ReconcileReport, error) {
	ids, err := s.equipmentRepo.ListIDs(ctx)
	if err != nil {
		s.logger.Error("RecomputeAll: repository error: %v", err)
		return nil, fmt.Errorf("%w: RecomputeAll - repository error: %v", ErrInternal, err)
	}

	report := &models.ReconcileReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Checked++
		summary, err := s.Recompute(ctx, id)
		if err != nil {
			// Оборудование могли удалить после ListIDs
			if errors.Is(err, ErrEquipmentNotFound) {
				continue
			}
			s.logger.Error("RecomputeAll: equipment=%d: %v", id, err)
			report.Failed++
			continue
		}
		if summary.Changed {
			report.Fixed++
		}
	}

	s.logger.Info("RecomputeAll: checked=%d, fixed=%d, failed=%d", report.Checked, report.Fixed, report.Failed)
	return report, nil
}

// SyncItemCount сравнивает сохраненный quantity с числом единиц.
// Недостающие единицы создаются в available со сгенерированными серийными номерами.
// Лишние единицы не удаляются, возвращается предупреждение.
func (s *Service) SyncItemCount(ctx context.Context, equipmentID int64) (*models.SyncResponse, error) {
	s.logger.Info("SyncItemCount: equipment=%d", equipmentID)

	resp := &models.SyncResponse{EquipmentID: equipmentID, CreatedUnits: []string{}}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		equipment, err := s.getEquipment(txCtx, "SyncItemCount", equipmentID)
		if err != nil {
			return err
		}

		actual, err := s.unitRepo.Summary(txCtx, equipmentID)
		if err != nil {
			s.logger.Error("SyncItemCount: summary error for equipment=%d: %v", equipmentID, err)
			return fmt.Errorf("%w: SyncItemCount - summary: %v", ErrInternal, err)
		}

		switch {
		case equipment.Quantity > actual.Total:
			serials := newSerials(serialPrefix(equipment.Name), equipment.Quantity-actual.Total)
			if _, err := s.unitRepo.CreateBulk(txCtx, equipmentID, serials); err != nil {
				return s.mapCreateUnitsError("SyncItemCount", equipmentID, err)
			}
			resp.CreatedUnits = serials
			s.logger.Info("SyncItemCount: equipment=%d created %d units", equipmentID, len(serials))

		case equipment.Quantity < actual.Total:
			warning := fmt.Sprintf("stored quantity %d is less than unit count %d, extra units were not deleted",
				equipment.Quantity, actual.Total)
			resp.Warning = &warning
			s.logger.Warn("SyncItemCount: equipment=%d: %s", equipmentID, warning)
		}

		summary, err := s.recompute(txCtx, equipment)
		if err != nil {
			return err
		}

		resp.Quantity = summary.Quantity
		resp.Available = summary.Available
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// recompute считает сводку по единицам и записывает ее при расхождении
func (s *Service) recompute(ctx context.Context, equipment *domain.Equipment) (*models.SummaryResponse, error) {
	summary, err := s.unitRepo.Summary(ctx, equipment.ID)
	if err != nil {
		s.logger.Error("Recompute: summary error for equipment=%d: %v", equipment.ID, err)
		return nil, fmt.Errorf("%w: Recompute - summary: %v", ErrInternal, err)
	}

	resp := &models.SummaryResponse{
		EquipmentID: equipment.ID,
		Quantity:    summary.Total,
		Available:   summary.IsAvailable(),
	}

	if summary.Matches(equipment) {
		return resp, nil
	}

	now := s.timeProvider.Now()
	if err := s.equipmentRepo.UpdateSummary(ctx, equipment.ID, summary, now); err != nil {
		if errors.Is(err, equipmentRepo.ErrEquipmentNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("Recompute: update error for equipment=%d: %v", equipment.ID, err)
		return nil, fmt.Errorf("%w: Recompute - update summary: %v", ErrInternal, err)
	}

	s.logger.Info("Recompute: equipment=%d quantity %d -> %d, available %t -> %t",
		equipment.ID, equipment.Quantity, summary.Total, equipment.Available, summary.IsAvailable())

	equipment.Quantity = summary.Total
	equipment.Available = summary.IsAvailable()
	equipment.UpdatedAt = now
	resp.Changed = true

	return resp, nil
}

func (s *Service) getEquipment(ctx context.Context, op string, id int64) (*domain.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, equipmentRepo.ErrEquipmentNotFound) {
			s.logger.Warn("%s: equipment id=%d not found", op, id)
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("%s: repository error for equipment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return equipment, nil
}

func (s *Service) mapCreateUnitsError(op string, equipmentID int64, err error) error {
	if errors.Is(err, unitRepo.ErrSerialTaken) {
		s.logger.Warn("%s: duplicate serial for equipment=%d", op, equipmentID)
		return ErrDuplicateSerial
	}
	s.logger.Error("%s: failed to create units for equipment=%d: %v", op, equipmentID, err)
	return fmt.Errorf("%w: %s - create units: %v", ErrInternal, op, err)
}
