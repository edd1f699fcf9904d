package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	unitRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/unit"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/inventory/models"
)

// CreateEquipment создает оборудование и quantity единиц в статусе available
func (s *Service) CreateEquipment(ctx context.Context, req *models.CreateEquipmentRequest) (*models.EquipmentResponse, error) {
	s.logger.Info("CreateEquipment: name=%q, category=%q, quantity=%d", req.Name, req.Category, req.Quantity)

	if err := validateCreateEquipment(req); err != nil {
		s.logger.Warn("CreateEquipment: validation failed: %v", err)
		return nil, err
	}

	var created *domain.Equipment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()
		equipment, err := s.equipmentRepo.Create(txCtx, &domain.Equipment{
			Name:         strings.TrimSpace(req.Name),
			Category:     strings.TrimSpace(req.Category),
			PricePerHour: req.PricePerHour,
			Description:  req.Description,
			ImageURL:     req.ImageURL,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			s.logger.Error("CreateEquipment: repository error: %v", err)
			return fmt.Errorf("%w: CreateEquipment - repository error: %v", ErrInternal, err)
		}

		if req.Quantity > 0 {
			serials := newSerials(serialPrefix(equipment.Name), req.Quantity)
			if _, err := s.unitRepo.CreateBulk(txCtx, equipment.ID, serials); err != nil {
				return s.mapCreateUnitsError("CreateEquipment", equipment.ID, err)
			}
		}

		if _, err := s.recompute(txCtx, equipment); err != nil {
			return err
		}

		created = equipment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateEquipment: created equipment id=%d with %d units", created.ID, created.Quantity)
	return models.FromDomainEquipment(created), nil
}

// GetEquipment возвращает оборудование вместе с его единицами
func (s *Service) GetEquipment(ctx context.Context, id int64) (*models.EquipmentDetailsResponse, error) {
	equipment, err := s.getEquipment(ctx, "GetEquipment", id)
	if err != nil {
		return nil, err
	}

	units, err := s.unitRepo.ListByEquipment(ctx, id)
	if err != nil {
		s.logger.Error("GetEquipment: failed to list units for equipment=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetEquipment - list units: %v", ErrInternal, err)
	}

	resp := &models.EquipmentDetailsResponse{
		EquipmentResponse: *models.FromDomainEquipment(equipment),
		Units:             models.FromDomainUnits(units),
	}
	for _, u := range units {
		if u.Status == domain.UnitAvailable {
			resp.AvailableUnits++
		}
	}

	return resp, nil
}

// ListEquipment возвращает каталог оборудования, опционально по категории
func (s *Service) ListEquipment(ctx context.Context, category *string) (*models.EquipmentListResponse, error) {
	items, err := s.equipmentRepo.List(ctx, category)
	if err != nil {
		s.logger.Error("ListEquipment: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListEquipment - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainEquipmentList(items), nil
}

// AddUnit добавляет единицу оборудования в статусе available
func (s *Service) AddUnit(ctx context.Context, equipmentID int64, req *models.AddUnitRequest) (*models.UnitResponse, error) {
	s.logger.Info("AddUnit: equipment=%d", equipmentID)

	if req.SerialNumber != nil && strings.TrimSpace(*req.SerialNumber) == "" {
		return nil, fmt.Errorf("%w: serial number must not be blank", ErrInvalidInput)
	}

	var unit *domain.EquipmentUnit

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		equipment, err := s.getEquipment(txCtx, "AddUnit", equipmentID)
		if err != nil {
			return err
		}

		serial := newSerial(serialPrefix(equipment.Name))
		if req.SerialNumber != nil {
			serial = strings.TrimSpace(*req.SerialNumber)
		}

		units, err := s.unitRepo.CreateBulk(txCtx, equipmentID, []string{serial})
		if err != nil {
			return s.mapCreateUnitsError("AddUnit", equipmentID, err)
		}
		if len(units) != 1 {
			return fmt.Errorf("%w: AddUnit - created %d units", ErrInternal, len(units))
		}

		if _, err := s.recompute(txCtx, equipment); err != nil {
			return err
		}

		unit = units[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddUnit: equipment=%d added unit id=%d serial=%s", equipmentID, unit.ID, unit.SerialNumber)
	resp := models.FromDomainUnit(unit)
	return &resp, nil
}

// DeleteUnit удаляет единицу, если она не в аренде
func (s *Service) DeleteUnit(ctx context.Context, equipmentID, unitID int64) error {
	s.logger.Info("DeleteUnit: equipment=%d, unit=%d", equipmentID, unitID)

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		equipment, err := s.getEquipment(txCtx, "DeleteUnit", equipmentID)
		if err != nil {
			return err
		}

		unit, err := s.getUnit(txCtx, "DeleteUnit", equipmentID, unitID)
		if err != nil {
			return err
		}
		if unit.Status == domain.UnitRented {
			return ErrUnitRented
		}

		if err := s.unitRepo.Delete(txCtx, unitID); err != nil {
			if errors.Is(err, unitRepo.ErrStatusChanged) {
				return ErrUnitRented
			}
			s.logger.Error("DeleteUnit: repository error for unit=%d: %v", unitID, err)
			return fmt.Errorf("%w: DeleteUnit - repository error: %v", ErrInternal, err)
		}

		_, err = s.recompute(txCtx, equipment)
		return err
	})
}

// SetUnitStatus меняет статус единицы: available, maintenance или broken.
// rented выставляется только при выдаче в аренду.
func (s *Service) SetUnitStatus(ctx context.Context, equipmentID, unitID int64, status domain.UnitStatus) (*models.UnitResponse, error) {
	s.logger.Info("SetUnitStatus: equipment=%d, unit=%d, status=%s", equipmentID, unitID, status)

	if !status.IsAdminSettable() {
		return nil, fmt.Errorf("%w: status %q cannot be set directly", ErrInvalidInput, status)
	}

	var unit *domain.EquipmentUnit

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		equipment, err := s.getEquipment(txCtx, "SetUnitStatus", equipmentID)
		if err != nil {
			return err
		}

		unit, err = s.getUnit(txCtx, "SetUnitStatus", equipmentID, unitID)
		if err != nil {
			return err
		}
		if unit.Status == domain.UnitRented {
			return ErrUnitRented
		}

		now := s.timeProvider.Now()
		from := []domain.UnitStatus{domain.UnitAvailable, domain.UnitMaintenance, domain.UnitBroken}
		if err := s.unitRepo.UpdateStatus(txCtx, unitID, from, status, now); err != nil {
			if errors.Is(err, unitRepo.ErrStatusChanged) {
				return ErrUnitRented
			}
			s.logger.Error("SetUnitStatus: repository error for unit=%d: %v", unitID, err)
			return fmt.Errorf("%w: SetUnitStatus - repository error: %v", ErrInternal, err)
		}
		unit.Status = status
		unit.UpdatedAt = now

		_, err = s.recompute(txCtx, equipment)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := models.FromDomainUnit(unit)
	return &resp, nil
}

// DeleteEquipment удаляет оборудование вместе с единицами
// Недоступно, пока хотя бы одна единица в аренде
func (s *Service) DeleteEquipment(ctx context.Context, equipmentID int64) error {
	s.logger.Info("DeleteEquipment: equipment=%d", equipmentID)

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.getEquipment(txCtx, "DeleteEquipment", equipmentID); err != nil {
			return err
		}

		rented, err := s.unitRepo.CountByStatus(txCtx, equipmentID, domain.UnitRented)
		if err != nil {
			s.logger.Error("DeleteEquipment: count error for equipment=%d: %v", equipmentID, err)
			return fmt.Errorf("%w: DeleteEquipment - count rented: %v", ErrInternal, err)
		}
		if rented > 0 {
			s.logger.Warn("DeleteEquipment: equipment=%d has %d rented units", equipmentID, rented)
			return fmt.Errorf("%w: %d units rented", ErrEquipmentInUse, rented)
		}

		deleted, err := s.unitRepo.DeleteByEquipment(txCtx, equipmentID)
		if err != nil {
			s.logger.Error("DeleteEquipment: failed to delete units of equipment=%d: %v", equipmentID, err)
			return fmt.Errorf("%w: DeleteEquipment - delete units: %v", ErrInternal, err)
		}

		if err := s.equipmentRepo.Delete(txCtx, equipmentID); err != nil {
			s.logger.Error("DeleteEquipment: repository error for equipment=%d: %v", equipmentID, err)
			return fmt.Errorf("%w: DeleteEquipment - repository error: %v", ErrInternal, err)
		}

		s.logger.Info("DeleteEquipment: equipment=%d deleted with %d units", equipmentID, deleted)
		return nil
	})
}

func (s *Service) getUnit(ctx context.Context, op string, equipmentID, unitID int64) (*domain.EquipmentUnit, error) {
	unit, err := s.unitRepo.GetByID(ctx, equipmentID, unitID)
	if err != nil {
		if errors.Is(err, unitRepo.ErrUnitNotFound) {
			s.logger.Warn("%s: unit id=%d of equipment=%d not found", op, unitID, equipmentID)
			return nil, ErrUnitNotFound
		}
		s.logger.Error("%s: repository error for unit id=%d: %v", op, unitID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return unit, nil
}

func validateCreateEquipment(req *models.CreateEquipmentRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if req.PricePerHour < 0 {
		return fmt.Errorf("%w: pricePerHour must not be negative", ErrInvalidInput)
	}
	if req.Quantity < 0 || req.Quantity > domain.MaxInitialUnits {
		return fmt.Errorf("%w: quantity must be between 0 and %d", ErrInvalidInput, domain.MaxInitialUnits)
	}
	return nil
}
