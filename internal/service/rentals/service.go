// Package rentals завершает и отменяет аренды оборудования
package rentals

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	rentalRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/rental"
	"github.com/m04kA/SMC-SportsBookingService/internal/service/rentals/models"
)

// Service сервис аренд оборудования
type Service struct {
	rentalRepo   RentalRepository
	inventory    Inventory
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса аренд
// notifier может быть nil
func NewService(
	rentalRepo RentalRepository,
	inventory Inventory,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		rentalRepo:   rentalRepo,
		inventory:    inventory,
		notifier:     notifier,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает аренду, доступную владельцу и персоналу
func (s *Service) GetByID(ctx context.Context, id int64, identity domain.Identity) (*models.RentalResponse, error) {
	rental, err := s.getRental(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if rental.UserID != identity.UserID && !identity.IsStaff() {
		s.logger.Warn("GetByID: access denied for user=%d to rental id=%d", identity.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainRental(rental), nil
}

// GetUserRentals получает аренды пользователя
func (s *Service) GetUserRentals(ctx context.Context, userID int64) (*models.RentalListResponse, error) {
	items, err := s.rentalRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("GetUserRentals: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: GetUserRentals - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserRentals: fetched %d rentals for user=%d", len(items), userID)
	return models.FromDomainRentalList(items), nil
}

// Complete завершает аренду и возвращает единицы (персонал)
func (s *Service) Complete(ctx context.Context, id int64) (*models.RentalResponse, error) {
	s.logger.Info("Complete: rental id=%d", id)

	rental, err := s.finish(ctx, "Complete", id, domain.RentalCompleted, nil)
	if err != nil {
		return nil, err
	}

	return models.FromDomainRental(rental), nil
}

// Cancel отменяет аренду и возвращает единицы.
// Отменить может владелец или администратор.
func (s *Service) Cancel(ctx context.Context, id int64, identity domain.Identity) (*models.RentalResponse, error) {
	s.logger.Info("Cancel: rental id=%d by user=%d", id, identity.UserID)

	rental, err := s.finish(ctx, "Cancel", id, domain.RentalCancelled, func(r *domain.EquipmentRental) error {
		if r.UserID != identity.UserID && !identity.IsAdmin() {
			s.logger.Warn("Cancel: access denied for user=%d to rental id=%d", identity.UserID, id)
			return ErrAccessDenied
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyRentalCancelled(rental)
	}

	return models.FromDomainRental(rental), nil
}

// finish переводит аренду из renting в конечный статус, освобождает единицы
// и пересчитывает сводку в одной транзакции
func (s *Service) finish(
	ctx context.Context,
	op string,
	id int64,
	status domain.RentalStatus,
	authorize func(r *domain.EquipmentRental) error,
) (*domain.EquipmentRental, error) {
	var rental *domain.EquipmentRental

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		r, err := s.getRental(txCtx, op, id)
		if err != nil {
			return err
		}

		if authorize != nil {
			if err := authorize(r); err != nil {
				return err
			}
		}

		if r.IsTerminal() {
			s.logger.Warn("%s: rental id=%d already %s", op, id, r.Status)
			return ErrInvalidState
		}

		now := s.timeProvider.Now()
		if err := s.rentalRepo.Finish(txCtx, id, status, now); err != nil {
			if errors.Is(err, rentalRepo.ErrStatusChanged) {
				return ErrInvalidState
			}
			s.logger.Error("%s: repository error for rental id=%d: %v", op, id, err)
			return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}

		if _, err := s.inventory.ReturnUnits(txCtx, r.EquipmentID, r.UnitIDs); err != nil {
			s.logger.Error("%s: failed to return units of rental id=%d: %v", op, id, err)
			return fmt.Errorf("%w: %s - return units: %v", ErrInternal, op, err)
		}

		r.Status = status
		r.UpdatedAt = now
		if status == domain.RentalCompleted {
			r.CompletedAt = &now
		} else {
			r.CancelledAt = &now
		}

		rental = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: rental id=%d is now %s, released %d units", op, id, status, len(rental.UnitIDs))
	return rental, nil
}

func (s *Service) getRental(ctx context.Context, op string, id int64) (*domain.EquipmentRental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rentalRepo.ErrRentalNotFound) {
			s.logger.Warn("%s: rental id=%d not found", op, id)
			return nil, ErrRentalNotFound
		}
		s.logger.Error("%s: repository error for rental id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return rental, nil
}
