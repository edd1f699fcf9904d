package models

import (
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
)

// Request модели

// CreateEquipmentRequest запрос на создание оборудования с начальными единицами
type CreateEquipmentRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	PricePerHour int64   `json:"pricePerHour"`
	Description  *string `json:"description,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	Quantity     int     `json:"quantity"`
}

// AddUnitRequest запрос на добавление единицы
// Если SerialNumber не указан, он генерируется
type AddUnitRequest struct {
	SerialNumber *string `json:"serialNumber,omitempty"`
}

// Response модели

// EquipmentResponse карточка оборудования
type EquipmentResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	PricePerHour int64     `json:"pricePerHour"`
	Description  *string   `json:"description,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Quantity     int       `json:"quantity"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// EquipmentDetailsResponse карточка оборудования с единицами
type EquipmentDetailsResponse struct {
	EquipmentResponse
	AvailableUnits int            `json:"availableUnits"`
	Units          []UnitResponse `json:"units"`
}

// EquipmentListResponse список оборудования
type EquipmentListResponse struct {
	Equipment []EquipmentResponse `json:"equipment"`
}

// UnitResponse единица оборудования
type UnitResponse struct {
	ID           int64     `json:"id"`
	EquipmentID  int64     `json:"equipmentId"`
	SerialNumber string    `json:"serialNumber"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SummaryResponse результат пересчета сводки
type SummaryResponse struct {
	EquipmentID int64 `json:"equipmentId"`
	Quantity    int   `json:"quantity"`
	Available   bool  `json:"available"`
	Changed     bool  `json:"changed"`
}

// SyncResponse результат синхронизации количества единиц
type SyncResponse struct {
	EquipmentID  int64    `json:"equipmentId"`
	CreatedUnits []string `json:"createdUnits"`
	Quantity     int      `json:"quantity"`
	Available    bool     `json:"available"`
	Warning      *string  `json:"warning,omitempty"`
}

// ReconcileReport результат пересчета всех сводок
type ReconcileReport struct {
	Checked int `json:"checked"`
	Fixed   int `json:"fixed"`
	Failed  int `json:"failed"`
}

// Методы конвертации

// FromDomainEquipment конвертирует domain модель в DTO
func FromDomainEquipment(e *domain.Equipment) *EquipmentResponse {
	if e == nil {
		return nil
	}
	return &EquipmentResponse{
		ID:           e.ID,
		Name:         e.Name,
		Category:     e.Category,
		PricePerHour: e.PricePerHour,
		Description:  e.Description,
		ImageURL:     e.ImageURL,
		Quantity:     e.Quantity,
		Available:    e.Available,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// FromDomainEquipmentList конвертирует список domain моделей в DTO
func FromDomainEquipmentList(items []*domain.Equipment) *EquipmentListResponse {
	resp := &EquipmentListResponse{Equipment: make([]EquipmentResponse, 0, len(items))}
	for _, e := range items {
		if r := FromDomainEquipment(e); r != nil {
			resp.Equipment = append(resp.Equipment, *r)
		}
	}
	return resp
}

// FromDomainUnit конвертирует domain модель в DTO
func FromDomainUnit(u *domain.EquipmentUnit) UnitResponse {
	return UnitResponse{
		ID:           u.ID,
		EquipmentID:  u.EquipmentID,
		SerialNumber: u.SerialNumber,
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// FromDomainUnits конвертирует список единиц в DTO
func FromDomainUnits(units []*domain.EquipmentUnit) []UnitResponse {
	resp := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		resp = append(resp, FromDomainUnit(u))
	}
	return resp
}
