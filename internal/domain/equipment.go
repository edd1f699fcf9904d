package domain

import "time"

// UnitStatus represents the status of a serialized equipment unit
type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitRented      UnitStatus = "rented"
	UnitMaintenance UnitStatus = "maintenance"
	UnitBroken      UnitStatus = "broken"
)

// IsValid returns true if the unit status is known
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitAvailable, UnitRented, UnitMaintenance, UnitBroken:
		return true
	}
	return false
}

// IsAdminSettable returns true for statuses an administrator may set directly.
// rented is reserved for the allocation flow.
func (s UnitStatus) IsAdminSettable() bool {
	return s == UnitAvailable || s == UnitMaintenance || s == UnitBroken
}

// Equipment is a catalog entry with a denormalized summary of its units
type Equipment struct {
	ID           int64
	Name         string
	Category     string
	PricePerHour int64
	Description  *string
	ImageURL     *string

	// Quantity and Available mirror the unit rows, see InventorySummary
	Quantity  int
	Available bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EquipmentUnit is one physical, serially-numbered item
type EquipmentUnit struct {
	ID           int64
	EquipmentID  int64
	SerialNumber string
	Status       UnitStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InventorySummary is the derived view written back to Equipment
type InventorySummary struct {
	Total     int
	Available int
}

// IsAvailable returns true if at least one unit is available
func (s InventorySummary) IsAvailable() bool {
	return s.Available > 0
}

// Matches returns true if the stored equipment summary agrees with the units
func (s InventorySummary) Matches(e *Equipment) bool {
	return e.Quantity == s.Total && e.Available == s.IsAvailable()
}
