package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-SportsBookingService/internal/domain"
	equipmentRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/equipment"
	unitRepo "github.com/m04kA/SMC-SportsBookingService/internal/infra/storage/unit"
)

// memState хранилище в памяти с откатом при ошибке транзакции
type memState struct {
	equipment     map[int64]domain.Equipment
	units         map[int64]domain.EquipmentUnit
	nextID        int64
	summaryWrites int
	locks         []string // порядок обращений к строкам оборудования и единиц
}

func newMemState() *memState {
	return &memState{
		equipment: map[int64]domain.Equipment{},
		units:     map[int64]domain.EquipmentUnit{},
	}
}

func (s *memState) snapshot() *memState {
	cp := &memState{
		equipment:     make(map[int64]domain.Equipment, len(s.equipment)),
		units:         make(map[int64]domain.EquipmentUnit, len(s.units)),
		nextID:        s.nextID,
		summaryWrites: s.summaryWrites,
	}
	for k, v := range s.equipment {
		cp.equipment[k] = v
	}
	for k, v := range s.units {
		cp.units[k] = v
	}
	return cp
}

func (s *memState) restore(from *memState) {
	*s = *from
}

func (s *memState) addEquipment(name string, quantity int, unitStatuses ...domain.UnitStatus) int64 {
	s.nextID++
	id := s.nextID
	s.equipment[id] = domain.Equipment{ID: id, Name: name, Category: "sport", Quantity: quantity}
	for i, st := range unitStatuses {
		s.nextID++
		s.units[s.nextID] = domain.EquipmentUnit{
			ID:           s.nextID,
			EquipmentID:  id,
			SerialNumber: name + "-" + string(rune('A'+i)),
			Status:       st,
		}
	}
	e := s.equipment[id]
	e.Available = false
	for _, st := range unitStatuses {
		if st == domain.UnitAvailable {
			e.Available = true
		}
	}
	s.equipment[id] = e
	return id
}

func (s *memState) unitsOf(equipmentID int64) []domain.EquipmentUnit {
	result := make([]domain.EquipmentUnit, 0)
	for _, u := range s.units {
		if u.EquipmentID == equipmentID {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *memState) countStatus(equipmentID int64, status domain.UnitStatus) int {
	n := 0
	for _, u := range s.unitsOf(equipmentID) {
		if u.Status == status {
			n++
		}
	}
	return n
}

type memTx struct{ st *memState }

func (t memTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.st.snapshot()
	if err := fn(ctx); err != nil {
		t.st.restore(snap)
		return err
	}
	return nil
}

type memEquipment struct{ st *memState }

func (r memEquipment) Create(_ context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	r.st.nextID++
	e.ID = r.st.nextID
	r.st.equipment[e.ID] = *e
	return e, nil
}

func (r memEquipment) GetByID(_ context.Context, id int64) (*domain.Equipment, error) {
	r.st.locks = append(r.st.locks, "equipment")
	e, ok := r.st.equipment[id]
	if !ok {
		return nil, equipmentRepo.ErrEquipmentNotFound
	}
	return &e, nil
}

func (r memEquipment) List(_ context.Context, _ *string) ([]*domain.Equipment, error) {
	result := make([]*domain.Equipment, 0, len(r.st.equipment))
	for _, e := range r.st.equipment {
		e := e
		result = append(result, &e)
	}
	return result, nil
}

func (r memEquipment) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(r.st.equipment))
	for id := range r.st.equipment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r memEquipment) UpdateSummary(_ context.Context, id int64, summary domain.InventorySummary, at time.Time) error {
	e, ok := r.st.equipment[id]
	if !ok {
		return equipmentRepo.ErrEquipmentNotFound
	}
	e.Quantity = summary.Total
	e.Available = summary.IsAvailable()
	e.UpdatedAt = at
	r.st.equipment[id] = e
	r.st.summaryWrites++
	return nil
}

func (r memEquipment) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.equipment[id]; !ok {
		return equipmentRepo.ErrEquipmentNotFound
	}
	delete(r.st.equipment, id)
	return nil
}

type memUnits struct{ st *memState }

func (r memUnits) CreateBulk(_ context.Context, equipmentID int64, serials []string) ([]*domain.EquipmentUnit, error) {
	for _, u := range r.st.units {
		for _, serial := range serials {
			if u.SerialNumber == serial {
				return nil, unitRepo.ErrSerialTaken
			}
		}
	}
	created := make([]*domain.EquipmentUnit, 0, len(serials))
	for _, serial := range serials {
		r.st.nextID++
		u := domain.EquipmentUnit{ID: r.st.nextID, EquipmentID: equipmentID, SerialNumber: serial, Status: domain.UnitAvailable}
		r.st.units[u.ID] = u
		created = append(created, &u)
	}
	return created, nil
}

func (r memUnits) GetByID(_ context.Context, equipmentID, unitID int64) (*domain.EquipmentUnit, error) {
	u, ok := r.st.units[unitID]
	if !ok || u.EquipmentID != equipmentID {
		return nil, unitRepo.ErrUnitNotFound
	}
	return &u, nil
}

func (r memUnits) ListByEquipment(_ context.Context, equipmentID int64) ([]*domain.EquipmentUnit, error) {
	units := r.st.unitsOf(equipmentID)
	result := make([]*domain.EquipmentUnit, len(units))
	for i := range units {
		result[i] = &units[i]
	}
	return result, nil
}

func (r memUnits) Summary(_ context.Context, equipmentID int64) (domain.InventorySummary, error) {
	return domain.InventorySummary{
		Total:     len(r.st.unitsOf(equipmentID)),
		Available: r.st.countStatus(equipmentID, domain.UnitAvailable),
	}, nil
}

func (r memUnits) CountByStatus(_ context.Context, equipmentID int64, status domain.UnitStatus) (int, error) {
	return r.st.countStatus(equipmentID, status), nil
}

// Allocate как и SQL-версия меняет найденные строки до проверки количества
func (r memUnits) Allocate(_ context.Context, equipmentID int64, count int, at time.Time) ([]int64, error) {
	ids := make([]int64, 0, count)
	for _, u := range r.st.unitsOf(equipmentID) {
		if len(ids) == count {
			break
		}
		if u.Status == domain.UnitAvailable {
			u.Status = domain.UnitRented
			u.UpdatedAt = at
			r.st.units[u.ID] = u
			ids = append(ids, u.ID)
		}
	}
	if len(ids) < count {
		return ids, unitRepo.ErrInsufficientUnits
	}
	return ids, nil
}

func (r memUnits) Release(_ context.Context, unitIDs []int64, at time.Time) (int, error) {
	r.st.locks = append(r.st.locks, "units")
	n := 0
	for _, id := range unitIDs {
		u, ok := r.st.units[id]
		if ok && u.Status == domain.UnitRented {
			u.Status = domain.UnitAvailable
			u.UpdatedAt = at
			r.st.units[id] = u
			n++
		}
	}
	return n, nil
}

func (r memUnits) UpdateStatus(_ context.Context, unitID int64, from []domain.UnitStatus, to domain.UnitStatus, at time.Time) error {
	u, ok := r.st.units[unitID]
	if !ok {
		return unitRepo.ErrStatusChanged
	}
	for _, f := range from {
		if u.Status == f {
			u.Status = to
			u.UpdatedAt = at
			r.st.units[unitID] = u
			return nil
		}
	}
	return unitRepo.ErrStatusChanged
}

func (r memUnits) Delete(_ context.Context, unitID int64) error {
	u, ok := r.st.units[unitID]
	if !ok || u.Status == domain.UnitRented {
		return unitRepo.ErrStatusChanged
	}
	delete(r.st.units, unitID)
	return nil
}

func (r memUnits) DeleteByEquipment(_ context.Context, equipmentID int64) (int, error) {
	n := 0
	for id, u := range r.st.units {
		if u.EquipmentID == equipmentID {
			delete(r.st.units, id)
			n++
		}
	}
	return n, nil
}
