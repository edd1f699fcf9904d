package create_rental

import "time"

// Request модель запроса на аренду оборудования
type Request struct {
	UserID        int64
	EquipmentID   int64
	Quantity      int       // Количество единиц
	RentalDate    time.Time // Дата аренды (без времени)
	DurationHours int
}

// Response модель ответа с созданной арендой
type Response struct {
	ID            int64
	UserID        int64
	EquipmentID   int64
	UnitIDs       []int64
	RentalDate    time.Time
	DurationHours int
	TotalPrice    int64
	Status        string
	PaymentStatus string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
