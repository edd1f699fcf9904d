package set_unit_status

// Request тело запроса смены статуса единицы
type Request struct {
	Status string `json:"status"`
}
