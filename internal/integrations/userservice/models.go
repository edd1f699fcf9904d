package userservice

// Contact адресат уведомлений из UserService
type Contact struct {
	ID                  int64  `json:"id"`
	Email               string `json:"email"`
	FullName            string `json:"full_name"`
	StudentID           string `json:"student_id,omitempty"`
	NotificationsOptOut bool   `json:"notifications_opt_out"`
}

// Reachable можно ли отправить пользователю письмо
func (c *Contact) Reachable() bool {
	return c.Email != "" && !c.NotificationsOptOut
}
