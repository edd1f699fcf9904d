package domain

// Role of an authenticated user
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Identity is the authenticated caller supplied by the auth middleware
type Identity struct {
	UserID int64
	Role   Role
}

// IsStaff returns true for staff and administrators
func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff || i.Role == RoleAdmin
}

// IsAdmin returns true for administrators
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
