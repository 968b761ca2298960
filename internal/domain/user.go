package domain

import "time"

// Role determines what a user may do across the service desk.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupport    Role = "support"
	RoleAccounting Role = "accounting"
	RoleUser       Role = "user"
)

// IsStaff reports whether the role may work tickets (assignment targets,
// status changes, internal comments).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSupport
}

// LoginMethod records how an account was created.
type LoginMethod string

const (
	LoginMethodLocal LoginMethod = "local"
	LoginMethodGuest LoginMethod = "guest"
)

// User is an account in the system; staff and customers share the table and
// are told apart by role.
type User struct {
	ID           int64
	Name         string
	Email        string
	Role         Role
	PasswordHash *string
	LoginMethod  LoginMethod
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
