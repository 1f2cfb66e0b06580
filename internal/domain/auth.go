package domain

import "time"

// Role separates the two kinds of principals that can hold a session.
type Role uint8

const (
	RoleEmployee Role = iota + 1
	RoleAdmin
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole maps a wire name back to a Role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "employee":
		return RoleEmployee, true
	case "admin":
		return RoleAdmin, true
	default:
		return 0, false
	}
}

// Token represents an issued credential and when it stops being valid.
type Token struct {
	Value     string
	SubjectID int64
	Role      Role
	ExpiresAt time.Time
}

// MarshalText encodes the role by its wire name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
