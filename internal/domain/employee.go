package domain

import "time"

// Employee is a field worker who checks in at assigned points.
type Employee struct {
	ID           int64
	Name         string
	Account      string
	PasswordHash string
	WeChatOpenID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
