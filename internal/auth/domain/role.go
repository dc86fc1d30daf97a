package domain

import "time"

type Role struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Grant links a user to a role.
type Grant struct {
	ID        string
	UserID    string
	RoleID    string
	CreatedAt time.Time
}
