package domain

import "time"

type User struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string // argon2 encoded
	FirstName    string
	LastName     string
	IsActive     bool // false once soft-deleted
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch holds the profile fields an update may change. Nil fields are
// left untouched.
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}
