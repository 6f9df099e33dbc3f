package auth

import "time"

// User is an account row. Only admin accounts can open dashboard
// sessions.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
