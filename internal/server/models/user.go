// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a row of the users table. PasswordHash is an argon2id PHC string
// and never leaves the server.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
}
