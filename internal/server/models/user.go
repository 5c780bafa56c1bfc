// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account created on first sign-up. It is the foreign-key target
// for AWS configs and file metadata and is otherwise immutable here.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
