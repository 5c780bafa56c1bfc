package models

import "time"

// RefreshToken is a server-stored, single-use token that can be exchanged
// for a fresh token pair until it expires.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
