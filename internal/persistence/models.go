// Package persistence defines the storage contract consumed by the
// application services. Events round-trip as event.Event aggregates; users
// and sessions use the flat records below.
package persistence

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
