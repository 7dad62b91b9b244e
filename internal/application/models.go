package application

import (
	"time"

	"github.com/example/plantogether/internal/availability"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
}

// User represents an account exposed by the application services.
type User struct {
	ID        string
	Name      string
	Surname   string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterInput captures caller provided registration attributes.
type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// RegisterParams wraps the data required to create an account.
type RegisterParams struct {
	Input RegisterInput
}

// ProfileInput captures caller provided profile updates. Empty fields are
// left unchanged; setting NewPassword requires CurrentPassword.
type ProfileInput struct {
	Name            string
	Surname         string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfileParams wraps the data required to update the caller's account.
type UpdateProfileParams struct {
	Principal Principal
	Input     ProfileInput
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title       string
	Description string
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update event details.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// MembershipParams identifies the event for a join or leave request.
type MembershipParams struct {
	Principal Principal
	EventID   string
}

// KickParams wraps a creator's request to remove another participant.
type KickParams struct {
	Principal    Principal
	EventID      string
	TargetUserID string
}

// SubmitAvailabilityParams wraps a participant's weekly declaration.
type SubmitAvailabilityParams struct {
	Principal Principal
	EventID   string
	Weekly    availability.Weekly
}

// ParticipantView describes one event participant with account details attached.
type ParticipantView struct {
	UserID       string
	Name         string
	Surname      string
	Email        string
	Declared     bool
	Availability *availability.Weekly
	JoinedAt     time.Time
}

// EventView is the event representation returned to transport handlers.
type EventView struct {
	ID           string
	Title        string
	Description  string
	CreatorID    string
	Participants []ParticipantView
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
