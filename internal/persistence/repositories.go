package persistence

import (
	"context"
	"time"

	"github.com/example/plantogether/internal/availability"
	"github.com/example/plantogether/internal/event"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User) error
	ListUsersByIDs(ctx context.Context, ids []string) ([]User, error)
}

// EventRepository stores event aggregates. Membership and availability writes
// are scoped to the affected participant rows so that concurrent submissions
// by different users never overwrite each other.
type EventRepository interface {
	CreateEvent(ctx context.Context, ev *event.Event) error
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	UpdateEventDetails(ctx context.Context, id, title, description string, updatedAt time.Time) error
	DeleteEvent(ctx context.Context, id string) error
	ListEventsForUser(ctx context.Context, userID string) ([]*event.Event, error)
	AddParticipant(ctx context.Context, eventID string, participant event.Participant) error
	RemoveParticipant(ctx context.Context, eventID, userID string) error
	SetAvailability(ctx context.Context, eventID, userID string, weekly availability.Weekly) error
	ClearAvailability(ctx context.Context, eventID, userID string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}
