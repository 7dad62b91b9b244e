package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/plantogether/internal/application"
	"github.com/example/plantogether/internal/availability"
	"github.com/example/plantogether/internal/event"
	"github.com/example/plantogether/internal/persistence"
)

var (
	userCounter    uint64
	eventCounter   uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account record that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID           string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Name:         fmt.Sprintf("Imie%03d", idx),
		Surname:      fmt.Sprintf("Nazwisko%03d", idx),
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserName overrides the generated given name and surname.
func WithUserName(name, surname string) UserOption {
	return func(f *UserFixture) {
		f.Name = name
		f.Surname = surname
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:        f.ID,
		Name:      f.Name,
		Surname:   f.Surname,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Name:         f.Name,
		Surname:      f.Surname,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic event aggregate.
type EventFixture struct {
	ID           string
	Title        string
	Description  string
	CreatorID    string
	Participants []event.Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. The creator is always the first participant.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	creator := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := EventFixture{
		ID:          id,
		Title:       fmt.Sprintf("Wydarzenie %03d", idx),
		Description: "",
		CreatorID:   creator,
		Participants: []event.Participant{
			{UserID: creator, JoinedAt: created},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventTitle overrides the generated title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventDescription sets the description.
func WithEventDescription(description string) EventOption {
	return func(f *EventFixture) {
		f.Description = description
	}
}

// WithEventCreator replaces the creator and rewrites the first participant
// entry to match.
func WithEventCreator(userID string) EventOption {
	return func(f *EventFixture) {
		f.CreatorID = userID
		if len(f.Participants) > 0 {
			f.Participants[0].UserID = userID
			return
		}
		f.Participants = []event.Participant{{UserID: userID, JoinedAt: f.CreatedAt}}
	}
}

// WithEventParticipant appends a participant without an availability
// declaration.
func WithEventParticipant(userID string, joinedAt time.Time) EventOption {
	return func(f *EventFixture) {
		f.Participants = append(f.Participants, event.Participant{
			UserID:   userID,
			JoinedAt: joinedAt,
		})
	}
}

// WithEventAvailability sets the weekly declaration of an existing
// participant. Unknown user IDs are ignored.
func WithEventAvailability(userID string, weekly availability.Weekly) EventOption {
	return func(f *EventFixture) {
		for i := range f.Participants {
			if f.Participants[i].UserID == userID {
				copied := weekly
				f.Participants[i].Availability = &copied
				return
			}
		}
	}
}

// WithEventTimestamps sets both created and updated timestamps.
func WithEventTimestamps(created, updated time.Time) EventOption {
	return func(f *EventFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Event returns the fixture as an *event.Event aggregate with deep-copied
// participants, so callers may mutate the result freely.
func (f EventFixture) Event() *event.Event {
	participants := make([]event.Participant, len(f.Participants))
	for i, p := range f.Participants {
		participants[i] = p
		if p.Availability != nil {
			copied := *p.Availability
			participants[i].Availability = &copied
		}
	}
	return &event.Event{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		CreatorID:    f.CreatorID,
		Participants: participants,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides. Sessions expire 24 hours after creation unless overridden.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	fixture := SessionFixture{
		ID:        id,
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUser sets the owning user ID.
func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiry sets the expiry instant.
func WithSessionExpiry(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevoked marks the session revoked at the given instant.
func WithSessionRevoked(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	session := persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	if f.RevokedAt != nil {
		revoked := *f.RevokedAt
		session.RevokedAt = &revoked
	}
	return session
}
