package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/plantogether/internal/availability"
	"github.com/example/plantogether/internal/event"
	"github.com/example/plantogether/internal/persistence"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequenceIDs(prefix string) func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type stubUserRepo struct {
	users     map[string]persistence.User
	createErr error
	getErr    error
	updateErr error
	listErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]persistence.User{}}
}

func (r *stubUserRepo) CreateUser(_ context.Context, user persistence.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) GetUser(_ context.Context, id string) (persistence.User, error) {
	if r.getErr != nil {
		return persistence.User{}, r.getErr
	}
	user, ok := r.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	if r.getErr != nil {
		return persistence.User{}, r.getErr
	}
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (r *stubUserRepo) UpdateUser(_ context.Context, user persistence.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) ListUsersByIDs(_ context.Context, ids []string) ([]persistence.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type stubEventRepo struct {
	events map[string]*event.Event

	createErr error
	getErr    error
	addErr    error
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{events: map[string]*event.Event{}}
}

func cloneEvent(ev *event.Event) *event.Event {
	clone := *ev
	clone.Participants = make([]event.Participant, len(ev.Participants))
	for i, p := range ev.Participants {
		clone.Participants[i] = p
		if p.Availability != nil {
			weekly := *p.Availability
			clone.Participants[i].Availability = &weekly
		}
	}
	return &clone
}

func (r *stubEventRepo) CreateEvent(_ context.Context, ev *event.Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.events[ev.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.events[ev.ID] = cloneEvent(ev)
	return nil
}

func (r *stubEventRepo) GetEvent(_ context.Context, id string) (*event.Event, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	ev, ok := r.events[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return cloneEvent(ev), nil
}

func (r *stubEventRepo) UpdateEventDetails(_ context.Context, id, title, description string, updatedAt time.Time) error {
	ev, ok := r.events[id]
	if !ok {
		return persistence.ErrNotFound
	}
	ev.Title = title
	ev.Description = description
	ev.UpdatedAt = updatedAt
	return nil
}

func (r *stubEventRepo) DeleteEvent(_ context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *stubEventRepo) ListEventsForUser(_ context.Context, userID string) ([]*event.Event, error) {
	var out []*event.Event
	for _, ev := range r.events {
		if _, ok := ev.Participant(userID); ok {
			out = append(out, cloneEvent(ev))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubEventRepo) AddParticipant(_ context.Context, eventID string, participant event.Participant) error {
	if r.addErr != nil {
		return r.addErr
	}
	ev, ok := r.events[eventID]
	if !ok {
		return persistence.ErrNotFound
	}
	if _, exists := ev.Participant(participant.UserID); exists {
		return persistence.ErrDuplicate
	}
	ev.Participants = append(ev.Participants, participant)
	return nil
}

func (r *stubEventRepo) RemoveParticipant(_ context.Context, eventID, userID string) error {
	ev, ok := r.events[eventID]
	if !ok {
		return persistence.ErrNotFound
	}
	for i, p := range ev.Participants {
		if p.UserID == userID {
			ev.Participants = append(ev.Participants[:i], ev.Participants[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (r *stubEventRepo) SetAvailability(_ context.Context, eventID, userID string, weekly availability.Weekly) error {
	ev, ok := r.events[eventID]
	if !ok {
		return persistence.ErrNotFound
	}
	for i := range ev.Participants {
		if ev.Participants[i].UserID == userID {
			stored := weekly
			ev.Participants[i].Availability = &stored
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (r *stubEventRepo) ClearAvailability(_ context.Context, eventID, userID string) error {
	ev, ok := r.events[eventID]
	if !ok {
		return persistence.ErrNotFound
	}
	for i := range ev.Participants {
		if ev.Participants[i].UserID == userID {
			ev.Participants[i].Availability = nil
			return nil
		}
	}
	return nil
}

type stubSessionRepo struct {
	sessions  map[string]persistence.Session
	createErr error
	getErr    error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: map[string]persistence.Session{}}
}

func (r *stubSessionRepo) CreateSession(_ context.Context, session persistence.Session) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.sessions[session.Token]; ok {
		return persistence.ErrDuplicate
	}
	r.sessions[session.Token] = session
	return nil
}

func (r *stubSessionRepo) GetSession(_ context.Context, token string) (persistence.Session, error) {
	if r.getErr != nil {
		return persistence.Session{}, r.getErr
	}
	session, ok := r.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *stubSessionRepo) RevokeSession(_ context.Context, token string, revokedAt time.Time) error {
	session, ok := r.sessions[token]
	if !ok || session.RevokedAt != nil {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	r.sessions[token] = session
	return nil
}

func (r *stubSessionRepo) DeleteExpiredSessions(_ context.Context, reference time.Time) (int64, error) {
	var removed int64
	for token, session := range r.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed, nil
}
