// Package event holds the event aggregate and the membership state machine
// that decides who may declare availability and whose declarations count.
package event

import (
	"strings"
	"time"

	"github.com/example/plantogether/internal/availability"
)

// Participant is a member of an event. At most one weekly declaration is live
// per participant; Availability is nil until the first submission.
type Participant struct {
	UserID       string
	Availability *availability.Weekly
	JoinedAt     time.Time
}

// Declared reports whether the participant has a live declaration covering at
// least one day.
func (p Participant) Declared() bool {
	return p.Availability != nil && p.Availability.Declared()
}

// Event ties a title and description to a creator and a participant set keyed
// by user id. The creator always holds a participant entry.
type Event struct {
	ID           string
	Title        string
	Description  string
	CreatorID    string
	Participants []Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates an event with the creator as its sole participant.
func New(id, title, description, creatorID string, now time.Time) *Event {
	return &Event{
		ID:           id,
		Title:        strings.TrimSpace(title),
		Description:  description,
		CreatorID:    creatorID,
		Participants: []Participant{{UserID: creatorID, JoinedAt: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsCreator reports whether the given user created the event.
func (e *Event) IsCreator(userID string) bool {
	return e.CreatorID == userID
}

// Participant looks up the entry for the given user.
func (e *Event) Participant(userID string) (Participant, bool) {
	idx := e.indexOf(userID)
	if idx < 0 {
		return Participant{}, false
	}
	return e.Participants[idx], true
}

func (e *Event) indexOf(userID string) int {
	for i, p := range e.Participants {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// Join adds the user as a participant. The creator already holds an entry and
// cannot join, nor can an existing participant join twice.
func (e *Event) Join(userID string, now time.Time) error {
	if e.IsCreator(userID) {
		return ErrAlreadyCreator
	}
	if e.indexOf(userID) >= 0 {
		return ErrAlreadyParticipant
	}
	e.Participants = append(e.Participants, Participant{UserID: userID, JoinedAt: now})
	return nil
}

// Leave removes the user's participant entry together with any stored
// declaration. The creator can never leave their own event.
func (e *Event) Leave(userID string) error {
	if e.IsCreator(userID) {
		return ErrCreatorCannotLeave
	}
	idx := e.indexOf(userID)
	if idx < 0 {
		return ErrNotParticipant
	}
	e.Participants = append(e.Participants[:idx], e.Participants[idx+1:]...)
	return nil
}

// Kick removes the target's participant entry on behalf of the creator. The
// creator never satisfies the removable-participant path and so cannot be
// kicked, not even by themselves.
func (e *Event) Kick(actorID, targetID string) error {
	if !e.IsCreator(actorID) {
		return ErrNotCreator
	}
	if e.IsCreator(targetID) {
		return ErrTargetNotParticipant
	}
	idx := e.indexOf(targetID)
	if idx < 0 {
		return ErrTargetNotParticipant
	}
	e.Participants = append(e.Participants[:idx], e.Participants[idx+1:]...)
	return nil
}

// JoinImplicitly ensures a participant entry for the user, creating one when
// missing. It is the named form of the legacy auto-join that submission
// performs for unknown users, and is a no-op for current participants and the
// creator.
func (e *Event) JoinImplicitly(userID string, now time.Time) bool {
	if e.indexOf(userID) >= 0 {
		return false
	}
	e.Participants = append(e.Participants, Participant{UserID: userID, JoinedAt: now})
	return true
}

// SubmitAvailability replaces the user's weekly declaration in full. There is
// no per-day merge across submissions: saving twice overwrites the whole
// weekly map. Users without a participant entry are joined implicitly first;
// the returned flag reports whether that happened.
func (e *Event) SubmitAvailability(userID string, weekly availability.Weekly, now time.Time) (bool, error) {
	if err := weekly.Validate(); err != nil {
		return false, err
	}
	joined := e.JoinImplicitly(userID, now)
	idx := e.indexOf(userID)
	stored := weekly
	e.Participants[idx].Availability = &stored
	return joined, nil
}

// ClearAvailability removes the user's live declaration while keeping the
// participant entry.
func (e *Event) ClearAvailability(userID string) error {
	idx := e.indexOf(userID)
	if idx < 0 {
		return ErrNotParticipant
	}
	e.Participants[idx].Availability = nil
	return nil
}

// UpdateDetails applies the creator's edits. Matching the original behaviour,
// only non-empty fields replace stored values.
func (e *Event) UpdateDetails(title, description string, now time.Time) {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		e.Title = trimmed
	}
	if description != "" {
		e.Description = description
	}
	e.UpdatedAt = now
}

// DeclaredParticipants returns the participants whose declarations count for
// aggregation, in join order.
func (e *Event) DeclaredParticipants() []Participant {
	declared := make([]Participant, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p.Declared() {
			declared = append(declared, p)
		}
	}
	return declared
}

// BestTime runs the best-day selection over all current declarations.
func (e *Event) BestTime() availability.BestTime {
	weeklies := make([]availability.Weekly, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p.Availability != nil {
			weeklies = append(weeklies, *p.Availability)
		}
	}
	return availability.SelectBestTime(weeklies)
}
