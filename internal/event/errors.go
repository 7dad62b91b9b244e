package event

import "errors"

var (
	// ErrAlreadyCreator is returned when the creator tries to join their own event.
	ErrAlreadyCreator = errors.New("event: user is the event creator")
	// ErrAlreadyParticipant is returned when a current participant tries to join again.
	ErrAlreadyParticipant = errors.New("event: user is already a participant")
	// ErrCreatorCannotLeave is returned when the creator tries to leave their own event.
	ErrCreatorCannotLeave = errors.New("event: creator cannot leave own event")
	// ErrNotParticipant is returned when an operation requires a participant entry that does not exist.
	ErrNotParticipant = errors.New("event: user is not a participant")
	// ErrTargetNotParticipant is returned when a kick targets a user without a removable participant entry.
	ErrTargetNotParticipant = errors.New("event: target user is not a participant")
	// ErrNotCreator is returned when an operation reserved for the creator is attempted by someone else.
	ErrNotCreator = errors.New("event: operation requires the event creator")
)
