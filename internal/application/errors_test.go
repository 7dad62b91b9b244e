package application

import (
	"fmt"
	"testing"

	"github.com/example/plantogether/internal/event"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Error("fresh validation error should be empty")
	}

	vErr.add("title", "Tytuł jest wymagany.")
	other := &ValidationError{}
	other.add("email", "Nieprawidłowy adres e-mail.")
	vErr.merge(other)

	if !vErr.HasErrors() || len(vErr.FieldErrors) != 2 {
		t.Errorf("field errors = %v", vErr.FieldErrors)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrNotFound, "not_found"},
		{ErrAlreadyExists, "already_exists"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{ErrSessionExpired, "session_expired"},
		{ErrSessionRevoked, "session_revoked"},
		{event.ErrAlreadyCreator, "already_creator"},
		{event.ErrAlreadyParticipant, "already_participant"},
		{event.ErrCreatorCannotLeave, "creator_cannot_leave"},
		{event.ErrNotParticipant, "not_participant"},
		{event.ErrTargetNotParticipant, "target_not_participant"},
		{event.ErrNotCreator, "not_creator"},
		{fmt.Errorf("wrapped: %w", ErrNotFound), "not_found"},
		{&ValidationError{FieldErrors: map[string]string{"title": "x"}}, "validation"},
		{fmt.Errorf("boom"), "unexpected"},
	}
	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
