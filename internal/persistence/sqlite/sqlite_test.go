package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/plantogether/internal/availability"
	"github.com/example/plantogether/internal/event"
	"github.com/example/plantogether/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "plantogether_test.db")
	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		if err := storage.Close(); err != nil {
			t.Errorf("failed to close storage: %v", err)
		}
	})

	if err := storage.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage
}

func testUser(id, email string) persistence.User {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	return persistence.User{
		ID:           id,
		Name:         "Anna",
		Surname:      "Kowalska",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func mustCreateUser(t *testing.T, storage *Storage, id, email string) persistence.User {
	t.Helper()
	user := testUser(id, email)
	if err := storage.Users().CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", id, err)
	}
	return user
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	created := mustCreateUser(t, storage, "user-1", "anna@example.com")

	got, err := storage.Users().GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if got != created {
		t.Errorf("GetUser returned %+v, want %+v", got, created)
	}

	byEmail, err := storage.Users().GetUserByEmail(ctx, "  ANNA@example.com ")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Errorf("GetUserByEmail returned user %q, want user-1", byEmail.ID)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "user-1", "anna@example.com")

	err := storage.Users().CreateUser(ctx, testUser("user-2", "anna@example.com"))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("CreateUser with duplicate email returned %v, want ErrDuplicate", err)
	}
}

func TestUserRepositoryGetMissing(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)

	if _, err := storage.Users().GetUser(context.Background(), "nope"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetUser for missing user returned %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	user := mustCreateUser(t, storage, "user-1", "anna@example.com")
	user.Surname = "Nowak"
	user.UpdatedAt = user.UpdatedAt.Add(time.Hour)

	if err := storage.Users().UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	got, err := storage.Users().GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if got.Surname != "Nowak" {
		t.Errorf("surname not updated, got %q", got.Surname)
	}

	missing := testUser("ghost", "ghost@example.com")
	if err := storage.Users().UpdateUser(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("UpdateUser for missing user returned %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryListByIDs(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "user-1", "anna@example.com")
	mustCreateUser(t, storage, "user-2", "jan@example.com")

	users, err := storage.Users().ListUsersByIDs(ctx, []string{"user-1", "user-2", "ghost"})
	if err != nil {
		t.Fatalf("ListUsersByIDs returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsersByIDs returned %d users, want 2", len(users))
	}
}

func eventFixture(creatorID string) *event.Event {
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	return event.New("event-1", "Planszówki", "Wieczór gier", creatorID, now)
}

func TestEventRepositoryRoundTrip(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "creator", "anna@example.com")
	ev := eventFixture("creator")

	if err := storage.Events().CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	got, err := storage.Events().GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if got.Title != "Planszówki" || got.Description != "Wieczór gier" {
		t.Errorf("unexpected details: %q / %q", got.Title, got.Description)
	}
	if got.CreatorID != "creator" {
		t.Errorf("creator ID = %q, want creator", got.CreatorID)
	}
	if len(got.Participants) != 1 || got.Participants[0].UserID != "creator" {
		t.Fatalf("unexpected participants: %+v", got.Participants)
	}
	if got.Participants[0].Availability != nil {
		t.Errorf("new participant should have no declaration")
	}
}

func TestEventRepositoryGetMissing(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)

	if _, err := storage.Events().GetEvent(context.Background(), "nope"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetEvent for missing event returned %v, want ErrNotFound", err)
	}
}

func TestEventRepositoryParticipants(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "creator", "anna@example.com")
	mustCreateUser(t, storage, "guest", "jan@example.com")
	ev := eventFixture("creator")
	if err := storage.Events().CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	joined := ev.CreatedAt.Add(time.Minute)
	err := storage.Events().AddParticipant(ctx, "event-1", event.Participant{UserID: "guest", JoinedAt: joined})
	if err != nil {
		t.Fatalf("AddParticipant returned error: %v", err)
	}

	err = storage.Events().AddParticipant(ctx, "event-1", event.Participant{UserID: "guest", JoinedAt: joined})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("duplicate AddParticipant returned %v, want ErrDuplicate", err)
	}

	got, err := storage.Events().GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if len(got.Participants) != 2 {
		t.Fatalf("got %d participants, want 2", len(got.Participants))
	}
	if got.Participants[0].UserID != "creator" || got.Participants[1].UserID != "guest" {
		t.Errorf("participants out of join order: %+v", got.Participants)
	}

	if err := storage.Events().RemoveParticipant(ctx, "event-1", "guest"); err != nil {
		t.Fatalf("RemoveParticipant returned error: %v", err)
	}
	if err := storage.Events().RemoveParticipant(ctx, "event-1", "guest"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("RemoveParticipant for missing participant returned %v, want ErrNotFound", err)
	}
}

func TestEventRepositoryAvailability(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "creator", "anna@example.com")
	ev := eventFixture("creator")
	if err := storage.Events().CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	var weekly availability.Weekly
	weekly.Set(availability.Monday, availability.FreeAllDay())
	weekly.Set(availability.Tuesday, availability.BusyAllDay())
	rng, err := availability.NewRange(9*60, 12*60)
	if err != nil {
		t.Fatalf("NewRange returned error: %v", err)
	}
	weekly.Set(availability.Wednesday, rng)

	if err := storage.Events().SetAvailability(ctx, "event-1", "creator", weekly); err != nil {
		t.Fatalf("SetAvailability returned error: %v", err)
	}

	got, err := storage.Events().GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	decl := got.Participants[0].Availability
	if decl == nil {
		t.Fatal("expected stored declaration")
	}
	if decl.Get(availability.Monday).Kind != availability.KindAllFree {
		t.Errorf("monday kind = %v, want all free", decl.Get(availability.Monday).Kind)
	}
	if decl.Get(availability.Tuesday).Kind != availability.KindAllBusy {
		t.Errorf("tuesday kind = %v, want all busy", decl.Get(availability.Tuesday).Kind)
	}
	wed := decl.Get(availability.Wednesday)
	if wed.Kind != availability.KindRange || wed.From != 9*60 || wed.To != 12*60 {
		t.Errorf("wednesday declaration = %+v, want 09:00-12:00 range", wed)
	}
	if decl.Get(availability.Thursday).Kind != availability.KindUnset {
		t.Errorf("thursday should stay unset")
	}

	// Resubmission replaces the previous declaration in full.
	var replacement availability.Weekly
	replacement.Set(availability.Friday, availability.FreeAllDay())
	if err := storage.Events().SetAvailability(ctx, "event-1", "creator", replacement); err != nil {
		t.Fatalf("SetAvailability replacement returned error: %v", err)
	}

	got, err = storage.Events().GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	decl = got.Participants[0].Availability
	if decl.Get(availability.Monday).Kind != availability.KindUnset {
		t.Errorf("monday should be unset after replacement")
	}
	if decl.Get(availability.Friday).Kind != availability.KindAllFree {
		t.Errorf("friday kind = %v, want all free", decl.Get(availability.Friday).Kind)
	}

	if err := storage.Events().ClearAvailability(ctx, "event-1", "creator"); err != nil {
		t.Fatalf("ClearAvailability returned error: %v", err)
	}
	got, err = storage.Events().GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if got.Participants[0].Availability != nil {
		t.Errorf("declaration should be gone after clear")
	}
}

func TestEventRepositoryUpdateAndDelete(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "creator", "anna@example.com")
	ev := eventFixture("creator")
	if err := storage.Events().CreateEvent(ctx, ev); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}

	updatedAt := ev.UpdatedAt.Add(time.Hour)
	if err := storage.Events().UpdateEventDetails(ctx, "event-1", "Nowy tytuł", "Nowy opis", updatedAt); err != nil {
		t.Fatalf("UpdateEventDetails returned error: %v", err)
	}
	got, err := storage.Events().GetEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEvent returned error: %v", err)
	}
	if got.Title != "Nowy tytuł" || !got.UpdatedAt.Equal(updatedAt) {
		t.Errorf("details not updated: %+v", got)
	}

	if err := storage.Events().UpdateEventDetails(ctx, "ghost", "x", "y", updatedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("UpdateEventDetails for missing event returned %v, want ErrNotFound", err)
	}

	if err := storage.Events().DeleteEvent(ctx, "event-1"); err != nil {
		t.Fatalf("DeleteEvent returned error: %v", err)
	}
	if _, err := storage.Events().GetEvent(ctx, "event-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetEvent after delete returned %v, want ErrNotFound", err)
	}

	// Cascades removed the membership rows too.
	var count int
	err = storage.DB().QueryRow(`SELECT COUNT(*) FROM event_participants WHERE event_id = 'event-1'`).Scan(&count)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("%d participant rows survived delete", count)
	}
}

func TestEventRepositoryListForUser(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "creator", "anna@example.com")
	mustCreateUser(t, storage, "guest", "jan@example.com")

	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	first := event.New("event-1", "Pierwsze", "", "creator", now)
	second := event.New("event-2", "Drugie", "", "guest", now.Add(time.Minute))
	if err := storage.Events().CreateEvent(ctx, first); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if err := storage.Events().CreateEvent(ctx, second); err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	err := storage.Events().AddParticipant(ctx, "event-2", event.Participant{UserID: "creator", JoinedAt: now.Add(2 * time.Minute)})
	if err != nil {
		t.Fatalf("AddParticipant returned error: %v", err)
	}

	events, err := storage.Events().ListEventsForUser(ctx, "creator")
	if err != nil {
		t.Fatalf("ListEventsForUser returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != "event-1" || events[1].ID != "event-2" {
		t.Errorf("events out of creation order: %s, %s", events[0].ID, events[1].ID)
	}

	events, err = storage.Events().ListEventsForUser(ctx, "guest")
	if err != nil {
		t.Fatalf("ListEventsForUser returned error: %v", err)
	}
	if len(events) != 1 || events[0].ID != "event-2" {
		t.Errorf("guest events = %+v", events)
	}
}

func sessionFixture(userID, token string, now time.Time) persistence.Session {
	return persistence.Session{
		ID:        "session-" + token,
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "user-1", "anna@example.com")
	now := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	session := sessionFixture("user-1", "token-abc", now)

	if err := storage.Sessions().CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	got, err := storage.Sessions().GetSession(ctx, "token-abc")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if got.UserID != "user-1" || got.RevokedAt != nil {
		t.Errorf("unexpected session: %+v", got)
	}

	if _, err := storage.Sessions().GetSession(ctx, "nope"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetSession for missing token returned %v, want ErrNotFound", err)
	}
}

func TestSessionRepositoryRevoke(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "user-1", "anna@example.com")
	now := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	if err := storage.Sessions().CreateSession(ctx, sessionFixture("user-1", "token-abc", now)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	revokedAt := now.Add(time.Hour)
	if err := storage.Sessions().RevokeSession(ctx, "token-abc", revokedAt); err != nil {
		t.Fatalf("RevokeSession returned error: %v", err)
	}

	got, err := storage.Sessions().GetSession(ctx, "token-abc")
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(revokedAt) {
		t.Errorf("revoked_at = %v, want %v", got.RevokedAt, revokedAt)
	}

	// Revoking twice finds no active session.
	if err := storage.Sessions().RevokeSession(ctx, "token-abc", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("second RevokeSession returned %v, want ErrNotFound", err)
	}
}

func TestSessionRepositoryDeleteExpired(t *testing.T) {
	t.Parallel()
	storage := newTestStorage(t)
	ctx := context.Background()

	mustCreateUser(t, storage, "user-1", "anna@example.com")
	now := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	if err := storage.Sessions().CreateSession(ctx, sessionFixture("user-1", "old", now.Add(-48*time.Hour))); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if err := storage.Sessions().CreateSession(ctx, sessionFixture("user-1", "fresh", now)); err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	removed, err := storage.Sessions().DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions returned error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d sessions, want 1", removed)
	}
	if _, err := storage.Sessions().GetSession(ctx, "fresh"); err != nil {
		t.Errorf("fresh session should survive, got %v", err)
	}
}
