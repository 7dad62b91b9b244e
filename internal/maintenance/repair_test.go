package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/example/plantogether/internal/persistence"
	"github.com/example/plantogether/internal/testfixtures"
)

// seedDirty writes rows that bypass foreign key enforcement so the repair
// steps have something to fix.
func seedDirty(t *testing.T, db *sql.DB, statements []string) {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("failed to acquire connection: %v", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("failed to disable foreign keys: %v", err)
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("failed to seed dirty row: %v", err)
		}
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to re-enable foreign keys: %v", err)
	}
}

func countRows(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var count int
	if err := db.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}

func TestRepairRemovesOrphansAndRestoresCreators(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	creator := testfixtures.NewUserFixture()
	if err := harness.Users.CreateUser(ctx, creator.Persistence()); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	ev := testfixtures.NewEventFixture(testfixtures.WithEventCreator(creator.ID))
	if err := harness.Events.CreateEvent(ctx, ev.Event()); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	db := harness.Storage.DB()
	seedDirty(t, db, []string{
		// Participant of a deleted user.
		"INSERT INTO event_participants (event_id, user_id, joined_at) VALUES ('" + ev.ID + "', 'ghost-user', '2026-03-02T12:00:00Z')",
		// Availability for an event that no longer exists.
		"INSERT INTO participant_availability (event_id, user_id, day, kind) VALUES ('ghost-event', '" + creator.ID + "', 1, 'busy')",
		// Drop the creator membership so the repair has to restore it.
		"DELETE FROM event_participants WHERE event_id = '" + ev.ID + "' AND user_id = '" + creator.ID + "'",
	})

	repairer := NewRepairer(db, func() time.Time { return testfixtures.ReferenceTime() }, nil)
	report, err := repairer.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.OrphanedParticipants != 1 {
		t.Fatalf("expected 1 orphaned participant, got %d", report.OrphanedParticipants)
	}
	if report.CreatorsRestored != 1 {
		t.Fatalf("expected 1 restored creator, got %d", report.CreatorsRestored)
	}
	if report.OrphanedAvailability != 1 {
		t.Fatalf("expected 1 orphaned availability row, got %d", report.OrphanedAvailability)
	}

	stored, err := harness.Events.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("failed to load event after repair: %v", err)
	}
	if len(stored.Participants) != 1 || stored.Participants[0].UserID != creator.ID {
		t.Fatalf("expected creator as sole participant, got %+v", stored.Participants)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM participant_availability"); got != 0 {
		t.Fatalf("expected no availability rows, got %d", got)
	}
}

func TestRepairRemovesExpiredSessions(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	owner := testfixtures.NewUserFixture()
	if err := harness.Users.CreateUser(ctx, owner.Persistence()); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	reference := testfixtures.ReferenceTime()
	expired := testfixtures.NewSessionFixture(
		testfixtures.WithSessionUser(owner.ID),
		testfixtures.WithSessionExpiry(reference.Add(-time.Hour)),
	)
	live := testfixtures.NewSessionFixture(
		testfixtures.WithSessionUser(owner.ID),
		testfixtures.WithSessionExpiry(reference.Add(time.Hour)),
	)
	for _, fixture := range []testfixtures.SessionFixture{expired, live} {
		if err := harness.Sessions.CreateSession(ctx, fixture.Persistence()); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	repairer := NewRepairer(harness.Storage.DB(), func() time.Time { return reference }, nil)
	report, err := repairer.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.ExpiredSessions != 1 {
		t.Fatalf("expected 1 expired session removed, got %d", report.ExpiredSessions)
	}
	if _, err := harness.Sessions.GetSession(ctx, live.Token); err != nil {
		t.Fatalf("live session should survive repair: %v", err)
	}
	if _, err := harness.Sessions.GetSession(ctx, expired.Token); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}
