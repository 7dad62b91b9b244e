// Package maintenance implements offline consistency repairs for the event
// database: removing rows left behind by partial writes and restoring the
// creator participation every event is supposed to carry.
package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Report summarises the rows touched by a repair run.
type Report struct {
	OrphanedAvailability int64
	OrphanedParticipants int64
	CreatorsRestored     int64
	ExpiredSessions      int64
}

// Total returns the number of rows changed across all repair steps.
func (r Report) Total() int64 {
	return r.OrphanedAvailability + r.OrphanedParticipants + r.CreatorsRestored + r.ExpiredSessions
}

// Repairer runs the consistency checks against a SQLite database handle.
type Repairer struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewRepairer constructs a repairer over the given handle.
func NewRepairer(db *sql.DB, now func() time.Time, logger *slog.Logger) *Repairer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repairer{db: db, now: now, logger: logger}
}

// Run executes every repair step inside a single transaction and reports how
// many rows each step changed. Participant rows are removed before
// availability is checked so declarations of deleted participants count as
// orphans too.
func (r *Repairer) Run(ctx context.Context) (report Report, err error) {
	if r == nil || r.db == nil {
		return Report{}, fmt.Errorf("maintenance: repairer is not initialised")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Report{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("repair failed (rollback error: %v): %w", rbErr, err)
			}
		}
	}()

	if report.OrphanedParticipants, err = removeOrphanedParticipants(ctx, tx); err != nil {
		return Report{}, err
	}
	if report.CreatorsRestored, err = restoreCreatorParticipants(ctx, tx); err != nil {
		return Report{}, err
	}
	if report.OrphanedAvailability, err = removeOrphanedAvailability(ctx, tx); err != nil {
		return Report{}, err
	}
	if report.ExpiredSessions, err = removeExpiredSessions(ctx, tx, r.now()); err != nil {
		return Report{}, err
	}

	if err = tx.Commit(); err != nil {
		return Report{}, fmt.Errorf("failed to commit repair: %w", err)
	}

	r.logger.InfoContext(ctx, "repair completed",
		"orphaned_participants", report.OrphanedParticipants,
		"creators_restored", report.CreatorsRestored,
		"orphaned_availability", report.OrphanedAvailability,
		"expired_sessions", report.ExpiredSessions,
	)
	return report, nil
}

// removeOrphanedParticipants deletes participant rows whose event or user no
// longer exists.
func removeOrphanedParticipants(ctx context.Context, tx *sql.Tx) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM event_participants
		WHERE event_id NOT IN (SELECT id FROM events)
		   OR user_id NOT IN (SELECT id FROM users)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to remove orphaned participants: %w", err)
	}
	return result.RowsAffected()
}

// restoreCreatorParticipants re-inserts the creator membership for events
// where it went missing. The restored row reuses the event creation time as
// the join time.
func restoreCreatorParticipants(ctx context.Context, tx *sql.Tx) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, joined_at)
		SELECT e.id, e.creator_id, e.created_at
		FROM events e
		WHERE EXISTS (SELECT 1 FROM users u WHERE u.id = e.creator_id)
		  AND NOT EXISTS (
			SELECT 1 FROM event_participants ep
			WHERE ep.event_id = e.id AND ep.user_id = e.creator_id
		  )
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to restore creator participants: %w", err)
	}
	return result.RowsAffected()
}

// removeOrphanedAvailability deletes day declarations without a matching
// participant row.
func removeOrphanedAvailability(ctx context.Context, tx *sql.Tx) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM participant_availability
		WHERE NOT EXISTS (
			SELECT 1 FROM event_participants ep
			WHERE ep.event_id = participant_availability.event_id
			  AND ep.user_id = participant_availability.user_id
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to remove orphaned availability: %w", err)
	}
	return result.RowsAffected()
}

// removeExpiredSessions deletes sessions whose expiry is at or before the
// reference time.
func removeExpiredSessions(ctx context.Context, tx *sql.Tx, reference time.Time) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM sessions
		WHERE expires_at <= ?
	`, reference.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to remove expired sessions: %w", err)
	}
	return result.RowsAffected()
}
