package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timewarden/timewarden/internal/session"
)

// AppendSession persists a finalized session record. Records are
// append-only; nothing in the daemon updates or deletes them.
func (s *Store) AppendSession(ctx context.Context, rec session.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (project_id, start_time, end_time, duration, triggered_by)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ProjectID, FormatTime(rec.StartTime), FormatTime(rec.EndTime),
		rec.Duration, rec.TriggeredBy)
	return err
}

// SessionRow is a persisted session joined with its project name.
type SessionRow struct {
	ID          int64
	ProjectID   int64
	ProjectName string
	StartTime   time.Time
	EndTime     time.Time
	Duration    int
	TriggeredBy string
}

// SessionsInRange returns sessions starting within [from, to], ascending by
// start time.
func (s *Store) SessionsInRange(ctx context.Context, from, to time.Time) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.project_id, p.name, s.start_time, s.end_time, s.duration,
		       COALESCE(s.triggered_by, '')
		FROM sessions s JOIN projects p ON p.id = s.project_id
		WHERE s.start_time >= ? AND s.start_time <= ?
		ORDER BY s.start_time`,
		FormatTime(from), FormatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var start, end string
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.ProjectName, &start, &end,
			&r.Duration, &r.TriggeredBy); err != nil {
			return nil, err
		}
		if r.StartTime, err = ParseTime(start); err != nil {
			return nil, err
		}
		if r.EndTime, err = ParseTime(end); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneStats counts rows removed by a retention pass.
type PruneStats struct {
	Activities int64
	Blocks     int64
	Sessions   int64
}

// PruneBefore deletes activities and blocks older than their cutoffs, and
// sessions older than the session cutoff. A zero cutoff disables that
// table's pruning.
func (s *Store) PruneBefore(ctx context.Context, activities, blocks, sessions time.Time) (PruneStats, error) {
	var stats PruneStats

	del := func(query string, cutoff time.Time, dst *int64) error {
		if cutoff.IsZero() {
			return nil
		}
		res, err := s.db.ExecContext(ctx, query, FormatTime(cutoff))
		if err != nil {
			return err
		}
		*dst, _ = res.RowsAffected()
		return nil
	}

	if err := del("DELETE FROM activities WHERE timestamp < ?", activities, &stats.Activities); err != nil {
		return stats, err
	}
	if err := del("DELETE FROM activity_blocks WHERE start_time < ?", blocks, &stats.Blocks); err != nil {
		return stats, err
	}
	if err := del("DELETE FROM sessions WHERE start_time < ?", sessions, &stats.Sessions); err != nil {
		return stats, err
	}
	return stats, nil
}

// BackupTo writes a consistent copy of the database to path.
func (s *Store) BackupTo(ctx context.Context, path string) error {
	// VACUUM does not reliably accept bound parameters across drivers.
	quoted := strings.ReplaceAll(path, "'", "''")
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted))
	return err
}
