package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/timewarden/timewarden/internal/blocks"
	"github.com/timewarden/timewarden/internal/model"
)

// InsertActivity appends one raw activity sample.
func (s *Store) InsertActivity(ctx context.Context, a model.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (timestamp, app_name, bundle_id, window_title, file_path, url, idle)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		FormatTime(a.Timestamp),
		nullStr(a.AppName), nullStr(a.BundleID), nullStr(a.WindowTitle),
		nullStr(a.FilePath), nullStr(a.URL), boolInt(a.Idle))
	return err
}

// LastBlock returns the most recently appended activity block, or nil when
// the table is empty.
func (s *Store) LastBlock(ctx context.Context) (*blocks.Block, error) {
	var b blocks.Block
	var start, end string
	var app, bundle, title, path, url sql.NullString
	var idle int

	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, duration, app_name, bundle_id,
		       window_title, file_path, url, idle
		FROM activity_blocks ORDER BY id DESC LIMIT 1`).
		Scan(&b.ID, &start, &end, &b.Duration, &app, &bundle, &title, &path, &url, &idle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if b.StartTime, err = ParseTime(start); err != nil {
		return nil, err
	}
	if b.EndTime, err = ParseTime(end); err != nil {
		return nil, err
	}
	b.AppName = strPtr(app)
	b.BundleID = strPtr(bundle)
	b.WindowTitle = strPtr(title)
	b.FilePath = strPtr(path)
	b.URL = strPtr(url)
	b.Idle = idle != 0
	return &b, nil
}

// ExtendBlock moves a block's end time forward and updates its duration.
func (s *Store) ExtendBlock(ctx context.Context, id int64, end time.Time, duration int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE activity_blocks SET end_time = ?, duration = ? WHERE id = ?",
		FormatTime(end), duration, id)
	return err
}

// InsertBlock appends a fresh zero-duration block for the sample.
func (s *Store) InsertBlock(ctx context.Context, a model.Activity) error {
	ts := FormatTime(a.Timestamp)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_blocks
			(start_time, end_time, duration, app_name, bundle_id, window_title, file_path, url, idle)
		VALUES (?, ?, 0, ?, ?, ?, ?, ?, ?)`,
		ts, ts,
		nullStr(a.AppName), nullStr(a.BundleID), nullStr(a.WindowTitle),
		nullStr(a.FilePath), nullStr(a.URL), boolInt(a.Idle))
	return err
}
