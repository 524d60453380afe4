package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/timewarden/timewarden/internal/config"
)

var defaultSettingRows = []struct {
	key   string
	value *string
}{
	{"poll_interval", ptr("2")},
	{"idle_threshold", ptr("120")},
	{"idle_grace_period", ptr("300")},
	{"session_grace_period", ptr("120")},
	{"min_session_duration", ptr("60")},
	{"retention_days", ptr("90")},
	{"blocks_retention_days", ptr("90")},
	{"sessions_retention_days", ptr("0")},
	{"week_start", ptr("monday")},
	{"tracking_paused", ptr("0")},
	{"tracking_paused_at", nil},
}

func ptr(s string) *string { return &s }

func (s *Store) seedDefaultSettings() error {
	for _, row := range defaultSettingRows {
		_, err := s.db.Exec(
			"INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)",
			row.key, nullStr(row.value),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Setting returns the raw value for key; ok is false when the key is absent
// or NULL.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value.String, value.Valid, nil
}

// SetSetting upserts a settings key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// ClearSetting nulls a settings key.
func (s *Store) ClearSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, NULL)
		ON CONFLICT(key) DO UPDATE SET value = NULL`,
		key)
	return err
}

// AllSettings returns every settings row; NULL values map to empty strings
// with present keys.
func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value.String
	}
	return settings, rows.Err()
}

// LoadSettings materializes the runtime configuration snapshot. Unparsable
// values fall back to their defaults rather than failing the tick.
func (s *Store) LoadSettings(ctx context.Context) (config.Settings, error) {
	cfg := config.DefaultSettings()
	settings, err := s.AllSettings(ctx)
	if err != nil {
		return cfg, err
	}

	setInt := func(key string, dst *int) {
		if v, ok := settings[key]; ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setInt("poll_interval", &cfg.PollInterval)
	setInt("idle_threshold", &cfg.IdleThreshold)
	setInt("idle_grace_period", &cfg.IdleGracePeriod)
	setInt("session_grace_period", &cfg.SessionGracePeriod)
	setInt("min_session_duration", &cfg.MinSessionDuration)
	setInt("retention_days", &cfg.RetentionDays)
	setInt("blocks_retention_days", &cfg.BlocksRetentionDays)
	setInt("sessions_retention_days", &cfg.SessionsRetentionDays)

	if v, ok := settings["week_start"]; ok && v != "" {
		cfg.WeekStart = v
	}
	cfg.TrackingPaused = settings["tracking_paused"] == "1"
	cfg.TrackingPausedAt = settings["tracking_paused_at"]

	return cfg, nil
}
