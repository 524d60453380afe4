// Package maintenance handles retention pruning and periodic database
// backups. The daemon runs Prune once per day and MaybeBackup every tick;
// neither touches the session-tracking core.
package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/store"
)

const backupInterval = 7 * 24 * time.Hour

// Prune deletes rows past their retention windows. A retention of 0 keeps
// that table forever.
func Prune(ctx context.Context, st *store.Store, cfg config.Settings, now time.Time) (store.PruneStats, error) {
	cutoff := func(days int) time.Time {
		if days <= 0 {
			return time.Time{}
		}
		return now.AddDate(0, 0, -days)
	}
	return st.PruneBefore(ctx,
		cutoff(cfg.RetentionDays),
		cutoff(cfg.BlocksRetentionDays),
		cutoff(cfg.SessionsRetentionDays))
}

// Backup writes a dated copy of the database into dir and returns its path.
func Backup(ctx context.Context, st *store.Store, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}
	target := filepath.Join(dir, fmt.Sprintf("timewarden-%s.db", now.UTC().Format("20060102")))
	if err := st.BackupTo(ctx, target); err != nil {
		return "", fmt.Errorf("backup to %s: %w", target, err)
	}
	os.Chmod(target, 0o600)
	return target, nil
}

// MaybeBackup takes a backup unless one newer than a week exists. Returns
// the empty string when no backup was taken.
func MaybeBackup(ctx context.Context, st *store.Store, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "timewarden-*.db"))
	if err != nil {
		return "", err
	}

	var latest time.Time
	sort.Strings(matches)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	if !latest.IsZero() && now.Sub(latest) < backupInterval {
		return "", nil
	}
	return Backup(ctx, st, dir, now)
}
