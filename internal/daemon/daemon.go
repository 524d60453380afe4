// Package daemon runs the polling loop: sample the desktop, log the raw
// activity, fold it into the block log, feed the session state machine, and
// take care of daily pruning and weekly backups.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/timewarden/timewarden/internal/blocks"
	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/ipc"
	"github.com/timewarden/timewarden/internal/maintenance"
	"github.com/timewarden/timewarden/internal/model"
	"github.com/timewarden/timewarden/internal/rules"
	"github.com/timewarden/timewarden/internal/sampler"
	"github.com/timewarden/timewarden/internal/session"
	"github.com/timewarden/timewarden/internal/store"
)

// Daemon owns the poll loop and the tracking components.
type Daemon struct {
	file     config.File
	st       *store.Store
	engine   *rules.Engine
	sessions *session.Manager
	smp      sampler.Sampler
	log      *slog.Logger
	lock     *flockGuard

	mu            sync.Mutex
	settings      config.Settings
	lastActivity  *model.Activity
	lastPruneDate string
}

// New wires a daemon from an opened store and sampler. The initial rule
// snapshot is loaded here; reloads after that are explicit.
func New(ctx context.Context, file config.File, st *store.Store, smp sampler.Sampler, log *slog.Logger) (*Daemon, error) {
	settings, err := st.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	engine, err := rules.NewEngine(ctx, st)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		file:     file,
		st:       st,
		engine:   engine,
		sessions: session.NewManager(settings, engine, st),
		smp:      smp,
		log:      log,
		settings: settings,
	}, nil
}

// Run acquires the single-instance lock and polls until the context is
// cancelled, then finalizes any open session.
func (d *Daemon) Run(ctx context.Context) error {
	lock, err := acquireLock(d.file.LockPath())
	if err != nil {
		return err
	}
	d.lock = lock
	defer d.lock.release()

	d.log.Info("started monitoring")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("shutting down")
			if err := d.sessions.Shutdown(context.Background(), time.Now().UTC()); err != nil {
				d.log.Error("shutdown finalize failed", "error", err)
			}
			return nil
		case <-timer.C:
			d.tick(ctx)
			timer.Reset(time.Duration(d.pollInterval()) * time.Second)
		}
	}
}

func (d *Daemon) pollInterval() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settings.PollInterval < 1 {
		return 1
	}
	return d.settings.PollInterval
}

// tick runs one poll cycle. Any error is logged and the loop carries on;
// the next tick retries.
func (d *Daemon) tick(ctx context.Context) {
	if settings, err := d.st.LoadSettings(ctx); err != nil {
		// Keep the previous snapshot and try again next tick.
		d.log.Error("settings reload failed", "error", err)
	} else {
		d.mu.Lock()
		d.settings = settings
		d.mu.Unlock()
		d.sessions.UpdateConfig(settings)
	}
	settings := d.currentSettings()

	activity, err := d.smp.Sample(ctx, time.Duration(settings.IdleThreshold)*time.Second)
	if err != nil {
		d.log.Error("sample failed", "error", err)
		return
	}

	d.mu.Lock()
	d.lastActivity = &activity
	d.mu.Unlock()

	if err := d.st.InsertActivity(ctx, activity); err != nil {
		d.log.Error("activity insert failed", "error", err)
	}
	if err := blocks.Update(ctx, d.st, activity); err != nil {
		d.log.Error("block update failed", "error", err)
	}
	if err := d.sessions.ProcessActivity(ctx, activity); err != nil {
		d.log.Error("session update failed", "error", err)
	}

	d.maybePrune(ctx)
	if _, err := maintenance.MaybeBackup(ctx, d.st, d.file.BackupDir(), time.Now().UTC()); err != nil {
		d.log.Error("backup failed", "error", err)
	}
}

// maybePrune runs retention pruning once per UTC day.
func (d *Daemon) maybePrune(ctx context.Context) {
	today := time.Now().UTC().Format("2006-01-02")
	d.mu.Lock()
	done := d.lastPruneDate == today
	d.mu.Unlock()
	if done {
		return
	}

	stats, err := maintenance.Prune(ctx, d.st, d.currentSettings(), time.Now().UTC())
	if err != nil {
		d.log.Error("prune failed", "error", err)
		return
	}
	if stats.Activities+stats.Blocks+stats.Sessions > 0 {
		d.log.Info("pruned old data",
			"activities", stats.Activities, "blocks", stats.Blocks, "sessions", stats.Sessions)
	}

	d.mu.Lock()
	d.lastPruneDate = today
	d.mu.Unlock()
}

func (d *Daemon) currentSettings() config.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// StatusJSON implements the ipc.Tracker status query.
func (d *Daemon) StatusJSON() (string, error) {
	now := time.Now().UTC()
	settings := d.currentSettings()

	d.mu.Lock()
	last := d.lastActivity
	d.mu.Unlock()

	payload := ipc.StatusPayload{TrackingPaused: settings.TrackingPaused}

	if last != nil {
		payload.LastActivity = &ipc.ActivityPayload{
			Timestamp:   store.FormatTime(last.Timestamp),
			AppName:     last.AppName,
			BundleID:    last.BundleID,
			WindowTitle: last.WindowTitle,
			FilePath:    last.FilePath,
			URL:         last.URL,
			Idle:        last.Idle,
		}
	}

	if cur := d.sessions.Current(); cur != nil {
		duration, _ := d.sessions.CurrentDuration(now)
		sp := &ipc.SessionPayload{
			ProjectID:   cur.ProjectID,
			TriggeredBy: cur.TriggeredBy,
			Duration:    duration,
		}
		// Grace is only reported while the latest sample was idle; a
		// non-idle no-match gap stays silent here.
		if last != nil && last.Idle {
			elapsed := int(now.Sub(cur.LastActive).Seconds())
			remaining := settings.IdleGracePeriod - elapsed
			if remaining < 0 {
				remaining = 0
			}
			sp.GraceRemaining = &remaining
		}
		payload.Session = sp
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PauseTracking stops matching, records the pause in settings and
// finalizes the open session at once.
func (d *Daemon) PauseTracking(ctx context.Context) error {
	now := time.Now().UTC()
	if err := d.st.SetSetting(ctx, "tracking_paused", "1"); err != nil {
		return err
	}
	if err := d.st.SetSetting(ctx, "tracking_paused_at", store.FormatTime(now)); err != nil {
		return err
	}

	settings := d.currentSettings()
	settings.TrackingPaused = true
	settings.TrackingPausedAt = store.FormatTime(now)
	d.mu.Lock()
	d.settings = settings
	d.mu.Unlock()
	d.sessions.UpdateConfig(settings)

	d.log.Info("tracking paused")
	return d.sessions.Pause(ctx, time.Time{})
}

// ResumeTracking re-enables matching.
func (d *Daemon) ResumeTracking(ctx context.Context) error {
	if err := d.st.SetSetting(ctx, "tracking_paused", "0"); err != nil {
		return err
	}
	if err := d.st.ClearSetting(ctx, "tracking_paused_at"); err != nil {
		return err
	}

	settings := d.currentSettings()
	settings.TrackingPaused = false
	settings.TrackingPausedAt = ""
	d.mu.Lock()
	d.settings = settings
	d.mu.Unlock()
	d.sessions.UpdateConfig(settings)

	d.log.Info("tracking resumed")
	return nil
}

// ReloadRules refreshes the rule snapshot from storage.
func (d *Daemon) ReloadRules(ctx context.Context) error {
	if err := d.engine.Reload(ctx); err != nil {
		return err
	}
	d.log.Info("rules reloaded")
	return nil
}
