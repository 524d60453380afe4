package daemon

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/ipc"
	"github.com/timewarden/timewarden/internal/model"
	"github.com/timewarden/timewarden/internal/store"
)

// scriptedSampler replays a fixed sequence of activities.
type scriptedSampler struct {
	samples []model.Activity
	next    int
}

func (s *scriptedSampler) Sample(ctx context.Context, idleThreshold time.Duration) (model.Activity, error) {
	if s.next >= len(s.samples) {
		return s.samples[len(s.samples)-1], nil
	}
	a := s.samples[s.next]
	s.next++
	return a, nil
}

func testDaemon(t *testing.T, samples []model.Activity) (*Daemon, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st := store.OpenMemory(t)

	projID, err := st.CreateProject(ctx, "Work", "")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := st.AddRule(ctx, projID, "app_contains", "code", 0); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if err := st.SetSetting(ctx, "min_session_duration", "0"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := st.SetSetting(ctx, "idle_grace_period", "5"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	// Samples use fixed past timestamps; keep the daily prune from eating
	// them mid-test.
	for _, key := range []string{"retention_days", "blocks_retention_days"} {
		if err := st.SetSetting(ctx, key, "0"); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
	}

	file := config.File{DataDir: t.TempDir()}
	file.SetDefault()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	d, err := New(ctx, file, st, &scriptedSampler{samples: samples}, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, st
}

func act(ts time.Time, app string, idle bool) model.Activity {
	a := model.Activity{Timestamp: ts, Idle: idle}
	if app != "" {
		a.AppName = model.Str(app)
	}
	return a
}

func TestTickRecordsSession(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	samples := []model.Activity{
		act(t0, "Code", false),
		act(t0.Add(2*time.Second), "Code", false),
		act(t0.Add(4*time.Second), "Code", true),
		act(t0.Add(14*time.Second), "Code", true), // beyond idle grace
	}
	d, st := testDaemon(t, samples)
	ctx := context.Background()

	for range samples {
		d.tick(ctx)
	}

	rows, err := st.SessionsInRange(ctx, t0.Add(-time.Minute), t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d sessions, want 1", len(rows))
	}
	if rows[0].Duration != 2 {
		t.Errorf("Duration = %d, want 2", rows[0].Duration)
	}
	if !rows[0].EndTime.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("EndTime = %v, want %v", rows[0].EndTime, t0.Add(2*time.Second))
	}

	// All four raw samples were logged; identical consecutive samples
	// collapsed into blocks.
	last, err := st.LastBlock(ctx)
	if err != nil {
		t.Fatalf("LastBlock: %v", err)
	}
	if last == nil || !last.Idle {
		t.Fatalf("LastBlock = %+v, want idle block", last)
	}
}

func TestStatusJSONGraceOnlyWhenIdle(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	samples := []model.Activity{
		act(t0, "Code", false),
		act(t0.Add(2*time.Second), "Code", false),
	}
	d, _ := testDaemon(t, samples)
	ctx := context.Background()

	for range samples {
		d.tick(ctx)
	}

	raw, err := d.StatusJSON()
	if err != nil {
		t.Fatalf("StatusJSON: %v", err)
	}
	var payload ipc.StatusPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}

	if payload.TrackingPaused {
		t.Error("TrackingPaused = true, want false")
	}
	if payload.Session == nil {
		t.Fatal("Session = nil, want open session")
	}
	if payload.Session.ProjectID != 1 {
		t.Errorf("ProjectID = %d, want 1", payload.Session.ProjectID)
	}
	// The last sample was active, so no grace countdown is reported.
	if payload.Session.GraceRemaining != nil {
		t.Errorf("GraceRemaining = %v, want nil after an active sample", *payload.Session.GraceRemaining)
	}
	if payload.LastActivity == nil || payload.LastActivity.AppName == nil {
		t.Fatal("LastActivity missing")
	}
}

func TestPauseResume(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	samples := []model.Activity{
		act(t0, "Code", false),
		act(t0.Add(2*time.Second), "Code", false),
	}
	d, st := testDaemon(t, samples)
	ctx := context.Background()

	for range samples {
		d.tick(ctx)
	}

	if err := d.PauseTracking(ctx); err != nil {
		t.Fatalf("PauseTracking: %v", err)
	}

	rows, err := st.SessionsInRange(ctx, t0.Add(-time.Minute), t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d sessions after pause, want 1", len(rows))
	}
	if !rows[0].EndTime.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("EndTime = %v, want last active time", rows[0].EndTime)
	}

	cfg, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !cfg.TrackingPaused || cfg.TrackingPausedAt == "" {
		t.Errorf("settings after pause: %+v", cfg)
	}

	if err := d.ResumeTracking(ctx); err != nil {
		t.Fatalf("ResumeTracking: %v", err)
	}
	cfg, err = st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if cfg.TrackingPaused || cfg.TrackingPausedAt != "" {
		t.Errorf("settings after resume: %+v", cfg)
	}
}
