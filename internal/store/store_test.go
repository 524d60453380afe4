package store

import (
	"context"
	"testing"
	"time"

	"github.com/timewarden/timewarden/internal/blocks"
	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/model"
	"github.com/timewarden/timewarden/internal/rules"
	"github.com/timewarden/timewarden/internal/session"
)

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 2, 14, 30, 45, 987654321, time.UTC)
	got, err := ParseTime(FormatTime(ts))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	want := ts.Truncate(time.Second)
	if !got.Equal(want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
	if FormatTime(ts) != "2026-03-02T14:30:45Z" {
		t.Errorf("FormatTime = %q", FormatTime(ts))
	}
}

func TestDefaultSettingsSeeded(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	cfg, err := s.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if cfg != config.DefaultSettings() {
		t.Errorf("LoadSettings = %+v, want defaults", cfg)
	}
}

func TestSettingsSetAndClear(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	if err := s.SetSetting(ctx, "idle_grace_period", "42"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := s.SetSetting(ctx, "tracking_paused", "1"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}

	cfg, err := s.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if cfg.IdleGracePeriod != 42 {
		t.Errorf("IdleGracePeriod = %d, want 42", cfg.IdleGracePeriod)
	}
	if !cfg.TrackingPaused {
		t.Error("TrackingPaused = false, want true")
	}

	if err := s.ClearSetting(ctx, "tracking_paused_at"); err != nil {
		t.Fatalf("ClearSetting: %v", err)
	}
	_, ok, err := s.Setting(ctx, "tracking_paused_at")
	if err != nil {
		t.Fatalf("Setting: %v", err)
	}
	if ok {
		t.Error("tracking_paused_at still set after clear")
	}
}

func TestProjectAndRuleCRUD(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	workID, err := s.CreateProject(ctx, "Work", "")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	sideID, err := s.CreateProject(ctx, "Side", "#ff0000")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if _, err := s.CreateProject(ctx, "Work", ""); err == nil {
		t.Error("duplicate project name accepted")
	}

	if _, err := s.AddRule(ctx, workID, "app_contains", "code", 0); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if _, err := s.AddRule(ctx, workID, "bogus_type", "x", 0); err == nil {
		t.Error("unknown rule type accepted at edit boundary")
	}
	ruleID, err := s.AddRule(ctx, sideID, "url_contains", "github", 0)
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	if err := s.SetRuleEnabled(ctx, ruleID, false); err != nil {
		t.Fatalf("SetRuleEnabled: %v", err)
	}

	list, err := s.ListRules(ctx, 0)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d rules, want 2", len(list))
	}
	if list[1].Enabled {
		t.Error("disabled rule still listed as enabled")
	}

	if err := s.DeleteRule(ctx, ruleID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	if err := s.DeleteRule(ctx, ruleID); err == nil {
		t.Error("deleting a missing rule succeeded")
	}

	proj, err := s.ProjectByName(ctx, "Side")
	if err != nil {
		t.Fatalf("ProjectByName: %v", err)
	}
	if proj == nil || proj.ID != sideID {
		t.Errorf("ProjectByName = %+v, want id %d", proj, sideID)
	}
}

func TestProjectRulesSnapshot(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	workID, _ := s.CreateProject(ctx, "Work", "")
	sideID, _ := s.CreateProject(ctx, "Side", "")
	archID, _ := s.CreateProject(ctx, "Old", "")
	if err := s.SetProjectArchived(ctx, archID, true); err != nil {
		t.Fatalf("SetProjectArchived: %v", err)
	}

	s.AddRule(ctx, sideID, "url_contains", "github", 0)
	disabledID, _ := s.AddRule(ctx, workID, "app", "firefox", 0)
	s.SetRuleEnabled(ctx, disabledID, false)
	s.AddRule(ctx, workID, "app_contains", "code", 0)
	s.AddRule(ctx, archID, "app_contains", "old", 0)

	snapshot, err := s.ProjectRules(ctx)
	if err != nil {
		t.Fatalf("ProjectRules: %v", err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("got %d projects, want archived excluded", len(snapshot))
	}
	if snapshot[0].ID != workID || snapshot[1].ID != sideID {
		t.Errorf("project order = %d,%d, want ascending ids %d,%d",
			snapshot[0].ID, snapshot[1].ID, workID, sideID)
	}
	if len(snapshot[0].Rules) != 1 {
		t.Fatalf("Work has %d rules, want disabled excluded", len(snapshot[0].Rules))
	}
	if snapshot[0].Rules[0].Kind != rules.KindAppContains {
		t.Errorf("rule kind = %v, want KindAppContains", snapshot[0].Rules[0].Kind)
	}
}

func TestSessionAppendAndQuery(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	projID, _ := s.CreateProject(ctx, "Work", "")
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	rec := session.Record{
		ProjectID:   projID,
		StartTime:   t0,
		EndTime:     t0.Add(90 * time.Second),
		Duration:    90,
		TriggeredBy: "app_contains: code",
	}
	if err := s.AppendSession(ctx, rec); err != nil {
		t.Fatalf("AppendSession: %v", err)
	}

	got, err := s.SessionsInRange(ctx, t0.Add(-time.Hour), t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sessions, want 1", len(got))
	}
	if got[0].ProjectName != "Work" {
		t.Errorf("ProjectName = %q, want Work", got[0].ProjectName)
	}
	if !got[0].StartTime.Equal(t0) || got[0].Duration != 90 {
		t.Errorf("row = %+v", got[0])
	}

	out, err := s.SessionsInRange(ctx, t0.Add(time.Hour), t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d sessions outside range, want 0", len(out))
	}
}

func TestBlockStore(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	last, err := s.LastBlock(ctx)
	if err != nil {
		t.Fatalf("LastBlock: %v", err)
	}
	if last != nil {
		t.Fatalf("LastBlock = %+v on empty table, want nil", last)
	}

	a := model.Activity{Timestamp: t0, AppName: model.Str("Code"), Idle: false}
	for i := 0; i < 3; i++ {
		a.Timestamp = t0.Add(time.Duration(i*2) * time.Second)
		if err := blocks.Update(ctx, s, a); err != nil {
			t.Fatalf("blocks.Update: %v", err)
		}
	}
	a.Timestamp = t0.Add(6 * time.Second)
	a.Idle = true
	if err := blocks.Update(ctx, s, a); err != nil {
		t.Fatalf("blocks.Update: %v", err)
	}

	last, err = s.LastBlock(ctx)
	if err != nil {
		t.Fatalf("LastBlock: %v", err)
	}
	if last == nil || !last.Idle {
		t.Fatalf("LastBlock = %+v, want the idle block", last)
	}
	if last.ID != 2 {
		t.Errorf("block count: last id = %d, want 2 (one extended run + one new)", last.ID)
	}
}

func TestPruneBefore(t *testing.T) {
	s := OpenMemory(t)
	ctx := context.Background()

	projID, _ := s.CreateProject(ctx, "Work", "")
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{old, recent} {
		s.InsertActivity(ctx, model.Activity{Timestamp: ts})
		s.InsertBlock(ctx, model.Activity{Timestamp: ts})
		s.AppendSession(ctx, session.Record{
			ProjectID: projID, StartTime: ts, EndTime: ts.Add(time.Minute), Duration: 60,
		})
	}

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.PruneBefore(ctx, cutoff, cutoff, time.Time{})
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if stats.Activities != 1 || stats.Blocks != 1 {
		t.Errorf("stats = %+v, want 1 activity and 1 block pruned", stats)
	}
	if stats.Sessions != 0 {
		t.Errorf("sessions pruned with zero cutoff: %+v", stats)
	}

	remaining, err := s.SessionsInRange(ctx, old.Add(-time.Hour), recent.Add(time.Hour))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("got %d sessions, want both retained", len(remaining))
	}
}
