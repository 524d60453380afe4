// Package session turns the stream of periodic activity samples into
// deduplicated, idle-aware time sessions.
//
// The manager owns at most one open session. Duration accrues only between
// consecutive matching samples; idle or non-matching gaps freeze accrual and
// close the session once the applicable grace period elapses. Sessions
// shorter than the configured minimum are discarded, never persisted.
package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/model"
	"github.com/timewarden/timewarden/internal/rules"
)

// State is the mutable open-session state. LastActive is the authoritative
// end time on close; LastTracked is zero while the session sits in a grace
// gap and accrual is frozen.
type State struct {
	ProjectID   int64
	StartTime   time.Time
	TriggeredBy string
	Duration    float64
	LastActive  time.Time
	LastTracked time.Time
}

// Record is a finalized, immutable session.
type Record struct {
	ProjectID   int64
	StartTime   time.Time
	EndTime     time.Time
	Duration    int
	TriggeredBy string
}

// Sink receives finalized session records for durable storage.
type Sink interface {
	AppendSession(ctx context.Context, rec Record) error
}

// Matcher attributes an activity to a project, or nil for untracked.
type Matcher interface {
	Match(a model.Activity) *rules.MatchResult
}

// Manager is the session state machine. One mutex guards the state for both
// the polling loop and concurrent status queries.
type Manager struct {
	mu      sync.Mutex
	cfg     config.Settings
	matcher Matcher
	sink    Sink
	current *State
}

func NewManager(cfg config.Settings, matcher Matcher, sink Sink) *Manager {
	return &Manager{cfg: cfg, matcher: matcher, sink: sink}
}

// UpdateConfig replaces the settings snapshot used for grace and minimum
// duration decisions.
func (m *Manager) UpdateConfig(cfg config.Settings) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// ProcessActivity consumes one sample. Samples must arrive in
// non-decreasing timestamp order. A persistence failure propagates and
// leaves the session open so the next close attempt retries.
func (m *Manager) ProcessActivity(ctx context.Context, a model.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var match *rules.MatchResult
	if !m.cfg.TrackingPaused && !a.Idle {
		match = m.matcher.Match(a)
	}

	if match == nil {
		return m.handleInactive(ctx, a)
	}
	return m.handleActive(ctx, a, match)
}

func (m *Manager) handleActive(ctx context.Context, a model.Activity, match *rules.MatchResult) error {
	if m.current == nil {
		m.current = openState(a, match)
		return nil
	}

	if m.current.ProjectID != match.ProjectID {
		// The boundary belongs to the old project.
		if err := m.endSession(ctx, m.current.LastActive); err != nil {
			return err
		}
		m.current = openState(a, match)
		return nil
	}

	// Same project: accrue time between consecutive tracked samples.
	// Out-of-order or duplicate timestamps contribute zero, never negative.
	if !m.current.LastTracked.IsZero() {
		if delta := a.Timestamp.Sub(m.current.LastTracked).Seconds(); delta > 0 {
			m.current.Duration += delta
		}
	}
	m.current.LastTracked = a.Timestamp
	m.current.LastActive = a.Timestamp
	m.current.TriggeredBy = match.TriggeredBy
	return nil
}

func (m *Manager) handleInactive(ctx context.Context, a model.Activity) error {
	if m.current == nil {
		return nil
	}

	// Freeze accrual; the session stays open until grace expires.
	m.current.LastTracked = time.Time{}

	grace := m.cfg.SessionGracePeriod
	if a.Idle {
		grace = m.cfg.IdleGracePeriod
	}
	elapsed := a.Timestamp.Sub(m.current.LastActive).Seconds()
	if elapsed > float64(grace) {
		return m.endSession(ctx, m.current.LastActive)
	}
	return nil
}

func openState(a model.Activity, match *rules.MatchResult) *State {
	return &State{
		ProjectID:   match.ProjectID,
		StartTime:   a.Timestamp,
		TriggeredBy: match.TriggeredBy,
		LastActive:  a.Timestamp,
		LastTracked: a.Timestamp,
	}
}

// endSession finalizes the open session at end. Sessions below the minimum
// duration are dropped without a record.
func (m *Manager) endSession(ctx context.Context, end time.Time) error {
	if m.current == nil {
		return nil
	}
	duration := int(math.Round(m.current.Duration))
	if duration < m.cfg.MinSessionDuration {
		m.current = nil
		return nil
	}
	rec := Record{
		ProjectID:   m.current.ProjectID,
		StartTime:   m.current.StartTime,
		EndTime:     end,
		Duration:    duration,
		TriggeredBy: m.current.TriggeredBy,
	}
	if err := m.sink.AppendSession(ctx, rec); err != nil {
		return err
	}
	m.current = nil
	return nil
}

// CurrentDuration projects the open session's elapsed active seconds at an
// arbitrary query time without mutating state. The second return is false
// when no session is open.
func (m *Manager) CurrentDuration(now time.Time) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return 0, false
	}
	duration := m.current.Duration
	if !m.current.LastTracked.IsZero() {
		if delta := now.Sub(m.current.LastTracked).Seconds(); delta > 0 {
			duration += delta
		}
	}
	return int(math.Round(duration)), true
}

// Current returns a copy of the open session state, or nil.
func (m *Manager) Current() *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	snapshot := *m.current
	return &snapshot
}

// Pause forcibly closes the open session, used when tracking is paused
// externally. A zero end falls back to the session's last active time.
func (m *Manager) Pause(ctx context.Context, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	if end.IsZero() {
		end = m.current.LastActive
	}
	return m.endSession(ctx, end)
}

// Shutdown closes any open session at process end.
func (m *Manager) Shutdown(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	end := m.current.LastActive
	if end.IsZero() {
		end = now
	}
	return m.endSession(ctx, end)
}
