// Package rules matches activity samples against per-project rules.
//
// The engine owns an in-memory snapshot of all non-archived projects and
// their enabled rules, refreshed explicitly via Reload. Matching is a pure
// function over that snapshot: projects are tried in ascending id order and
// the first match wins, so earlier projects take priority.
package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/timewarden/timewarden/internal/model"
)

// ProjectRules pairs a project with its enabled rules, ordered by rule id.
type ProjectRules struct {
	ID    int64
	Name  string
	Rules []Rule
}

// MatchResult describes which project an activity was attributed to and the
// rule (or rule group) that triggered the attribution.
type MatchResult struct {
	ProjectID   int64
	TriggeredBy string
}

// Source supplies the engine snapshot: non-archived projects in ascending
// id order, each with its enabled rules in ascending rule id order.
type Source interface {
	ProjectRules(ctx context.Context) ([]ProjectRules, error)
}

// Engine evaluates activities against the current rule snapshot.
type Engine struct {
	src Source

	mu       sync.RWMutex
	projects []ProjectRules
}

// NewEngine builds an engine and loads the initial snapshot.
func NewEngine(ctx context.Context, src Source) (*Engine, error) {
	e := &Engine{src: src}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload replaces the in-memory snapshot. Readers never observe a partially
// updated snapshot; between reloads the snapshot may be stale, which is an
// accepted tradeoff to keep Match free of storage access.
func (e *Engine) Reload(ctx context.Context) error {
	projects, err := e.src.ProjectRules(ctx)
	if err != nil {
		return fmt.Errorf("reload rules: %w", err)
	}
	e.mu.Lock()
	e.projects = projects
	e.mu.Unlock()
	return nil
}

// Match returns the first matching project for the activity, or nil when no
// project matches. It never touches storage and has no side effects.
func (e *Engine) Match(a model.Activity) *MatchResult {
	e.mu.RLock()
	projects := e.projects
	e.mu.RUnlock()

	for _, project := range projects {
		var ungrouped, grouped []Rule
		for _, r := range project.Rules {
			if r.Group == 0 {
				ungrouped = append(ungrouped, r)
			} else {
				grouped = append(grouped, r)
			}
		}

		// Ungrouped rules first: OR semantics, ascending rule id.
		for _, r := range ungrouped {
			if r.matches(a) {
				return &MatchResult{
					ProjectID:   project.ID,
					TriggeredBy: fmt.Sprintf("%s: %s", r.Kind, r.Value),
				}
			}
		}

		// Then groups in ascending group id: AND semantics within a group.
		if len(grouped) == 0 {
			continue
		}
		groups := make(map[int64][]Rule)
		for _, r := range grouped {
			groups[r.Group] = append(groups[r.Group], r)
		}
		groupIDs := make([]int64, 0, len(groups))
		for id := range groups {
			groupIDs = append(groupIDs, id)
		}
		sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i] < groupIDs[j] })

		for _, groupID := range groupIDs {
			inGroup := groups[groupID]
			all := true
			for _, r := range inGroup {
				if !r.matches(a) {
					all = false
					break
				}
			}
			if all {
				parts := make([]string, len(inGroup))
				for i, r := range inGroup {
					parts[i] = fmt.Sprintf("%s:%s", r.Kind, r.Value)
				}
				return &MatchResult{
					ProjectID:   project.ID,
					TriggeredBy: fmt.Sprintf("group %d: %s", groupID, strings.Join(parts, " AND ")),
				}
			}
		}
	}

	return nil
}
