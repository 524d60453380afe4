package store

import (
	"context"
	"fmt"

	"github.com/timewarden/timewarden/internal/rules"
)

// RuleRow is the raw rule record, used by the CLI for listing and editing.
// Matching consumes the typed form via ProjectRules instead.
type RuleRow struct {
	ID        int64
	ProjectID int64
	Type      string
	Value     string
	Group     int64
	Enabled   bool
}

// AddRule inserts a rule and returns its id. The type string is validated
// here, at the edit boundary; the daemon itself tolerates unknown types.
func (s *Store) AddRule(ctx context.Context, projectID int64, ruleType, value string, group int64) (int64, error) {
	if rules.ParseKind(ruleType) == rules.KindUnknown {
		return 0, fmt.Errorf("unknown rule type %q", ruleType)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (project_id, rule_type, rule_value, rule_group, enabled)
		VALUES (?, ?, ?, ?, 1)`,
		projectID, ruleType, value, group)
	if err != nil {
		return 0, fmt.Errorf("add rule: %w", err)
	}
	return res.LastInsertId()
}

// ListRules returns rules for a project (all projects when projectID is 0)
// in ascending id order.
func (s *Store) ListRules(ctx context.Context, projectID int64) ([]RuleRow, error) {
	query := "SELECT id, project_id, rule_type, rule_value, rule_group, enabled FROM rules"
	var args []any
	if projectID != 0 {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RuleRow
	for rows.Next() {
		var r RuleRow
		var enabled int
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Type, &r.Value, &r.Group, &enabled); err != nil {
			return nil, err
		}
		r.Enabled = enabled != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetRuleEnabled toggles a rule.
func (s *Store) SetRuleEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rules SET enabled = ? WHERE id = ?", boolInt(enabled), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rule %d not found", id)
	}
	return nil
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("rule %d not found", id)
	}
	return nil
}

// ProjectRules materializes the rule engine snapshot: non-archived projects
// ascending by id, each with its enabled rules ascending by rule id.
func (s *Store) ProjectRules(ctx context.Context) ([]rules.ProjectRules, error) {
	projRows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM projects WHERE archived = 0 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer projRows.Close()

	var projects []rules.ProjectRules
	for projRows.Next() {
		var p rules.ProjectRules
		if err := projRows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := projRows.Err(); err != nil {
		return nil, err
	}

	ruleRows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, rule_type, rule_value, rule_group
		FROM rules WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer ruleRows.Close()

	byProject := make(map[int64][]rules.Rule)
	for ruleRows.Next() {
		var id, projectID, group int64
		var ruleType, value string
		if err := ruleRows.Scan(&id, &projectID, &ruleType, &value, &group); err != nil {
			return nil, err
		}
		byProject[projectID] = append(byProject[projectID],
			rules.NewRule(id, rules.ParseKind(ruleType), value, group))
	}
	if err := ruleRows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		projects[i].Rules = byProject[projects[i].ID]
	}
	return projects, nil
}
