package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Project is one tracked project row.
type Project struct {
	ID       int64
	Name     string
	Color    string
	Archived bool
}

// CreateProject inserts a project and returns its id.
func (s *Store) CreateProject(ctx context.Context, name, color string) (int64, error) {
	if color == "" {
		color = "#808080"
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (name, color) VALUES (?, ?)", name, color)
	if err != nil {
		return 0, fmt.Errorf("create project %q: %w", name, err)
	}
	return res.LastInsertId()
}

// ListProjects returns projects in ascending id order, optionally including
// archived ones.
func (s *Store) ListProjects(ctx context.Context, includeArchived bool) ([]Project, error) {
	query := "SELECT id, name, color, archived FROM projects"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var archived int
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &archived); err != nil {
			return nil, err
		}
		p.Archived = archived != 0
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectByName looks a project up by exact name. Returns nil when absent.
func (s *Store) ProjectByName(ctx context.Context, name string) (*Project, error) {
	var p Project
	var archived int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, color, archived FROM projects WHERE name = ?", name).
		Scan(&p.ID, &p.Name, &p.Color, &archived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Archived = archived != 0
	return &p, nil
}

// SetProjectArchived archives or restores a project. Archived projects are
// excluded from rule matching but keep their recorded sessions.
func (s *Store) SetProjectArchived(ctx context.Context, id int64, archived bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET archived = ? WHERE id = ?", boolInt(archived), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %d not found", id)
	}
	return nil
}
