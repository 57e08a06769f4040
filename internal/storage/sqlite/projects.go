package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

// ProjectsRepo stores project rows. Conversation IDs are derived from the
// conversations table; contexts are loaded by the caller.
type ProjectsRepo struct {
	db *sql.DB
}

func NewProjectsRepo(db *sql.DB) *ProjectsRepo {
	return &ProjectsRepo{db: db}
}

const projectColumns = `id, name, description, username, is_public, updated_at`

func (r *ProjectsRepo) CreateProject(ctx context.Context, p core.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Username, p.IsPublic, nullTime(p.UpdatedAt))
	if isConstraintErr(err) {
		return fmt.Errorf("project %q: %w", p.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (r *ProjectsRepo) GetProject(ctx context.Context, id string) (core.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, core.ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("failed to query project: %w", err)
	}

	p.Conversations, err = r.conversationIDs(ctx, id)
	if err != nil {
		return core.Project{}, err
	}
	return p, nil
}

func (r *ProjectsRepo) conversationIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM conversations WHERE project_id = ? ORDER BY updated_at DESC, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project conversations: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProjectsRepo) UpdateProject(ctx context.Context, p core.Project) error {
	query := `UPDATE projects SET name = ?, description = ?, username = ?, is_public = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.Username, p.IsPublic, nullTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(res)
}

func (r *ProjectsRepo) TouchProject(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	return requireAffected(res)
}

func (r *ProjectsRepo) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(res)
}

func (r *ProjectsRepo) ListProjects(ctx context.Context) ([]core.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
}

func (r *ProjectsRepo) ListProjectsByUser(ctx context.Context, username string) ([]core.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE username = ? ORDER BY name`, username)
}

func (r *ProjectsRepo) ListPublicProjects(ctx context.Context) ([]core.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE is_public = 1 ORDER BY name`)
}

func (r *ProjectsRepo) list(ctx context.Context, query string, args ...any) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []core.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (core.Project, error) {
	var p core.Project
	var updated sql.NullTime
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Username, &p.IsPublic, &updated); err != nil {
		return core.Project{}, err
	}
	p.UpdatedAt = timePtr(updated)
	p.Contexts = []core.Context{}
	p.Conversations = []string{}
	return p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
