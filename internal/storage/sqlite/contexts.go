package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

// ContextsRepo stores context metadata. Content is left empty; it lives
// in the blob named by BlobName.
type ContextsRepo struct {
	db *sql.DB
}

func NewContextsRepo(db *sql.DB) *ContextsRepo {
	return &ContextsRepo{db: db}
}

const contextColumns = `id, name, type, error, message_id, project_id, blob_name`

func (r *ContextsRepo) AddContext(ctx context.Context, c core.Context) error {
	query := `INSERT INTO contexts (` + contextColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Type, c.Error, c.MessageID, c.ProjectID, c.BlobName)
	if isConstraintErr(err) {
		return fmt.Errorf("context %q: %w", c.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert context: %w", err)
	}
	return nil
}

func (r *ContextsRepo) GetContext(ctx context.Context, id string) (core.Context, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contextColumns+` FROM contexts WHERE id = ?`, id)
	c, err := scanContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Context{}, core.ErrNotFound
	}
	if err != nil {
		return core.Context{}, fmt.Errorf("failed to query context: %w", err)
	}
	return c, nil
}

func (r *ContextsRepo) ListByMessage(ctx context.Context, messageID string) ([]core.Context, error) {
	return r.list(ctx, `SELECT `+contextColumns+` FROM contexts WHERE message_id = ? ORDER BY rowid`, messageID)
}

func (r *ContextsRepo) ListByProject(ctx context.Context, projectID string) ([]core.Context, error) {
	return r.list(ctx, `SELECT `+contextColumns+` FROM contexts WHERE project_id = ? ORDER BY rowid`, projectID)
}

func (r *ContextsRepo) DeleteContext(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete context: %w", err)
	}
	return requireAffected(res)
}

func (r *ContextsRepo) list(ctx context.Context, query string, args ...any) ([]core.Context, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contexts: %w", err)
	}
	defer rows.Close()

	contexts := []core.Context{}
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan context: %w", err)
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

func scanContext(s scanner) (core.Context, error) {
	var c core.Context
	err := s.Scan(&c.ID, &c.Name, &c.Type, &c.Error, &c.MessageID, &c.ProjectID, &c.BlobName)
	return c, err
}
