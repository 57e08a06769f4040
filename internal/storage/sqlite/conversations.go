package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

type ConversationsRepo struct {
	db *sql.DB
}

func NewConversationsRepo(db *sql.DB) *ConversationsRepo {
	return &ConversationsRepo{db: db}
}

const conversationColumns = `id, username, description, project_id, updated_at`

func (r *ConversationsRepo) CreateConversation(ctx context.Context, c core.Conversation) error {
	query := `INSERT INTO conversations (` + conversationColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Username, c.Description, c.ProjectID, nullTime(c.UpdatedAt))
	if isConstraintErr(err) {
		return fmt.Errorf("conversation %q: %w", c.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

func (r *ConversationsRepo) UpdateConversation(ctx context.Context, c core.Conversation) error {
	query := `UPDATE conversations SET username = ?, description = ?, project_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, c.Username, c.Description, c.ProjectID, nullTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return requireAffected(res)
}

// GetConversation returns the conversation row without messages.
func (r *ConversationsRepo) GetConversation(ctx context.Context, id string) (core.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Conversation{}, core.ErrNotFound
	}
	if err != nil {
		return core.Conversation{}, fmt.Errorf("failed to query conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationsRepo) ListConversationsByUser(ctx context.Context, username string) ([]core.Conversation, error) {
	return r.list(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE username = ? ORDER BY updated_at DESC, id`, username)
}

func (r *ConversationsRepo) ListConversationsByProject(ctx context.Context, projectID string) ([]core.Conversation, error) {
	return r.list(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE project_id = ? ORDER BY updated_at DESC, id`, projectID)
}

func (r *ConversationsRepo) list(ctx context.Context, query string, args ...any) ([]core.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	convs := []core.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func scanConversation(s scanner) (core.Conversation, error) {
	var c core.Conversation
	var updated sql.NullTime
	if err := s.Scan(&c.ID, &c.Username, &c.Description, &c.ProjectID, &updated); err != nil {
		return core.Conversation{}, err
	}
	c.UpdatedAt = timePtr(updated)
	c.Messages = []core.Message{}
	return c, nil
}
