package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

// AddMessage inserts the message row only; contexts are stored separately.
func (r *MessagesRepo) AddMessage(ctx context.Context, msg core.Message) error {
	query := `INSERT INTO messages (id, conversation_id, role, content, sequence) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Sequence)
	if isConstraintErr(err) {
		return fmt.Errorf("message %q: %w", msg.ID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessages returns the conversation's messages ordered by sequence.
func (r *MessagesRepo) GetMessages(ctx context.Context, conversationID string) ([]core.Message, error) {
	query := `SELECT id, conversation_id, role, content, sequence FROM messages WHERE conversation_id = ? ORDER BY sequence, rowid`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []core.Message{}
	for rows.Next() {
		msg := core.Message{Contexts: []core.Context{}}
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &msg.Sequence); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Str("conversation_id", conversationID).Msg("loaded messages")
	return messages, nil
}
