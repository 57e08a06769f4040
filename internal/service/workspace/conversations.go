package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

// SaveConversation creates the conversation when it has no ID yet,
// otherwise updates it. Only messages without an ID are persisted; the
// returned conversation carries the IDs assigned here.
func (s *Service) SaveConversation(ctx context.Context, conv core.Conversation) (core.Conversation, error) {
	logger := log.FromCtx(ctx)
	now := s.now().UTC()
	conv.UpdatedAt = &now

	switch {
	case conv.ID == "" && len(conv.Messages) == 0:
		return core.Conversation{}, ErrEmptyConversation
	case conv.ID == "":
		conv.ID = s.newID()
		if err := s.Conversations.CreateConversation(ctx, conv); err != nil {
			return core.Conversation{}, fmt.Errorf("create conversation: %w", err)
		}
		logger.Info().Str("conversation_id", conv.ID).Msg("created conversation")
	default:
		if err := s.Conversations.UpdateConversation(ctx, conv); err != nil {
			return core.Conversation{}, fmt.Errorf("update conversation: %w", err)
		}
	}

	messages := make([]core.Message, len(conv.Messages))
	saved := 0
	for i, msg := range conv.Messages {
		if msg.ID == "" {
			var err error
			if msg, err = s.saveMessage(ctx, conv.ID, msg); err != nil {
				return core.Conversation{}, err
			}
			saved++
		}
		messages[i] = msg
	}
	conv.Messages = messages

	if conv.ProjectID != "" {
		err := s.Projects.TouchProject(ctx, conv.ProjectID, now)
		if errors.Is(err, core.ErrNotFound) {
			logger.Warn().Str("project_id", conv.ProjectID).Msg("conversation references unknown project")
		} else if err != nil {
			return core.Conversation{}, fmt.Errorf("touch project: %w", err)
		}
	}

	logger.Debug().Str("conversation_id", conv.ID).Int("new_messages", saved).Msg("saved conversation")
	return conv, nil
}

func (s *Service) saveMessage(ctx context.Context, conversationID string, msg core.Message) (core.Message, error) {
	msg.ID = s.newID()
	msg.ConversationID = conversationID
	if err := s.Messages.AddMessage(ctx, msg); err != nil {
		return core.Message{}, fmt.Errorf("save message: %w", err)
	}

	contexts := make([]core.Context, 0, len(msg.Contexts))
	for _, c := range msg.Contexts {
		c.MessageID = msg.ID
		c.ProjectID = ""
		saved, err := s.saveContext(ctx, c)
		if err != nil {
			return core.Message{}, err
		}
		contexts = append(contexts, saved)
	}
	msg.Contexts = contexts
	return msg, nil
}

// Conversation returns the conversation with its messages in sequence
// order, each with its contexts.
func (s *Service) Conversation(ctx context.Context, id string) (core.Conversation, error) {
	conv, err := s.Conversations.GetConversation(ctx, id)
	if err != nil {
		return core.Conversation{}, err
	}
	if conv.Messages, err = s.messagesWithContexts(ctx, id); err != nil {
		return core.Conversation{}, err
	}
	return conv, nil
}

func (s *Service) messagesWithContexts(ctx context.Context, conversationID string) ([]core.Message, error) {
	messages, err := s.Messages.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		contexts, err := s.Contexts.ListByMessage(ctx, messages[i].ID)
		if err != nil {
			return nil, err
		}
		if messages[i].Contexts, err = s.loadContents(ctx, contexts); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

func (s *Service) ConversationsByUser(ctx context.Context, username string) ([]core.Conversation, error) {
	convs, err := s.Conversations.ListConversationsByUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withMessages(ctx, convs)
}

func (s *Service) ConversationsByProject(ctx context.Context, projectID string, withMessages bool) ([]core.Conversation, error) {
	convs, err := s.Conversations.ListConversationsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !withMessages {
		return convs, nil
	}
	return s.withMessages(ctx, convs)
}

func (s *Service) withMessages(ctx context.Context, convs []core.Conversation) ([]core.Conversation, error) {
	for i := range convs {
		messages, err := s.messagesWithContexts(ctx, convs[i].ID)
		if err != nil {
			return nil, err
		}
		convs[i].Messages = messages
	}
	return convs, nil
}
