package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/internal/storage/blob"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

var ErrEmptyConversation = errors.New("conversation has no id and no messages")

// Stores groups the persistence the workspace needs.
type Stores struct {
	Conversations core.ConversationsRepository
	Messages      core.MessagesRepository
	Contexts      core.ContextsRepository
	Projects      core.ProjectsRepository
	Blobs         core.BlobStore
}

// Service manages conversations, projects and their attached contexts.
type Service struct {
	Stores
	now   func() time.Time
	newID func() string
}

func NewService(stores Stores) *Service {
	return &Service{
		Stores: stores,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// saveContext assigns an ID, writes the content blob and then the row.
func (s *Service) saveContext(ctx context.Context, c core.Context) (core.Context, error) {
	c.ID = s.newID()
	c.BlobName = blob.ContextBlobName(c.ID)

	if err := blob.PutContent(ctx, s.Blobs, c.BlobName, c.Content); err != nil {
		return core.Context{}, fmt.Errorf("store context content: %w", err)
	}
	if err := s.Contexts.AddContext(ctx, c); err != nil {
		return core.Context{}, fmt.Errorf("store context: %w", err)
	}
	return c, nil
}

// loadContents fills Content from the blob store. A missing blob is
// reported on the context instead of failing the whole read.
func (s *Service) loadContents(ctx context.Context, contexts []core.Context) ([]core.Context, error) {
	for i := range contexts {
		content, err := blob.GetContent(ctx, s.Blobs, contexts[i].BlobName)
		if errors.Is(err, core.ErrNotFound) {
			log.FromCtx(ctx).Warn().Str("context_id", contexts[i].ID).Msg("context content missing")
			if contexts[i].Error == "" {
				contexts[i].Error = "content unavailable"
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		contexts[i].Content = content
	}
	return contexts, nil
}

func (s *Service) deleteContext(ctx context.Context, c core.Context) error {
	if err := s.Blobs.Delete(ctx, c.BlobName); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete context content: %w", err)
	}
	if err := s.Contexts.DeleteContext(ctx, c.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete context: %w", err)
	}
	return nil
}
