package chat

import (
	"context"
	"fmt"
	"iter"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

type Service struct {
	provider  core.ChatProvider
	assembler *Assembler
}

func NewService(provider core.ChatProvider, assembler *Assembler) *Service {
	return &Service{
		provider:  provider,
		assembler: assembler,
	}
}

// BuildTurns trims the history to the budget and injects the system prompt.
func (s *Service) BuildTurns(messages []core.Message, projectContexts []core.Context) []core.Turn {
	return EnsureSystemPrompt(s.assembler.Assemble(messages, projectContexts))
}

func (s *Service) Query(ctx context.Context, prompt string) (string, error) {
	return s.Chat(ctx, []core.Message{{Role: core.RoleUser, Content: prompt}}, nil)
}

func (s *Service) Chat(ctx context.Context, messages []core.Message, projectContexts []core.Context) (string, error) {
	turns := s.BuildTurns(messages, projectContexts)
	log.FromCtx(ctx).Debug().
		Int("messages", len(messages)).
		Int("turns", len(turns)).
		Msg("sending chat request")

	reply, err := s.provider.Complete(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}

func (s *Service) Stream(ctx context.Context, messages []core.Message, projectContexts []core.Context) (iter.Seq2[string, error], error) {
	turns := s.BuildTurns(messages, projectContexts)
	log.FromCtx(ctx).Info().
		Int("messages", len(messages)).
		Int("project_contexts", len(projectContexts)).
		Int("turns", len(turns)).
		Msg("starting streaming response")

	seq, err := s.provider.Stream(ctx, turns)
	if err != nil {
		return nil, fmt.Errorf("chat stream: %w", err)
	}
	return seq, nil
}
