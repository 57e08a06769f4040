package workspace

import (
	"context"
	"fmt"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

func (s *Service) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if p.Name == "" {
		return core.Project{}, fmt.Errorf("project name is required")
	}
	p.ID = s.newID()
	now := s.now().UTC()
	p.UpdatedAt = &now

	if err := s.Projects.CreateProject(ctx, p); err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}

	var err error
	if p.Contexts, err = s.attachNewContexts(ctx, p.ID, p.Contexts); err != nil {
		return core.Project{}, err
	}
	if p.Conversations == nil {
		p.Conversations = []string{}
	}

	log.FromCtx(ctx).Info().Str("project_id", p.ID).Str("name", p.Name).Msg("created project")
	return p, nil
}

// attachNewContexts stores contexts that have no ID yet against the project.
func (s *Service) attachNewContexts(ctx context.Context, projectID string, contexts []core.Context) ([]core.Context, error) {
	out := make([]core.Context, 0, len(contexts))
	for _, c := range contexts {
		if c.ID == "" {
			c.ProjectID = projectID
			c.MessageID = ""
			saved, err := s.saveContext(ctx, c)
			if err != nil {
				return nil, err
			}
			c = saved
		}
		out = append(out, c)
	}
	return out, nil
}

// Project returns the project with its contexts and conversation IDs.
func (s *Service) Project(ctx context.Context, id string) (core.Project, error) {
	p, err := s.Projects.GetProject(ctx, id)
	if err != nil {
		return core.Project{}, err
	}
	if p.Contexts, err = s.ProjectContexts(ctx, id); err != nil {
		return core.Project{}, err
	}
	return p, nil
}

func (s *Service) ProjectContexts(ctx context.Context, id string) ([]core.Context, error) {
	contexts, err := s.Contexts.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.loadContents(ctx, contexts)
}

// UpdateProject saves the project fields and persists newly attached
// contexts. Existing contexts are left untouched.
func (s *Service) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	now := s.now().UTC()
	p.UpdatedAt = &now

	if err := s.Projects.UpdateProject(ctx, p); err != nil {
		return core.Project{}, fmt.Errorf("update project: %w", err)
	}

	var err error
	if p.Contexts, err = s.attachNewContexts(ctx, p.ID, p.Contexts); err != nil {
		return core.Project{}, err
	}
	if p.Conversations == nil {
		p.Conversations = []string{}
	}
	return p, nil
}

// DeleteProject removes the project and every context attached to it.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	contexts, err := s.Contexts.ListByProject(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range contexts {
		if err := s.deleteContext(ctx, c); err != nil {
			return err
		}
	}
	if err := s.Projects.DeleteProject(ctx, id); err != nil {
		return err
	}

	log.FromCtx(ctx).Info().Str("project_id", id).Int("contexts", len(contexts)).Msg("deleted project")
	return nil
}

func (s *Service) ListProjects(ctx context.Context) ([]core.Project, error) {
	return s.Projects.ListProjects(ctx)
}

func (s *Service) ListUserProjects(ctx context.Context, username string) ([]core.Project, error) {
	return s.Projects.ListProjectsByUser(ctx, username)
}

func (s *Service) ListPublicProjects(ctx context.Context) ([]core.Project, error) {
	return s.Projects.ListPublicProjects(ctx)
}
