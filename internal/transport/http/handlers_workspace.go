package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

func (s *Server) saveConversation(w http.ResponseWriter, r *http.Request) {
	var conv core.Conversation
	if !decodeJSON(w, r, &conv) {
		return
	}
	user := currentUser(r)
	if conv.Username == "" {
		conv.Username = user
	}
	if conv.Username != user {
		writeDetail(w, http.StatusForbidden, "Cannot save another user's conversation")
		return
	}

	saved, err := s.Workspace.SaveConversation(r.Context(), conv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.Workspace.Conversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username != currentUser(r) {
		writeDetail(w, http.StatusForbidden, "Not authorized to access these conversations")
		return
	}

	convs, err := s.Workspace.ConversationsByUser(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Username == "" {
		p.Username = currentUser(r)
	}
	if p.Name == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.Workspace.CreateProject(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.Workspace.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.ID == "" {
		writeDetail(w, http.StatusBadRequest, "project_id is required")
		return
	}

	updated, err := s.Workspace.UpdateProject(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.Workspace.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Project deleted successfully")
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.writeProjects(w, r, func() ([]core.Project, error) {
		return s.Workspace.ListProjects(r.Context())
	})
}

func (s *Server) listUserProjects(w http.ResponseWriter, r *http.Request) {
	s.writeProjects(w, r, func() ([]core.Project, error) {
		return s.Workspace.ListUserProjects(r.Context(), currentUser(r))
	})
}

func (s *Server) listPublicProjects(w http.ResponseWriter, r *http.Request) {
	s.writeProjects(w, r, func() ([]core.Project, error) {
		return s.Workspace.ListPublicProjects(r.Context())
	})
}

func (s *Server) writeProjects(w http.ResponseWriter, r *http.Request, list func() ([]core.Project, error)) {
	projects, err := list()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) projectConversations(w http.ResponseWriter, r *http.Request) {
	s.writeProjectConversations(w, r, true)
}

func (s *Server) projectConversationSummaries(w http.ResponseWriter, r *http.Request) {
	s.writeProjectConversations(w, r, false)
}

func (s *Server) writeProjectConversations(w http.ResponseWriter, r *http.Request, withMessages bool) {
	convs, err := s.Workspace.ConversationsByProject(r.Context(), chi.URLParam(r, "id"), withMessages)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}
