package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeDetail(w, http.StatusBadRequest, "url is required")
		return
	}

	content, err := s.Scraper.Scrape(r.Context(), url)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error scraping the web: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

// jiraStory prefers the caller's stored jira key over the server default.
func (s *Server) jiraStory(w http.ResponseWriter, r *http.Request) {
	token := s.opts.JiraToken
	keys, err := s.Auth.APIKeys(r.Context(), currentUser(r))
	if err == nil && keys["jira"] != "" {
		token = keys["jira"]
	}
	if token == "" {
		writeDetail(w, http.StatusBadRequest, "No Jira API key configured")
		return
	}

	description, err := s.Jira.StoryDescription(r.Context(), chi.URLParam(r, "key"), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"description": description})
}
