package httptransport

import (
	"net/http"

	"github.com/jjaspenextech/nextech-shannon-api/internal/service/auth"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	token, err := s.Auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.Auth.Signup(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "User created successfully")
}

func (s *Server) userInfo(w http.ResponseWriter, r *http.Request) {
	user, err := s.Auth.UserInfo(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id":    user.Username,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

type apiKeyUpdate struct {
	Service string `json:"service"`
	Key     string `json:"key"`
}

func (s *Server) updateAPIKey(w http.ResponseWriter, r *http.Request) {
	var in apiKeyUpdate
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Service == "" {
		writeDetail(w, http.StatusBadRequest, "service is required")
		return
	}
	if err := s.Auth.UpdateAPIKey(r.Context(), currentUser(r), in.Service, in.Key); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "API key updated successfully")
}

func (s *Server) apiKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Auth.APIKeys(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}
