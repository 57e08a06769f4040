package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/internal/providers/jira"
	"github.com/jjaspenextech/nextech-shannon-api/internal/providers/llm"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/auth"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/workspace"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// errorStatus maps domain errors to HTTP statuses.
func errorStatus(err error) int {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrMissingField),
		errors.Is(err, workspace.ErrEmptyConversation),
		errors.Is(err, jira.ErrInvalidStoryKey):
		return http.StatusBadRequest
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	logger := log.FromCtx(r.Context())

	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &upstream):
		logger.Error().Err(err).Int("upstream_status", upstream.StatusCode).Str("upstream_body", upstream.Body).Msg("llm request failed")
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Msg("request failed")
	default:
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	detail := err.Error()
	switch status {
	case http.StatusNotFound:
		detail = "Not found"
	case http.StatusUnauthorized:
		detail = "Invalid credentials"
		if errors.Is(err, auth.ErrTokenExpired) {
			detail = "Token expired"
		} else if errors.Is(err, auth.ErrInvalidToken) {
			detail = "Invalid token"
		}
	}
	writeDetail(w, status, detail)
}

// decodeJSON reads a size-limited JSON body into v and answers 400 on
// failure. It reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}
