package httptransport

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

type chatRequest struct {
	Messages  []core.Message `json:"messages"`
	Prompt    string         `json:"prompt"`
	ProjectID string         `json:"project_id"`
}

// history falls back to the prompt as a single user message.
func (c chatRequest) history() []core.Message {
	if len(c.Messages) > 0 {
		return c.Messages
	}
	if strings.TrimSpace(c.Prompt) == "" {
		return nil
	}
	return []core.Message{{Role: core.RoleUser, Content: c.Prompt, Sequence: 1}}
}

func (s *Server) decodeChat(w http.ResponseWriter, r *http.Request) (chatRequest, []core.Context, bool) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return req, nil, false
	}
	if len(req.history()) == 0 {
		writeDetail(w, http.StatusBadRequest, "messages or prompt is required")
		return req, nil, false
	}
	for _, m := range req.Messages {
		if !core.ValidRole(m.Role) {
			writeDetail(w, http.StatusBadRequest, fmt.Sprintf("invalid role %q", m.Role))
			return req, nil, false
		}
	}

	var projectContexts []core.Context
	if req.ProjectID != "" {
		var err error
		if projectContexts, err = s.Workspace.ProjectContexts(r.Context(), req.ProjectID); err != nil {
			writeError(w, r, err)
			return req, nil, false
		}
	}
	return req, projectContexts, true
}

func (s *Server) llmQuery(w http.ResponseWriter, r *http.Request) {
	req, projectContexts, ok := s.decodeChat(w, r)
	if !ok {
		return
	}

	var reply string
	var err error
	if len(req.Messages) == 0 && len(projectContexts) == 0 {
		reply, err = s.Chat.Query(r.Context(), req.Prompt)
	} else {
		reply, err = s.Chat.Chat(r.Context(), req.history(), projectContexts)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// llmQueryStream relays fragments as server-sent events. Errors before
// the first byte get a regular JSON error; a failure mid-stream is sent
// as an error event followed by the usual [DONE] frame.
func (s *Server) llmQueryStream(w http.ResponseWriter, r *http.Request) {
	req, projectContexts, ok := s.decodeChat(w, r)
	if !ok {
		return
	}

	seq, err := s.Chat.Stream(r.Context(), req.history(), projectContexts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	logger := log.FromCtx(r.Context())
	fragments := 0
	for frag, err := range seq {
		if err != nil {
			logger.Error().Err(err).Int("fragments", fragments).Msg("stream interrupted")
			writeEvent(w, "error", err.Error())
			break
		}
		writeEvent(w, "", frag)
		fragments++
		if flusher != nil {
			flusher.Flush()
		}
	}

	writeEvent(w, "", "[DONE]")
	if flusher != nil {
		flusher.Flush()
	}
	logger.Debug().Int("fragments", fragments).Msg("stream finished")
}

// writeEvent frames data as one SSE event; embedded newlines become
// separate data lines so the client reassembles them.
func writeEvent(w http.ResponseWriter, event, data string) {
	var b strings.Builder
	if event != "" {
		b.WriteString("event: " + event + "\n")
	}
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	_, _ = w.Write([]byte(b.String()))
}
