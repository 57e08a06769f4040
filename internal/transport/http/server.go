package httptransport

import (
	"context"
	"errors"
	"iter"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/auth"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

const (
	maxBodySize     = 16 << 20
	shutdownTimeout = 10 * time.Second
)

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) error
	Login(ctx context.Context, username, password string) (string, error)
	Verify(token string) (*auth.Claims, error)
	UserInfo(ctx context.Context, username string) (core.User, error)
	UpdateAPIKey(ctx context.Context, username, service, key string) error
	APIKeys(ctx context.Context, username string) (map[string]string, error)
}

type WorkspaceService interface {
	SaveConversation(ctx context.Context, conv core.Conversation) (core.Conversation, error)
	Conversation(ctx context.Context, id string) (core.Conversation, error)
	ConversationsByUser(ctx context.Context, username string) ([]core.Conversation, error)
	ConversationsByProject(ctx context.Context, projectID string, withMessages bool) ([]core.Conversation, error)
	CreateProject(ctx context.Context, p core.Project) (core.Project, error)
	Project(ctx context.Context, id string) (core.Project, error)
	UpdateProject(ctx context.Context, p core.Project) (core.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) ([]core.Project, error)
	ListUserProjects(ctx context.Context, username string) ([]core.Project, error)
	ListPublicProjects(ctx context.Context) ([]core.Project, error)
	ProjectContexts(ctx context.Context, id string) ([]core.Context, error)
}

type ChatService interface {
	Query(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, messages []core.Message, projectContexts []core.Context) (string, error)
	Stream(ctx context.Context, messages []core.Message, projectContexts []core.Context) (iter.Seq2[string, error], error)
}

type Deps struct {
	Auth      AuthService
	Workspace WorkspaceService
	Chat      ChatService
	Scraper   core.Scraper
	Jira      core.IssueTracker
}

type Options struct {
	Addr        string
	CORSOrigins []string
	// JiraToken is used for users without a stored jira key.
	JiraToken string
	// Info is shown on the health endpoint; it must not hold secrets.
	Info map[string]string
}

type Server struct {
	Deps
	opts   Options
	router *chi.Mux

	mu   sync.Mutex
	http *http.Server
}

func NewServer(opts Options, deps Deps) *Server {
	s := &Server{
		Deps: deps,
		opts: opts,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.opts.CORSOrigins))

	router.Get("/", s.health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/signup", s.signup)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/user-info", s.userInfo)
			r.Post("/api-keys/update", s.updateAPIKey)
			r.Get("/api-keys", s.apiKeys)

			r.Post("/conversation", s.saveConversation)
			r.Get("/conversation/{id}", s.getConversation)
			r.Get("/conversations/{username}", s.listConversations)

			r.Post("/project", s.createProject)
			r.Put("/project", s.updateProject)
			r.Get("/project/{id}", s.getProject)
			r.Delete("/project/{id}", s.deleteProject)
			r.Get("/projects", s.listProjects)
			r.Get("/projects/user", s.listUserProjects)
			r.Get("/projects/public", s.listPublicProjects)
			r.Get("/projects/{id}/conversations", s.projectConversations)
			r.Get("/projects/{id}/conversation-summaries", s.projectConversationSummaries)

			r.Post("/llm-query", s.llmQuery)
			r.Post("/llm-query/stream", s.llmQueryStream)

			r.Get("/web/scrape", s.scrape)
			r.Get("/jira/story/{key}", s.jiraStory)
		})
	})

	return router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server is shut down.
func (s *Server) Start(ctx context.Context) error {
	hs := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.router,
		// Requests inherit the logger but not the shutdown signal.
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = hs
	s.mu.Unlock()

	log.FromCtx(ctx).Info().Str("addr", s.opts.Addr).Msg("API server starting")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	hs := s.http
	s.mu.Unlock()
	if hs == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	log.FromCtx(ctx).Info().Msg("API server shutting down")
	return hs.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"message": "Welcome to the " + core.ShannonName + " API",
		"version": core.ShannonVersion,
	}
	for k, v := range s.opts.Info {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}
