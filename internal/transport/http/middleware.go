package httptransport

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjaspenextech/nextech-shannon-api/internal/service/auth"
	"github.com/jjaspenextech/nextech-shannon-api/pkg/log"
)

// requestLogger stores a request-scoped logger in the context and logs
// every request once it has been served.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := log.FromCtx(ctx).With().Str("request_id", middleware.GetReqID(ctx)).Logger()
		r = r.WithContext(logger.WithContext(ctx))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// withCORS allows the configured origins; "*" or an empty list allows all.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type claimsKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := s.Auth.Verify(token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		logger := log.FromCtx(ctx).With().Str("username", claims.Username).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx)))
	})
}

// currentUser is only valid behind requireAuth.
func currentUser(r *http.Request) string {
	claims, _ := r.Context().Value(claimsKey{}).(*auth.Claims)
	if claims == nil {
		return ""
	}
	return claims.Username
}
