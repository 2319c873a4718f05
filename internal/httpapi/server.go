// Package httpapi exposes the course catalogue and quiz sessions over HTTP
// and WebSocket.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
	"github.com/p-n-ai/pai-quiz/internal/locale"
	"github.com/p-n-ai/pai-quiz/internal/session"
)

const readyTimeout = 2 * time.Second

// Catalog is the read side of the course catalogue.
type Catalog interface {
	Courses(ctx context.Context) ([]catalog.Course, error)
	Course(ctx context.Context, id string) (catalog.Course, error)
}

// HealthChecker is a dependency probed by /readyz.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Options holds the dependencies of a Server.
type Options struct {
	Catalog  Catalog
	Sessions *session.Manager
	Locale   *locale.Localizer
	Checks   map[string]HealthChecker
}

// Server serves the quiz API.
type Server struct {
	catalog  Catalog
	sessions *session.Manager
	locale   *locale.Localizer
	checks   map[string]HealthChecker
}

// New creates a Server.
func New(opts Options) *Server {
	return &Server{
		catalog:  opts.Catalog,
		sessions: opts.Sessions,
		locale:   opts.Locale,
		checks:   opts.Checks,
	}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/v1/courses", s.handleCourses)
	mux.HandleFunc("GET /api/v1/courses/{courseID}", s.handleCourse)
	mux.HandleFunc("POST /api/v1/courses/{courseID}/quizzes/{quizID}/sessions", s.handleCreateCourseSession)
	mux.HandleFunc("POST /api/v1/quizzes/{quizID}/sessions", s.handleCreateSession)

	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/select", s.handleSelect)
	mux.HandleFunc("POST /api/v1/sessions/{id}/submit", s.transition(s.sessions.Submit))
	mux.HandleFunc("POST /api/v1/sessions/{id}/advance", s.transition(s.sessions.Advance))
	mux.HandleFunc("POST /api/v1/sessions/{id}/restart", s.transition(s.sessions.Restart))
	mux.HandleFunc("POST /api/v1/sessions/{id}/reload", s.handleReload)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/sound", s.handleSound)
	mux.HandleFunc("GET /api/v1/sessions/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/sessions/{id}/summary.xlsx", s.handleSummaryExport)
	mux.HandleFunc("GET /api/v1/sessions/{id}/ws", s.handleSessionWS)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	body := map[string]any{"status": "ready", "checks": results}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	writeJSON(w, status, body)
}
