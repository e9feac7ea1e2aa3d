package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/concord"
	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"github.com/aretw0/concord/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes mounted pages over HTTP.
type Server struct {
	Pages   *session.Registry
	Streams *StreamManager
	logger  *slog.Logger
	mounts  []func(chi.Router)

	// inflight counts background submits still waiting on the guidance service.
	inflight sync.WaitGroup
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks were given to the registry.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRoutes adds extra routes such as /metrics to the router.
func WithRoutes(fn func(chi.Router)) Option {
	return func(s *Server) {
		s.mounts = append(s.mounts, fn)
	}
}

// NewServer creates a server over a page registry.
func NewServer(pages *session.Registry, opts ...Option) *Server {
	s := &Server{
		Pages:  pages,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}
	s.Streams.SetLogger(s.logger)
	return s
}

// NewHandler creates the HTTP handler for a page registry.
func NewHandler(pages *session.Registry, opts ...Option) http.Handler {
	return NewServer(pages, opts...).Handler()
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/onboarding", http.StatusFound)
	})
	r.Get("/onboarding", s.Onboarding)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"app":     "concord",
			"version": strings.TrimSpace(concord.Version),
			"pages":   s.Pages.Len(),
		})
	})

	r.Route("/api/pages", func(r chi.Router) {
		r.Post("/", s.Mount)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetPage)
			r.Delete("/", s.Unmount)
			r.Patch("/contextual", s.EditContextual)
			r.Patch("/goals", s.EditGoals)
			r.Put("/mediator", s.SelectMediator)
			r.Post("/submit", s.Submit)
			r.Get("/events", s.Events)
		})
	})

	for _, mount := range s.mounts {
		mount(r)
	}
	return CORS(r)
}

// Onboarding mounts a new page and renders it as HTML.
func (s *Server) Onboarding(w http.ResponseWriter, r *http.Request) {
	page := s.Pages.Mount()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderPage(w, page.Coordinator.View()); err != nil {
		s.logger.Error("Onboarding: render failed", "error", err, "page_id", page.ID)
	}
}

// Mount handles POST /api/pages.
func (s *Server) Mount(w http.ResponseWriter, r *http.Request) {
	page := s.Pages.Mount()
	writeJSON(w, http.StatusCreated, page.Coordinator.View())
}

// GetPage handles GET /api/pages/{id}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, page.Coordinator.View())
}

// Unmount handles DELETE /api/pages/{id}.
func (s *Server) Unmount(w http.ResponseWriter, r *http.Request) {
	if err := s.Pages.Unmount(chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditContextual handles PATCH /api/pages/{id}/contextual.
func (s *Server) EditContextual(w http.ResponseWriter, r *http.Request) {
	s.editField(w, r, func(p *session.Page, field, value string) error {
		return p.Coordinator.EditContextual(field, value)
	})
}

// EditGoals handles PATCH /api/pages/{id}/goals.
func (s *Server) EditGoals(w http.ResponseWriter, r *http.Request) {
	s.editField(w, r, func(p *session.Page, field, value string) error {
		return p.Coordinator.EditGoals(field, value)
	})
}

func (s *Server) editField(w http.ResponseWriter, r *http.Request, edit func(*session.Page, string, string) error) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	var body fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("Edit: Invalid request body", "error", err)
		return
	}
	clean, err := editor.SanitizeField(body.Field, body.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid input: %v", err))
		s.logger.Warn("Edit: Input rejected", "error", err, "field", body.Field)
		return
	}
	if err := edit(page, body.Field, clean); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page.Coordinator.View())
}

type mediatorRequest struct {
	Mediator domain.MediatorPreference `json:"mediator"`
}

// SelectMediator handles PUT /api/pages/{id}/mediator.
func (s *Server) SelectMediator(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	var body mediatorRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("SelectMediator: Invalid request body", "error", err)
		return
	}
	if err := page.Coordinator.SelectMediator(body.Mediator); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page.Coordinator.View())
}

// Submit handles POST /api/pages/{id}/submit.
//
// The call runs in the background and the loading view is returned with 202.
// With ?wait=true the response carries the resolved view instead.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("wait") == "true" {
		page.Coordinator.Submit(r.Context())
		writeJSON(w, http.StatusOK, page.Coordinator.View())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	attempt, payload := page.Coordinator.Begin(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		page.Coordinator.Complete(ctx, attempt, payload)
	}()
	writeJSON(w, http.StatusAccepted, page.Coordinator.View())
}

// Drain waits for background submits to resolve so their hooks run before
// shutdown. It returns ctx.Err() if ctx ends first.
func (s *Server) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events handles GET /api/pages/{id}/events, streaming state transitions.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := s.Streams.Subscribe(page.ID)
	defer unsubscribe()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) (*session.Page, bool) {
	page, err := s.Pages.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return page, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPageNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownField), errors.Is(err, domain.ErrUnknownMediator):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		s.logger.Error("request failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
