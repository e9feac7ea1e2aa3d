// Package guidanceapi serves the guidance endpoint that onboarding front ends post to.
package guidanceapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/concord"
	"github.com/aretw0/concord/internal/logging"
	httpadapter "github.com/aretw0/concord/pkg/adapters/http"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Path is the route of the guidance endpoint.
const Path = "/api/guidance"

// maxRequestSize bounds the accepted request body.
const maxRequestSize = 64 << 10

const (
	msgNoData          = "No data provided"
	msgMissingData     = "Missing 'onboarding_data' in request"
	msgInvalidRequest  = "Invalid request"
	msgInternalFailure = "An internal error occurred"
)

// Server answers guidance requests with an Advisor.
type Server struct {
	advisor ports.Advisor
	schema  *openapi3.Schema
	logger  *slog.Logger
	observe func(code int)
	mounts  []func(chi.Router)
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithObserver is called with the status code of every guidance response.
func WithObserver(fn func(code int)) Option {
	return func(s *Server) {
		s.observe = fn
	}
}

// WithRoutes adds extra routes such as /metrics to the router.
func WithRoutes(fn func(chi.Router)) Option {
	return func(s *Server) {
		s.mounts = append(s.mounts, fn)
	}
}

// New creates a guidance server. It fails only if the embedded OpenAPI document is broken.
func New(advisor ports.Advisor, opts ...Option) (*Server, error) {
	doc, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	schema, err := onboardingSchema(doc)
	if err != nil {
		return nil, err
	}
	s := &Server{
		advisor: advisor,
		schema:  schema,
		logger:  logging.NewNop(),
		observe: func(int) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post(Path, s.handleGuidance)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(RawSpec())
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"app":     "concord-guidance",
			"version": strings.TrimSpace(concord.Version),
		})
	})
	for _, mount := range s.mounts {
		mount(r)
	}
	return httpadapter.CORS(r)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	code := s.guidance(w, r)
	s.observe(code)
}

func (s *Server) guidance(w http.ResponseWriter, r *http.Request) int {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil || len(raw) > maxRequestSize {
		return fail(w, http.StatusBadRequest, errorBody{Error: msgNoData})
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || len(body) == 0 {
		return fail(w, http.StatusBadRequest, errorBody{Error: msgNoData})
	}

	data, ok := body["onboarding_data"].(map[string]any)
	if !ok || len(data) == 0 {
		return fail(w, http.StatusBadRequest, errorBody{Error: msgMissingData})
	}

	if err := s.schema.VisitJSON(data); err != nil {
		s.logger.Warn("guidance request rejected", "error", err)
		return fail(w, http.StatusBadRequest, errorBody{Error: msgInvalidRequest, Details: schemaDetail(err)})
	}

	guidance, err := s.advisor.Advise(r.Context(), data)
	if err != nil {
		s.logger.Error("Error in /api/guidance", "error", err)
		return fail(w, http.StatusInternalServerError, errorBody{Error: msgInternalFailure, Details: err.Error()})
	}

	writeJSON(w, http.StatusOK, map[string]string{"guidance": guidance})
	return http.StatusOK
}

// schemaDetail keeps the first line of a schema error, which names the offending field.
func schemaDetail(err error) string {
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if p := se.JSONPointer(); len(p) > 0 {
			return strings.Join(p, ".") + ": " + se.Reason
		}
		return se.Reason
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i > 0 {
		msg = msg[:i]
	}
	return msg
}

func fail(w http.ResponseWriter, code int, body errorBody) int {
	writeJSON(w, code, body)
	return code
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
