// Package api exposes the audit pipeline over HTTP: one synchronous check
// endpoint plus read access to the check history.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/a11yaudit/a11ycheck/dom"
	"github.com/a11yaudit/a11ycheck/internal/store"
	"github.com/a11yaudit/a11ycheck/render"
	"github.com/a11yaudit/a11ycheck/wcag"
)

const (
	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
)

// Session is the per-request page handle the server drives. Implemented
// by *render.Session.
type Session interface {
	Capture(ctx context.Context, scale float64) (image.Image, error)
	Snapshot(ctx context.Context) (*dom.Snapshot, error)
	DeclaredLanguage(ctx context.Context) (string, error)
	Close() error
}

// Renderer opens sessions. Implemented by *render.Manager via OpenSession.
type Renderer interface {
	Open(ctx context.Context, pageURL string, width, height int) (Session, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, pageURL string, width, height int) (Session, error)

func (f RendererFunc) Open(ctx context.Context, pageURL string, width, height int) (Session, error) {
	return f(ctx, pageURL, width, height)
}

// OpenSession adapts a render.Manager to the Renderer interface.
func OpenSession(m *render.Manager) Renderer {
	return RendererFunc(func(ctx context.Context, pageURL string, width, height int) (Session, error) {
		return m.Open(ctx, pageURL, width, height)
	})
}

// Checker runs the detection pipeline. Implemented by *wcag.Checker.
type Checker interface {
	Check(ctx context.Context, in wcag.Input) ([]wcag.Infraction, error)
}

// Server is the HTTP layer.
type Server struct {
	renderer Renderer
	checker  Checker
	store    *store.Store
	sem      chan struct{}
	logger   *slog.Logger
	router   chi.Router
}

// NewServer assembles the HTTP layer. store may be nil to disable history.
func NewServer(cfg ServerConfig, renderer Renderer, checker Checker, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 4
	}

	s := &Server{
		renderer: renderer,
		checker:  checker,
		store:    st,
		sem:      make(chan struct{}, cfg.MaxSessions),
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/v1/check_url", s.handleCheckURL)
	r.Get("/v1/checks", s.handleListChecks)
	r.Get("/v1/checks/{id}", s.handleGetCheck)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type checkRequest struct {
	URL          string `json:"url"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
}

type checkResponse struct {
	ID     string            `json:"id"`
	Errors []wcag.Infraction `json:"errors"`
}

func (s *Server) handleCheckURL(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WindowWidth <= 0 {
		req.WindowWidth = defaultWindowWidth
	}
	if req.WindowHeight <= 0 {
		req.WindowHeight = defaultWindowHeight
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "url must be absolute http(s)")
		return
	}

	ctx := r.Context()
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		writeError(w, http.StatusServiceUnavailable, "server busy")
		return
	}

	started := time.Now()
	check := &store.Check{
		ID:           uuid.NewString(),
		URL:          req.URL,
		WindowWidth:  req.WindowWidth,
		WindowHeight: req.WindowHeight,
	}

	infractions, err := s.runCheck(ctx, req)
	check.DurationMS = time.Since(started).Milliseconds()
	if err != nil {
		switch {
		case errors.Is(err, render.ErrNavigate), errors.Is(err, render.ErrCapture):
			check.Status = store.StatusRenderError
			s.persist(ctx, check)
			s.logger.Warn("check failed: renderer", "url", req.URL, "error", err)
			writeError(w, http.StatusBadGateway, "page could not be rendered")
		case errors.Is(err, wcag.ErrInference):
			check.Status = store.StatusInferenceError
			s.persist(ctx, check)
			s.logger.Error("check failed: inference", "url", req.URL, "error", err)
			writeError(w, http.StatusInternalServerError, "inference backend failed")
		default:
			s.logger.Error("check failed", "url", req.URL, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	check.Status = store.StatusOK
	check.Infractions = infractions
	s.persist(ctx, check)

	if infractions == nil {
		infractions = []wcag.Infraction{}
	}
	writeJSON(w, http.StatusOK, checkResponse{ID: check.ID, Errors: infractions})
}

// runCheck renders the page and runs the pipeline: open, capture 1x and
// 2x, snapshot, check. The session is closed on every path.
func (s *Server) runCheck(ctx context.Context, req checkRequest) ([]wcag.Infraction, error) {
	session, err := s.renderer.Open(ctx, req.URL, req.WindowWidth, req.WindowHeight)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	small, err := session.Capture(ctx, 1)
	if err != nil {
		return nil, err
	}
	large, err := session.Capture(ctx, 2)
	if err != nil {
		return nil, err
	}
	snap, err := session.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	lang, err := session.DeclaredLanguage(ctx)
	if err != nil {
		return nil, err
	}

	return s.checker.Check(ctx, wcag.Input{
		Small:    small,
		Large:    large,
		DOM:      snap,
		Language: lang,
	})
}

// persist saves the check best-effort: history must never fail a response.
func (s *Server) persist(ctx context.Context, c *store.Check) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveCheck(ctx, c); err != nil {
		s.logger.Error("persist check failed", "id", c.ID, "error", err)
	}
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "history disabled")
		return
	}
	c, err := s.store.GetCheck(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown check")
		return
	}
	if err != nil {
		s.logger.Error("get check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if c.Infractions == nil {
		c.Infractions = []wcag.Infraction{}
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []*store.Check{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	checks, err := s.store.ListChecks(r.Context(), limit)
	if err != nil {
		s.logger.Error("list checks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if checks == nil {
		checks = []*store.Check{}
	}
	writeJSON(w, http.StatusOK, checks)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
