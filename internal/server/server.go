package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/domo/internal/catalog"
	"github.com/desertthunder/domo/internal/hub"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
	"github.com/desertthunder/domo/internal/webcache"
)

const shutdownTimeout = 5 * time.Second

// Options wires the dashboard server's collaborators.
type Options struct {
	Addr    string
	Facade  *hub.Facade
	Home    *hub.Home
	Loop    *hub.SyncLoop
	Catalog *catalog.Provider
	Auth    *OAuthHandler     // nil disables the /auth routes
	Assets  *webcache.Fetcher // nil disables the /api/artwork proxy
	Logger  *log.Logger
}

// Server exposes the playback facade, simulated devices, and track search
// over a JSON API plus a websocket snapshot stream.
type Server struct {
	addr    string
	facade  *hub.Facade
	home    *hub.Home
	loop    *hub.SyncLoop
	catalog *catalog.Provider
	auth    *OAuthHandler
	artwork *http.Client
	logger  *log.Logger
	router  *BasicRouter
}

// New builds the server and registers all routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	s := &Server{
		addr:    opts.Addr,
		facade:  opts.Facade,
		home:    opts.Home,
		loop:    opts.Loop,
		catalog: opts.Catalog,
		auth:    opts.Auth,
		logger:  opts.Logger,
		router:  NewBasicRouter(),
	}
	if opts.Assets != nil {
		s.artwork = &http.Client{Transport: opts.Assets.Transport()}
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(Recover(s.logger), RequestLogger(s.logger))

	s.router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(s.handleHealth))
	s.router.Handle(http.MethodGet, "/api/state", http.HandlerFunc(s.handleState))
	s.router.Handle(http.MethodGet, "/api/tracks/search", http.HandlerFunc(s.handleSearch))
	s.router.Handle(http.MethodGet, "/ws", http.HandlerFunc(s.handleWS))

	if s.artwork != nil {
		s.router.Handle(http.MethodGet, "/api/artwork", http.HandlerFunc(s.handleArtwork))
	}

	s.router.Handle(http.MethodPost, "/api/commands/play-pause", s.command(s.playPause))
	s.router.Handle(http.MethodPost, "/api/commands/next", s.command(s.next))
	s.router.Handle(http.MethodPost, "/api/commands/previous", s.command(s.previous))
	s.router.Handle(http.MethodPost, "/api/commands/select-service", s.command(s.selectService))
	s.router.Handle(http.MethodPost, "/api/commands/toggle-lighting", s.command(s.toggleLighting))
	s.router.Handle(http.MethodPost, "/api/commands/set-dimmer", s.command(s.setDimmer))
	s.router.Handle(http.MethodPost, "/api/commands/temp-up", s.command(s.tempUp))
	s.router.Handle(http.MethodPost, "/api/commands/temp-down", s.command(s.tempDown))

	if s.auth != nil {
		s.router.Handler(s.auth)
	}
}

// Handler returns the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains connections gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("dashboard listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("dashboard stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type commandResponse struct {
	Status string         `json:"status"`
	Home   *hub.HomeState `json:"home,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	NeedsAuth bool   `json:"needs_auth,omitempty"`
}

// command wraps a command handler with the shared error mapping and the
// post-command sync poke.
func (s *Server) command(fn func(r *http.Request) (*hub.HomeState, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		home, err := fn(r)
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.loop.Poke()
		s.writeJSON(w, http.StatusOK, commandResponse{Status: "ok", Home: home})
	})
}

func (s *Server) playPause(r *http.Request) (*hub.HomeState, error) {
	return nil, s.facade.PlayPause(r.Context())
}

func (s *Server) next(r *http.Request) (*hub.HomeState, error) {
	return nil, s.facade.Next(r.Context())
}

func (s *Server) previous(r *http.Request) (*hub.HomeState, error) {
	return nil, s.facade.Previous(r.Context())
}

func (s *Server) selectService(r *http.Request) (*hub.HomeState, error) {
	var body struct {
		Service string `json:"service"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed request body", shared.ErrInvalidInput)
	}
	return nil, s.facade.SwitchService(r.Context(), music.Service(body.Service))
}

func (s *Server) toggleLighting(*http.Request) (*hub.HomeState, error) {
	s.home.ToggleLighting()
	return s.homeState(), nil
}

func (s *Server) setDimmer(r *http.Request) (*hub.HomeState, error) {
	var body struct {
		Level int `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: malformed request body", shared.ErrInvalidInput)
	}

	s.home.SetDimmer(body.Level)
	return s.homeState(), nil
}

func (s *Server) tempUp(*http.Request) (*hub.HomeState, error) {
	s.home.IncreaseTemp()
	return s.homeState(), nil
}

func (s *Server) tempDown(*http.Request) (*hub.HomeState, error) {
	s.home.DecreaseTemp()
	return s.homeState(), nil
}

func (s *Server) homeState() *hub.HomeState {
	state := s.home.State()
	return &state
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.loop.Snapshot())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result := s.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	s.writeJSON(w, http.StatusOK, result)
}

// handleArtwork proxies an artwork URL through the asset cache so the
// dashboard keeps its cover art when the origin is unreachable.
func (s *Server) handleArtwork(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		s.writeError(w, fmt.Errorf("%w: url must be absolute http(s)", shared.ErrInvalidInput))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, raw, nil)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	resp, err := s.artwork.Do(req)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: artwork fetch failed", shared.ErrRemoteService))
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if cache := resp.Header.Get("X-Domo-Cache"); cache != "" {
		w.Header().Set("X-Domo-Cache", cache)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("failed to stream artwork", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrAuthRequired):
		status = http.StatusUnauthorized
		resp.NeedsAuth = true
	case errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrNoTrack):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, shared.ErrRemoteService):
		status = http.StatusBadGateway
	}

	s.writeJSON(w, status, resp)
}
