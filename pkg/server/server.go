// Package server exposes a loom application over HTTP: server-side
// rendering for the first paint, a WebSocket patch stream per session,
// and Prometheus metrics. Each session gets an isolated document, so
// concurrent clients never share engine state.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/schedule"
	"github.com/loom-ui/loom/pkg/styles"
)

// Server serves a loom application.
type Server struct {
	cfg      *Config
	app      App
	log      *slog.Logger
	resolver *styles.Resolver
	metrics  *metrics
	tracer   trace.Tracer
	upgrader websocket.Upgrader

	mux        chi.Router
	httpServer *http.Server

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithResolver sets the stylesheet resolver shared by all sessions.
func WithResolver(res *styles.Resolver) Option {
	return func(s *Server) { s.resolver = res }
}

// WithRegisterer sets the Prometheus registerer. Defaults to the
// global one.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Server) { s.metrics = newMetrics(reg) }
}

// New creates a server for the given app.
func New(app App, cfg *Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.fillDefaults()
	}

	s := &Server{
		cfg:      cfg,
		app:      app,
		log:      slog.Default().With("component", "server"),
		tracer:   otel.Tracer("loom-server"),
		sessions: make(map[uuid.UUID]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(nil)
	}

	mux := chi.NewRouter()
	mux.Get("/", s.handleIndex)
	mux.Get("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
	s.mux = mux
	return s
}

// Handler returns the server's HTTP handler for mounting in an
// external router.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.mux,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "address", s.cfg.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// handleIndex renders the first paint: a fresh document, the app run
// once, frames pumped to settlement, and the tree serialized as a full
// page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(r.Context(), "server.ssr")
	defer span.End()

	frames := schedule.NewManualFrames()
	appCtx := newAppContext(frames, s.log, s.resolver)
	if s.app != nil {
		if err := s.app(appCtx); err != nil {
			s.log.Error("app setup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	appCtx.pump(frames)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := render.Page{Title: s.cfg.PageTitle, Scripts: s.cfg.PageScripts}
	if err := render.NewRenderer(render.Config{}).WritePage(w, page, appCtx.Doc.Root()); err != nil {
		s.log.Warn("page write failed", "error", err)
	}
}

// handleWS upgrades the connection and services one session on it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.wsErrors.WithLabelValues("upgrade").Inc()
		s.log.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess := newSession(s, conn)
	s.addSession(sess)
	defer s.removeSession(sess)

	s.log.Info("session started", "session", sess.ID().String())
	sess.run(r.Context(), s.app)
	s.log.Info("session ended", "session", sess.ID().String())
}

func (s *Server) addSession(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.metrics.activeSessions.Inc()
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.metrics.activeSessions.Dec()
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
