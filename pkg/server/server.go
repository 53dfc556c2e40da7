package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/lazyroute/internal/feed"
	"github.com/vango-dev/lazyroute/pkg/navigation"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

// Navigator is the controller surface the API drives.
// *navigation.Controller implements it.
type Navigator interface {
	Navigate(ctx context.Context, path string, opts ...navigation.NavigateOption) navigation.Outcome
	Back(ctx context.Context) navigation.Outcome
	Forward(ctx context.Context) navigation.Outcome
	State() navigation.State
	History() ([]string, int)
	Routes() *routetable.Table
}

// Server is the HTTP API for one navigation controller.
type Server struct {
	nav    Navigator
	hub    *feed.Hub
	config *ServerConfig
	router chi.Router
	logger *slog.Logger

	httpServer *http.Server
}

// New creates a Server. hub may be nil, in which case /ws is not mounted.
func New(nav Navigator, hub *feed.Hub, config *ServerConfig) *Server {
	config = config.withDefaults()
	s := &Server{
		nav:    nav,
		hub:    hub,
		config: config,
		logger: config.Logger.With("component", "server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/state", s.handleState)
		r.Get("/history", s.handleHistory)
		r.Get("/routes", s.handleRoutes)
		r.With(middleware.AllowContentType("application/json")).Post("/navigate", s.handleNavigate)
		r.Post("/back", s.handleBack)
		r.Post("/forward", s.handleForward)
		if s.config.Viewport != nil {
			r.With(middleware.AllowContentType("application/json")).Put("/viewport", s.handleViewport)
		}
	})

	if s.hub != nil {
		r.Handle("/ws", s.hub)
	}
	if !s.config.DisableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Handler returns the API as an http.Handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.WithoutCancel(ctx))
	}
}

// Shutdown gracefully shuts down the server and disconnects feed clients.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.hub != nil {
		s.hub.Close()
	}
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Broadcast returns a state listener that publishes every state to hub as
// a "state" message.
func Broadcast(hub *feed.Hub) func(navigation.State) {
	return func(st navigation.State) {
		hub.Publish("state", NewStateResponse(st))
	}
}
