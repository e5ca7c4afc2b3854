// Package server exposes the overlay over HTTP: the overlay document, font
// files, the WebSocket channel, health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omochice/chat-overlay/internal/chat"
	"github.com/omochice/chat-overlay/internal/transport/ws"
)

// Options wires the server to the rest of the process.
type Options struct {
	// Channel is reported by /healthz.
	Channel string
	Hub     *chat.Hub
	Fonts   FontResolver
	// Static holds index.html and the assets served under /static.
	Static fs.FS
}

// Server serves the overlay HTTP surface.
type Server struct {
	address  string
	listener net.Listener
	server   *http.Server
	ws       *ws.Handler
	wg       sync.WaitGroup
}

// New creates a Server listening on address once started.
func New(address string, opts Options) *Server {
	wsHandler := ws.NewHandler(opts.Hub)
	return &Server{
		address: address,
		ws:      wsHandler,
		server: &http.Server{
			Handler:           NewRouter(opts, wsHandler),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// NewRouter builds the HTTP routes.
func NewRouter(opts Options, wsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.Static != nil {
		static := opts.Static
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, static, "index.html")
		})
		r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(static))))
	}

	NewFontHandler(opts.Fonts).RegisterRoutes(r)
	NewHealthHandler(opts.Channel, opts.Hub).RegisterRoutes(r)
	r.Handle("/ws", wsHandler)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	slog.Info("overlay server started", slog.String("addr", listener.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("err", err))
		}
	}()
	return nil
}

// Stop drains HTTP requests, disconnects overlays and waits for the serve loop.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.ws.Close()
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
