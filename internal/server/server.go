// Package server hosts the development server: it serves the current
// bundle with an HTML shell and pushes reload notifications to connected
// browsers over a websocket when a rebuild lands.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/cpascale43/minipack/internal/build"
	"github.com/cpascale43/minipack/internal/config"
	"github.com/cpascale43/minipack/internal/logging"
)

// DevServer serves the bundle and live-reloads connected clients
type DevServer struct {
	cfg    *config.Config
	logger logging.Logger

	bundleMu  sync.RWMutex
	bundle    []byte
	buildErr  error
	builtAt   time.Time

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]struct{}

	httpServer *http.Server
}

// NewDevServer creates a dev server for the given configuration
func NewDevServer(cfg *config.Config, logger logging.Logger) *DevServer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &DevServer{
		cfg:     cfg,
		logger:  logger.WithComponent("server"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// OnBuild feeds a pipeline result into the server. Successful builds
// replace the served bundle and trigger a reload broadcast; failures keep
// the previous bundle and are reported to clients.
func (s *DevServer) OnBuild(result build.Result) {
	s.bundleMu.Lock()
	if result.Error == nil {
		s.bundle = result.Bundle.Output
		s.buildErr = nil
		s.builtAt = result.Timestamp
	} else {
		s.buildErr = result.Error
	}
	s.bundleMu.Unlock()

	if result.Error == nil {
		s.Broadcast(context.Background(), "reload")
	} else {
		s.Broadcast(context.Background(), "error: "+result.Error.Error())
	}
}

// Addr returns the configured listen address
func (s *DevServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start serves HTTP until the context is cancelled
func (s *DevServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/bundle.js", s.handleBundle)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:         s.Addr(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "dev server listening", "addr", s.Addr())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown closes client connections and stops the HTTP server
func (s *DevServer) Shutdown() error {
	s.clientsMu.Lock()
	for conn := range s.clients {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// ClientCount returns the number of connected websocket clients
func (s *DevServer) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *DevServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// Prefer the project's own shell when one exists
	shellPath := filepath.Join("public", "index.html")
	if body, err := os.ReadFile(shellPath); err == nil {
		_, _ = w.Write(injectReloadClient(body))
		return
	}

	_, _ = fmt.Fprintf(w, indexShell, reloadClient)
}

func (s *DevServer) handleBundle(w http.ResponseWriter, r *http.Request) {
	s.bundleMu.RLock()
	bundle := s.bundle
	buildErr := s.buildErr
	s.bundleMu.RUnlock()

	if bundle == nil {
		if buildErr != nil {
			http.Error(w, buildErr.Error(), http.StatusInternalServerError)
			return
		}
		// Fall back to the bundle on disk from a previous run
		body, err := os.ReadFile(s.cfg.OutputFile())
		if err != nil {
			http.Error(w, "no bundle built yet", http.StatusNotFound)
			return
		}
		bundle = body
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(bundle)
}
