// Package server provides the HTTP server for the casemgmt daemon.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/internal/daemon/engine"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server manages the daemon's HTTP server over a Unix socket.
type Server struct {
	logger        *logrus.Entry
	server        *http.Server
	engine        *engine.Engine
	runningConfig *daemon.RunningConfig
	upgrader      websocket.Upgrader
}

// New creates a new Server instance.
func New(logger *logrus.Entry) *Server {
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			// Only local processes can reach the socket.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetEngine sets the engine whose store the server exposes.
func (s *Server) SetEngine(eng *engine.Engine) {
	s.engine = eng
}

// SetRunningConfig sets the running configuration for the server.
func (s *Server) SetRunningConfig(cfg *daemon.RunningConfig) {
	s.runningConfig = cfg
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/state", s.withEngine(s.handleGetState))
	mux.HandleFunc("/api/selection", s.withEngine(s.handleSelection))
	mux.HandleFunc("/api/environment", s.withEngine(s.handleEnvironment))
	mux.HandleFunc("/api/action-modal", s.withEngine(s.handleActionModal))
	mux.HandleFunc("/api/action-modal/reset", s.withEngine(s.handleResetActionModal))
	mux.HandleFunc("/api/action-modal/reload", s.withEngine(s.handleBumpReload))
	mux.HandleFunc("/api/flags", s.withEngine(s.handleFlags))
	mux.HandleFunc("/api/refresh", s.withEngine(s.handleRefresh))
	mux.HandleFunc("/api/stream", s.withEngine(s.handleStreamState))
	mux.HandleFunc("/api/ws", s.withEngine(s.handleWebsocket))
	mux.HandleFunc("/api/config", s.handleGetConfig)

	return mux
}

// ListenAndServe starts the daemon on the given unix socket path.
// It blocks until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	// Cleanup stale socket
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler:           h2c.NewHandler(s.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) withEngine(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.engine == nil {
			writeError(w, storeerrors.NotReady("engine"))
			return
		}
		h(w, r)
	}
}

func (s *Server) store() *store.Store {
	return s.engine.Store()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends err as a StoreError body so clients can recover the code.
// The status follows from the code.
func writeError(w http.ResponseWriter, err error) {
	se, ok := err.(*storeerrors.StoreError)
	if !ok {
		se = storeerrors.Wrap(err, storeerrors.ErrCodeInternal, err.Error())
	}
	writeJSON(w, storeerrors.StatusCode(se), se)
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, storeerrors.MethodNotAllowed(r.Method, methods...))
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, storeerrors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return false
	}
	return true
}

// handleGetState returns the complete store snapshot as JSON.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.store().Get())
}

// handleSelection sets one selection. Dependent command fetches run in the
// background and reach clients through the stream.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req daemon.SelectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	field, err := store.ParseField(string(req.Field))
	if err != nil {
		writeError(w, storeerrors.InvalidInput(err.Error()))
		return
	}

	changed := s.store().SetSelection(field, req.ID)
	s.logger.WithFields(logrus.Fields{"field": field, "changed": changed}).Debug("Selection updated")
	writeJSON(w, http.StatusOK, daemon.SelectionResponse{
		Changed: changed,
		Field:   field,
		ID:      s.store().Selection(field),
	})
}

// handleEnvironment handles GET/POST for the active environment.
func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	changed := false
	if r.Method == http.MethodPost {
		var req daemon.EnvironmentRequest
		if !decodeBody(w, r, &req) {
			return
		}
		changed = s.store().SetLiveAPI(req.Environment.IsLive())
	}

	env := s.store().Environment()
	writeJSON(w, http.StatusOK, daemon.EnvironmentResponse{
		Changed:     changed,
		Environment: env,
		IsLiveAPI:   env.IsLive(),
	})
}

// handleActionModal handles GET/POST for the action modal.
func (s *Server) handleActionModal(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, s.store().ActionModal())
		return
	}

	// The body is merged over the current modal: fields it leaves out keep
	// their value and reload is never taken from it.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, storeerrors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	out, err := s.store().EditActionModal(func(cur *models.ActionModal) error {
		if err := json.Unmarshal(body, cur); err != nil {
			return storeerrors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
		}
		if err := cur.Validate(); err != nil {
			return storeerrors.InvalidInput(err.Error())
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResetActionModal(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, http.StatusOK, s.store().ResetActionModal())
}

func (s *Server) handleBumpReload(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, http.StatusOK, daemon.ReloadResponse{Reload: s.store().BumpReload()})
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req daemon.FlagsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.HasNewDataCommand != nil {
		s.store().SetHasNewDataCommand(*req.HasNewDataCommand)
	}
	if req.HasDraggedPayload != nil {
		s.store().SetHasDraggedPayload(*req.HasDraggedPayload)
	}
	st := s.store().Get()
	writeJSON(w, http.StatusOK, daemon.Flags{
		HasNewDataCommand: st.HasNewDataCommand,
		HasDraggedPayload: st.HasDraggedPayload,
	})
}

// handleRefresh re-issues the base fetches and, with a sheet type selected,
// the command fetches.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s.engine.Refresh()
	s.engine.RefreshCommands()
	w.WriteHeader(http.StatusAccepted)
}

// handleStreamState provides Server-Sent Events (SSE) for real-time state updates.
// The first event carries the current snapshot.
func (s *Server) handleStreamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, storeerrors.New(storeerrors.ErrCodeInternal, "streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store().Subscribe()
	defer s.store().Unsubscribe(ch)

	// Send initial ping to confirm connection
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	s.logger.Debug("SSE client connected")

	send := func(u daemon.StateUpdate) bool {
		data, err := json.Marshal(u)
		if err != nil {
			s.logger.WithError(err).Error("Failed to marshal update")
			return true
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(daemon.InitialUpdate(s.store().Get())) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			if !send(daemon.NewStateUpdate(update, s.store().Get())) {
				return
			}
		}
	}
}

// handleWebsocket streams the same messages as /api/stream over a websocket.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ch := s.store().Subscribe()
	defer s.store().Unsubscribe(ch)

	s.logger.Debug("Websocket client connected")

	// The client never sends data; reading surfaces its close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(daemon.InitialUpdate(s.store().Get())); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			s.logger.Debug("Websocket client disconnected")
			return
		case <-r.Context().Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(daemon.NewStateUpdate(update, s.store().Get())); err != nil {
				return
			}
		}
	}
}

// handleGetConfig returns the running configuration as JSON.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.runningConfig == nil {
		writeError(w, storeerrors.NotReady("config"))
		return
	}
	writeJSON(w, http.StatusOK, s.runningConfig)
}
