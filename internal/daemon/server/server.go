// Package server exposes the reporter's status over a Unix socket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/pulse/internal/daemon/store"
	"github.com/sirupsen/logrus"
)

// RunningConfig holds the effective settings of the running reporter.
// It is exposed via /api/config so clients can verify what is active.
type RunningConfig struct {
	Target        string        `json:"target"`
	Transport     string        `json:"transport"`
	Interval      time.Duration `json:"interval"`
	Timeout       time.Duration `json:"timeout"`
	Exclude       []string      `json:"exclude,omitempty"`
	EditorAddress string        `json:"editor_address,omitempty"`
	Sources       []string      `json:"sources,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
}

// Server manages the status HTTP server over a Unix socket.
type Server struct {
	logger        *logrus.Entry
	server        *http.Server
	store         *store.Store
	runningConfig *RunningConfig
}

// New creates a new Server instance.
func New(st *store.Store, logger *logrus.Entry) *Server {
	return &Server{
		store:  st,
		logger: logger,
	}
}

// SetRunningConfig sets the running configuration for the server.
func (s *Server) SetRunningConfig(cfg *RunningConfig) {
	s.runningConfig = cfg
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/config", s.handleGetConfig)
	return mux
}

// ListenAndServe serves on the given unix socket path. It blocks until the
// server stops or fails.
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

	s.server = &http.Server{Handler: s.Handler()}

	s.logger.WithField("socket", socketPath).Info("Status server listening")
	return s.server.Serve(listener)
}

// Run serves on socketPath until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context, socketPath string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(socketPath) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		_ = os.Remove(socketPath)
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("Shutting down status server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleGetState returns the reporter status as JSON.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.store.Get())
}

// apiEvent is the SSE representation of a store update.
type apiEvent struct {
	UpdateType string    `json:"update_type"`
	Outcome    string    `json:"outcome,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	Repository string    `json:"repository,omitempty"`
	Error      string    `json:"error,omitempty"`
	ConfigFile string    `json:"config_file,omitempty"`
	Time       time.Time `json:"time"`
}

func convertToAPIEvent(u store.Update) apiEvent {
	switch u.Type {
	case store.UpdateConfigReload:
		file, _ := u.Payload.(string)
		return apiEvent{UpdateType: string(u.Type), ConfigFile: file, Time: time.Now()}
	default:
		ev := apiEvent{
			UpdateType: string(u.Type),
			Outcome:    u.Event.Outcome.String(),
			FileName:   u.Event.State.FileName,
			Repository: u.Event.Repository,
			Time:       u.Event.Time,
		}
		if u.Event.Err != nil {
			ev.Error = u.Event.Err.Error()
		}
		return ev
	}
}

// handleStream provides Server-Sent Events for poller activity.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(convertToAPIEvent(update))
			if err != nil {
				s.logger.WithError(err).Error("Failed to marshal update")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleGetConfig returns the running configuration as JSON.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.runningConfig == nil {
		http.Error(w, "config not initialized", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.runningConfig)
}
