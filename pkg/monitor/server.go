package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"digital.vasic.webaccept/pkg/logging"
)

// Server exposes the live monitor over HTTP:
//
//	/ws         websocket event feed
//	/dashboard  JSON dashboard snapshot
//	/health     liveness probe
type Server struct {
	addr      string
	collector *EventCollector
	dashboard *Dashboard
	hub       *Hub
	logger    logging.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer wires collector events into dashboard and a websocket
// hub. Events emitted before Start are still reflected in the
// dashboard.
func NewServer(
	addr string,
	collector *EventCollector,
	dashboard *Dashboard,
	logger logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	logger = logger.WithFields(logging.StringField("component", "monitor"))
	s := &Server{
		addr:      addr,
		collector: collector,
		dashboard: dashboard,
		hub:       NewHub(dashboard, logger),
		logger:    logger,
	}
	collector.OnEvent(func(event RunEvent) {
		s.dashboard.Apply(event)
		s.hub.Broadcast(event)
	})
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes served by the monitor.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on the configured address and serves until ctx is
// cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("monitor listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info("monitor listening",
		logging.StringField("addr", ln.Addr().String()),
	)

	go func() {
		<-ctx.Done()
		srv.Close()
		s.hub.Close()
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Addr returns the bound address once Start is listening, or the
// configured address before that.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	s.hub.Close()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snap := s.dashboard.Snapshot()
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Warn("encode dashboard", logging.ErrorField(err))
	}
}
