package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	feedService "github.com/reshetovitsme/channel-watch/internal/modules/feed/service"
	pipelineDomain "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
	sloghttp "github.com/samber/slog-http"
)

// ChannelLister lists the watched channels
type ChannelLister interface {
	GetAllChannels() ([]*channelDomain.Channel, error)
}

// Server exposes health, metrics, run counters and the match feed
type Server struct {
	cfg      *config.Config
	feed     *feedService.Service
	stats    *pipelineDomain.RunStats
	channels ChannelLister
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

type statsResponse struct {
	pipelineDomain.Snapshot
	Uptime   string              `json:"uptime"`
	Channels []channelStatistics `json:"channels"`
}

type channelStatistics struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Username string `json:"username,omitempty"`
}

// New creates a new HTTP server
func New(cfg *config.Config, feed *feedService.Service, stats *pipelineDomain.RunStats, channels ChannelLister, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		feed:     feed,
		stats:    stats,
		channels: channels,
		metrics:  m,
		logger:   logger,
	}
}

// Enabled reports whether an HTTP port is configured
func (s *Server) Enabled() bool {
	return s.cfg.HTTPPort != ""
}

// Handler builds the routed handler wrapped in access logging and recovery
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /feed", s.handleFeed)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	handler := sloghttp.Recovery(mux)
	return sloghttp.New(s.logger)(handler)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	return s.serve(s.prepare())
}

// Run serves until ctx is done, then shuts down and waits for the
// listener to close
func (s *Server) Run(ctx context.Context) error {
	srv := s.prepare()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.serve(srv)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if serveErr := <-errCh; err == nil {
			err = serveErr
		}
		return err
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) prepare() *http.Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", s.cfg.HTTPPort),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()
	return srv
}

// serve returns nil once srv is shut down, even when that happened
// before it started listening
func (s *Server) serve(srv *http.Server) error {
	s.logger.Info("HTTP server starting", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot(time.Now())

	channels, err := s.channels.GetAllChannels()
	if err != nil {
		s.logger.Error("Error listing channels", "error", err)
		http.Error(w, "Failed to list channels", http.StatusInternalServerError)
		return
	}

	resp := statsResponse{
		Snapshot: snap,
		Uptime:   snap.Uptime.Round(time.Second).String(),
		Channels: make([]channelStatistics, 0, len(channels)),
	}
	for _, ch := range channels {
		resp.Channels = append(resp.Channels, channelStatistics{ID: ch.ID, Title: ch.Title, Username: ch.Username})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Error encoding stats", "error", err)
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	rss, err := s.feed.RSS(baseURL)
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
