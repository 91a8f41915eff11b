package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"net/http/httptest"
	"testing"
	"time"

	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	channelRepo "github.com/reshetovitsme/channel-watch/internal/modules/channel/repository"
	feedService "github.com/reshetovitsme/channel-watch/internal/modules/feed/service"
	pipelineDomain "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *pipelineDomain.RunStats, *feedService.Service, *metrics.Metrics) {
	t.Helper()

	repo := channelRepo.NewMemoryStorage()
	require.NoError(t, repo.SaveChannel(&channelDomain.Channel{ID: 10, Title: "Flats", Username: "flats"}))

	stats := pipelineDomain.NewRunStats(time.Now().Add(-time.Minute))
	feed := feedService.New(0)
	m := metrics.New()

	s := New(&config.Config{HTTPPort: "0"}, feed, stats, repo, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, stats, feed, m
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestStats(t *testing.T) {
	srv, stats, _, _ := newTestServer(t)
	stats.Observe()
	stats.Observe()
	stats.Match()

	resp, body := get(t, srv.URL+"/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Observed int64 `json:"messages_observed"`
		Matched  int64 `json:"matches_found"`
		Uptime   string
		Channels []channelStatistics
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, int64(2), got.Observed)
	assert.Equal(t, int64(1), got.Matched)
	assert.NotEmpty(t, got.Uptime)
	assert.Equal(t, []channelStatistics{{ID: 10, Title: "Flats", Username: "flats"}}, got.Channels)
}

func TestFeed(t *testing.T) {
	srv, _, feed, _ := newTestServer(t)
	channel := &channelDomain.Channel{ID: 10, Title: "Flats", Username: "flats"}
	feed.Record(pipelineDomain.Match{
		Channel:   channel,
		MessageID: 55,
		Keywords:  []string{"balcony"},
		Link:      channel.Link(55),
		Text:      "balcony",
		Date:      time.Now(),
	})

	resp, body := get(t, srv.URL+"/feed")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, body, "https://t.me/flats/55")
}

func TestMetrics(t *testing.T) {
	srv, _, _, m := newTestServer(t)
	m.MatchesFound.Inc()

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "channel_watch_matches_found_total 1")
}

func TestUnknownRoute(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	resp, _ := get(t, srv.URL+"/rss/123")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return strconv.Itoa(port)
}

func newRunServer(t *testing.T, port string) *Server {
	t.Helper()
	return New(&config.Config{HTTPPort: port}, feedService.New(0), pipelineDomain.NewRunStats(time.Now()),
		channelRepo.NewMemoryStorage(), metrics.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRun_CancelledBeforeStartDoesNotListen(t *testing.T) {
	port := freePort(t)
	s := newRunServer(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))

	time.Sleep(100 * time.Millisecond)
	conn, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 200*time.Millisecond)
	if err == nil {
		conn.Close()
	}
	assert.Error(t, err, "listener must be closed once Run returns")
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	port := freePort(t)
	s := newRunServer(t, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	_, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 200*time.Millisecond)
	assert.Error(t, err)
}
