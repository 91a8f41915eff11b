package app

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"

	channelDomain "github.com/reshetovitsme/channel-watch/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/channel-watch/internal/modules/channel/service"
	mediaService "github.com/reshetovitsme/channel-watch/internal/modules/media/service"
	messageDomain "github.com/reshetovitsme/channel-watch/internal/modules/message/domain"
	pipelineService "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/service"
	sessionService "github.com/reshetovitsme/channel-watch/internal/modules/session/service"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
	"github.com/samber/oops"
)

// Conn is an authorized transport connection
type Conn interface {
	sessionService.Conn
	mediaService.History
	channelService.Resolver
	Identity(ctx context.Context) (string, error)
	Subscribe(ctx context.Context, channels []*channelDomain.Channel, handler func(context.Context, messageDomain.Event)) error
	Done() <-chan struct{}
	Err() error
}

// Session produces authorized connections
type Session[C Conn] interface {
	Resolve(ctx context.Context) (C, error)
	Refresh(ctx context.Context, conn C)
	Invalidate()
}

// Runner is a background service living as long as the app
type Runner struct {
	Name string
	Run  func(ctx context.Context) error
}

// App supervises the watcher: it resolves a session, watches the
// channels and re-authenticates when the session key is duplicated.
type App[C Conn] struct {
	cfg       *config.Config
	session   Session[C]
	channels  *channelService.Service
	pipeline  *pipelineService.Service
	metrics   *metrics.Metrics
	log       *slog.Logger
	runners   []Runner
	onConnect func(C)
}

// New creates a new supervisor
func New[C Conn](
	cfg *config.Config,
	session Session[C],
	channels *channelService.Service,
	pipeline *pipelineService.Service,
	m *metrics.Metrics,
	log *slog.Logger,
) *App[C] {
	return &App[C]{
		cfg:      cfg,
		session:  session,
		channels: channels,
		pipeline: pipeline,
		metrics:  m,
		log:      log,
	}
}

// WithRunner adds a background service started next to the watcher
func (a *App[C]) WithRunner(name string, run func(ctx context.Context) error) *App[C] {
	a.runners = append(a.runners, Runner{Name: name, Run: run})
	return a
}

// OnConnect registers a hook called with every new authorized connection
func (a *App[C]) OnConnect(fn func(C)) *App[C] {
	a.onConnect = fn
	return a
}

// Run blocks until ctx is cancelled or a fatal error occurs
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return oops.With("context", "invalid configuration").Wrap(err)
	}

	a.log.Info("Starting Telegram Channel Watcher...",
		"api_id", a.cfg.APIID,
		"api_hash", a.cfg.MaskedAPIHash(),
		"session_file", a.cfg.SessionFile,
		"auth_method", a.cfg.AuthMethod,
		"notify_mode", a.cfg.NotifyMode,
		"channels", strings.Join(a.cfg.Channels, ", "),
		"keywords", strings.Join(a.cfg.Keywords, ", "),
		"recipients", len(a.cfg.Recipients),
	)

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	for _, r := range a.runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(runCtx); err != nil {
				a.log.Error("Background service failed", "service", r.Name, "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.pipeline.ReportStatus(runCtx, a.cfg.StatusEvery())
	}()

	for {
		conn, err := a.session.Resolve(runCtx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = a.watch(runCtx, conn)
		switch {
		case err == nil, ctx.Err() != nil:
			return nil
		case stderrors.Is(err, errors.ErrDuplicatedKey):
			a.log.Warn("Session key was duplicated while running, re-authenticating", "error", err)
			a.session.Invalidate()
			continue
		default:
			return err
		}
	}
}

func (a *App[C]) watch(ctx context.Context, conn C) error {
	identity, err := conn.Identity(ctx)
	if err != nil {
		conn.Close()
		return err
	}
	a.log.Info("Logged in", "account", identity)

	if a.onConnect != nil {
		a.onConnect(conn)
	}

	channels, err := a.channels.Resolve(ctx, conn, a.cfg.Channels)
	if err != nil {
		conn.Close()
		return oops.With("context", "failed to resolve channels").Wrap(err)
	}
	a.metrics.ChannelsWatched.Set(float64(len(channels)))

	handler := func(ctx context.Context, event messageDomain.Event) {
		a.pipeline.Handle(ctx, conn, event)
	}
	if err := conn.Subscribe(ctx, channels, handler); err != nil {
		conn.Close()
		return oops.With("context", "failed to subscribe").Wrap(err)
	}

	a.log.Info("Channel watcher is running. Press Ctrl+C to stop.", "channels", len(channels))

	select {
	case <-ctx.Done():
		a.log.Info("Shutting down...")
		a.pipeline.LogStatus("Final stats")
		a.session.Refresh(context.Background(), conn)
		if err := conn.Close(); err != nil {
			a.log.Error("Error while disconnecting", "error", err)
		}
		a.log.Info("Disconnected from Telegram")
		return nil
	case <-conn.Done():
		conn.Close()
		if err := conn.Err(); err != nil {
			return err
		}
		return errors.ErrNotConnected
	}
}
