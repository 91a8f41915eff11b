package di

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/reshetovitsme/channel-watch/internal/app"
	channelRepo "github.com/reshetovitsme/channel-watch/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/channel-watch/internal/modules/channel/service"
	feedService "github.com/reshetovitsme/channel-watch/internal/modules/feed/service"
	keywordService "github.com/reshetovitsme/channel-watch/internal/modules/keyword/service"
	mediaService "github.com/reshetovitsme/channel-watch/internal/modules/media/service"
	notificationService "github.com/reshetovitsme/channel-watch/internal/modules/notification/service"
	pipelineDomain "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/domain"
	pipelineService "github.com/reshetovitsme/channel-watch/internal/modules/pipeline/service"
	sessionRepo "github.com/reshetovitsme/channel-watch/internal/modules/session/repository"
	sessionService "github.com/reshetovitsme/channel-watch/internal/modules/session/service"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/reshetovitsme/channel-watch/internal/shared/logger"
	"github.com/reshetovitsme/channel-watch/internal/shared/metrics"
	botTransport "github.com/reshetovitsme/channel-watch/internal/transport/bot"
	httpServer "github.com/reshetovitsme/channel-watch/internal/transport/http"
	"github.com/reshetovitsme/channel-watch/internal/transport/telegram"
	"github.com/reshetovitsme/channel-watch/internal/transport/terminal"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Options are the process-level inputs of the container
type Options struct {
	ConfigPath string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// Setup initializes the dependency injection container
func Setup(opts Options) (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Logger
	do.Provide(injector, func(i do.Injector) (*slog.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := logger.New(cfg.LogLevel, opts.Stdout, opts.Stderr)
		slog.SetDefault(log)
		return log, nil
	})

	// Register Metrics
	do.Provide(injector, func(i do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})

	// Register Session Repository
	do.Provide(injector, func(i do.Injector) (sessionRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return sessionRepo.NewFileStorage(cfg.SessionFile), nil
	})

	// Register Terminal Prompter
	do.Provide(injector, func(i do.Injector) (*terminal.Prompter, error) {
		return terminal.NewPrompter(opts.Stdin, opts.Stdout), nil
	})

	// Register Session Resolver
	do.Provide(injector, func(i do.Injector) (*sessionService.Service[*telegram.Client], error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*slog.Logger](i)
		repo := do.MustInvoke[sessionRepo.Repository](i)
		prompter := do.MustInvoke[*terminal.Prompter](i)

		inline, err := DecodeSessionString(cfg.SessionString)
		if err != nil {
			return nil, oops.With("context", "SESSION_STRING is not valid base64").Wrap(err)
		}

		dialer := telegram.NewDialer(cfg.APIID, cfg.APIHash, log)
		auth := telegram.NewAuthenticator(cfg.AuthMethod, prompter, opts.Stdout, log)
		return sessionService.New[*telegram.Client](dialer, auth, repo, inline, log), nil
	})

	// Register Channel Repository
	do.Provide(injector, func(i do.Injector) (channelRepo.Repository, error) {
		return channelRepo.NewMemoryStorage(), nil
	})

	// Register Channel Service
	do.Provide(injector, func(i do.Injector) (*channelService.Service, error) {
		repo := do.MustInvoke[channelRepo.Repository](i)
		log := do.MustInvoke[*slog.Logger](i)
		return channelService.New(repo, log), nil
	})

	// Register Keyword Matcher
	do.Provide(injector, func(i do.Injector) (*keywordService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return keywordService.New(cfg.Keywords), nil
	})

	// Register Media Aggregator
	do.Provide(injector, func(i do.Injector) (*mediaService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*slog.Logger](i)
		return mediaService.New(cfg.AlbumLookback, log), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		return feedService.New(feedService.DefaultCapacity), nil
	})

	// Register Run Stats
	do.Provide(injector, func(i do.Injector) (*pipelineDomain.RunStats, error) {
		return pipelineDomain.NewRunStats(time.Now()), nil
	})

	// Register Same-Account Sender
	do.Provide(injector, func(i do.Injector) (*telegram.Sender, error) {
		return telegram.NewSender(), nil
	})

	// Register Bot Handler
	do.Provide(injector, func(i do.Injector) (*botTransport.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		stats := do.MustInvoke[*pipelineDomain.RunStats](i)
		channels := do.MustInvoke[*channelService.Service](i)
		log := do.MustInvoke[*slog.Logger](i)
		return botTransport.NewHandler(cfg, stats, channels, log), nil
	})

	// Register Bot
	do.Provide(injector, func(i do.Injector) (*tgbot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*botTransport.Handler](i)
		return botTransport.New(cfg, handler)
	})

	// Register Notification Sender for the configured mode
	do.Provide(injector, func(i do.Injector) (notificationService.Sender, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.NotifyMode == config.NotifyModeUser {
			return do.MustInvoke[*telegram.Sender](i), nil
		}

		b, err := do.Invoke[*tgbot.Bot](i)
		if err != nil {
			return nil, err
		}
		return botTransport.NewSender(b, do.MustInvoke[*slog.Logger](i)), nil
	})

	// Register Notification Dispatcher
	do.Provide(injector, func(i do.Injector) (*notificationService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender, err := do.Invoke[notificationService.Sender](i)
		if err != nil {
			return nil, err
		}
		m := do.MustInvoke[*metrics.Metrics](i)
		log := do.MustInvoke[*slog.Logger](i)
		return notificationService.New(sender, cfg.Recipients, m, log), nil
	})

	// Register Event Pipeline
	do.Provide(injector, func(i do.Injector) (*pipelineService.Service, error) {
		notifier, err := do.Invoke[*notificationService.Service](i)
		if err != nil {
			return nil, err
		}
		return pipelineService.New(
			do.MustInvoke[*keywordService.Service](i),
			do.MustInvoke[*channelService.Service](i),
			do.MustInvoke[*mediaService.Service](i),
			notifier,
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*pipelineDomain.RunStats](i),
			do.MustInvoke[*metrics.Metrics](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return httpServer.New(
			cfg,
			do.MustInvoke[*feedService.Service](i),
			do.MustInvoke[*pipelineDomain.RunStats](i),
			do.MustInvoke[*channelService.Service](i),
			do.MustInvoke[*metrics.Metrics](i),
			do.MustInvoke[*slog.Logger](i),
		), nil
	})

	// Register App
	do.Provide(injector, func(i do.Injector) (*app.App[*telegram.Client], error) {
		cfg := do.MustInvoke[*config.Config](i)
		pipeline, err := do.Invoke[*pipelineService.Service](i)
		if err != nil {
			return nil, err
		}

		a := app.New[*telegram.Client](
			cfg,
			do.MustInvoke[*sessionService.Service[*telegram.Client]](i),
			do.MustInvoke[*channelService.Service](i),
			pipeline,
			do.MustInvoke[*metrics.Metrics](i),
			do.MustInvoke[*slog.Logger](i),
		)

		if server := do.MustInvoke[*httpServer.Server](i); server.Enabled() {
			a.WithRunner("http", server.Run)
		}

		switch cfg.NotifyMode {
		case config.NotifyModeUser:
			sender := do.MustInvoke[*telegram.Sender](i)
			a.OnConnect(sender.Use)
		default:
			b := do.MustInvoke[*tgbot.Bot](i)
			a.WithRunner("bot", func(ctx context.Context) error {
				b.Start(ctx)
				return nil
			})
		}
		return a, nil
	})

	return injector, nil
}

// DecodeSessionString turns the inline SESSION_STRING into a session blob.
// Both standard and URL-safe base64 are accepted.
func DecodeSessionString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

// EncodeSessionString is the inverse of DecodeSessionString
func EncodeSessionString(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
