package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/reshetovitsme/channel-watch/internal/app"
	"github.com/reshetovitsme/channel-watch/internal/di"
	sessionRepo "github.com/reshetovitsme/channel-watch/internal/modules/session/repository"
	"github.com/reshetovitsme/channel-watch/internal/shared/config"
	"github.com/reshetovitsme/channel-watch/internal/shared/errors"
	"github.com/reshetovitsme/channel-watch/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	setup := func(cmd *cobra.Command) (do.Injector, error) {
		return di.Setup(di.Options{
			ConfigPath: configPath,
			Stdin:      cmd.InOrStdin(),
			Stdout:     cmd.OutOrStdout(),
			Stderr:     cmd.ErrOrStderr(),
		})
	}

	root := &cobra.Command{
		Use:           "channel-watch",
		Short:         "Watch Telegram channels for keywords and relay matches",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatcher(cmd, setup)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: first of config.yaml|yml|json|toml)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start watching the configured channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatcher(cmd, setup)
		},
	})
	root.AddCommand(newSessionCmd(setup))

	return root
}

func runWatcher(cmd *cobra.Command, setup func(*cobra.Command) (do.Injector, error)) error {
	injector, err := setup(cmd)
	if err != nil {
		return fail(cmd, "Failed to setup dependency injection", err)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return fail(cmd, "Failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(cmd, "Invalid configuration", err)
	}

	watcher, err := do.Invoke[*app.App[*telegram.Client]](injector)
	if err != nil {
		return fail(cmd, "Failed to initialize", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := watcher.Run(ctx); err != nil {
		return fail(cmd, "Fatal error", err)
	}
	slog.Info("Shutdown complete")
	return nil
}

func newSessionCmd(setup func(*cobra.Command) (do.Injector, error)) *cobra.Command {
	session := &cobra.Command{
		Use:   "session",
		Short: "Manage the persisted Telegram session",
	}

	session.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the session file as a SESSION_STRING value",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := setup(cmd)
			if err != nil {
				return fail(cmd, "Failed to setup dependency injection", err)
			}
			repo := do.MustInvoke[sessionRepo.Repository](injector)

			token, err := repo.Load()
			if stderrors.Is(err, errors.ErrSessionNotFound) {
				return fail(cmd, "No session to export, run the watcher and log in first", err)
			}
			if err != nil {
				return fail(cmd, "Failed to read session", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), di.EncodeSessionString(token))
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the session file, forcing a new login",
		RunE: func(cmd *cobra.Command, args []string) error {
			injector, err := setup(cmd)
			if err != nil {
				return fail(cmd, "Failed to setup dependency injection", err)
			}
			repo := do.MustInvoke[sessionRepo.Repository](injector)

			if err := repo.Delete(); err != nil {
				return fail(cmd, "Failed to delete session", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session file %s deleted\n", repo.Path())
			return nil
		},
	})

	return session
}

func fail(cmd *cobra.Command, msg string, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", msg, err)
	return err
}
