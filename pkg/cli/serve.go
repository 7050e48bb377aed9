package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockie/internal/storage"
	"github.com/getmockd/mockie/pkg/cli/internal/output"
	"github.com/getmockd/mockie/pkg/cli/internal/ports"
	"github.com/getmockd/mockie/pkg/cliconfig"
	"github.com/getmockd/mockie/pkg/engine"
	"github.com/getmockd/mockie/pkg/logging"
	"github.com/getmockd/mockie/pkg/metrics"
	"github.com/getmockd/mockie/pkg/registry"
	"github.com/getmockd/mockie/pkg/store"
	"github.com/getmockd/mockie/pkg/store/file"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server (foreground)",
		Long: `Start the mock server in the foreground.

Routes are loaded from the storage file at startup. A missing or empty file
starts an empty server; a corrupt file is moved aside to <file>.corrupt-<time>
and the server starts empty. Routes are written back on 'mockie save', on the
optional --save-schedule, and on shutdown.`,
		Example: `  # Start with defaults (port 3000, routes.json)
  mockie serve

  # Custom port and storage file
  mockie serve --port 8080 --storage /tmp/routes.json

  # Save every five minutes when routes changed
  mockie serve --save-schedule "@every 5m"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.Int("port", cliconfig.DefaultPort, "HTTP port for mocks and the admin API")
	f.String("storage", cliconfig.DefaultStorageFile, "Routes file")
	f.String("save-schedule", "", `Cron schedule for automatic saves (e.g. "@every 1m")`)
	f.Bool("save-on-shutdown", true, "Save changed routes when the server stops")
	f.Bool("http2", false, "Accept cleartext HTTP/2 (h2c)")
	return cmd
}

// runServe loads the routes, serves until ctx is done or a shutdown is
// requested through the admin API, then stops gracefully.
func runServe(ctx context.Context, cfg *cliconfig.Config, out, errOut io.Writer) error {
	log := newLogger(cfg, errOut)

	if err := ports.Check(cfg.Port); err != nil {
		return err
	}

	routes := storage.NewInMemoryRouteStore()
	m := metrics.New()
	persister := file.New(store.Config{Path: cfg.StorageFile}, file.WithLogger(logging.Component(log, "store")))
	svc := registry.New(routes,
		registry.WithPersister(persister),
		registry.WithMetrics(m),
		registry.WithLogger(logging.Component(log, "registry")),
	)

	n, err := svc.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading routes: %w", err)
	}

	srv, err := engine.NewServer(engine.Config{
		Port:           cfg.Port,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		HTTP2:          cfg.HTTP2,
		SaveOnShutdown: cfg.SaveOnShutdown,
		SaveSchedule:   cfg.SaveSchedule,
	}, routes, svc,
		engine.WithLogger(logging.Component(log, "engine")),
		engine.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	fmt.Fprintf(out, "mockie listening on http://localhost:%d (%d routes from %s)\n", cfg.Port, n, persister.Path())

	select {
	case <-ctx.Done():
	case <-srv.ShutdownRequested():
	}
	fmt.Fprintln(out, "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		output.Warn(errOut, "server shutdown error: %v", err)
		return err
	}
	return nil
}
