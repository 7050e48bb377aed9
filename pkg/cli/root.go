package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/getmockd/mockie/pkg/cliconfig"
	"github.com/getmockd/mockie/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"port":             cliconfig.KeyPort,
	"storage":          cliconfig.KeyStorage,
	"save-schedule":    cliconfig.KeySaveSchedule,
	"save-on-shutdown": cliconfig.KeySaveOnShutdown,
	"http2":            cliconfig.KeyHTTP2,
	"server":           cliconfig.KeyServer,
	"log-level":        cliconfig.KeyLogLevel,
	"log-format":       cliconfig.KeyLogFormat,
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	server     string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the mockie command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "mockie",
		Short: "mockie serves mock HTTP endpoints declared at runtime",
		Long: `mockie lets you declare mock HTTP endpoints (method + path -> status, delay,
JSON body) through an admin API, serves them to any client, and keeps them in a
JSON file between runs.

Configuration can be provided via flags, environment variables (MOCKIE_*), or a
configuration file. By default, mockie looks for .mockierc.yaml in the current
directory.`,
		// No Run function here means 'mockie' with no args will print help text by default.
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Config file (default: .mockierc.yaml in the current directory)")
	pf.StringVar(&opts.server, "server", cliconfig.DefaultServerURL(0), "mockie server base URL")
	pf.StringVar(&opts.logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format: text, json")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newListCmd(opts),
		newSaveCmd(opts),
		newShutdownCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the mockie command tree.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for cmd: defaults, config file,
// environment, then any flag the user set explicitly.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*cliconfig.Config, error) {
	cfg, err := cliconfig.Load(cliconfig.LoadOptions{ConfigFile: o.configFile})
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			values[key] = f.Value.String()
		}
	})
	if err := cfg.Apply(values, cliconfig.SourceFlag); err != nil {
		return nil, fmt.Errorf("invalid flag value: %w", err)
	}
	if cfg.Sources[cliconfig.KeyServer] == cliconfig.SourceDefault {
		cfg.ServerURL = cliconfig.DefaultServerURL(cfg.Port)
	}
	return cfg, nil
}

// newLogger builds the operational logger described by cfg.
func newLogger(cfg *cliconfig.Config, w io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: w,
	})
}

// newClient returns an admin client for the configured server.
func (o *globalOptions) newClient(cmd *cobra.Command) (AdminClient, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return NewAdminClient(cfg.ServerURL), nil
}
