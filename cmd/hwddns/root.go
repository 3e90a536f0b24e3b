package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/hwddns/internal/config"
	"gitlab.bluewillows.net/root/hwddns/internal/metrics"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "hwddns",
		Short: "Dynamic DNS client for Huawei Cloud DNS",
		Long: "hwddns creates or updates Huawei Cloud DNS record sets so they hold the\n" +
			"current public address of this host, or a configured static value.",
		Version: Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Configuration file, YAML or TOML (env "+config.ConfigPathEnv+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (env HWDDNS_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: json, text (env HWDDNS_LOG_FORMAT)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Log intended changes without writing them (env HWDDNS_DRY_RUN)")

	cmd.AddCommand(newCmdUpdate(opts))
	cmd.AddCommand(newCmdRun(opts))
	cmd.AddCommand(newCmdVersion())
	return cmd
}

// load resolves the configuration and applies command-line overrides,
// which take precedence over the file and the environment.
func (o *globalOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		switch o.logLevel {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = o.logLevel
		default:
			return nil, nil, fmt.Errorf("invalid --log-level %q (must be debug, info, warn, or error)", o.logLevel)
		}
	}
	if flags.Changed("log-format") {
		switch o.logFormat {
		case "json", "text":
			cfg.LogFormat = o.logFormat
		default:
			return nil, nil, fmt.Errorf("invalid --log-format %q (must be json or text)", o.logFormat)
		}
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	metrics.SetBuildInfo(Version, runtime.Version())

	return cfg, logger, nil
}
