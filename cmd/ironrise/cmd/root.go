package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ironrise/internal/config"
	"github.com/oshokin/ironrise/internal/logger"
	"github.com/oshokin/ironrise/internal/service/client"
	"github.com/oshokin/ironrise/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the daemon address from the configuration.
	serverAddress string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd is the ironrise command tree.
	rootCmd = &cobra.Command{
		Use:   "ironrise",
		Short: "Wake this Mac at a set time and play an alarm that cannot be turned down.",
		Long: `IronRise schedules a wake event with the power-management utility and plays an
alarm whose volume is forced to maximum until it is stopped.

The daemon subcommand runs the background service; the other subcommands talk
to it over the local control socket. Scheduling and cancelling a wake require
administrator rights, so the daemon may show a password prompt.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("log-level") {
				return nil
			}

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return errUnknownLogLevel
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the ironrise CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// clientOptions builds control options from the persistent flags.
func clientOptions(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
		Out:           cmd.OutOrStdout(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&serverAddress, "server", "s", "", "daemon address, overrides the configuration")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newDaemonCmd(),
		newScheduleCmd(),
		newCancelCmd(),
		newPlayCmd(),
		newStopCmd(),
		newStatusCmd(),
		newRingCmd(),
	)
}
