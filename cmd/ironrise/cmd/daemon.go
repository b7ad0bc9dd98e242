package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/ironrise/internal/service/server"
)

func newDaemonCmd() *cobra.Command {
	var (
		stateFile string
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "daemon [listen-address]",
		Short: "Run the alarm daemon.",
		Long: `Starts the daemon that owns the pending wake and the alarm player.

The daemon listens on the configured loopback address unless a listen address
is given. It rings at the scheduled wake time, keeps the pending wake in the
state file across restarts and reloads the sound, volume and log level when
the settings file changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				DisableWatch:  noWatch,
			})
		},
	}

	cmd.Flags().StringVar(&stateFile, "state-file", "", "path to persist the pending wake, overrides the configuration")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the settings file on change")

	return cmd
}
