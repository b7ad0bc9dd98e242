package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/ironrise/internal/service/client"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <time>",
		Short: "Wake the machine at the given time.",
		Long: `Registers a wake event at an ISO-8601 time with offset, for example
2024-01-01T08:30:00+02:00. Any wake scheduled earlier is replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Schedule(ctx, clientOptions(cmd), args[0])
		},
	}
}

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the pending wake.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Cancel(ctx, clientOptions(cmd))
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play [sound-file]",
		Short: "Start the alarm on the daemon.",
		Long:  "Starts looping the sound file, or the configured sound, at forced maximum volume.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			var path string
			if len(args) > 0 {
				path = args[0]
			}

			return client.Play(ctx, clientOptions(cmd), path)
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Stop(ctx, clientOptions(cmd))
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pending wake and alarm state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Status(ctx, clientOptions(cmd))
		},
	}
}

func newRingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ring [sound-file]",
		Short: "Play the alarm in the foreground without a daemon.",
		Long:  "Plays the alarm in this process until interrupted with Ctrl+C.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			options := &client.RingOptions{ConfigPath: configPath}
			if len(args) > 0 {
				options.Path = args[0]
			}

			return client.Ring(ctx, options)
		},
	}
}
