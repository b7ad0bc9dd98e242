package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/ironrise/internal/config"
	"github.com/oshokin/ironrise/internal/logger"
	"github.com/oshokin/ironrise/internal/service/common"
)

// Options configures the control commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives human-readable output, stdout when nil.
	Out io.Writer
}

// Schedule asks the daemon to wake the machine at isoTime.
func Schedule(ctx context.Context, opts *Options, isoTime string) error {
	ctx = logger.WithName(ctx, "schedule")

	return withClient(ctx, opts, func(client *common.Client) error {
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		logger.Info(ctx, "Waiting for the daemon, answer the password prompt if one appears")

		if err = client.ScheduleAlarm(ctx, actor, isoTime); err != nil {
			return err
		}

		status, err := client.Status(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(output(opts), FormatStatus(status, time.Now()))

		return nil
	})
}

// Cancel asks the daemon to drop the pending wake.
func Cancel(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "cancel")

	return withClient(ctx, opts, func(client *common.Client) error {
		actor, err := common.DetectActor()
		if err != nil {
			return err
		}

		if err = client.CancelAlarm(ctx, actor); err != nil {
			return err
		}

		fmt.Fprintln(output(opts), "No wake scheduled")

		return nil
	})
}

// Play starts playback on the daemon. An empty path selects the default sound.
// A relative path is resolved against the caller's working directory, since
// the daemon runs elsewhere.
func Play(ctx context.Context, opts *Options, path string) error {
	ctx = logger.WithName(ctx, "play")

	path, err := resolveSoundPath(path)
	if err != nil {
		return err
	}

	return withClient(ctx, opts, func(client *common.Client) error {
		if err := client.PlayAlarm(ctx, path); err != nil {
			return err
		}

		fmt.Fprintln(output(opts), "Alarm playing, run `ironrise stop` to silence it")

		return nil
	})
}

// Stop silences the daemon's alarm.
func Stop(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "stop")

	return withClient(ctx, opts, func(client *common.Client) error {
		if err := client.StopAlarm(ctx); err != nil {
			return err
		}

		fmt.Fprintln(output(opts), "Alarm stopped")

		return nil
	})
}

// Status prints the pending wake and playback state.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "status")

	return withClient(ctx, opts, func(client *common.Client) error {
		status, err := client.Status(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(output(opts), FormatStatus(status, time.Now()))

		return nil
	})
}

// withClient loads settings, dials the daemon and runs fn with the connection.
func withClient(ctx context.Context, opts *Options, fn func(*common.Client) error) error {
	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithPromptTimeout(cfg.PromptTimeout),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to daemon", "server_address", serverAddress)

	return fn(client)
}

// resolveSoundPath makes a non-empty path absolute.
func resolveSoundPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve sound path %q: %w", path, err)
	}

	return resolved, nil
}

func output(opts *Options) io.Writer {
	if opts == nil || opts.Out == nil {
		return os.Stdout
	}

	return opts.Out
}
