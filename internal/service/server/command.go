package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/ironrise/internal/api/grpc/alarm"
	"github.com/oshokin/ironrise/internal/config"
	"github.com/oshokin/ironrise/internal/logger"
	repository "github.com/oshokin/ironrise/internal/repository/state"
	"github.com/oshokin/ironrise/internal/service/coordinator"
	"github.com/oshokin/ironrise/internal/service/player"
	"github.com/oshokin/ironrise/internal/service/power"
	"github.com/oshokin/ironrise/internal/service/privileged"
	"github.com/oshokin/ironrise/internal/service/volume"
)

// Options controls the daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the configured server address.
	ListenAddress string
	// StateFile overrides the configured state file.
	StateFile string

	// Listener replaces the TCP listener when set.
	Listener net.Listener
	// Executor replaces the configured privileged executor when set.
	Executor privileged.Executor
	// Volume replaces the osascript volume controller when set.
	Volume volume.Controller
	// Backend replaces the audio backend when set.
	Backend player.Backend
	// Fs replaces the OS filesystem for the state and pid files when set.
	Fs afero.Fs
	// DisableWatch turns off settings hot reload.
	DisableWatch bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// shutdownTimeout bounds how long in-flight RPCs may delay shutdown. A call
// waiting on the administrator password prompt can otherwise hold it forever.
const shutdownTimeout = 5 * time.Second

// gracefulStopper is the part of *grpc.Server used during shutdown.
type gracefulStopper interface {
	GracefulStop()
	Stop()
}

// stopServer drains in-flight RPCs and force-closes the rest after timeout.
func stopServer(ctx context.Context, srv gracefulStopper, timeout time.Duration) {
	drained := make(chan struct{})

	go func() {
		defer close(drained)

		srv.GracefulStop()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-drained:
	case <-timer.C:
		logger.WarnKV(ctx, "Graceful shutdown timed out, closing remaining connections",
			"timeout", timeout.String())
		srv.Stop()
		<-drained
	}
}

// Run starts the daemon and blocks until ctx is canceled or a component fails.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ironrise-daemon")

	if opts == nil {
		opts = new(Options)
	}

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	pid, err := acquirePIDFile(ctx, fs, pidFilePath(stateFile))
	if err != nil {
		return err
	}

	defer pid.release(ctx)

	rt, err := newComponents(ctx, settings, opts, fs, stateFile)
	if err != nil {
		return err
	}

	lis := opts.Listener
	if lis == nil {
		var listenAddress string

		listenAddress, err = resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
		if err != nil {
			return fmt.Errorf("resolve listen address: %w", err)
		}

		lc := net.ListenConfig{}

		lis, err = lc.Listen(ctx, "tcp", listenAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", listenAddress, err)
		}
	}

	grpcServer := grpc.NewServer()
	api.RegisterControlServer(grpcServer, api.NewServer(rt.coordinator))

	logger.InfoKV(ctx, "Alarm daemon listening",
		"listen_address", lis.Addr().String(),
		"state_file", stateFile,
		"elevation", settings.Elevation,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if serveErr := grpcServer.Serve(lis); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		stopServer(ctx, grpcServer, shutdownTimeout)
		rt.coordinator.StopAlarm(ctx)

		return nil
	})

	if settings.ShouldRingOnWake() {
		group.Go(func() error {
			return rt.coordinator.RunTrigger(groupCtx, coordinator.DefaultTriggerInterval)
		})
	}

	if !opts.DisableWatch && opts.ConfigPath != "" {
		group.Go(func() error {
			return watchSettings(groupCtx, opts.ConfigPath, rt.apply)
		})
	}

	err = group.Wait()

	logger.Info(ctx, "Alarm daemon stopped")

	return err
}

// components holds the daemon components that settings reloads touch.
type components struct {
	coordinator *coordinator.Coordinator
	// volumeLevel is read by every new player.
	volumeLevel atomic.Int32
}

func newComponents(
	ctx context.Context,
	settings *config.Config,
	opts *Options,
	fs afero.Fs,
	stateFile string,
) (*components, error) {
	executor := opts.Executor
	if executor == nil {
		var err error

		executor, err = privileged.New(settings.Elevation)
		if err != nil {
			return nil, fmt.Errorf("create executor: %w", err)
		}
	}

	vol := opts.Volume
	if vol == nil {
		vol = new(volume.OSAScript)
	}

	backend := opts.Backend
	if backend == nil {
		backend = player.NewAutoBackend()
	}

	rt := new(components)
	rt.volumeLevel.Store(int32(settings.Volume())) //nolint:gosec // Validated to 0-100.

	interval := settings.VolumeInterval
	newPlayer := func() coordinator.Player {
		return player.New(backend, vol,
			player.WithInterval(interval),
			player.WithVolumeLevel(int(rt.volumeLevel.Load())),
		)
	}

	scheduler := power.NewScheduler(executor, power.WithCommand(settings.PowerCommand))
	repo := repository.NewFileRepository(fs, stateFile)

	coord, err := coordinator.New(ctx, scheduler, newPlayer, repo,
		coordinator.WithDefaultSound(settings.SoundFile),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise coordinator: %w", err)
	}

	rt.coordinator = coord

	return rt, nil
}

// apply installs the reloadable part of settings.
// Executor, address and state file changes need a restart.
func (rt *components) apply(ctx context.Context, settings *config.Config) {
	rt.coordinator.SetDefaultSound(settings.SoundFile)
	rt.volumeLevel.Store(int32(settings.Volume())) //nolint:gosec // Validated to 0-100.

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	logger.InfoKV(ctx, "Settings reloaded",
		"sound_file", settings.SoundFile,
		"volume_level", settings.Volume(),
		"log_level", settings.LogLevel,
	)
}

// resolveListenAddress determines the listen address for the gRPC server.
// The override wins; otherwise the configured address is used as is, so a
// loopback address keeps the daemon off the network.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}

// pidFilePath places the pid file next to the state file.
func pidFilePath(stateFile string) string {
	return filepath.Join(filepath.Dir(stateFile), pidFilename)
}
