package client

import (
	"context"
	"time"

	"github.com/oshokin/ironrise/internal/config"
	"github.com/oshokin/ironrise/internal/logger"
	"github.com/oshokin/ironrise/internal/service/player"
	"github.com/oshokin/ironrise/internal/service/volume"
)

// ringStopTimeout bounds how long Ring waits for the audio output to be released.
const ringStopTimeout = 5 * time.Second

// RingOptions configures a foreground alarm.
type RingOptions struct {
	// ConfigPath to YAML settings file.
	ConfigPath string
	// Path overrides the configured sound file.
	Path string
	// Backend replaces the audio backend when set.
	Backend player.Backend
	// Volume replaces the osascript volume controller when set.
	Volume volume.Controller
}

// Ring plays the alarm in this process until ctx is done or playback fails.
func Ring(ctx context.Context, opts *RingOptions) error {
	ctx = logger.WithName(ctx, "ring")

	if opts == nil {
		opts = new(RingOptions)
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	path := opts.Path
	if path == "" {
		path = cfg.SoundFile
	}

	backend := opts.Backend
	if backend == nil {
		backend = player.NewAutoBackend()
	}

	vol := opts.Volume
	if vol == nil {
		vol = new(volume.OSAScript)
	}

	p := player.New(backend, vol,
		player.WithInterval(cfg.VolumeInterval),
		player.WithVolumeLevel(cfg.Volume()),
	)

	if err = p.Play(ctx, path); err != nil {
		return err
	}

	logger.Info(ctx, "Ringing, press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case <-p.Done():
	}

	p.Stop()

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ringStopTimeout)
	defer cancel()

	if err = p.Wait(waitCtx); err != nil {
		logger.WarnKV(ctx, "Audio output was not released in time", "error", err)
	}

	return p.Err()
}
