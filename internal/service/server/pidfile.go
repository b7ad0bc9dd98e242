package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/afero"

	"github.com/oshokin/ironrise/internal/config"
	"github.com/oshokin/ironrise/internal/logger"
)

const pidFilename = "ironrise.pid"

// ErrAlreadyRunning is returned when another daemon owns the pid file.
var ErrAlreadyRunning = errors.New("alarm daemon is already running")

// pidFile guards against two daemons sharing one state file.
type pidFile struct {
	fs   afero.Fs
	path string
}

// findProcess is swapped in tests.
//
//nolint:gochecknoglobals // Test seam.
var findProcess = ps.FindProcess

// acquirePIDFile writes this process id to path unless a live daemon already owns it.
// A pid file left by a crashed daemon, or by a reused pid now running another
// program, is taken over.
func acquirePIDFile(ctx context.Context, fs afero.Fs, path string) (*pidFile, error) {
	self := os.Getpid()

	owner, err := readPID(fs, path)
	switch {
	case err == nil && owner != self:
		running, lookupErr := isDaemonProcess(owner, self)
		if lookupErr != nil {
			return nil, fmt.Errorf("look up pid %d: %w", owner, lookupErr)
		}

		if running {
			return nil, fmt.Errorf("%w: pid %d", ErrAlreadyRunning, owner)
		}

		logger.WarnKV(ctx, "Taking over stale pid file", "path", path, "stale_pid", owner)
	case err == nil, errors.Is(err, os.ErrNotExist):
	default:
		logger.WarnKV(ctx, "Ignoring unreadable pid file", "path", path, "error", err)
	}

	contents := []byte(strconv.Itoa(self) + "\n")
	if err = afero.WriteFile(fs, path, contents, config.DefaultFilePermissions); err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}

	return &pidFile{fs: fs, path: path}, nil
}

// release removes the pid file.
func (p *pidFile) release(ctx context.Context) {
	if err := p.fs.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Failed to remove pid file", "path", p.path, "error", err)
	}
}

func readPID(fs afero.Fs, path string) (int, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file: %w", err)
	}

	return pid, nil
}

// isDaemonProcess reports whether pid is alive and runs the same executable as self.
func isDaemonProcess(pid, self int) (bool, error) {
	owner, err := findProcess(pid)
	if err != nil {
		return false, err
	}

	if owner == nil {
		return false, nil
	}

	current, err := findProcess(self)
	if err != nil {
		return false, err
	}

	if current == nil {
		return true, nil
	}

	return owner.Executable() == current.Executable(), nil
}
