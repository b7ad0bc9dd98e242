package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/oshokin/ironrise/internal/logger"
)

const defaultPlayerBinary = "afplay"

// Command loops an external command-line player (afplay by default) for
// formats the in-process decoder does not handle.
type Command struct {
	// Binary overrides the player executable.
	Binary string
	// Args are passed before the file path.
	Args []string
}

// Open implements Backend.
//
//nolint:ireturn // Session is implemented per backend.
func (c *Command) Open(ctx context.Context, path string) (Session, error) {
	path = filepath.Clean(path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	binary := c.Binary
	if binary == "" {
		binary = defaultPlayerBinary
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoOutput, err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	s := &commandSession{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	args := append(append([]string(nil), c.Args...), path)

	go s.loop(runCtx, resolved, args)

	return s, nil
}

// commandSession restarts the player each time it finishes a pass.
type commandSession struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (s *commandSession) loop(ctx context.Context, binary string, args []string) {
	defer close(s.done)

	for {
		//nolint:gosec // Binary is resolved from configuration, the path is a plain argument.
		err := exec.CommandContext(ctx, binary, args...).Run()
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			// A player that fails once will fail again; do not spin.
			logger.ErrorKV(ctx, "External player failed", "binary", binary, "error", err)

			s.mu.Lock()
			s.err = err
			s.mu.Unlock()

			return
		}
	}
}

// Done is closed when the loop exits.
func (s *commandSession) Done() <-chan struct{} {
	return s.done
}

// Err returns the player failure that ended the loop, if any.
func (s *commandSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		return nil
	}

	return fmt.Errorf("external player: %w", s.err)
}

func (s *commandSession) Stop() error {
	s.cancel()
	<-s.done

	return s.Err()
}
