package privileged

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/oshokin/ironrise/internal/logger"
)

// Executor runs a command with administrator privileges.
//
// Execute blocks until the process exits, including any time the user spends
// at an authentication prompt. The context carries the logger only: an
// in-flight privileged command is never cancelled.
type Executor interface {
	Execute(ctx context.Context, command string, args ...string) error
}

const (
	// ElevationOSAScript elevates through an AppleScript administrator prompt.
	ElevationOSAScript = "osascript"
	// ElevationSudo elevates through sudo.
	ElevationSudo = "sudo"
	// ElevationNone runs commands without elevation.
	ElevationNone = "none"

	defaultOSAScriptBinary = "osascript"
	defaultSudoBinary      = "sudo"
)

// New returns the executor for the named elevation mechanism.
//
//nolint:ireturn // Callers only need the interface.
func New(elevation string) (Executor, error) {
	switch elevation {
	case ElevationOSAScript, "":
		return new(OSAScript), nil
	case ElevationSudo:
		return new(Sudo), nil
	case ElevationNone:
		return Direct{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElevation, elevation)
	}
}

// OSAScript runs the joined command line in a privileged shell through
// `osascript -e 'do shell script "..." with administrator privileges'`.
type OSAScript struct {
	// Binary overrides the osascript path.
	Binary string
}

// Execute implements Executor.
func (o *OSAScript) Execute(ctx context.Context, command string, args ...string) error {
	return run(ctx, command, o.binary(), "-e", Script(command, args...))
}

func (o *OSAScript) binary() string {
	if o.Binary == "" {
		return defaultOSAScriptBinary
	}

	return o.Binary
}

// Script builds the AppleScript statement that runs command with administrator privileges.
// Tokens are shell-quoted first, then escaped for the AppleScript string literal.
func Script(command string, args ...string) string {
	line := shellescape.QuoteCommand(append([]string{command}, args...))

	return fmt.Sprintf(`do shell script "%s" with administrator privileges`, escapeAppleScript(line))
}

// Sudo runs the command through sudo, which prompts on the controlling terminal.
type Sudo struct {
	// Binary overrides the sudo path.
	Binary string
}

// Execute implements Executor.
func (s *Sudo) Execute(ctx context.Context, command string, args ...string) error {
	binary := s.Binary
	if binary == "" {
		binary = defaultSudoBinary
	}

	return run(ctx, command, binary, append([]string{"--", command}, args...)...)
}

// Direct runs the command without any elevation, for a daemon that already runs as root.
type Direct struct{}

// Execute implements Executor.
func (Direct) Execute(ctx context.Context, command string, args ...string) error {
	return run(ctx, command, command, args...)
}

// run starts binary with args, waits for it and classifies the outcome.
// label names the logical command in errors and logs.
func run(ctx context.Context, label, binary string, args ...string) error {
	logger.DebugKV(ctx, "Executing privileged command", "command", label, "binary", binary, "args", args)

	var stderr bytes.Buffer

	//nolint:gosec,noctx // The command line is assembled from fixed tokens and quoted.
	cmd := exec.Command(binary, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		failed := &CommandFailedError{
			Command:  label,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
		}

		logger.ErrorKV(ctx, "Privileged command failed",
			"command", label, "exit_code", failed.ExitCode, "stderr", strings.TrimSpace(failed.Stderr))

		return failed
	}

	logger.ErrorKV(ctx, "Privileged command could not be started", "command", label, "error", err)

	return &ExecutionFailedError{Command: label, Err: err}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return s
}
