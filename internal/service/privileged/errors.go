package privileged

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownElevation is returned by New for an unsupported elevation mechanism.
var ErrUnknownElevation = errors.New("unknown elevation mechanism")

// userCanceledMarkers are what osascript prints when the password prompt is dismissed.
//
//nolint:gochecknoglobals // Read-only lookup table.
var userCanceledMarkers = []string{"User canceled", "User cancelled", "(-128)"}

// ExecutionFailedError reports that the process could not be started at all.
type ExecutionFailedError struct {
	// Command is the program that failed to launch.
	Command string
	// Err is the underlying OS error.
	Err error
}

func (e *ExecutionFailedError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Err)
}

func (e *ExecutionFailedError) Unwrap() error {
	return e.Err
}

// CommandFailedError reports that the command ran but exited with a non-zero code.
type CommandFailedError struct {
	// Command is the program that was run.
	Command string
	// ExitCode is the process exit code.
	ExitCode int
	// Stderr is the captured standard error, verbatim.
	Stderr string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("%s returned non-zero exit code %d: %s", e.Command, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// IsUserCanceled reports whether err comes from the user dismissing the authentication prompt.
func IsUserCanceled(err error) bool {
	var failed *CommandFailedError
	if !errors.As(err, &failed) {
		return false
	}

	for _, marker := range userCanceledMarkers {
		if strings.Contains(failed.Stderr, marker) {
			return true
		}
	}

	return false
}
