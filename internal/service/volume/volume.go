// Package volume sets the system output volume.
package volume

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// Min is the lowest output volume.
	Min = 0
	// Max is the highest output volume.
	Max = 100

	defaultOSAScriptBinary = "osascript"
)

// ErrInvalidLevel is returned for levels outside Min..Max.
var ErrInvalidLevel = errors.New("volume level out of range")

// Controller sets the system output volume on a 0-100 scale.
type Controller interface {
	Set(ctx context.Context, level int) error
}

// Validate checks that level is within Min..Max.
func Validate(level int) error {
	if level < Min || level > Max {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	return nil
}

// OSAScript sets the volume through `osascript -e 'set volume output volume N'`.
type OSAScript struct {
	// Binary overrides the osascript path.
	Binary string
}

// Set implements Controller.
func (o *OSAScript) Set(ctx context.Context, level int) error {
	if err := Validate(level); err != nil {
		return err
	}

	binary := o.Binary
	if binary == "" {
		binary = defaultOSAScriptBinary
	}

	//nolint:gosec // The script is built from an integer.
	cmd := exec.CommandContext(ctx, binary, "-e", fmt.Sprintf("set volume output volume %d", level))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return nil
}

// Nop accepts every level and does nothing, for hosts without volume control.
type Nop struct{}

// Set implements Controller.
func (Nop) Set(_ context.Context, level int) error {
	return Validate(level)
}
