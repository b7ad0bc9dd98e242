package volume

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate accepts the 0-100 range only.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(Min))
	require.NoError(t, Validate(50))
	require.NoError(t, Validate(Max))
	require.ErrorIs(t, Validate(-1), ErrInvalidLevel)
	require.ErrorIs(t, Validate(101), ErrInvalidLevel)
}

// TestNop validates but never fails for a valid level.
func TestNop(t *testing.T) {
	t.Parallel()

	require.NoError(t, Nop{}.Set(context.Background(), Max))
	require.ErrorIs(t, Nop{}.Set(context.Background(), 200), ErrInvalidLevel)
}

// TestOSAScript_RejectsBeforeRunning never launches a process for an invalid level.
func TestOSAScript_RejectsBeforeRunning(t *testing.T) {
	t.Parallel()

	o := &OSAScript{Binary: "ironrise-no-such-osascript"}
	require.ErrorIs(t, o.Set(context.Background(), 101), ErrInvalidLevel)
	require.Error(t, o.Set(context.Background(), Max))
}

// TestOSAScript_BinaryOverride runs through a stand-in binary.
func TestOSAScript_BinaryOverride(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true is not available")
	}

	require.NoError(t, (&OSAScript{Binary: "true"}).Set(context.Background(), Max))
}
