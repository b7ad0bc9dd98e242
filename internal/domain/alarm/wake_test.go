package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseWakeTime covers offsets, whitespace and sub-second truncation.
func TestParseWakeTime(t *testing.T) {
	t.Parallel()

	w, err := ParseWakeTime("2024-01-01T08:30:00-00:00")
	require.NoError(t, err)
	require.True(t, w.Time().Equal(time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)))

	w, err = ParseWakeTime("  2024-03-10T07:05:09+02:00\n")
	require.NoError(t, err)
	require.True(t, w.Time().Equal(time.Date(2024, 3, 10, 5, 5, 9, 0, time.UTC)))

	w, err = ParseWakeTime("2024-03-10T07:05:09.987Z")
	require.NoError(t, err)
	require.Equal(t, 0, w.Time().Nanosecond())
	require.Equal(t, "2024-03-10T07:05:09Z", w.String())
}

// TestParseWakeTime_Rejects ensures malformed input fails with ErrInvalidWakeTime.
func TestParseWakeTime_Rejects(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "not-a-date", "2024-01-01 08:30:00", "2024-13-01T08:30:00Z"} {
		w, err := ParseWakeTime(input)
		require.ErrorIs(t, err, ErrInvalidWakeTime, input)
		require.True(t, w.IsZero(), input)
	}
}

// TestWakeTimeEqual compares instants rather than representations.
func TestWakeTimeEqual(t *testing.T) {
	t.Parallel()

	a, err := ParseWakeTime("2024-01-01T08:30:00Z")
	require.NoError(t, err)

	b, err := ParseWakeTime("2024-01-01T10:30:00+02:00")
	require.NoError(t, err)

	require.True(t, a.Equal(b))
	require.False(t, a.IsZero())
}
