package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "nightstand",
		Username: "sleeper",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
	require.Equal(t, "sleeper@nightstand", a.String())
	require.Equal(t, "<unknown>", (*Actor)(nil).String())
}

// TestScheduledAlarmClone verifies that Clone copies fields and deep-copies ScheduledBy.
func TestScheduledAlarmClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*ScheduledAlarm)(nil).Clone())

	s := &ScheduledAlarm{
		WakeAt:      NewWakeTime(time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)),
		ScheduledAt: time.Now().UTC().Truncate(time.Second),
		ScheduledBy: &Actor{
			Hostname: "nightstand",
			Username: "sleeper",
		},
	}

	c := s.Clone()
	require.True(t, s.WakeAt.Equal(c.WakeAt))
	require.Equal(t, s.ScheduledAt, c.ScheduledAt)
	require.Equal(t, s.ScheduledBy, c.ScheduledBy)
	require.NotSame(t, s.ScheduledBy, c.ScheduledBy)
}
