package power

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/service/privileged"
)

var (
	// wakeTimePattern is the exact grammar pmset accepts.
	wakeTimePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}$`)

	errTestNoSuchFile = errors.New("no such file")
)

// TestSchedule_ISOInput turns an ISO timestamp into the pmset call.
func TestSchedule_ISOInput(t *testing.T) {
	t.Parallel()

	rec := new(privileged.Recorder)
	s := NewScheduler(rec, WithLocation(time.UTC))

	wake, err := domain.ParseWakeTime("2024-01-01T08:30:00-00:00")
	require.NoError(t, err)

	require.NoError(t, s.Schedule(context.Background(), wake))
	require.Equal(t, []privileged.Invocation{{
		Command: "pmset",
		Args:    []string{"schedule", "wakeorpoweron", "01/01/2024 08:30:00"},
	}}, rec.Invocations())
}

// TestFormatWakeTime pads every field and uses the 24h clock in the scheduler zone.
func TestFormatWakeTime(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	s := NewScheduler(new(privileged.Recorder), WithLocation(tokyo))

	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2023, 10, 27, 10, 0, 0, 0, tokyo), "10/27/2023 10:00:00"},
		{time.Date(2024, 2, 3, 4, 5, 6, 0, tokyo), "02/03/2024 04:05:06"},
		{time.Date(2024, 12, 31, 23, 59, 59, 999, tokyo), "12/31/2024 23:59:59"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "01/01/2024 09:00:00"},
		{time.Date(999, 1, 1, 0, 0, 0, 0, tokyo), "01/01/0999 00:00:00"},
		{time.Date(2024, 6, 15, 13, 7, 0, 0, time.UTC).Local(), "06/15/2024 22:07:00"},
	}
	for _, tc := range cases {
		got := s.FormatWakeTime(domain.NewWakeTime(tc.in))
		require.Equal(t, tc.want, got, tc.in.String())
		require.Regexp(t, wakeTimePattern, got)
	}
}

// TestScheduleArgs_ThirdElementIsFormattedTime holds for arbitrary local timestamps.
func TestScheduleArgs_ThirdElementIsFormattedTime(t *testing.T) {
	t.Parallel()

	s := NewScheduler(new(privileged.Recorder))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	for i := range 500 {
		at := start.Add(time.Duration(i) * 7919 * time.Second)
		args := s.ScheduleArgs(domain.NewWakeTime(at))

		require.Len(t, args, 3)
		require.Equal(t, at.Format("01/02/2006 15:04:05"), args[2])
		require.Regexp(t, wakeTimePattern, args[2])
	}
}

// TestCancel_UsesScheduledTime issues the exact-match cancel for the time used to schedule.
func TestCancel_UsesScheduledTime(t *testing.T) {
	t.Parallel()

	rec := new(privileged.Recorder)
	s := NewScheduler(rec, WithLocation(time.UTC), WithCommand("/usr/bin/pmset"))
	wake := domain.NewWakeTime(time.Date(2024, 3, 9, 6, 45, 0, 0, time.UTC))

	require.NoError(t, s.Schedule(context.Background(), wake))
	require.NoError(t, s.Cancel(context.Background(), wake))

	got := rec.Invocations()
	require.Len(t, got, 2)
	require.Equal(t, "/usr/bin/pmset", got[1].Command)
	require.Equal(t, []string{"schedule", "cancel", "wakeorpoweron", "03/09/2024 06:45:00"}, got[1].Args)
	require.Equal(t, got[0].Args[2], got[1].Args[3])
}

// TestSchedule_PropagatesExecutorErrors keeps the executor error kinds reachable.
func TestSchedule_PropagatesExecutorErrors(t *testing.T) {
	t.Parallel()

	declined := &privileged.CommandFailedError{Command: "pmset", ExitCode: 1, Stderr: "User canceled. (-128)"}
	rec := &privileged.Recorder{Err: declined}
	s := NewScheduler(rec, WithLocation(time.UTC))
	wake := domain.NewWakeTime(time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC))

	err := s.Schedule(context.Background(), wake)
	require.ErrorIs(t, err, declined)
	require.True(t, privileged.IsUserCanceled(err))

	launch := &privileged.ExecutionFailedError{Command: "pmset", Err: errTestNoSuchFile}
	rec.Err = launch

	err = s.Cancel(context.Background(), wake)

	var failed *privileged.ExecutionFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, 2, rec.Len())
}
