package power

import (
	"context"
	"fmt"
	"time"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/logger"
	"github.com/oshokin/ironrise/internal/service/privileged"
)

const (
	// DefaultCommand is the macOS power-management utility.
	DefaultCommand = "pmset"

	// WakeTimeLayout is the date grammar pmset accepts: MM/DD/YYYY HH:MM:SS, 24h clock.
	WakeTimeLayout = "01/02/2006 15:04:05"

	// wakeEventType wakes a sleeping machine or powers on a shut down one.
	wakeEventType = "wakeorpoweron"
)

// Scheduler registers and cancels wake events.
//
// Cancellation matches the exact time used to schedule: pmset cancels the
// entry whose type and date are equal, other entries are left alone.
type Scheduler struct {
	// executor runs the utility with administrator privileges.
	executor privileged.Executor
	// command is the utility name.
	command string
	// location is the zone wake times are rendered in.
	location *time.Location
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCommand overrides the power-management utility.
func WithCommand(command string) Option {
	return func(s *Scheduler) {
		if command != "" {
			s.command = command
		}
	}
}

// WithLocation renders wake times in loc instead of the local zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewScheduler creates a scheduler driving the provided executor.
func NewScheduler(executor privileged.Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		executor: executor,
		command:  DefaultCommand,
		location: time.Local,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Command returns the utility name the scheduler invokes.
func (s *Scheduler) Command() string {
	return s.command
}

// FormatWakeTime renders t in the scheduler zone using WakeTimeLayout.
func (s *Scheduler) FormatWakeTime(t domain.WakeTime) string {
	return t.Time().In(s.location).Format(WakeTimeLayout)
}

// ScheduleArgs returns the arguments registering a wake at t.
func (s *Scheduler) ScheduleArgs(t domain.WakeTime) []string {
	return []string{"schedule", wakeEventType, s.FormatWakeTime(t)}
}

// CancelArgs returns the arguments cancelling the wake registered at t.
func (s *Scheduler) CancelArgs(t domain.WakeTime) []string {
	return []string{"schedule", "cancel", wakeEventType, s.FormatWakeTime(t)}
}

// Schedule registers a wake event at t.
func (s *Scheduler) Schedule(ctx context.Context, t domain.WakeTime) error {
	args := s.ScheduleArgs(t)

	if err := s.executor.Execute(ctx, s.command, args...); err != nil {
		return fmt.Errorf("schedule wake at %s: %w", args[2], err)
	}

	logger.InfoKV(ctx, "Wake event scheduled", "wake_at", args[2])

	return nil
}

// Cancel removes the wake event registered at exactly t.
func (s *Scheduler) Cancel(ctx context.Context, t domain.WakeTime) error {
	args := s.CancelArgs(t)

	if err := s.executor.Execute(ctx, s.command, args...); err != nil {
		return fmt.Errorf("cancel wake at %s: %w", args[3], err)
	}

	logger.InfoKV(ctx, "Wake event cancelled", "wake_at", args[3])

	return nil
}
