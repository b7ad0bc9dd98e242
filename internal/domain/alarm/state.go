package alarm

import "time"

// Actor identifies who performed an action in the system.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// ScheduledAlarm is the single pending wake event.
type ScheduledAlarm struct {
	// WakeAt is the exact time registered with the power-management utility.
	WakeAt WakeTime
	// ScheduledAt is when the wake was registered.
	ScheduledAt time.Time
	// ScheduledBy is who registered it, when known.
	ScheduledBy *Actor
}

// Clone returns a copy of the scheduled alarm to avoid leaking internal references.
func (s *ScheduledAlarm) Clone() *ScheduledAlarm {
	if s == nil {
		return nil
	}

	return &ScheduledAlarm{
		WakeAt:      s.WakeAt,
		ScheduledAt: s.ScheduledAt,
		ScheduledBy: s.ScheduledBy.Clone(),
	}
}

// PlaybackState is the lifecycle state of an alarm player.
type PlaybackState string

const (
	// PlaybackIdle means no playback task has been started.
	PlaybackIdle PlaybackState = "idle"
	// PlaybackPlaying means the playback task is looping the sound.
	PlaybackPlaying PlaybackState = "playing"
	// PlaybackStopped means a stop was requested.
	PlaybackStopped PlaybackState = "stopped"
	// PlaybackFailed means the audio resource could not be opened or played.
	PlaybackFailed PlaybackState = "failed"
)

// Status is a point-in-time view of the coordinator.
type Status struct {
	// Scheduled is the pending wake, nil when nothing is scheduled.
	Scheduled *ScheduledAlarm
	// Playback is the state of the current player.
	Playback PlaybackState
	// SessionID identifies the current playback session, empty without one.
	SessionID string
	// LastError is the last playback failure, empty when none.
	LastError string
}
