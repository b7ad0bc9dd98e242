package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/logger"
	repo "github.com/oshokin/ironrise/internal/repository/state"
)

// DefaultMissedWakeGrace is how far in the past a restored wake may lie and
// still ring after a daemon restart.
const DefaultMissedWakeGrace = 10 * time.Minute

// Scheduler registers and cancels wake events.
type Scheduler interface {
	Schedule(ctx context.Context, t domain.WakeTime) error
	Cancel(ctx context.Context, t domain.WakeTime) error
}

// Player is one single-use alarm playback session.
type Player interface {
	Play(ctx context.Context, path string) error
	Stop()
	State() domain.PlaybackState
	Err() error
	ID() string
}

// PlayerFactory builds a fresh idle player.
type PlayerFactory func() Player

// Coordinator implements the four alarm operations plus status.
type Coordinator struct {
	// scheduler talks to the power-management utility.
	scheduler Scheduler
	// newPlayer builds a player per playback session.
	newPlayer PlayerFactory
	// repo persists the pending wake, may be nil.
	repo repo.Repository
	// now is the clock used by the ring trigger.
	now func() time.Time
	// missedGrace bounds how stale a restored wake may be.
	missedGrace time.Duration

	// playerMu protects player.
	playerMu sync.Mutex
	player   Player

	// slotMu protects scheduled.
	slotMu    sync.Mutex
	scheduled *domain.ScheduledAlarm

	// soundMu protects defaultSound.
	soundMu      sync.RWMutex
	defaultSound string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDefaultSound sets the sound played when no path is given.
func WithDefaultSound(path string) Option {
	return func(c *Coordinator) {
		c.defaultSound = path
	}
}

// WithMissedWakeGrace sets how stale a restored wake may be before it is
// dropped instead of ringing.
func WithMissedWakeGrace(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.missedGrace = d
		}
	}
}

// WithClock overrides the clock used by the ring trigger.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a coordinator and restores the pending wake from the repository.
func New(
	ctx context.Context,
	scheduler Scheduler,
	newPlayer PlayerFactory,
	repository repo.Repository,
	opts ...Option,
) (*Coordinator, error) {
	c := &Coordinator{
		scheduler:   scheduler,
		newPlayer:   newPlayer,
		repo:        repository,
		now:         time.Now,
		missedGrace: DefaultMissedWakeGrace,
	}

	for _, opt := range opts {
		opt(c)
	}

	if repository == nil {
		return c, nil
	}

	scheduled, err := repository.Load(ctx)
	switch {
	case err == nil && c.now().Sub(scheduled.WakeAt.Time()) > c.missedGrace:
		logger.WarnKV(ctx, "Dropping missed wake",
			"wake_at", scheduled.WakeAt.String(),
			"grace", c.missedGrace.String())

		if err = repository.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear missed wake: %w", err)
		}
	case err == nil:
		c.scheduled = scheduled
		logger.InfoKV(ctx, "Restored pending wake", "wake_at", scheduled.WakeAt.String())
	case errors.Is(err, repo.ErrNotFound):
		// Nothing pending.
	default:
		return nil, fmt.Errorf("load state: %w", err)
	}

	return c, nil
}

// ScheduleAlarm parses isoTime and registers a wake event for it.
// A malformed time fails before any command runs. A previously recorded wake
// is replaced in the slot but not cancelled with the OS.
func (c *Coordinator) ScheduleAlarm(ctx context.Context, actor *domain.Actor, isoTime string) (*domain.ScheduledAlarm, error) {
	wakeAt, err := domain.ParseWakeTime(isoTime)
	if err != nil {
		return nil, err
	}

	if err = c.scheduler.Schedule(ctx, wakeAt); err != nil {
		return nil, err
	}

	scheduled := &domain.ScheduledAlarm{
		WakeAt:      wakeAt,
		ScheduledAt: c.now(),
		ScheduledBy: actor.Clone(),
	}

	c.slotMu.Lock()
	previous := c.scheduled
	c.scheduled = scheduled
	c.slotMu.Unlock()

	if previous != nil && !previous.WakeAt.Equal(wakeAt) {
		logger.WarnKV(ctx, "Replaced pending wake without cancelling it",
			"previous_wake_at", previous.WakeAt.String(), "wake_at", wakeAt.String())
	}

	c.persist(ctx, scheduled)

	logger.InfoKV(ctx, "Alarm scheduled", "wake_at", wakeAt.String(), "actor", actor)

	return scheduled.Clone(), nil
}

// CancelAlarm cancels the pending wake. Without one it is a no-op success
// and no command runs.
func (c *Coordinator) CancelAlarm(ctx context.Context, actor *domain.Actor) error {
	c.slotMu.Lock()
	pending := c.scheduled.Clone()
	c.slotMu.Unlock()

	if pending == nil {
		logger.Debug(ctx, "No pending wake to cancel")
		return nil
	}

	if err := c.scheduler.Cancel(ctx, pending.WakeAt); err != nil {
		return err
	}

	c.slotMu.Lock()
	// A concurrent schedule may have replaced the slot meanwhile; keep the newer entry.
	cleared := c.scheduled != nil && c.scheduled.WakeAt.Equal(pending.WakeAt)
	if cleared {
		c.scheduled = nil
	}
	c.slotMu.Unlock()

	if cleared {
		c.persist(ctx, nil)
	}

	logger.InfoKV(ctx, "Alarm cancelled", "wake_at", pending.WakeAt.String(), "actor", actor)

	return nil
}

// PlayAlarm starts a new playback session for path, or the default sound when path is empty.
func (c *Coordinator) PlayAlarm(ctx context.Context, path string) error {
	if path == "" {
		path = c.DefaultSound()
	}

	if path == "" {
		return domain.ErrNoSound
	}

	c.playerMu.Lock()
	if c.player != nil {
		switch state := c.player.State(); state {
		case domain.PlaybackIdle, domain.PlaybackPlaying:
			c.playerMu.Unlock()

			return fmt.Errorf("%w: session %s", domain.ErrAlreadyPlaying, c.player.ID())
		case domain.PlaybackStopped, domain.PlaybackFailed:
		}
	}

	// A stopped player cannot resume, every session gets a fresh one.
	player := c.newPlayer()
	c.player = player
	c.playerMu.Unlock()

	if err := player.Play(ctx, path); err != nil {
		return fmt.Errorf("play alarm: %w", err)
	}

	return nil
}

// StopAlarm requests the current session to stop and returns without waiting.
func (c *Coordinator) StopAlarm(ctx context.Context) {
	c.playerMu.Lock()
	player := c.player
	c.playerMu.Unlock()

	if player == nil {
		logger.Debug(ctx, "No alarm session to stop")
		return
	}

	player.Stop()
	logger.InfoKV(ctx, "Alarm stop requested", "session_id", player.ID())
}

// Status returns the pending wake and the state of the current session.
func (c *Coordinator) Status(_ context.Context) *domain.Status {
	status := &domain.Status{Playback: domain.PlaybackIdle}

	c.slotMu.Lock()
	status.Scheduled = c.scheduled.Clone()
	c.slotMu.Unlock()

	c.playerMu.Lock()
	player := c.player
	c.playerMu.Unlock()

	if player != nil {
		status.Playback = player.State()
		status.SessionID = player.ID()

		if err := player.Err(); err != nil {
			status.LastError = err.Error()
		}
	}

	return status
}

// DefaultSound returns the sound played when no path is given.
func (c *Coordinator) DefaultSound() string {
	c.soundMu.RLock()
	defer c.soundMu.RUnlock()

	return c.defaultSound
}

// SetDefaultSound replaces the sound played when no path is given.
func (c *Coordinator) SetDefaultSound(path string) {
	c.soundMu.Lock()
	defer c.soundMu.Unlock()

	c.defaultSound = path
}

// persist saves or clears the slot; failures are logged because the OS already holds the truth.
func (c *Coordinator) persist(ctx context.Context, scheduled *domain.ScheduledAlarm) {
	if c.repo == nil {
		return
	}

	var err error
	if scheduled == nil {
		err = c.repo.Clear(ctx)
	} else {
		err = c.repo.Save(ctx, scheduled)
	}

	if err != nil {
		logger.ErrorKV(ctx, "Failed to persist pending wake", "error", err)
	}
}
