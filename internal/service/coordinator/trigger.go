package coordinator

import (
	"context"
	"errors"
	"time"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/logger"
)

// DefaultTriggerInterval is how often the ring trigger checks the pending wake.
const DefaultTriggerInterval = time.Second

// RunTrigger rings the default sound once the pending wake time has passed.
// The slot is cleared first: the OS consumed its wake entry at that time.
// It blocks until ctx is done.
func (c *Coordinator) RunTrigger(ctx context.Context, interval time.Duration) error {
	ctx = logger.WithName(ctx, "trigger")

	if interval <= 0 {
		interval = DefaultTriggerInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.ringIfDue(ctx)
		}
	}
}

// ringIfDue starts playback when the pending wake is due.
func (c *Coordinator) ringIfDue(ctx context.Context) {
	now := c.now()

	c.slotMu.Lock()
	due := c.scheduled
	if due != nil && !now.Before(due.WakeAt.Time()) {
		c.scheduled = nil
	} else {
		due = nil
	}
	c.slotMu.Unlock()

	if due == nil {
		return
	}

	c.persist(ctx, nil)

	logger.InfoKV(ctx, "Wake time reached, ringing", "wake_at", due.WakeAt.String())

	err := c.PlayAlarm(ctx, "")
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyPlaying):
		logger.Info(ctx, "Alarm is already playing")
	default:
		logger.ErrorKV(ctx, "Failed to ring alarm", "error", err)
	}
}
