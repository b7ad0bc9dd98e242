package alarm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidWakeTime is returned when a wake time cannot be parsed.
	ErrInvalidWakeTime = errors.New("invalid wake time")
	// ErrAlreadyPlaying is returned when an alarm session is already running.
	ErrAlreadyPlaying = errors.New("alarm is already playing")
	// ErrNoSound is returned when neither a path nor a default sound is available.
	ErrNoSound = errors.New("no alarm sound configured")
)

// WakeTime is a timezone-aware moment at which the machine should wake.
// The zero value is not a valid wake time.
type WakeTime struct {
	at time.Time
}

// NewWakeTime wraps t, dropping sub-second precision and the monotonic clock reading.
func NewWakeTime(t time.Time) WakeTime {
	return WakeTime{at: t.Round(0).Truncate(time.Second)}
}

// ParseWakeTime parses ISO-8601 text in RFC 3339 form, e.g. "2024-01-01T08:30:00-00:00".
func ParseWakeTime(s string) (WakeTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WakeTime{}, fmt.Errorf("%w: empty input", ErrInvalidWakeTime)
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return WakeTime{}, fmt.Errorf("%w: %q: %w", ErrInvalidWakeTime, s, err)
	}

	return NewWakeTime(t), nil
}

// Time returns the wake moment.
func (w WakeTime) Time() time.Time {
	return w.at
}

// IsZero reports whether w holds no time.
func (w WakeTime) IsZero() bool {
	return w.at.IsZero()
}

// Equal reports whether both values denote the same instant.
func (w WakeTime) Equal(other WakeTime) bool {
	return w.at.Equal(other.at)
}

// String renders the wake time in RFC 3339.
func (w WakeTime) String() string {
	return w.at.Format(time.RFC3339)
}
