package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
)

// FormatStatus renders a status for the terminal, relative to now.
func FormatStatus(status *domain.Status, now time.Time) string {
	if status == nil {
		return "Status unavailable"
	}

	var b strings.Builder

	if scheduled := status.Scheduled; scheduled != nil {
		wakeAt := scheduled.WakeAt.Time()
		fmt.Fprintf(&b, "Wake scheduled for %s (%s)",
			wakeAt.Local().Format(time.DateTime),
			humanize.RelTime(wakeAt, now, "ago", "from now"),
		)

		if scheduled.ScheduledBy != nil {
			fmt.Fprintf(&b, " by %s", scheduled.ScheduledBy)
		}
	} else {
		b.WriteString("No wake scheduled")
	}

	fmt.Fprintf(&b, "\nAlarm: %s", status.Playback)

	if status.SessionID != "" {
		fmt.Fprintf(&b, " (session %s)", status.SessionID)
	}

	if status.LastError != "" {
		fmt.Fprintf(&b, "\nLast error: %s", status.LastError)
	}

	return b.String()
}
