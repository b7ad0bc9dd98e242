package alarm

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
)

// Status struct field names.
const (
	fieldScheduled   = "scheduled"
	fieldWakeAt      = "wake_at"
	fieldScheduledAt = "scheduled_at"
	fieldScheduledBy = "scheduled_by"
	fieldHostname    = "hostname"
	fieldUsername    = "username"
	fieldPlayback    = "playback"
	fieldSessionID   = "session_id"
	fieldLastError   = "last_error"
)

// ToProtoStatus converts a domain status into its wire form.
func ToProtoStatus(st *domain.Status) *structpb.Struct {
	if st == nil {
		st = &domain.Status{Playback: domain.PlaybackIdle}
	}

	fields := map[string]*structpb.Value{
		fieldPlayback:  structpb.NewStringValue(string(st.Playback)),
		fieldSessionID: structpb.NewStringValue(st.SessionID),
		fieldLastError: structpb.NewStringValue(st.LastError),
	}

	if st.Scheduled != nil {
		scheduled := map[string]*structpb.Value{
			fieldWakeAt: structpb.NewStringValue(st.Scheduled.WakeAt.String()),
		}

		if !st.Scheduled.ScheduledAt.IsZero() {
			scheduled[fieldScheduledAt] = structpb.NewStringValue(st.Scheduled.ScheduledAt.Format(time.RFC3339))
		}

		if by := st.Scheduled.ScheduledBy; by != nil {
			scheduled[fieldScheduledBy] = structpb.NewStructValue(&structpb.Struct{
				Fields: map[string]*structpb.Value{
					fieldHostname: structpb.NewStringValue(by.Hostname),
					fieldUsername: structpb.NewStringValue(by.Username),
				},
			})
		}

		fields[fieldScheduled] = structpb.NewStructValue(&structpb.Struct{Fields: scheduled})
	}

	return &structpb.Struct{Fields: fields}
}

// FromProtoStatus converts the wire form back into a domain status.
// Malformed timestamps are dropped rather than reported.
func FromProtoStatus(msg *structpb.Struct) *domain.Status {
	fields := msg.GetFields()

	st := &domain.Status{
		Playback:  domain.PlaybackState(fields[fieldPlayback].GetStringValue()),
		SessionID: fields[fieldSessionID].GetStringValue(),
		LastError: fields[fieldLastError].GetStringValue(),
	}

	if st.Playback == "" {
		st.Playback = domain.PlaybackIdle
	}

	scheduled := fields[fieldScheduled].GetStructValue().GetFields()
	if scheduled == nil {
		return st
	}

	wakeAt, err := domain.ParseWakeTime(scheduled[fieldWakeAt].GetStringValue())
	if err != nil {
		return st
	}

	st.Scheduled = &domain.ScheduledAlarm{WakeAt: wakeAt}

	if raw := scheduled[fieldScheduledAt].GetStringValue(); raw != "" {
		if at, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			st.Scheduled.ScheduledAt = at
		}
	}

	if by := scheduled[fieldScheduledBy].GetStructValue().GetFields(); by != nil {
		st.Scheduled.ScheduledBy = &domain.Actor{
			Hostname: by[fieldHostname].GetStringValue(),
			Username: by[fieldUsername].GetStringValue(),
		}
	}

	return st
}
