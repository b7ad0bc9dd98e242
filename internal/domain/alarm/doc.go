// Package alarm contains core domain types for the alarm clock.
//
// WakeTime is the immutable moment the machine should wake. ScheduledAlarm
// is the single pending wake the coordinator keeps, together with who asked
// for it. PlaybackState and Status describe the alarm player as seen from
// the outside.
package alarm
