// Package state persists the pending ScheduledAlarm.
//
// The FileRepository stores it as protobuf JSON on an afero filesystem so the
// daemon can cancel a wake it registered before a restart. Tests run it on
// an in-memory filesystem.
package state
