// Package server runs the alarm daemon.
//
// The daemon owns the coordinator, serves the AlarmControl gRPC API on the
// loopback interface, rings at the pending wake time and reloads its settings
// when the settings file changes.
package server
