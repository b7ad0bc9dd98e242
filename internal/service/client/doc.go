// Package client implements the command-line side of the alarm daemon.
//
// Each operation connects to the daemon, performs one control call and
// reports the outcome. Ring plays an alarm in the foreground without a daemon.
package client
