// Package player loops an alarm sound at forced volume until stopped.
//
// A Player moves through idle, playing and stopped (or failed). Play raises
// the output volume before returning and spawns one playback goroutine that
// opens the sound through a Backend, then re-asserts the volume on a fixed
// interval until the stop signal is set. Stop only sets the signal and
// returns; Wait or Done give callers an explicit join when they need one.
//
// A player is single-use: once stopped it cannot be played again, construct
// a new one instead.
package player
