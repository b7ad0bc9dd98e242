// Package power registers and cancels hardware wake events through the
// power-management utility (pmset on macOS).
//
// The Scheduler only builds argument lists and hands them to a
// privileged.Executor; it never validates them against the OS state and
// surfaces whatever the utility reports.
package power
