// Package privileged runs operating-system commands with administrator rights.
//
// Callers depend on the Executor interface. OSAScript elevates through an
// AppleScript "with administrator privileges" prompt, Sudo goes through sudo,
// Direct runs the command as-is, and Recorder only records invocations so
// scheduling logic can be tested without touching the OS.
//
// Every implementation makes a single synchronous attempt. A process that
// cannot be started yields ExecutionFailedError; a non-zero exit yields
// CommandFailedError carrying stderr verbatim.
package privileged
