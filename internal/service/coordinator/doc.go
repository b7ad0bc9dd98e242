// Package coordinator holds the application state behind the control
// transport: one alarm player and at most one pending wake time.
//
// Locks guard single field reads and writes only. Privileged commands run
// with no lock held, so a user sitting at an authentication prompt never
// blocks play or stop requests.
package coordinator
