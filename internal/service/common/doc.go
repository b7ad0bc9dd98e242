// Package common holds helpers shared by the command-line services.
//
// It provides a gRPC client for the alarm daemon with separate timeouts for
// quick calls and calls that may block on the password prompt, plus detection
// of the current system actor for the audit trail.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
