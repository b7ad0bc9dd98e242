//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
)

// sudoUserEnv names the invoking user when ironrise runs under sudo.
const sudoUserEnv = "SUDO_USER"

// DetectActor gathers host and user information for the alarm audit trail.
// Under sudo the invoking user is reported instead of root.
func DetectActor() (*domain.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	if sudoUser := os.Getenv(sudoUserEnv); sudoUser != "" {
		return &domain.Actor{Hostname: hostname, Username: sudoUser}, nil
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &domain.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
