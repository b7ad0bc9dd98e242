//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	api "github.com/oshokin/ironrise/internal/api/grpc/alarm"
	"github.com/oshokin/ironrise/internal/config"
	domain "github.com/oshokin/ironrise/internal/domain/alarm"
)

// Client wraps the AlarmControl gRPC stub with timeouts and actor metadata.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the AlarmControl client stub.
	api *api.ControlClient

	// callTimeout bounds calls that never wait on a person.
	callTimeout time.Duration
	// promptTimeout bounds calls that may block on the administrator password prompt.
	promptTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithPromptTimeout sets the timeout for schedule and cancel calls.
func WithPromptTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.promptTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the daemon.
// The daemon listens on loopback, so the transport is insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := &Client{
		conn:          conn,
		api:           api.NewControlClient(conn),
		callTimeout:   config.DefaultTimeout,
		promptTimeout: config.DefaultPromptTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ScheduleAlarm asks the daemon to wake the machine at isoTime.
func (c *Client) ScheduleAlarm(ctx context.Context, actor *domain.Actor, isoTime string) error {
	callCtx, cancel := withTimeout(ctx, c.promptTimeout)
	defer cancel()

	if err := c.api.ScheduleAlarm(api.ActorToOutgoingContext(callCtx, actor), isoTime); err != nil {
		return fmt.Errorf("schedule alarm: %w", err)
	}

	return nil
}

// CancelAlarm asks the daemon to drop the pending wake.
func (c *Client) CancelAlarm(ctx context.Context, actor *domain.Actor) error {
	callCtx, cancel := withTimeout(ctx, c.promptTimeout)
	defer cancel()

	if err := c.api.CancelAlarm(api.ActorToOutgoingContext(callCtx, actor)); err != nil {
		return fmt.Errorf("cancel alarm: %w", err)
	}

	return nil
}

// PlayAlarm starts playback on the daemon. An empty path selects the default sound.
func (c *Client) PlayAlarm(ctx context.Context, path string) error {
	callCtx, cancel := withTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.api.PlayAlarm(callCtx, path); err != nil {
		return fmt.Errorf("play alarm: %w", err)
	}

	return nil
}

// StopAlarm stops playback on the daemon.
func (c *Client) StopAlarm(ctx context.Context) error {
	callCtx, cancel := withTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.api.StopAlarm(callCtx); err != nil {
		return fmt.Errorf("stop alarm: %w", err)
	}

	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (*domain.Status, error) {
	callCtx, cancel := withTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return api.FromProtoStatus(resp), nil
}

// withTimeout returns a context bounded by timeout if positive,
// otherwise a cancellable child context without a deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
