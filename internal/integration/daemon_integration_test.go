package integration

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ironrise/internal/config"
	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/service/client"
	"github.com/oshokin/ironrise/internal/service/common"
	"github.com/oshokin/ironrise/internal/service/player"
	"github.com/oshokin/ironrise/internal/service/power"
	"github.com/oshokin/ironrise/internal/service/privileged"
	"github.com/oshokin/ironrise/internal/service/server"
	"github.com/oshokin/ironrise/internal/service/volume"
)

// quietSession plays nothing.
type quietSession struct{}

func (quietSession) Stop() error { return nil }

// Done never fires: the session only ends through Stop.
func (quietSession) Done() <-chan struct{} { return nil }

func (quietSession) Err() error { return nil }

// quietBackend records what the daemon asked to play.
type quietBackend struct {
	mu     sync.Mutex
	opened []string
}

//nolint:ireturn // Implements player.Backend.
func (b *quietBackend) Open(_ context.Context, path string) (player.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.opened = append(b.opened, path)

	return quietSession{}, nil
}

func (b *quietBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.opened)
}

func (b *quietBackend) paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.opened...)
}

// daemon is a running test daemon.
type daemon struct {
	addr    string
	cfgPath string
	stop    func()
}

// startDaemon runs the daemon on a free loopback port with recorded privileged commands.
func startDaemon(t *testing.T, dir string, recorder *privileged.Recorder, backend player.Backend) *daemon {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := lis.Addr().String()
	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)

	cfg := config.Default()
	cfg.ServerAddress = addr
	cfg.StateFile = filepath.Join(dir, config.DefaultStateFilename)
	cfg.SoundFile = filepath.Join(dir, "alarm.mp3")
	cfg.Timeout = 3 * time.Second
	require.NoError(t, config.Save(cfgPath, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:   cfgPath,
			Listener:     lis,
			Executor:     recorder,
			Volume:       volume.Nop{},
			Backend:      backend,
			DisableWatch: true,
		})
	}()

	var once sync.Once

	stop := func() {
		once.Do(func() {
			cancel()

			select {
			case runErr := <-done:
				require.NoError(t, runErr)
			case <-time.After(5 * time.Second):
				t.Error("daemon did not stop")
			}
		})
	}

	t.Cleanup(stop)

	return &daemon{addr: addr, cfgPath: cfgPath, stop: stop}
}

// TestDaemon_ScheduleCancelRoundtrip drives the CLI operations against a live daemon.
func TestDaemon_ScheduleCancelRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recorder := new(privileged.Recorder)
	backend := new(quietBackend)

	d := startDaemon(t, dir, recorder, backend)

	ctx := context.Background()

	var out bytes.Buffer

	opts := &client.Options{ConfigPath: d.cfgPath, Out: &out}

	const isoTime = "2099-01-01T08:30:00Z"

	require.NoError(t, client.Schedule(ctx, opts, isoTime))
	require.Contains(t, out.String(), "Wake scheduled for")

	wakeAt, err := domain.ParseWakeTime(isoTime)
	require.NoError(t, err)

	scheduler := power.NewScheduler(recorder)

	invocations := recorder.Invocations()
	require.Len(t, invocations, 1)
	require.Equal(t, power.DefaultCommand, invocations[0].Command)
	require.Equal(t, scheduler.ScheduleArgs(wakeAt), invocations[0].Args)

	require.NoError(t, client.Play(ctx, opts, ""))
	require.Eventually(t, func() bool { return backend.count() == 1 }, time.Second, 10*time.Millisecond)

	out.Reset()
	require.NoError(t, client.Status(ctx, opts))
	require.Contains(t, out.String(), "Alarm: playing")

	require.NoError(t, client.Stop(ctx, opts))
	require.NoError(t, client.Cancel(ctx, opts))

	invocations = recorder.Invocations()
	require.Len(t, invocations, 2)
	require.Equal(t, scheduler.CancelArgs(wakeAt), invocations[1].Args)

	// A second cancel has nothing to cancel and runs no command.
	require.NoError(t, client.Cancel(ctx, opts))
	require.Equal(t, 2, recorder.Len())
}

// TestDaemon_RestoresPendingWake restarts the daemon and expects the wake to survive.
func TestDaemon_RestoresPendingWake(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	recorder := new(privileged.Recorder)

	first := startDaemon(t, dir, recorder, new(quietBackend))

	ctx := context.Background()
	opts := &client.Options{ConfigPath: first.cfgPath, Out: new(bytes.Buffer)}

	require.NoError(t, client.Schedule(ctx, opts, "2099-06-01T07:00:00+02:00"))

	first.stop()

	second := startDaemon(t, dir, recorder, new(quietBackend))

	c, err := common.Dial(ctx, second.addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Scheduled)
	require.Equal(t, "2099-06-01T05:00:00Z", status.Scheduled.WakeAt.Time().UTC().Format(time.RFC3339))
	require.NotNil(t, status.Scheduled.ScheduledBy)
	require.Equal(t, domain.PlaybackIdle, status.Playback)
}

// TestDaemon_ReportsPrivilegedFailure surfaces the utility's stderr to the caller.
func TestDaemon_ReportsPrivilegedFailure(t *testing.T) {
	t.Parallel()

	recorder := &privileged.Recorder{
		Err: &privileged.CommandFailedError{Command: "pmset", ExitCode: 1, Stderr: "Error: bad date"},
	}

	d := startDaemon(t, t.TempDir(), recorder, new(quietBackend))

	err := client.Schedule(context.Background(), &client.Options{ConfigPath: d.cfgPath, Out: new(bytes.Buffer)},
		"2099-01-01T08:30:00Z")
	require.ErrorContains(t, err, "bad date")

	var out bytes.Buffer

	require.NoError(t, client.Status(context.Background(), &client.Options{ConfigPath: d.cfgPath, Out: &out}))
	require.Contains(t, out.String(), "No wake scheduled")
}

// TestDaemon_PlayResolvesRelativePath sends the daemon an absolute path.
func TestDaemon_PlayResolvesRelativePath(t *testing.T) {
	t.Parallel()

	backend := new(quietBackend)
	d := startDaemon(t, t.TempDir(), new(privileged.Recorder), backend)

	wd, err := os.Getwd()
	require.NoError(t, err)

	opts := &client.Options{ConfigPath: d.cfgPath, Out: new(bytes.Buffer)}
	require.NoError(t, client.Play(context.Background(), opts, "sounds/wake.mp3"))

	require.Eventually(t, func() bool { return backend.count() == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{filepath.Join(wd, "sounds", "wake.mp3")}, backend.paths())

	require.NoError(t, client.Stop(context.Background(), opts))
}
