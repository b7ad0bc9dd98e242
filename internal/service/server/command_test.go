package server

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	api "github.com/oshokin/ironrise/internal/api/grpc/alarm"
	"github.com/oshokin/ironrise/internal/config"
	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/service/player"
	"github.com/oshokin/ironrise/internal/service/privileged"
)

// silentSession is an audio session that plays nothing.
type silentSession struct{}

func (silentSession) Stop() error { return nil }

// Done never fires: the session only ends through Stop.
func (silentSession) Done() <-chan struct{} { return nil }

func (silentSession) Err() error { return nil }

// silentBackend records opened paths.
type silentBackend struct {
	mu     sync.Mutex
	opened []string
}

//nolint:ireturn // Implements player.Backend.
func (b *silentBackend) Open(_ context.Context, path string) (player.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.opened = append(b.opened, path)

	return silentSession{}, nil
}

func (b *silentBackend) paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.opened...)
}

// levelRecorder remembers the last requested volume.
type levelRecorder struct {
	last atomic.Int32
}

func (v *levelRecorder) Set(_ context.Context, level int) error {
	v.last.Store(int32(level)) //nolint:gosec // Test levels are 0-100.

	return nil
}

func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("127.0.0.1:47291", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:47291", addr)

	addr, err = resolveListenAddress("127.0.0.1:47291", "127.0.0.1:9000")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

func TestPIDFilePath(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("/var/lib/ironrise", pidFilename), pidFilePath("/var/lib/ironrise/state.json"))
	require.Equal(t, pidFilename, pidFilePath("state.json"))
}

func TestRun_ServesControlAPI(t *testing.T) {
	t.Parallel()

	listener := bufconn.Listen(1 << 20)
	recorder := new(privileged.Recorder)
	backend := new(silentBackend)
	vol := new(levelRecorder)
	fs := afero.NewMemMapFs()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, &Options{
			ConfigPath:   filepath.Join(t.TempDir(), "missing.yaml"),
			StateFile:    "/state/ironrise-state.json",
			Listener:     listener,
			Executor:     recorder,
			Volume:       vol,
			Backend:      backend,
			Fs:           fs,
			DisableWatch: true,
		})
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	client := api.NewControlClient(conn)

	require.NoError(t, client.ScheduleAlarm(ctx, "2099-01-01T08:30:00Z"))
	require.Equal(t, 1, recorder.Len())

	exists, err := afero.Exists(fs, "/state/ironrise-state.json")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = afero.Exists(fs, filepath.Join("/state", pidFilename))
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, client.PlayAlarm(ctx, ""))
	require.Eventually(t, func() bool {
		paths := backend.paths()

		return len(paths) == 1 && paths[0] == config.DefaultSoundFile
	}, time.Second, 10*time.Millisecond)
	require.EqualValues(t, config.DefaultVolumeLevel, vol.last.Load())

	raw, err := client.GetStatus(ctx)
	require.NoError(t, err)

	status := api.FromProtoStatus(raw)
	require.NotNil(t, status.Scheduled)
	require.NotEmpty(t, status.SessionID)

	require.NoError(t, client.StopAlarm(ctx))
	require.NoError(t, client.CancelAlarm(ctx))
	require.Equal(t, 2, recorder.Len())

	cancel()

	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	exists, err = afero.Exists(fs, filepath.Join("/state", pidFilename))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestComponents_Apply(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	vol := new(levelRecorder)

	rt, err := newComponents(context.Background(), settings, &Options{
		Executor: new(privileged.Recorder),
		Volume:   vol,
		Backend:  new(silentBackend),
	}, afero.NewMemMapFs(), "state.json")
	require.NoError(t, err)
	require.EqualValues(t, config.DefaultVolumeLevel, rt.volumeLevel.Load())

	level := 40
	settings.VolumeLevel = &level
	settings.SoundFile = "/tmp/siren.mp3"
	settings.LogLevel = "info"

	rt.apply(context.Background(), settings)

	require.EqualValues(t, 40, rt.volumeLevel.Load())
	require.Equal(t, "/tmp/siren.mp3", rt.coordinator.DefaultSound())

	require.NoError(t, rt.coordinator.PlayAlarm(context.Background(), ""))
	require.Eventually(t, func() bool { return vol.last.Load() == 40 }, time.Second, 10*time.Millisecond)

	rt.coordinator.StopAlarm(context.Background())
	require.Equal(t, domain.PlaybackStopped, rt.coordinator.Status(context.Background()).Playback)
}

// stuckServer holds GracefulStop until Stop is called, like a server with an
// RPC parked on a password prompt.
type stuckServer struct {
	released chan struct{}
	stopped  atomic.Bool
	drains   bool
}

func newStuckServer(drains bool) *stuckServer {
	return &stuckServer{released: make(chan struct{}), drains: drains}
}

func (s *stuckServer) GracefulStop() {
	if s.drains {
		return
	}

	<-s.released
}

func (s *stuckServer) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.released)
	}
}

// TestStopServer_ForcesAfterTimeout closes a server whose RPCs never drain.
func TestStopServer_ForcesAfterTimeout(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		srv := newStuckServer(false)
		start := time.Now()

		stopServer(context.Background(), srv, shutdownTimeout)

		require.True(t, srv.stopped.Load())
		require.Equal(t, shutdownTimeout, time.Since(start))
	})
}

// TestStopServer_DrainsGracefully leaves a server that drains in time alone.
func TestStopServer_DrainsGracefully(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		srv := newStuckServer(true)

		stopServer(context.Background(), srv, shutdownTimeout)

		require.False(t, srv.stopped.Load())
	})
}
