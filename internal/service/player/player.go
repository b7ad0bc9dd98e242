package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/ironrise/internal/domain/alarm"
	"github.com/oshokin/ironrise/internal/logger"
	"github.com/oshokin/ironrise/internal/service/volume"
)

// DefaultInterval is how often the volume is re-asserted while playing.
const DefaultInterval = 100 * time.Millisecond

var (
	// ErrAlreadyStarted is returned by Play on a player that left the idle state.
	ErrAlreadyStarted = errors.New("player already started")
	// ErrNoOutput is returned by backends when no audio output device is usable.
	ErrNoOutput = errors.New("no audio output available")

	// errSessionEnded reports a session that stopped looping without an error.
	errSessionEnded = errors.New("audio session ended unexpectedly")
)

// Player plays one alarm session.
type Player struct {
	// backend opens and loops the audio resource.
	backend Backend
	// volume forces the output volume.
	volume volume.Controller
	// interval is the volume re-assert cadence.
	interval time.Duration
	// level is the forced output volume.
	level int
	// onError receives playback failures from the playback goroutine.
	onError func(error)
	// id identifies the session in logs and status.
	id string

	// stop is the stop signal: it only ever goes from false to true.
	stop atomic.Bool
	// wake is closed on Stop so the playback loop exits without waiting for the next tick.
	wake     chan struct{}
	wakeOnce sync.Once
	// done is closed once no playback goroutine runs or will run.
	done     chan struct{}
	doneOnce sync.Once

	// mu protects state and err.
	mu    sync.Mutex
	state domain.PlaybackState
	err   error
}

// Option configures a Player.
type Option func(*Player)

// WithInterval overrides the volume re-assert interval.
func WithInterval(interval time.Duration) Option {
	return func(p *Player) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithVolumeLevel overrides the forced volume level.
func WithVolumeLevel(level int) Option {
	return func(p *Player) {
		if volume.Validate(level) == nil {
			p.level = level
		}
	}
}

// WithErrorHandler registers a callback for playback failures.
// It is called from the playback goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(p *Player) {
		p.onError = fn
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(p *Player) {
		if id != "" {
			p.id = id
		}
	}
}

// New creates an idle player.
func New(backend Backend, vol volume.Controller, opts ...Option) *Player {
	if vol == nil {
		vol = volume.Nop{}
	}

	p := &Player{
		backend:  backend,
		volume:   vol,
		interval: DefaultInterval,
		level:    volume.Max,
		id:       uuid.NewString(),
		wake:     make(chan struct{}),
		done:     make(chan struct{}),
		state:    domain.PlaybackIdle,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ID returns the session id.
func (p *Player) ID() string {
	return p.id
}

// Play raises the volume and starts looping the sound at path in the background.
// Failures to open or decode the sound are reported through Err and the error handler.
func (p *Player) Play(ctx context.Context, path string) error {
	p.mu.Lock()
	if p.state != domain.PlaybackIdle {
		state := p.state
		p.mu.Unlock()

		return fmt.Errorf("%w: player is %s", ErrAlreadyStarted, state)
	}

	p.state = domain.PlaybackPlaying
	p.mu.Unlock()

	// The playback goroutine outlives the request that started it.
	ctx = logger.WithKV(logger.WithName(context.WithoutCancel(ctx), "player"), "session_id", p.id)

	// Raise the volume before anything can fail, so a broken sound file still leaves the machine loud.
	p.raiseVolume(ctx)

	go p.run(ctx, path)

	logger.InfoKV(ctx, "Alarm playback started", "path", path)

	return nil
}

// Stop requests playback to end and returns immediately.
// It is safe to call any number of times, before or after Play.
func (p *Player) Stop() {
	p.stop.Store(true)
	p.wakeOnce.Do(func() { close(p.wake) })

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case domain.PlaybackIdle:
		// Nothing was started, so there is nothing to wait for.
		p.state = domain.PlaybackStopped
		p.finish()
	case domain.PlaybackPlaying:
		p.state = domain.PlaybackStopped
	case domain.PlaybackStopped, domain.PlaybackFailed:
	}
}

// Stopped reports whether a stop was requested.
func (p *Player) Stopped() bool {
	return p.stop.Load()
}

// State returns the current playback state.
func (p *Player) State() domain.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Err returns the playback failure, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Done returns a channel closed once the playback goroutine has released the output.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until playback has fully ended or ctx is done.
func (p *Player) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the playback goroutine.
func (p *Player) run(ctx context.Context, path string) {
	defer p.finish()

	if p.stop.Load() {
		p.setState(domain.PlaybackStopped)
		return
	}

	session, err := p.backend.Open(ctx, path)
	if err != nil {
		p.fail(ctx, fmt.Errorf("open alarm sound %s: %w", path, err))
		return
	}

	defer func() {
		if err := session.Stop(); err != nil {
			logger.WarnKV(ctx, "Release audio output failed", "error", err)
		}

		logger.Info(ctx, "Alarm playback stopped")
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for !p.stop.Load() {
		select {
		case <-ticker.C:
			p.raiseVolume(ctx)
		case <-p.wake:
		case <-session.Done():
			if p.stop.Load() {
				break
			}

			err = session.Err()
			if err == nil {
				err = errSessionEnded
			}

			p.fail(ctx, fmt.Errorf("play alarm sound %s: %w", path, err))

			return
		}
	}

	p.setState(domain.PlaybackStopped)
}

// raiseVolume forces the output volume; failures are logged and otherwise ignored.
func (p *Player) raiseVolume(ctx context.Context) {
	if err := p.volume.Set(ctx, p.level); err != nil {
		logger.DebugKV(ctx, "Raise volume failed", "error", err)
	}
}

func (p *Player) fail(ctx context.Context, err error) {
	p.mu.Lock()
	p.state = domain.PlaybackFailed
	p.err = err
	p.mu.Unlock()

	logger.ErrorKV(ctx, "Alarm playback failed", "error", err)

	if p.onError != nil {
		p.onError(err)
	}
}

func (p *Player) setState(state domain.PlaybackState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = state
}

func (p *Player) finish() {
	p.doneOnce.Do(func() { close(p.done) })
}
