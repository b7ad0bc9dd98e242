package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	// speakerRate is the output sample rate; sources are resampled to it.
	speakerRate beep.SampleRate = 44100
	// speakerBuffer trades latency for robustness against scheduling hiccups.
	speakerBuffer = 100 * time.Millisecond
	// resampleQuality is beep's recommended default.
	resampleQuality = 4
)

var errUnsupportedFormat = errors.New("unsupported audio format")

// Beep decodes mp3, wav, flac and ogg in-process and plays them through the
// default output device.
type Beep struct {
	initOnce sync.Once
	initErr  error
}

// Open implements Backend.
//
//nolint:ireturn // Session is implemented per backend.
func (b *Beep) Open(_ context.Context, path string) (Session, error) {
	if err := b.init(); err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}

	streamer, format, err := decode(file, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("decode audio file: %w", err)
	}

	var looped beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != speakerRate {
		looped = beep.Resample(resampleQuality, format.SampleRate, speakerRate, looped)
	}

	ctrl := &beep.Ctrl{Streamer: looped}
	speaker.Play(ctrl)

	return &beepSession{
		ctrl:     ctrl,
		streamer: streamer,
		file:     file,
		done:     make(chan struct{}),
	}, nil
}

// init opens the output device once per process.
func (b *Beep) init() error {
	b.initOnce.Do(func() {
		if err := speaker.Init(speakerRate, speakerRate.N(speakerBuffer)); err != nil {
			b.initErr = fmt.Errorf("%w: %w", ErrNoOutput, err)
		}
	})

	return b.initErr
}

//nolint:ireturn // beep decoders share the StreamSeekCloser interface.
func decode(file *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".mp3":
		return mp3.Decode(file)
	case ".wav":
		return wav.Decode(file)
	case ".flac":
		return flac.Decode(file)
	case ".ogg":
		return vorbis.Decode(file)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", errUnsupportedFormat, ext)
	}
}

// beepSession detaches its streamer from the speaker mixer on Stop.
type beepSession struct {
	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	file     io.Closer
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// Done is closed by Stop: a looped in-memory stream never ends on its own.
func (s *beepSession) Done() <-chan struct{} {
	return s.done
}

// Err reports a decoder failure seen while streaming.
func (s *beepSession) Err() error {
	speaker.Lock()
	defer speaker.Unlock()

	return s.streamer.Err()
}

func (s *beepSession) Stop() error {
	s.stopOnce.Do(func() {
		speaker.Lock()
		s.ctrl.Streamer = nil
		s.ctrl.Paused = true
		speaker.Unlock()

		err := s.streamer.Close()

		// Some decoders close the file themselves.
		if fileErr := s.file.Close(); fileErr != nil && !errors.Is(fileErr, os.ErrClosed) {
			err = errors.Join(err, fileErr)
		}

		s.stopErr = err
		close(s.done)
	})

	return s.stopErr
}
