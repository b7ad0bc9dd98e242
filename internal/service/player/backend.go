package player

import (
	"context"
	"path/filepath"
	"strings"
)

// Backend opens an audio resource and starts looping it on the default output.
type Backend interface {
	Open(ctx context.Context, path string) (Session, error)
}

// Session is one looping playback. Stop halts it and releases the output device.
//
// Done is closed once the session has ended, either through Stop or because
// playback failed on its own. Err reports that failure and is nil after a
// clean Stop.
type Session interface {
	Stop() error
	Done() <-chan struct{}
	Err() error
}

// decodedExtensions are the formats Beep decodes in-process.
//
//nolint:gochecknoglobals // Read-only lookup table.
var decodedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".ogg":  {},
}

// Auto dispatches on the file extension: formats Beep can decode go to
// Decoded, everything else (aiff, m4a, caf) to External.
type Auto struct {
	Decoded  Backend
	External Backend
}

// NewAutoBackend returns the backend used by the daemon and the ring command.
func NewAutoBackend() *Auto {
	return &Auto{
		Decoded:  new(Beep),
		External: new(Command),
	}
}

// Open implements Backend.
//
//nolint:ireturn // Session is implemented per backend.
func (a *Auto) Open(ctx context.Context, path string) (Session, error) {
	if IsDecoded(path) {
		return a.Decoded.Open(ctx, path)
	}

	return a.External.Open(ctx, path)
}

// IsDecoded reports whether path is played by the in-process decoder.
func IsDecoded(path string) bool {
	_, ok := decodedExtensions[strings.ToLower(filepath.Ext(path))]

	return ok
}
