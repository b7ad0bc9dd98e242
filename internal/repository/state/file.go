package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/ironrise/internal/config"
	domain "github.com/oshokin/ironrise/internal/domain/alarm"
)

// Repository defines persistence operations for the pending wake.
type Repository interface {
	Load(ctx context.Context) (*domain.ScheduledAlarm, error)
	Save(ctx context.Context, scheduled *domain.ScheduledAlarm) error
	Clear(ctx context.Context) error
}

// FileRepository persists the pending wake to a JSON file.
type FileRepository struct {
	// fs is the filesystem holding the state file.
	fs afero.Fs
	// path is the location of the JSON state file.
	path string
	// mu serializes access to the state file.
	mu sync.Mutex
}

const (
	fieldWakeAt      = "wake_at"
	fieldScheduledAt = "scheduled_at"
	fieldActor       = "scheduled_by"
	fieldHostname    = "hostname"
	fieldUsername    = "username"
)

var (
	// ErrNotFound is returned when no wake is persisted.
	ErrNotFound = errors.New("state not found")
	// errMissingWakeAt is returned for a state file without a wake time.
	errMissingWakeAt = errors.New("state has no wake time")
)

// NewFileRepository creates a repository that reads/writes JSON at path on fs.
func NewFileRepository(fs afero.Fs, path string) *FileRepository {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &FileRepository{
		fs:   fs,
		path: filepath.Clean(path),
	}
}

// Load reads the pending wake.
func (r *FileRepository) Load(_ context.Context) (*domain.ScheduledAlarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc structpb.Struct
	if err = protojson.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromStruct(&doc)
}

// Save writes the pending wake.
func (r *FileRepository) Save(_ context.Context, scheduled *domain.ScheduledAlarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := toStruct(scheduled)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = afero.WriteFile(r.fs, r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// Clear removes the pending wake; clearing an empty repository is not an error.
func (r *FileRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}

	return nil
}

// toStruct converts the domain model into its JSON document.
func toStruct(scheduled *domain.ScheduledAlarm) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldWakeAt: scheduled.WakeAt.String(),
	}

	if !scheduled.ScheduledAt.IsZero() {
		fields[fieldScheduledAt] = scheduled.ScheduledAt.Format(time.RFC3339)
	}

	if scheduled.ScheduledBy != nil {
		fields[fieldActor] = map[string]any{
			fieldHostname: scheduled.ScheduledBy.Hostname,
			fieldUsername: scheduled.ScheduledBy.Username,
		}
	}

	return structpb.NewStruct(fields)
}

// fromStruct converts the JSON document into the domain model.
func fromStruct(doc *structpb.Struct) (*domain.ScheduledAlarm, error) {
	fields := doc.GetFields()

	raw := fields[fieldWakeAt].GetStringValue()
	if raw == "" {
		return nil, errMissingWakeAt
	}

	wakeAt, err := domain.ParseWakeTime(raw)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	scheduled := &domain.ScheduledAlarm{WakeAt: wakeAt}

	if at := fields[fieldScheduledAt].GetStringValue(); at != "" {
		if parsed, err := time.Parse(time.RFC3339, at); err == nil {
			scheduled.ScheduledAt = parsed
		}
	}

	if actor := fields[fieldActor].GetStructValue(); actor != nil {
		scheduled.ScheduledBy = &domain.Actor{
			Hostname: actor.GetFields()[fieldHostname].GetStringValue(),
			Username: actor.GetFields()[fieldUsername].GetStringValue(),
		}
	}

	return scheduled, nil
}
