package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the daemon and the client commands.
type Config struct {
	// ServerAddress is the gRPC address of the control daemon.
	ServerAddress string `yaml:"server_addr"`
	// StateFile is the path to the JSON file holding the pending wake time.
	StateFile string `yaml:"state_file"`
	// SoundFile is the audio resource played when no path is given.
	SoundFile string `yaml:"sound_file"`
	// PowerCommand is the power-management utility that registers wake events.
	PowerCommand string `yaml:"power_command"`
	// Elevation selects how privileged commands are run: osascript, sudo or none.
	Elevation string `yaml:"elevation"`
	// VolumeInterval is how often the player re-asserts the output volume.
	VolumeInterval time.Duration `yaml:"volume_interval"`
	// VolumeLevel is the output volume forced during playback, 0-100.
	VolumeLevel *int `yaml:"volume_level,omitempty"`
	// RingOnWake makes the daemon start playback once the scheduled time passes.
	RingOnWake *bool `yaml:"ring_on_wake,omitempty"`
	// Timeout bounds ordinary control calls.
	Timeout time.Duration `yaml:"timeout"`
	// PromptTimeout bounds calls that may wait on an authentication prompt.
	PromptTimeout time.Duration `yaml:"prompt_timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for the settings.
	DefaultConfigFilename = "ironrise-settings.yaml"

	// DefaultStateFilename is the default filename for the pending wake state.
	DefaultStateFilename = "ironrise-state.json"

	// DefaultServerAddress is used when no settings file exists.
	DefaultServerAddress = "127.0.0.1:47291"

	// DefaultSoundFile ships with every macOS installation.
	DefaultSoundFile = "/System/Library/Sounds/Glass.aiff"

	// DefaultPowerCommand is the macOS power-management utility.
	DefaultPowerCommand = "pmset"

	// DefaultElevation prompts the interactive user through AppleScript.
	DefaultElevation = "osascript"

	// DefaultVolumeInterval is the volume re-assert cadence.
	DefaultVolumeInterval = 100 * time.Millisecond

	// DefaultVolumeLevel is the forced output volume.
	DefaultVolumeLevel = 100

	// DefaultTimeout is the default duration for control calls.
	DefaultTimeout = 5 * time.Second

	// DefaultPromptTimeout leaves the user time to answer the password prompt.
	DefaultPromptTimeout = 2 * time.Minute

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	maxVolumeLevel = 100
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownElevation is returned for an unsupported elevation mechanism.
	errUnknownElevation = errors.New("elevation must be one of osascript, sudo, none")
	// errVolumeOutOfRange is returned when volume_level is outside 0-100.
	errVolumeOutOfRange = errors.New("volume level must be within 0-100")
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{ServerAddress: DefaultServerAddress}

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills in defaults.
//
//nolint:cyclop // A flat list of defaults reads better than helpers.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	switch settings.Elevation {
	case "":
		settings.Elevation = DefaultElevation
	case "osascript", "sudo", "none":
	default:
		return fmt.Errorf("%w: %q", errUnknownElevation, settings.Elevation)
	}

	if settings.VolumeLevel == nil {
		level := DefaultVolumeLevel
		settings.VolumeLevel = &level
	} else if *settings.VolumeLevel < 0 || *settings.VolumeLevel > maxVolumeLevel {
		return fmt.Errorf("%w: %d", errVolumeOutOfRange, *settings.VolumeLevel)
	}

	if settings.RingOnWake == nil {
		ring := true
		settings.RingOnWake = &ring
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.SoundFile == "" {
		settings.SoundFile = DefaultSoundFile
	}

	if settings.PowerCommand == "" {
		settings.PowerCommand = DefaultPowerCommand
	}

	if settings.VolumeInterval <= 0 {
		settings.VolumeInterval = DefaultVolumeInterval
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.PromptTimeout <= 0 {
		settings.PromptTimeout = DefaultPromptTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	return nil
}

// Volume returns the configured volume level.
func (c *Config) Volume() int {
	if c.VolumeLevel == nil {
		return DefaultVolumeLevel
	}

	return *c.VolumeLevel
}

// ShouldRingOnWake reports whether the daemon rings at the scheduled time.
func (c *Config) ShouldRingOnWake() bool {
	return c.RingOnWake == nil || *c.RingOnWake
}
