package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no taskwatch config found (run 'taskwatch init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the taskwatch configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Paths      PathsConfig      `yaml:"paths"`
	Log        LogConfig        `yaml:"log"`
	Scan       ScanConfig       `yaml:"scan"`
	Pushbullet PushbulletConfig `yaml:"pushbullet"`

	// dir is the absolute path to the taskwatch directory (not serialized).
	dir string `yaml:"-"`
}

// PathsConfig holds the store file locations, relative to the taskwatch
// directory unless absolute.
type PathsConfig struct {
	TasksFile   string `yaml:"tasks_file"`
	HistoryFile string `yaml:"history_file"`
}

// LogConfig holds the daemon log destination.
type LogConfig struct {
	File string `yaml:"file"`
}

// ScanConfig holds the due-task scanner timing values, all in seconds.
type ScanConfig struct {
	CheckFrequencySeconds   int `yaml:"check_frequency_seconds"`
	DueSoonThresholdSeconds int `yaml:"due_soon_threshold_seconds"`
	CommandTimeoutSeconds   int `yaml:"command_timeout_seconds"`
}

// PushbulletConfig holds the notification transport credentials.
type PushbulletConfig struct {
	AccessToken string `yaml:"access_token"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version: CurrentVersion,
		Paths: PathsConfig{
			TasksFile:   DefaultTasksFile,
			HistoryFile: DefaultHistoryFile,
		},
		Log: LogConfig{File: DefaultLogFile},
		Scan: ScanConfig{
			CheckFrequencySeconds:   DefaultCheckFrequencySeconds,
			DueSoonThresholdSeconds: DefaultDueSoonThresholdSeconds,
			CommandTimeoutSeconds:   DefaultCommandTimeoutSeconds,
		},
	}
}

// Dir returns the absolute path to the taskwatch directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the taskwatch directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// TasksPath returns the absolute path to the pending-tasks file.
func (c *Config) TasksPath() string {
	return c.resolve(c.Paths.TasksFile)
}

// HistoryPath returns the absolute path to the completed-tasks file.
func (c *Config) HistoryPath() string {
	return c.resolve(c.Paths.HistoryFile)
}

// LogPath returns the absolute path to the daemon log file.
func (c *Config) LogPath() string {
	return c.resolve(c.Log.File)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// CheckFrequency returns the scan period as a duration.
func (c *Config) CheckFrequency() time.Duration {
	return time.Duration(c.Scan.CheckFrequencySeconds) * time.Second
}

// DueSoonThreshold returns the due-soon horizon as a duration.
func (c *Config) DueSoonThreshold() time.Duration {
	return time.Duration(c.Scan.DueSoonThresholdSeconds) * time.Second
}

// CommandTimeout returns the embedded-command timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Scan.CommandTimeoutSeconds) * time.Second
}

// Validate checks the config for errors. Load normalizes bad values to
// defaults before validating; this is the strict check used when values
// are set explicitly.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Paths.TasksFile == "" {
		return fmt.Errorf("%w: paths.tasks_file is required", ErrInvalid)
	}
	if c.Paths.HistoryFile == "" {
		return fmt.Errorf("%w: paths.history_file is required", ErrInvalid)
	}
	if c.Paths.TasksFile == c.Paths.HistoryFile {
		return fmt.Errorf("%w: paths.tasks_file and paths.history_file must differ", ErrInvalid)
	}
	if c.Log.File == "" {
		return fmt.Errorf("%w: log.file is required", ErrInvalid)
	}
	if c.Scan.CheckFrequencySeconds < 1 {
		return fmt.Errorf("%w: scan.check_frequency_seconds must be >= 1", ErrInvalid)
	}
	if c.Scan.DueSoonThresholdSeconds < 1 {
		return fmt.Errorf("%w: scan.due_soon_threshold_seconds must be >= 1", ErrInvalid)
	}
	if c.Scan.CommandTimeoutSeconds < 1 {
		return fmt.Errorf("%w: scan.command_timeout_seconds must be >= 1", ErrInvalid)
	}
	return nil
}

// normalize replaces missing or out-of-range values with defaults so a
// partially broken config never prevents startup.
func (c *Config) normalize() {
	if c.Version != CurrentVersion {
		c.Version = CurrentVersion
	}
	if c.Paths.TasksFile == "" {
		c.Paths.TasksFile = DefaultTasksFile
	}
	if c.Paths.HistoryFile == "" {
		c.Paths.HistoryFile = DefaultHistoryFile
	}
	if c.Paths.TasksFile == c.Paths.HistoryFile {
		// A shared file would merge pending and history; keep the
		// pending path and push history back to its default.
		c.Paths.HistoryFile = DefaultHistoryFile
		if c.Paths.TasksFile == c.Paths.HistoryFile {
			c.Paths.TasksFile = DefaultTasksFile
		}
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Scan.CheckFrequencySeconds < 1 {
		c.Scan.CheckFrequencySeconds = DefaultCheckFrequencySeconds
	}
	if c.Scan.DueSoonThresholdSeconds < 1 {
		c.Scan.DueSoonThresholdSeconds = DefaultDueSoonThresholdSeconds
	}
	if c.Scan.CommandTimeoutSeconds < 1 {
		c.Scan.CommandTimeoutSeconds = DefaultCommandTimeoutSeconds
	}
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads a config from the given taskwatch directory.
//
// A missing config file returns ErrNotFound. A file that is present but
// not parseable returns a default config together with an error wrapping
// ErrInvalid: callers warn and proceed with the returned config. Bad
// individual values are silently normalized to defaults.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fallback := NewDefault()
		fallback.dir = absDir
		return fallback, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
	}

	cfg.dir = absDir
	cfg.normalize()

	return &cfg, nil
}

// Init creates a new taskwatch directory with a default config and empty
// store files.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.dir = absDir

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating taskwatch directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	// Seed empty stores so the files exist for watchers and first loads.
	empty := []byte("[]\n")
	for _, p := range []string{cfg.TasksPath(), cfg.HistoryPath()} {
		if _, err := os.Stat(p); err == nil {
			continue
		}
		if err := os.WriteFile(p, empty, fileMode); err != nil {
			return nil, fmt.Errorf("seeding %s: %w", filepath.Base(p), err)
		}
	}

	return cfg, nil
}
