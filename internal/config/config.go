package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/moodlens/config.yaml"

// Config holds all moodlens configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Conclusion ConclusionConfig `yaml:"conclusion"`
	Reminder   ReminderConfig   `yaml:"reminder"`
	Daemon     DaemonConfig     `yaml:"daemon"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type StorageConfig struct {
	Backend      string `yaml:"backend"`
	Path         string `yaml:"path"`
	ActivityFile string `yaml:"activity_file"`
	MoodFile     string `yaml:"mood_file"`
	SQLiteFile   string `yaml:"sqlite_file"`
}

type SamplerConfig struct {
	IntervalSeconds        int     `yaml:"interval_seconds"`
	SampleWindowMS         int     `yaml:"sample_window_ms"`
	ActiveThresholdPercent float64 `yaml:"active_threshold_percent"`
	ActiveTag              string  `yaml:"active_tag"`
	IdleTag                string  `yaml:"idle_tag"`
}

type AnalysisConfig struct {
	Timeframe     string  `yaml:"timeframe"`
	Contamination float64 `yaml:"contamination"`
	Trees         int     `yaml:"trees"`
	SampleSize    int     `yaml:"sample_size"`
	Seed          uint64  `yaml:"seed"`
}

type ConclusionConfig struct {
	MinSubmissions    int     `yaml:"min_submissions"`
	PositiveThreshold float64 `yaml:"positive_threshold"`
	NegativeThreshold float64 `yaml:"negative_threshold"`
}

type ReminderConfig struct {
	Enabled bool     `yaml:"enabled"`
	Time    string   `yaml:"time"`
	Days    []string `yaml:"days"`
}

type DaemonConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Interval is the sampling period.
func (c SamplerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// SampleWindow is how long each CPU sample measures.
func (c SamplerConfig) SampleWindow() time.Duration {
	return time.Duration(c.SampleWindowMS) * time.Millisecond
}

// Dir returns the storage directory with ~ expanded.
func (c StorageConfig) Dir() (string, error) {
	return expandPath(c.Path)
}

// Addr returns the daemon listen address.
func (c DaemonConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

var (
	validBackends   = []string{"csv", "sqlite"}
	validTimeframes = []string{"w", "week", "weekly", "m", "month", "monthly", "y", "year", "yearly", "a", "annual"}
	validFormats    = []string{"console", "json"}
	validLevels     = []string{"debug", "info", "warn", "error"}
)

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// ParseWeekday accepts full or three-letter English day names.
func ParseWeekday(s string) (time.Weekday, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if want == name || want == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !oneOf(c.Storage.Backend, validBackends) {
		bad("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		bad("storage.path: must not be empty")
	}
	if c.Sampler.IntervalSeconds < 1 {
		bad("sampler.interval_seconds: must be at least 1, got %d", c.Sampler.IntervalSeconds)
	}
	if c.Sampler.SampleWindowMS < 1 || c.Sampler.SampleWindowMS > c.Sampler.IntervalSeconds*1000 {
		bad("sampler.sample_window_ms: must be between 1 and the interval, got %d", c.Sampler.SampleWindowMS)
	}
	if c.Sampler.ActiveThresholdPercent < 0 || c.Sampler.ActiveThresholdPercent > 100 {
		bad("sampler.active_threshold_percent: must be within [0,100], got %g", c.Sampler.ActiveThresholdPercent)
	}
	if !oneOf(c.Analysis.Timeframe, validTimeframes) {
		bad("analysis.timeframe: unknown timeframe %q", c.Analysis.Timeframe)
	}
	if c.Analysis.Contamination < 0 || c.Analysis.Contamination > 0.5 {
		bad("analysis.contamination: must be within [0,0.5], got %g", c.Analysis.Contamination)
	}
	if c.Analysis.Trees < 1 {
		bad("analysis.trees: must be at least 1, got %d", c.Analysis.Trees)
	}
	if c.Analysis.SampleSize < 2 {
		bad("analysis.sample_size: must be at least 2, got %d", c.Analysis.SampleSize)
	}
	if c.Conclusion.MinSubmissions < 1 {
		bad("conclusion.min_submissions: must be at least 1, got %d", c.Conclusion.MinSubmissions)
	}
	if c.Conclusion.NegativeThreshold >= c.Conclusion.PositiveThreshold {
		bad("conclusion: negative_threshold %g must be below positive_threshold %g",
			c.Conclusion.NegativeThreshold, c.Conclusion.PositiveThreshold)
	}
	if c.Reminder.Enabled {
		if _, err := time.Parse("15:04", c.Reminder.Time); err != nil {
			bad("reminder.time: want HH:MM, got %q", c.Reminder.Time)
		}
		for _, d := range c.Reminder.Days {
			if _, err := ParseWeekday(d); err != nil {
				bad("reminder.days: %v", err)
			}
		}
	}
	if c.Daemon.Port < 0 || c.Daemon.Port > 65535 {
		bad("daemon.port: out of range: %d", c.Daemon.Port)
	}
	if !oneOf(c.Logging.Level, validLevels) {
		bad("logging.level: unknown level %q", c.Logging.Level)
	}
	if !oneOf(c.Logging.Format, validFormats) {
		bad("logging.format: unknown format %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML or
// fails validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ResolvePath expands path, or the default config path when path is empty.
func ResolvePath(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return expandPath(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
