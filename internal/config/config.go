// Package config provides configuration types and defaults for vault131.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vaulttec/vault131/riddlepacks"
)

// RiddleConfig is a riddle defined inline in the config file.
type RiddleConfig = riddlepacks.Riddle

// Config holds all configuration options for vault131.
type Config struct {
	AccessCode    string         `mapstructure:"access_code"`
	BriefcaseCode string         `mapstructure:"briefcase_code"`
	RiddlePack    string         `mapstructure:"riddle_pack"`
	RiddlesFile   string         `mapstructure:"riddles_file"`
	WatchRiddles  bool           `mapstructure:"watch_riddles"`
	Riddles       []RiddleConfig `mapstructure:"riddles"`
	Audio         AudioConfig    `mapstructure:"audio"`
	Storage       StorageConfig  `mapstructure:"storage"`
	Log           LogConfig      `mapstructure:"log"`
	Tracing       TracingConfig  `mapstructure:"tracing"`
	UI            UIConfig       `mapstructure:"ui"`
	Theme         ThemeConfig    `mapstructure:"theme"`
}

// AudioConfig holds the sound engine settings. The numbers are mix tuning
// and may be changed freely.
type AudioConfig struct {
	// Enabled makes the AUDIO toggle available. Audio always starts off.
	Enabled bool `mapstructure:"enabled"`
	// Assets is empty for the built-in sounds, a directory, or an http(s) URL.
	Assets            string        `mapstructure:"assets"`
	SampleRate        int           `mapstructure:"sample_rate"`
	HumGain           float64       `mapstructure:"hum_gain"`
	BeepVolume        float64       `mapstructure:"beep_volume"`
	SFXGain           float64       `mapstructure:"sfx_gain"`
	KeystrokeThrottle time.Duration `mapstructure:"keystroke_throttle"`
	RateJitterMin     float64       `mapstructure:"rate_jitter_min"`
	RateJitterMax     float64       `mapstructure:"rate_jitter_max"`
	VolumeJitterMin   float64       `mapstructure:"volume_jitter_min"`
	VolumeJitterMax   float64       `mapstructure:"volume_jitter_max"`
}

// StorageConfig controls where the session snapshot lives.
type StorageConfig struct {
	Persist bool   `mapstructure:"persist"`
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

// LogConfig controls the debug log file. The TUI owns the terminal so logs
// only ever go to a file.
type LogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// TracingConfig selects the OpenTelemetry exporter.
type TracingConfig struct {
	// Exporter is one of "none", "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`
	// File receives stdout exporter output.
	File     string `mapstructure:"file"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	Mouse         bool `mapstructure:"mouse"`
	BootNotice    bool `mapstructure:"boot_notice"`
}

// ThemeConfig picks a palette and optional per-token overrides.
type ThemeConfig struct {
	// Preset is one of "crt-green" (default), "amber", "white-phosphor",
	// "high-contrast".
	Preset string `mapstructure:"preset"`
	// Colors overrides individual tokens such as "text.primary".
	Colors map[string]string `mapstructure:"colors"`
}

// DefaultDataDir is where the database and logs live.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vault131"
	}
	return filepath.Join(home, ".vault131")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	dataDir := DefaultDataDir()
	return Config{
		AccessCode:    "101-317-76",
		BriefcaseCode: "731",
		RiddlePack:    riddlepacks.DefaultPack,
		WatchRiddles:  true,
		Audio: AudioConfig{
			Enabled:           true,
			SampleRate:        44100,
			HumGain:           0.18,
			BeepVolume:        0.22,
			SFXGain:           0.9,
			KeystrokeThrottle: 55 * time.Millisecond,
			RateJitterMin:     0.95,
			RateJitterMax:     1.07,
			VolumeJitterMin:   0.11,
			VolumeJitterMax:   0.21,
		},
		Storage: StorageConfig{
			Persist: true,
			Path:    filepath.Join(dataDir, "vault131.db"),
			Key:     "vault131_state_v4",
		},
		Log: LogConfig{
			Path:       filepath.Join(dataDir, "vault131.log"),
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
		Tracing: TracingConfig{
			Exporter: "none",
			File:     filepath.Join(dataDir, "traces.jsonl"),
			Endpoint: "localhost:4317",
		},
		UI: UIConfig{
			ShowStatusBar: true,
			Mouse:         true,
			BootNotice:    true,
		},
	}
}

// ResolveRiddles returns the riddles in effect: a riddles file wins over
// inline riddles, which win over the named built-in pack.
func (c Config) ResolveRiddles() ([]RiddleConfig, error) {
	if c.RiddlesFile != "" {
		p, err := riddlepacks.LoadFile(ExpandHome(c.RiddlesFile))
		if err != nil {
			return nil, err
		}
		return p.Riddles, nil
	}
	if len(c.Riddles) > 0 {
		return c.Riddles, nil
	}
	p, err := riddlepacks.Load(c.RiddlePack)
	if err != nil {
		return nil, err
	}
	return p.Riddles, nil
}

// Validate checks the configuration for errors. All problems are reported
// together.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AccessCode) == "" {
		errs = append(errs, errors.New("access_code is required"))
	}
	if strings.TrimSpace(c.BriefcaseCode) == "" {
		errs = append(errs, errors.New("briefcase_code is required"))
	}

	riddles, err := c.ResolveRiddles()
	if err != nil {
		errs = append(errs, err)
	} else if err := riddlepacks.Validate(riddles); err != nil {
		errs = append(errs, fmt.Errorf("riddles: %w", err))
	}

	if err := ValidateAudio(c.Audio); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateAudio checks gains and jitter ranges.
func ValidateAudio(a AudioConfig) error {
	if a.SampleRate < 8000 {
		return fmt.Errorf("audio.sample_rate must be at least 8000, got %d", a.SampleRate)
	}
	for name, v := range map[string]float64{
		"hum_gain":    a.HumGain,
		"beep_volume": a.BeepVolume,
		"sfx_gain":    a.SFXGain,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("audio.%s must be between 0 and 1, got %g", name, v)
		}
	}
	if a.KeystrokeThrottle < 0 {
		return fmt.Errorf("audio.keystroke_throttle must not be negative")
	}
	if a.RateJitterMin <= 0 || a.RateJitterMax < a.RateJitterMin {
		return fmt.Errorf("audio.rate_jitter_min/max must be positive with min <= max")
	}
	if a.VolumeJitterMin < 0 || a.VolumeJitterMax < a.VolumeJitterMin {
		return fmt.Errorf("audio.volume_jitter_min/max must be non-negative with min <= max")
	}
	return nil
}

// ValidateTracing checks the exporter name.
func ValidateTracing(t TracingConfig) error {
	switch t.Exporter {
	case "", "none", "stdout", "otlp":
		return nil
	default:
		return fmt.Errorf("tracing.exporter must be none, stdout or otlp, got %q", t.Exporter)
	}
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Vault 131 Terminal Configuration

# Code printed on the visitor's identification
access_code: "101-317-76"

# Code revealed once every riddle is solved
briefcase_code: "731"

# Built-in riddle pack (run 'vault131 riddles' to list them)
riddle_pack: wasteland

# Or load riddles from a pack file:
# riddles_file: ~/my-riddles.yaml
#
# Reload riddles_file while running when it changes
watch_riddles: true
#
# Or define them inline (overrides riddle_pack):
# riddles:
#   - prompt: "Bottle it up, cap it tight. What am I?"
#     answers: ["nuka-cola", "nuka cola"]

audio:
  enabled: true          # Offer the AUDIO toggle (sound always starts off)
  # assets: ./sounds     # Directory or http(s) URL with replacement sounds
  sample_rate: 44100
  hum_gain: 0.18
  beep_volume: 0.22
  sfx_gain: 0.9
  keystroke_throttle: 55ms
  rate_jitter_min: 0.95
  rate_jitter_max: 1.07
  volume_jitter_min: 0.11
  volume_jitter_max: 0.21

storage:
  persist: true          # Resume where the visitor left off
  # path: ~/.vault131/vault131.db
  key: vault131_state_v4

log:
  enabled: false         # Also enabled by --debug
  # path: ~/.vault131/vault131.log
  max_size_mb: 5
  max_backups: 3

tracing:
  exporter: none         # none, stdout or otlp
  # file: ~/.vault131/traces.jsonl
  # endpoint: localhost:4317
  # insecure: true

ui:
  show_status_bar: true
  mouse: true
  boot_notice: true

theme:
  # Presets: crt-green (default), amber, white-phosphor, high-contrast
  # preset: amber
  #
  # Override specific colors:
  # colors:
  #   text.primary: "#33FF66"
  #   status.error: "#FF5555"
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
