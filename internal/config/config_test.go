package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaulttec/vault131/internal/ui/styles"
)

// loadConfigFromYAML writes YAML to a temp file and loads it the way the CLI does.
func loadConfigFromYAML(t *testing.T, yamlContent string) Config {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0600))

	cfg, used, err := Load(viper.New(), configPath)
	require.NoError(t, err)
	require.Equal(t, configPath, used)
	return cfg
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg := loadConfigFromYAML(t, "")
	want := Defaults()

	assert.Equal(t, want.AccessCode, cfg.AccessCode)
	assert.Equal(t, want.BriefcaseCode, cfg.BriefcaseCode)
	assert.Equal(t, want.Audio, cfg.Audio)
	assert.Equal(t, want.Storage, cfg.Storage)
	assert.Equal(t, "wasteland", cfg.RiddlePack)
	require.NoError(t, cfg.Validate())
}

func TestLoad_PartialAudioKeepsOtherDefaults(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
audio:
  hum_gain: 0.3
  keystroke_throttle: 80ms
`)
	assert.InDelta(t, 0.3, cfg.Audio.HumGain, 1e-9)
	assert.Equal(t, 80*time.Millisecond, cfg.Audio.KeystrokeThrottle)
	assert.InDelta(t, 0.22, cfg.Audio.BeepVolume, 1e-9)
	assert.True(t, cfg.Audio.Enabled)
}

func TestLoad_InlineRiddles(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
access_code: "000-111-22"
riddles:
  - prompt: "What opens the vault?"
    answers: ["gear door", "vault door"]
`)
	assert.Equal(t, "000-111-22", cfg.AccessCode)

	riddles, err := cfg.ResolveRiddles()
	require.NoError(t, err)
	require.Len(t, riddles, 1)
	assert.Equal(t, []string{"gear door", "vault door"}, riddles[0].Answers)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("VAULT131_BRIEFCASE_CODE", "999")
	t.Setenv("VAULT131_AUDIO_SFX_GAIN", "0.5")

	cfg := loadConfigFromYAML(t, "briefcase_code: \"123\"\n")

	assert.Equal(t, "999", cfg.BriefcaseCode)
	assert.InDelta(t, 0.5, cfg.Audio.SFXGain, 1e-9)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("audio: [unclosed"), 0600))

	_, _, err := Load(viper.New(), configPath)
	require.ErrorContains(t, err, "reading config")
}

func TestResolveRiddles_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(file, []byte("riddles:\n  - prompt: from file\n    answers: [file]\n"), 0600))

	cfg := Defaults()
	cfg.Riddles = []RiddleConfig{{Prompt: "inline", Answers: []string{"inline"}}}
	cfg.RiddlesFile = file

	riddles, err := cfg.ResolveRiddles()
	require.NoError(t, err)
	assert.Equal(t, "from file", riddles[0].Prompt)

	cfg.RiddlesFile = ""
	riddles, err = cfg.ResolveRiddles()
	require.NoError(t, err)
	assert.Equal(t, "inline", riddles[0].Prompt)

	cfg.Riddles = nil
	cfg.RiddlePack = "overseer"
	riddles, err = cfg.ResolveRiddles()
	require.NoError(t, err)
	assert.Len(t, riddles, 3)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty access code", func(c *Config) { c.AccessCode = "  " }, "access_code is required"},
		{"empty briefcase code", func(c *Config) { c.BriefcaseCode = "" }, "briefcase_code is required"},
		{"unknown pack", func(c *Config) { c.RiddlePack = "enclave" }, "unknown riddle pack"},
		{"riddle without answer", func(c *Config) {
			c.Riddles = []RiddleConfig{{Prompt: "q", Answers: []string{"!!!"}}}
		}, "riddles: riddle 1"},
		{"gain out of range", func(c *Config) { c.Audio.HumGain = 1.5 }, "audio.hum_gain"},
		{"inverted jitter", func(c *Config) { c.Audio.RateJitterMin = 1.2 }, "rate_jitter"},
		{"low sample rate", func(c *Config) { c.Audio.SampleRate = 100 }, "sample_rate"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.AccessCode = ""
	cfg.BriefcaseCode = ""

	err := cfg.Validate()
	require.ErrorContains(t, err, "access_code")
	require.ErrorContains(t, err, "briefcase_code")
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, _, err := Load(viper.New(), configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Defaults().Audio, cfg.Audio)
	assert.Equal(t, "vault131_state_v4", cfg.Storage.Key)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x", "y.db"), ExpandHome("~/x/y.db"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "", ExpandHome(""))
}

// TestThemeConfig_WithPreset tests loading a config file with a preset.
func TestThemeConfig_WithPreset(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
theme:
  preset: amber
`)
	assert.Equal(t, "amber", cfg.Theme.Preset)

	err := styles.ApplyTheme(styles.ThemeConfig{Preset: cfg.Theme.Preset, Colors: cfg.Theme.Colors})
	require.NoError(t, err)
	t.Cleanup(func() { _ = styles.ApplyTheme(styles.ThemeConfig{}) })

	assert.Equal(t, styles.Presets["amber"].Colors[styles.TokenTextPrimary], styles.TextPrimaryColor.Dark)
}
