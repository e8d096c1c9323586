package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. VAULT131_ACCESS_CODE or
// VAULT131_AUDIO_HUM_GAIN.
const EnvPrefix = "VAULT131"

// SearchPaths lists the config files tried, in order, when no explicit path
// is given.
func SearchPaths() []string {
	paths := []string{".vault131.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "vault131", "config.yaml"))
	}
	return paths
}

// DefaultConfigPath is where 'vault131 init' writes.
func DefaultConfigPath() string {
	paths := SearchPaths()
	return paths[len(paths)-1]
}

// Load reads configuration into v and decodes it over Defaults. It returns
// the file used, or "" when running on defaults alone. A missing explicit
// path is an error; a missing search path is not.
func Load(v *viper.Viper, explicitPath string) (Config, string, error) {
	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := explicitPath
	if file == "" {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				file = candidate
				break
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return Config{}, file, fmt.Errorf("config file not found: %s", file)
			}
			return Config{}, file, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, file, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Storage.Path = ExpandHome(cfg.Storage.Path)
	cfg.Log.Path = ExpandHome(cfg.Log.Path)
	cfg.Tracing.File = ExpandHome(cfg.Tracing.File)
	cfg.Audio.Assets = ExpandHome(cfg.Audio.Assets)
	return cfg, file, nil
}

// setDefaults registers every scalar key so environment overrides apply
// even when the file omits the key.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("access_code", d.AccessCode)
	v.SetDefault("briefcase_code", d.BriefcaseCode)
	v.SetDefault("riddle_pack", d.RiddlePack)
	v.SetDefault("riddles_file", d.RiddlesFile)
	v.SetDefault("watch_riddles", d.WatchRiddles)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.assets", d.Audio.Assets)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.hum_gain", d.Audio.HumGain)
	v.SetDefault("audio.beep_volume", d.Audio.BeepVolume)
	v.SetDefault("audio.sfx_gain", d.Audio.SFXGain)
	v.SetDefault("audio.keystroke_throttle", d.Audio.KeystrokeThrottle)
	v.SetDefault("audio.rate_jitter_min", d.Audio.RateJitterMin)
	v.SetDefault("audio.rate_jitter_max", d.Audio.RateJitterMax)
	v.SetDefault("audio.volume_jitter_min", d.Audio.VolumeJitterMin)
	v.SetDefault("audio.volume_jitter_max", d.Audio.VolumeJitterMax)

	v.SetDefault("storage.persist", d.Storage.Persist)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.key", d.Storage.Key)

	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)

	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file", d.Tracing.File)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)

	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.mouse", d.UI.Mouse)
	v.SetDefault("ui.boot_notice", d.UI.BootNotice)

	v.SetDefault("theme.preset", d.Theme.Preset)
}
