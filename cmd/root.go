// Package cmd implements the vault131 command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"

	"github.com/vaulttec/vault131/internal/config"
	"github.com/vaulttec/vault131/internal/infrastructure/sqlite"
	"github.com/vaulttec/vault131/internal/log"
	"github.com/vaulttec/vault131/internal/sound"
	"github.com/vaulttec/vault131/internal/tracing"
	"github.com/vaulttec/vault131/internal/ui/configerror"
	"github.com/vaulttec/vault131/internal/ui/styles"
	"github.com/vaulttec/vault131/internal/ui/terminal"
	"github.com/vaulttec/vault131/internal/vault/application"
	"github.com/vaulttec/vault131/riddlepacks"
)

// speakerLatency is the output buffer size handed to the speaker.
const speakerLatency = 100 * time.Millisecond

var (
	version = "dev"

	cfgFile    string
	debugFlag  bool
	noAudio    bool
	noPersist  bool
	assetsFlag string

	cfg     config.Config
	cfgPath string
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "vault131",
	Short: "Vault 131 riddle terminal",
	Long: `A Vault-Tec styled terminal that asks a visitor to log in with the
access code from their identification, solve a series of riddles, and then
reveals the briefcase unlock code.`,
	SilenceUsage: true,
	RunE:         runTerminal,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default ./.vault131.yaml, then "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "write a debug log")

	rootCmd.Flags().BoolVar(&noAudio, "no-audio", false, "start without the audio engine")
	rootCmd.Flags().BoolVar(&noPersist, "no-persist", false, "keep the session in memory only")
	rootCmd.Flags().StringVar(&assetsFlag, "assets", "", "directory or http(s) URL with replacement sounds")

	rootCmd.Version = version
}

// initConfig loads configuration for every command. Problems are kept in
// cfgErr so the terminal can show them instead of exiting.
func initConfig() {
	v := viper.New()
	if f := rootCmd.Flags().Lookup("assets"); f != nil {
		_ = v.BindPFlag("audio.assets", f)
	}

	loaded, used, err := config.Load(v, cfgFile)
	cfgPath = used
	if err != nil {
		cfg = config.Defaults()
		cfgErr = err
		return
	}
	cfg = loaded
	if noAudio {
		cfg.Audio.Enabled = false
	}
	if noPersist {
		cfg.Storage.Persist = false
	}
	cfgErr = cfg.Validate()
}

func runTerminal(cmd *cobra.Command, _ []string) error {
	runID := uuid.NewString()

	logPath := ""
	if debugFlag || cfg.Log.Enabled {
		logPath = cfg.Log.Path
	}
	flush, err := log.Init(log.Options{
		Path:       logPath,
		Debug:      debugFlag,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		RunID:      runID,
	})
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	defer func() { _ = flush() }()

	if cfgErr == nil {
		cfgErr = styles.ApplyTheme(styles.ThemeConfig{Preset: cfg.Theme.Preset, Colors: cfg.Theme.Colors})
	}
	if cfgErr != nil {
		log.ErrorErr(log.CatConfig, "Invalid configuration", cfgErr, "path", cfgPath)
		return runProgram(configerror.New(cfgErr, cfgPath), false)
	}
	log.Info(log.CatConfig, "Configuration loaded", "path", cfgPath, "pack", cfg.RiddlePack, "version", version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	shutdown, err := tracing.Setup(ctx, tracing.Options{
		Exporter: cfg.Tracing.Exporter,
		File:     cfg.Tracing.File,
		Endpoint: cfg.Tracing.Endpoint,
		Insecure: cfg.Tracing.Insecure,
		RunID:    runID,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		if err := shutdown(sctx); err != nil {
			log.ErrorErr(log.CatTracing, "Tracing shutdown failed", err)
		}
	}()
	ctx, runSpan := otel.Tracer("vault131").Start(ctx, "vault131.run")
	defer runSpan.End()

	game, err := buildGame(cfg)
	if err != nil {
		return err
	}

	store, closeStore := openStore(cfg.Storage)
	defer closeStore()

	opts := terminal.Options{
		Context:       ctx,
		ShowStatusBar: cfg.UI.ShowStatusBar,
		BootNotice:    cfg.UI.BootNotice,
	}
	var sounds application.Sounds
	if cfg.Audio.Enabled {
		engine, err := newEngine(cfg.Audio)
		if err != nil {
			log.ErrorErr(log.CatAudio, "Audio engine unavailable", err, "assets", cfg.Audio.Assets)
		} else {
			defer func() { _ = engine.Close() }()
			opts.Audio = engine
			sounds = sound.Feedback{Engine: engine}
		}
	}
	machine := application.NewMachine(game, store, sounds, application.WithTraceContext(ctx))
	opts.Machine = machine

	p := newProgram(terminal.New(opts), cfg.UI.Mouse)
	if cfg.RiddlesFile != "" && cfg.WatchRiddles {
		stop, err := watchRiddles(ctx, cfg.RiddlesFile, machine, p)
		if err != nil {
			log.ErrorErr(log.CatConfig, "Riddles file will not be reloaded", err, "path", cfg.RiddlesFile)
		} else {
			defer func() { _ = stop() }()
		}
	}
	return run(p)
}

func runProgram(model tea.Model, mouse bool) error {
	return run(newProgram(model, mouse))
}

func newProgram(model tea.Model, mouse bool) *tea.Program {
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if mouse {
		programOpts = append(programOpts, tea.WithMouseAllMotion())
	}
	return tea.NewProgram(model, programOpts...)
}

func run(p *tea.Program) error {
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal: %w", err)
	}
	return nil
}

// sender is the part of tea.Program the riddle watcher notifies.
type sender interface {
	Send(msg tea.Msg)
}

// watchRiddles reloads the riddles file into machine whenever it changes.
// A file that no longer parses is logged and the current riddles stay.
func watchRiddles(ctx context.Context, path string, machine *application.Machine, notify sender) (func() error, error) {
	path = config.ExpandHome(path)
	return config.WatchFile(ctx, path, config.DefaultWatchDebounce, func() {
		pack, err := riddlepacks.LoadFile(path)
		if err != nil {
			log.Warn(log.CatConfig, "Ignoring invalid riddles file", "path", path, "error", err)
			return
		}
		machine.SetRiddles(riddlepacks.ToDomain(pack.Riddles))
		notify.Send(terminal.RiddlesReloadedMsg{})
	})
}

// buildGame resolves the riddles and codes the machine validates against.
func buildGame(c config.Config) (application.Game, error) {
	riddles, err := c.ResolveRiddles()
	if err != nil {
		return application.Game{}, fmt.Errorf("loading riddles: %w", err)
	}
	return application.Game{
		AccessCode:    c.AccessCode,
		BriefcaseCode: c.BriefcaseCode,
		Riddles:       riddlepacks.ToDomain(riddles),
	}, nil
}

// openStore returns the session store for sc. A database that cannot be
// opened degrades to an in-memory session rather than refusing to start.
func openStore(sc config.StorageConfig) (application.Store, func()) {
	if !sc.Persist {
		return application.NewMemoryStore(), func() {}
	}
	db, err := sqlite.NewDB(sc.Path)
	if err != nil {
		log.ErrorErr(log.CatDB, "Session will not be persisted", err, "path", sc.Path)
		return application.NewMemoryStore(), func() {}
	}
	return application.NewSnapshotStore(db.SnapshotRepository(), sc.Key), func() { _ = db.Close() }
}

func newEngine(ac config.AudioConfig) (*sound.Engine, error) {
	fetcher, err := sound.NewFetcher(ac.Assets)
	if err != nil {
		return nil, fmt.Errorf("audio assets: %w", err)
	}
	return sound.NewEngine(
		sound.NewSpeakerOutput(speakerLatency),
		fetcher,
		sound.WithTuning(tuningFromConfig(ac)),
		sound.WithSampleRate(beep.SampleRate(ac.SampleRate)),
	), nil
}

func tuningFromConfig(ac config.AudioConfig) sound.Tuning {
	return sound.Tuning{
		HumGain:           ac.HumGain,
		BeepVolume:        ac.BeepVolume,
		SFXGain:           ac.SFXGain,
		KeystrokeThrottle: ac.KeystrokeThrottle,
		RateJitterMin:     ac.RateJitterMin,
		RateJitterMax:     ac.RateJitterMax,
		VolumeJitterMin:   ac.VolumeJitterMin,
		VolumeJitterMax:   ac.VolumeJitterMax,
	}
}
