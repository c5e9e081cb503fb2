package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hammamikhairi/proctor/internal/config"
	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
	"github.com/hammamikhairi/proctor/internal/speech"
	"github.com/hammamikhairi/proctor/internal/storage"
)

// app carries what every command shares: resolved config, the logger and
// resources to release on exit.
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	noSpeech   bool

	cfg      config.Config
	log      *logger.Logger
	closers  []func()
	exitCode int
}

// flagKeys maps config keys to the flags that override them. Flags a
// command does not define are skipped.
var flagKeys = map[string]string{
	"log_file":             "log-file",
	"speech.provider":      "speech",
	"speech.voice":         "voice",
	"speech.rate":          "rate",
	"speech.language":      "language",
	"speech.volume":        "volume",
	"speech.cache_dir":     "cache-dir",
	"speech.cache_write":   "disk-cache",
	"speech.phrase_wait":   "phrase-wait",
	"history.enabled":      "history",
	"history.path":         "history-db",
	"exam.course":          "course",
	"exam.instructor":      "instructor",
	"exam.hours":           "hours",
	"exam.minutes":         "minutes",
	"exam.rules":           "rules",
	"exam.rules_column":    "column",
	"exam.logo":            "logo",
	"exam.reminders":       "reminders",
	"exam.half_time_leave": "half-time-leave",
}

// setup loads configuration and opens the log. Runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	// Azure keys usually live in .env; a missing file is fine.
	_ = godotenv.Load()

	loader := config.NewLoader(a.configPath)
	if err := bindFlags(loader, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if a.noSpeech {
		cfg.Speech.Provider = config.ProviderNone
	}
	a.cfg = cfg

	level, _ := cfg.Level() // validated by Load
	if a.verbose {
		level = logger.LevelVerbose
	}
	if a.quiet {
		level = logger.LevelOff
	}

	logOut := a.openLog(cfg.LogFile)

	// Redirect Go's default log package (used by third-party libs) to the
	// same output so it doesn't spill over the TUI.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	a.log = logger.New(level, logOut)
	if f := loader.File(); f != "" {
		a.log.Info("config loaded from %s", f)
	}
	return nil
}

func bindFlags(loader *config.Loader, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := loader.BindFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// openLog directs logs to a file by default so the TUI stays clean.
func (a *app) openLog(path string) io.Writer {
	if path == "" || path == "stderr" {
		return os.Stderr
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr
	}
	a.closers = append(a.closers, func() { _ = f.Close() })
	return f
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openStore returns the SQLite history when enabled, falling back to
// memory when the database cannot be opened.
func (a *app) openStore() domain.SessionStore {
	log := a.log.Named("storage")
	if !a.cfg.History.Enabled {
		return storage.NewMemoryStore(log)
	}
	db, err := storage.OpenSQLite(a.cfg.History.Path, log)
	if err != nil {
		a.log.Error("history disabled: %v", err)
		return storage.NewMemoryStore(log)
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	return db
}

// buildVoice starts the speech pipeline for the configured provider. When
// speech is off or no audio device is available it returns a silent voice
// and the exam runs on captions alone.
func (a *app) buildVoice(ctx context.Context) speech.Voice {
	sc := a.cfg.Speech
	log := a.log.Named("speech")
	silent := speech.NewNoOp(log)

	var tts speech.Synthesizer
	switch provider := sc.ResolveProvider(); provider {
	case config.ProviderNone:
		a.log.Info("speech disabled")
		return silent
	case config.ProviderAzure:
		if sc.AzureKey == "" || sc.AzureRegion == "" {
			a.log.Error("speech disabled: set %s and %s to use azure", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
			return silent
		}
		tts = speech.NewAzureClient(sc.AzureKey, sc.AzureRegion, log,
			speech.WithVoice(sc.Voice),
			speech.WithRate(sc.Rate),
		)
	default:
		tts = speech.NewGoogleClient(log, speech.WithLanguage(sc.Language))
	}

	player, err := speech.NewPlayer(sc.Volume, log)
	if err != nil {
		a.log.Error("audio player init failed, speech disabled: %v", err)
		return silent
	}

	mouth := speech.NewMouth(tts, player, log,
		speech.WithCacheDir(sc.CacheDir),
		speech.WithDiskWrite(sc.CacheWrite),
		speech.WithMemoryTTL(sc.MemoryTTL),
		speech.WithSynthTimeout(sc.SynthTimeout),
	)
	mouth.Start(ctx)
	a.log.Info("TTS enabled (voice=%s)", tts.Voice())
	return mouth
}
