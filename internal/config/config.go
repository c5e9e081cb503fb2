// Package config loads proctor settings. Sources are layered, lowest
// precedence first: built-in defaults, proctor.yaml, PROCTOR_* environment
// variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// EnvPrefix is prepended to every environment override, e.g.
// PROCTOR_SPEECH_PROVIDER=google.
const EnvPrefix = "PROCTOR"

// Speech providers.
const (
	ProviderAuto   = "auto" // azure when keys are present, google otherwise
	ProviderAzure  = "azure"
	ProviderGoogle = "google"
	ProviderNone   = "none"
)

// Config is the fully resolved configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	Speech  Speech  `mapstructure:"speech"`
	History History `mapstructure:"history"`
	Exam    Exam    `mapstructure:"exam"`
}

// Speech configures the announcement pipeline.
type Speech struct {
	Provider     string        `mapstructure:"provider"`
	Voice        string        `mapstructure:"voice"`
	Rate         string        `mapstructure:"rate"`
	Language     string        `mapstructure:"language"`
	Volume       float64       `mapstructure:"volume"`
	CacheDir     string        `mapstructure:"cache_dir"`
	CacheWrite   bool          `mapstructure:"cache_write"`
	MemoryTTL    time.Duration `mapstructure:"memory_ttl"`
	PhraseWait   time.Duration `mapstructure:"phrase_wait"`
	SynthTimeout time.Duration `mapstructure:"synth_timeout"`
	AzureKey     string        `mapstructure:"azure_key"`
	AzureRegion  string        `mapstructure:"azure_region"`
}

// History configures the session database.
type History struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Exam holds the values the setup form starts with.
type Exam struct {
	Course        string `mapstructure:"course"`
	Instructor    string `mapstructure:"instructor"`
	Hours         int    `mapstructure:"hours"`
	Minutes       int    `mapstructure:"minutes"`
	RulesPath     string `mapstructure:"rules"`
	RulesColumn   string `mapstructure:"rules_column"`
	LogoPath      string `mapstructure:"logo"`
	Reminders     bool   `mapstructure:"reminders"`
	HalfTimeLeave bool   `mapstructure:"half_time_leave"`
}

// ExamConfig converts the form defaults to a domain configuration.
func (e Exam) ExamConfig() domain.ExamConfig {
	return domain.ExamConfig{
		Course:               e.Course,
		Instructor:           e.Instructor,
		Hours:                e.Hours,
		Minutes:              e.Minutes,
		RulesPath:            e.RulesPath,
		RulesColumn:          e.RulesColumn,
		LogoPath:             e.LogoPath,
		RemindersEnabled:     e.Reminders,
		HalfTimeLeaveAllowed: e.HalfTimeLeave,
	}
}

// Level parses LogLevel.
func (c Config) Level() (logger.Level, error) {
	return logger.ParseLevel(c.LogLevel)
}

// Loader resolves a Config from every source.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults applied. path selects a config
// file explicitly; when empty, proctor.yaml is searched for in the working
// directory and the user config directory.
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Azure's own variable names work too, so an existing .env file is
	// picked up unchanged.
	_ = v.BindEnv("speech.azure_key", EnvPrefix+"_SPEECH_AZURE_KEY", "AZURE_SPEECH_KEY")
	_ = v.BindEnv("speech.azure_region", EnvPrefix+"_SPEECH_AZURE_REGION", "AZURE_SPEECH_REGION")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("proctor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "proctor"))
		}
	}
	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "normal")
	v.SetDefault("log_file", filepath.Join(".proctor-logs", "proctor.log"))

	v.SetDefault("speech.provider", ProviderAuto)
	v.SetDefault("speech.voice", "en-US-AvaNeural")
	v.SetDefault("speech.rate", "")
	v.SetDefault("speech.language", "en")
	v.SetDefault("speech.volume", 1.0)
	v.SetDefault("speech.cache_dir", ".proctor-cache")
	v.SetDefault("speech.cache_write", true)
	v.SetDefault("speech.memory_ttl", 30*time.Minute)
	v.SetDefault("speech.phrase_wait", 15*time.Second)
	v.SetDefault("speech.synth_timeout", 20*time.Second)
	v.SetDefault("speech.azure_key", "")
	v.SetDefault("speech.azure_region", "")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(".proctor", "history.db"))

	v.SetDefault("exam.course", "")
	v.SetDefault("exam.instructor", "")
	v.SetDefault("exam.hours", 2)
	v.SetDefault("exam.minutes", 0)
	v.SetDefault("exam.rules", "")
	v.SetDefault("exam.rules_column", domain.DefaultRulesColumn)
	v.SetDefault("exam.logo", "")
	v.SetDefault("exam.reminders", true)
	v.SetDefault("exam.half_time_leave", false)
}

// BindFlag makes a command-line flag override key when the flag is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("binding %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the config file, if any, and resolves the final values. A
// missing config file is not an error; a malformed one is.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	cfg.Speech.Provider = strings.ToLower(strings.TrimSpace(cfg.Speech.Provider))
	switch cfg.Speech.Provider {
	case ProviderAuto, ProviderAzure, ProviderGoogle, ProviderNone:
	default:
		return Config{}, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
	}
	return cfg, nil
}

// File returns the config file in use, or "" when running on defaults.
func (l *Loader) File() string { return l.v.ConfigFileUsed() }

// ResolveProvider picks the concrete provider for auto.
func (s Speech) ResolveProvider() string {
	if s.Provider != ProviderAuto {
		return s.Provider
	}
	if s.AzureKey != "" && s.AzureRegion != "" {
		return ProviderAzure
	}
	return ProviderGoogle
}
