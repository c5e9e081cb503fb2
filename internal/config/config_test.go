package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/proctor/internal/logger"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proctor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	// A directory with no proctor.yaml.
	chdir(t, t.TempDir())

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, "normal", cfg.LogLevel)
	assert.Equal(t, ProviderAuto, cfg.Speech.Provider)
	assert.Equal(t, 15*time.Second, cfg.Speech.PhraseWait)
	assert.Equal(t, 20*time.Second, cfg.Speech.SynthTimeout)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "rules", cfg.Exam.RulesColumn)
	assert.Equal(t, 2, cfg.Exam.Hours)
	assert.True(t, cfg.Exam.Reminders)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: verbose
speech:
  provider: google
  language: fr
  phrase_wait: 5s
  synth_timeout: 8s
exam:
  course: Algebra
  minutes: 45
  hours: 1
  half_time_leave: true
`)
	l := NewLoader(path)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, path, l.File())
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logger.LevelVerbose, lvl)
	assert.Equal(t, ProviderGoogle, cfg.Speech.Provider)
	assert.Equal(t, "fr", cfg.Speech.Language)
	assert.Equal(t, 5*time.Second, cfg.Speech.PhraseWait)
	assert.Equal(t, 8*time.Second, cfg.Speech.SynthTimeout)

	exam := cfg.Exam.ExamConfig()
	assert.Equal(t, "Algebra", exam.Course)
	assert.Equal(t, 105*time.Minute, exam.Duration())
	assert.True(t, exam.HalfTimeLeaveAllowed)
	assert.True(t, exam.RemindersEnabled)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "speech:\n  provider: google\n")
	t.Setenv("PROCTOR_SPEECH_PROVIDER", "none")
	t.Setenv("AZURE_SPEECH_KEY", "k")
	t.Setenv("AZURE_SPEECH_REGION", "westeurope")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderNone, cfg.Speech.Provider)
	assert.Equal(t, "k", cfg.Speech.AzureKey)
	assert.Equal(t, "westeurope", cfg.Speech.AzureRegion)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("PROCTOR_EXAM_MINUTES", "10")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("minutes", 0, "")
	require.NoError(t, fs.Parse([]string{"--minutes=30"}))

	l := NewLoader(writeConfig(t, "exam:\n  minutes: 5\n"))
	require.NoError(t, l.BindFlag("exam.minutes", fs.Lookup("minutes")))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Exam.Minutes)

	assert.Error(t, l.BindFlag("exam.hours", fs.Lookup("hours")))
}

func TestInvalidValues(t *testing.T) {
	_, err := NewLoader(writeConfig(t, "log_level: chatty\n")).Load()
	assert.Error(t, err)

	_, err = NewLoader(writeConfig(t, "speech:\n  provider: espeak\n")).Load()
	assert.Error(t, err)

	_, err = NewLoader(writeConfig(t, "speech: [broken")).Load()
	assert.Error(t, err)
}

func TestResolveProvider(t *testing.T) {
	assert.Equal(t, ProviderGoogle, Speech{Provider: ProviderAuto}.ResolveProvider())
	assert.Equal(t, ProviderAzure, Speech{Provider: ProviderAuto, AzureKey: "k", AzureRegion: "r"}.ResolveProvider())
	assert.Equal(t, ProviderNone, Speech{Provider: ProviderNone, AzureKey: "k", AzureRegion: "r"}.ResolveProvider())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
