package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/proctor/internal/display"
	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/engine"
	"github.com/hammamikhairi/proctor/internal/rules"
	"github.com/hammamikhairi/proctor/internal/speech"
)

func newRootCmd(a *app) *cobra.Command {
	var skipForm bool

	root := &cobra.Command{
		Use:           "proctor",
		Short:         "Spoken exam countdown",
		Long:          "Collects the exam setup, reads the academic rules aloud, counts down and announces the halfway mark, the last quarter and the end of the exam.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExam(cmd.Context(), skipForm)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./proctor.yaml or $XDG_CONFIG_HOME/proctor/proctor.yaml)")
	pf.BoolVar(&a.verbose, "verbose", false, "enable verbose/debug logging")
	pf.BoolVar(&a.quiet, "quiet", false, "disable all logging")
	pf.String("log-file", ".proctor-logs/proctor.log", "file to write logs to (use \"stderr\" to log to console)")
	pf.BoolVar(&a.noSpeech, "no-speech", false, "disable text-to-speech")
	pf.String("speech", "auto", "speech provider: auto, azure, google or none")
	pf.String("voice", speech.DefaultVoice, "azure voice name")
	pf.String("rate", "", "azure prosody rate, e.g. -10%")
	pf.String("language", speech.DefaultLanguage, "google tts language")
	pf.Float64("volume", 1.0, "playback volume between 0 and 1")
	pf.String("cache-dir", ".proctor-cache", "directory for persistent TTS audio cache")
	pf.Bool("disk-cache", true, "persist TTS audio cache to disk (reads from disk even when false)")
	pf.Bool("history", true, "record sessions in the history database")
	pf.String("history-db", ".proctor/history.db", "history database path")

	f := root.Flags()
	f.BoolVar(&skipForm, "no-form", false, "start from flags and config without showing the setup form")
	f.String("course", "", "course name")
	f.String("instructor", "", "instructor name")
	f.Int("hours", 2, "exam hours (0-23)")
	f.Int("minutes", 0, "exam minutes (0-59)")
	f.String("rules", "", "academic rules spreadsheet (.xlsx or .csv)")
	f.String("column", domain.DefaultRulesColumn, "spreadsheet column holding the rules")
	f.String("logo", "", "university logo (PNG or JPEG)")
	f.Bool("reminders", true, "announce the halfway and three-quarter marks")
	f.Bool("half-time-leave", false, "allow students to leave at half time")
	f.Duration("phrase-wait", 15*time.Second, "longest wait for one instruction phrase before moving on")

	root.AddCommand(newRulesCmd(a), newSayCmd(a), newHistoryCmd(a))
	return root
}

// runExam shows the form, then the countdown, and records the outcome.
func (a *app) runExam(parent context.Context, skipForm bool) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exam := a.cfg.Exam.ExamConfig()
	if !skipForm {
		cfg, ok, err := display.RunForm(exam, engine.Validate)
		if err != nil {
			return err
		}
		if !ok {
			a.log.Info("setup cancelled")
			a.exitCode = exitAborted
			return nil
		}
		exam = cfg
	} else if err := engine.Validate(exam); err != nil {
		return err
	}

	var uiOpts []display.UIOption
	uiOpts = append(uiOpts, display.WithTitle(exam.Course, exam.Instructor))
	if img, err := display.LoadLogo(exam.LogoPath); err != nil {
		a.log.Warn("logo not shown: %v", err)
	} else {
		uiOpts = append(uiOpts, display.WithLogo(img))
	}
	ui := display.NewUI(a.log.Named("display"), uiOpts...)

	voice := a.buildVoice(ctx)
	voice.Prefetch(ctx, speech.ReminderLines()...)
	notifier := speech.NewSpeakingNotifier(
		display.NewCaptionNotifier(ui, a.log.Named("captions")),
		voice,
		a.log.Named("speech"),
	)

	eng := engine.New(rules.NewFileSource(a.log.Named("rules")), a.openStore(), notifier, a.log.Named("engine"),
		engine.WithPhraseWaiter(voice),
		engine.WithPhraseWait(a.cfg.Speech.PhraseWait),
	)

	sess, err := eng.Prepare(ctx, exam)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	outcomeCh := make(chan engine.Outcome, 1)
	go func() { outcomeCh <- sess.Run(runCtx) }()
	go sess.Instruct(runCtx)

	uiErr := ui.Run(runCtx, sess)
	stop()
	outcome := <-outcomeCh

	switch outcome {
	case engine.OutcomeFinished:
		// Let the final announcement finish before the process exits.
		waitQuiet(voice, 10*time.Second)
		a.exitCode = exitFinished
	default:
		voice.Interrupt()
		a.exitCode = exitAborted
	}

	hits, misses := voice.CacheStats()
	a.log.Info("tts cache: %d hits, %d misses", hits, misses)

	rec := sess.Record()
	a.log.Info("session %s %s with %s remaining", rec.ID, outcome, rec.Remaining)
	if uiErr != nil {
		return fmt.Errorf("display: %w", uiErr)
	}
	return nil
}

// waitQuiet blocks until voice has nothing queued or playing, or the
// timeout passes.
func waitQuiet(voice speech.Voice, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if voice.Idle() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
