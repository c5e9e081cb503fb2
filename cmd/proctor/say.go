package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/speech"
)

func newSayCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "say <text>",
		Short: "Speak a line through the configured voice",
		Long:  "Synthesizes and plays one line. Useful to check the speakers and warm the audio cache before an exam.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			voice := a.buildVoice(cmd.Context())
			if _, silent := voice.(*speech.NoOp); silent {
				return domain.ErrSpeechDisabled
			}
			text := strings.Join(args, " ")
			if !voice.SayWait(cmd.Context(), text, speech.PriorityNormal, timeout) {
				return fmt.Errorf("not spoken within %s", timeout)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "longest wait for synthesis and playback")
	return cmd
}
