package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/proctor/internal/display"
	"github.com/hammamikhairi/proctor/internal/engine"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past exam sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History.Enabled {
				return fmt.Errorf("history is disabled")
			}
			// Listing needs neither rules nor a notifier.
			eng := engine.New(nil, a.openStore(), nil, a.log.Named("engine"))
			sessions, err := eng.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.HistoryTable(sessions))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show (0 for all)")
	return cmd
}
