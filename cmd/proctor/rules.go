package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/rules"
)

func newRulesCmd(a *app) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "rules <file>",
		Short: "Print the rules a spreadsheet holds",
		Long:  "Reads the named column of an .xlsx or .csv file the same way the exam does, so a rules sheet can be checked before the exam.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := rules.NewFileSource(a.log.Named("rules"))
			list, err := src.Read(cmd.Context(), args[0], column)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "(no rules)")
				return nil
			}
			for i, r := range list {
				fmt.Fprintf(out, "%2d. %s\n", i+1, r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&column, "column", domain.DefaultRulesColumn, "column header holding the rules")
	return cmd
}
