package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/tempofiller/internal/report"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the journal of worklog changes made through tempofiller.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			identity, err := app.client.CurrentIdentity(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := app.journal.History(cmd.Context(), identity.String(), limit)
			if err != nil {
				return err
			}
			report.WriteJournal(cmd.OutOrStdout(), identity.String(), entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show.")
	return cmd
}
