package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/tempofiller/internal/events"
	"github.com/spec-kit/tempofiller/internal/report"
	"github.com/spec-kit/tempofiller/internal/service"
)

func newBulkCmd() *cobra.Command {
	var (
		filePath string
		billable bool
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Create worklogs from a YAML file.",
		Long: `Reads single-day entries from a YAML file and creates them concurrently.

  billable: true
  worklogs:
    - issueKey: PROJ-1
      hours: 7.5
      date: "2024-03-04"
      description: Sprint work`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := loadBulkFile(filePath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("billable") {
				input.Billable = &billable
			}

			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := service.WithSource(cmd.Context(), events.SourceCLI)
			result, err := app.worklogs.BulkPostWorklogs(ctx, input)
			if err != nil {
				report.WriteError(cmd.ErrOrStderr(), "Error in Bulk Worklog Creation", err,
					fmt.Sprintf("**Entries to process:** %d", len(input.Worklogs)))
				return err
			}

			report.WriteBulkResult(cmd.OutOrStdout(), result)
			if result.AllFailed() {
				return errors.New("no worklog was created")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "worklogs.yaml", "Path to the YAML file with entries.")
	cmd.Flags().BoolVar(&billable, "billable", true, "Override the billable flag for every entry.")
	return cmd
}

func loadBulkFile(path string) (service.BulkInput, error) {
	var input service.BulkInput
	data, err := os.ReadFile(path)
	if err != nil {
		return input, fmt.Errorf("could not read file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("could not parse YAML from file '%s': %w", path, err)
	}
	return input, nil
}
