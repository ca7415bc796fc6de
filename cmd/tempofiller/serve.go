package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/tempofiller/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the worklog tools over MCP stdio.",
		Long:  `Starts an MCP server on stdin/stdout. Logs go to stderr so the protocol stream stays clean.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			s := mcpserver.New(app.worklogs, mcpserver.Options{
				Name:           app.cfg.App.Name,
				Version:        app.cfg.App.Version,
				DefaultHours:   app.cfg.Tempo.DefaultHours,
				MaxBulkEntries: app.cfg.Tempo.MaxBulkEntries,
				Logger:         app.logger,
			})
			return mcpserver.ServeStdio(s, app.logger)
		},
	}
}
