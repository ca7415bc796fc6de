package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tempofiller",
		Short: "Tempo worklog tools for AI agents.",
		Long: `tempofiller exposes Jira Tempo worklogs to AI agents as MCP tools over stdio,
as an authenticated HTTP API, and as a small command line for bulk entry.
Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newHTTPCmd(),
		newBulkCmd(),
		newHistoryCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tempofiller "+version)
		},
	}
}
