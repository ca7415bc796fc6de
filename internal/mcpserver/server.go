// Package mcpserver exposes the worklog service as an MCP server: tools,
// prompts and resources served over stdio.
package mcpserver

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Options configures the MCP server.
type Options struct {
	Name           string
	Version        string
	DefaultHours   int
	MaxBulkEntries int
	Logger         *zap.Logger
}

// New creates the MCP server with every tool, prompt and resource registered.
func New(svc Worklogs, opts Options) *server.MCPServer {
	if opts.Name == "" {
		opts.Name = "tempofiller"
	}
	if opts.DefaultHours <= 0 {
		opts.DefaultHours = 8
	}

	s := server.NewMCPServer(
		opts.Name,
		opts.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	for _, tool := range NewTools(svc, opts.MaxBulkEntries) {
		s.AddTool(tool.Definition(), tool.Handle)
	}

	summary := &WorklogSummaryPrompt{now: time.Now}
	s.AddPrompt(summary.Definition(), summary.Handle)

	bulkHelper := &BulkEntryHelperPrompt{defaultHours: opts.DefaultHours}
	s.AddPrompt(bulkHelper.Definition(), bulkHelper.Handle)

	resources := &ResourceHandler{svc: svc}
	s.AddResource(resources.RecentIssuesResource(), resources.HandleRecentIssues)
	s.AddResourceTemplate(resources.MonthlyWorklogsTemplate(), resources.HandleMonthlyWorklogs)

	return s
}

// ServeStdio serves s on stdin/stdout until the input is closed. Server
// errors are written to logger, never to stdout.
func ServeStdio(s *server.MCPServer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("serving MCP over stdio")
	return server.ServeStdio(s, server.WithErrorLogger(zap.NewStdLog(logger.Named("mcp"))))
}

const instructions = `Tempo worklog tools for the authenticated Jira user.

- get_schedule shows working days and required hours; check it before logging time.
- get_worklogs lists existing entries so you avoid duplicates.
- post_worklog creates one entry; bulk_post_worklogs creates up to 100 single-day entries concurrently and reports each entry's outcome.
- delete_worklog removes an entry by the id shown in get_worklogs output.
Dates are YYYY-MM-DD. Hours are decimal, between 0.1 and 24.`
