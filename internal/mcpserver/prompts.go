package mcpserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Prompt names exposed to agents.
const (
	PromptWorklogSummary  = "worklog_summary"
	PromptBulkEntryHelper = "bulk_entry_helper"
)

// WorklogSummaryPrompt asks the agent to analyze a month of worklogs.
type WorklogSummaryPrompt struct {
	now func() time.Time
}

func (p *WorklogSummaryPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt(PromptWorklogSummary,
		mcp.WithPromptDescription("Generate a prompt for analyzing worklog data for a month"),
		mcp.WithArgument("month", mcp.ArgumentDescription("Month in YYYY-MM format (defaults to the current month)")),
		mcp.WithArgument("includeAnalysis", mcp.ArgumentDescription("Set to true to include a detailed analysis")),
	)
}

func (p *WorklogSummaryPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	month := strings.TrimSpace(req.Params.Arguments["month"])
	if month == "" {
		month = p.now().Format("2006-01")
	}
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("month must be in YYYY-MM format, got %q", month)
	}
	end := start.AddDate(0, 1, -1)

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize my Tempo worklogs for %s.\n\n", month)
	fmt.Fprintf(&b, "1. Call %s with startDate %s and endDate %s.\n", ToolGetWorklogs, start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Fprintf(&b, "2. Call %s for the same range to learn the required hours.\n", ToolGetSchedule)
	b.WriteString("3. Report total hours logged against total hours required.\n")
	if analysis, _ := strconv.ParseBool(req.Params.Arguments["includeAnalysis"]); analysis {
		b.WriteString("\nThen provide insights about:\n")
		b.WriteString("- Distribution across projects and issues\n")
		b.WriteString("- Daily patterns\n")
		b.WriteString("- Working days with missing or partial time entries\n")
	}

	return mcp.NewGetPromptResult(
		"Worklog summary for "+month,
		[]mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(b.String()))},
	), nil
}

// BulkEntryHelperPrompt guides the agent through filling a date range.
type BulkEntryHelperPrompt struct {
	defaultHours int
}

func (p *BulkEntryHelperPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt(PromptBulkEntryHelper,
		mcp.WithPromptDescription("Generate a prompt that fills the working days of a date range with worklogs"),
		mcp.WithArgument("startDate", mcp.RequiredArgument(), mcp.ArgumentDescription("Start date in YYYY-MM-DD format")),
		mcp.WithArgument("endDate", mcp.RequiredArgument(), mcp.ArgumentDescription("End date in YYYY-MM-DD format")),
		mcp.WithArgument("projectKeys", mcp.ArgumentDescription("Comma separated issue keys to log time against")),
		mcp.WithArgument("defaultHours", mcp.ArgumentDescription("Hours per working day")),
	)
}

func (p *BulkEntryHelperPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	start, end := strings.TrimSpace(args["startDate"]), strings.TrimSpace(args["endDate"])
	if start == "" || end == "" {
		return nil, fmt.Errorf("startDate and endDate are required")
	}
	hours := strings.TrimSpace(args["defaultHours"])
	if hours == "" {
		hours = strconv.Itoa(p.defaultHours)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fill my timesheet from %s to %s.\n\n", start, end)
	fmt.Fprintf(&b, "1. Call %s for the range and keep only working days.\n", ToolGetSchedule)
	fmt.Fprintf(&b, "2. Call %s for the same range to find days that already have time logged.\n", ToolGetWorklogs)
	if keys := strings.TrimSpace(args["projectKeys"]); keys != "" {
		fmt.Fprintf(&b, "3. Spread %s hours per remaining working day across: %s.\n", hours, keys)
	} else {
		fmt.Fprintf(&b, "3. Ask me which issues to use, then plan %s hours per remaining working day.\n", hours)
	}
	fmt.Fprintf(&b, "4. Show me the plan, and after I confirm submit it with a single %s call.\n", ToolBulkPostWorklogs)
	b.WriteString("Never log time on non-working days.\n")

	return mcp.NewGetPromptResult(
		"Bulk entry plan for "+start+" to "+end,
		[]mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(b.String()))},
	), nil
}
