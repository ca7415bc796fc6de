package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/internal/report"
	"github.com/spec-kit/tempofiller/internal/service"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// Tool names exposed to agents.
const (
	ToolGetWorklogs      = "get_worklogs"
	ToolPostWorklog      = "post_worklog"
	ToolBulkPostWorklogs = "bulk_post_worklogs"
	ToolDeleteWorklog    = "delete_worklog"
	ToolGetSchedule      = "get_schedule"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

// Worklogs is the worklog API the tools are built on.
type Worklogs interface {
	GetWorklogs(ctx context.Context, input service.GetWorklogsInput) (*service.WorklogList, error)
	MonthWorklogs(ctx context.Context, month string) (*service.WorklogList, error)
	PostWorklog(ctx context.Context, req domain.WorklogCreateRequest) (*domain.WorklogRecord, error)
	BulkPostWorklogs(ctx context.Context, input service.BulkInput) (*service.BulkResult, error)
	DeleteWorklog(ctx context.Context, worklogID string) error
	GetSchedule(ctx context.Context, input service.ScheduleInput) (*service.ScheduleResult, error)
	RecentIssues(ctx context.Context, limit int) ([]domain.RecentIssue, error)
}

// Tool is a single MCP tool: its schema and its handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// NewTools returns every worklog tool backed by svc.
func NewTools(svc Worklogs, maxBulkEntries int) []Tool {
	return []Tool{
		&GetWorklogsTool{svc: svc},
		&PostWorklogTool{svc: svc},
		&BulkPostWorklogsTool{svc: svc, maxEntries: maxBulkEntries},
		&DeleteWorklogTool{svc: svc, now: time.Now},
		&GetScheduleTool{svc: svc},
	}
}

// bindArguments decodes the call arguments into target.
func bindArguments(req mcp.CallToolRequest, target any) error {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return errorutil.NewValidationError("invalid arguments: "+err.Error(), nil)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return errorutil.NewValidationError("invalid arguments: "+err.Error(), nil)
	}
	return nil
}

func errorResult(title string, err error, lines ...string) *mcp.CallToolResult {
	var buf bytes.Buffer
	report.WriteError(&buf, title, err, lines...)
	return mcp.NewToolResultError(buf.String())
}

// GetWorklogsTool lists the caller's worklogs.
type GetWorklogsTool struct {
	svc Worklogs
}

func (t *GetWorklogsTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolGetWorklogs,
		mcp.WithDescription("Retrieve worklogs for the authenticated user and date range"),
		mcp.WithString("startDate", mcp.Required(), mcp.Pattern(datePattern),
			mcp.Description("Start date in YYYY-MM-DD format")),
		mcp.WithString("endDate", mcp.Pattern(datePattern),
			mcp.Description("End date in YYYY-MM-DD format (optional, defaults to startDate)")),
		mcp.WithString("issueKey",
			mcp.Description("Optional filter by specific issue key (e.g., PROJ-1234)")),
	)
}

func (t *GetWorklogsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input service.GetWorklogsInput
	if err := bindArguments(req, &input); err != nil {
		return errorResult("Error Retrieving Worklogs", err), nil
	}
	list, err := t.svc.GetWorklogs(ctx, input)
	if err != nil {
		return errorResult("Error Retrieving Worklogs", err), nil
	}

	var buf bytes.Buffer
	report.WriteWorklogs(&buf, list)
	return mcp.NewToolResultText(buf.String()), nil
}

// PostWorklogTool creates a single worklog.
type PostWorklogTool struct {
	svc Worklogs
}

func (t *PostWorklogTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolPostWorklog,
		mcp.WithDescription("Create a new worklog entry"),
		mcp.WithString("issueKey", mcp.Required(),
			mcp.Description("JIRA issue key (e.g., PROJ-1234)")),
		mcp.WithNumber("hours", mcp.Required(), mcp.Min(service.MinHours), mcp.Max(service.MaxHours),
			mcp.Description("Hours worked (decimal)")),
		mcp.WithString("startDate", mcp.Required(), mcp.Pattern(datePattern),
			mcp.Description("Start date in YYYY-MM-DD format")),
		mcp.WithString("endDate", mcp.Pattern(datePattern),
			mcp.Description("End date in YYYY-MM-DD format (optional, defaults to startDate)")),
		mcp.WithBoolean("billable",
			mcp.Description("Whether the time is billable (default: true)")),
		mcp.WithString("description",
			mcp.Description("Work description (optional)")),
	)
}

func (t *PostWorklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input domain.WorklogCreateRequest
	if err := bindArguments(req, &input); err != nil {
		return errorResult("Error Creating Worklog", err), nil
	}
	record, err := t.svc.PostWorklog(ctx, input)
	if err != nil {
		return errorResult("Error Creating Worklog", err,
			"**Issue:** "+input.IssueKey,
			fmt.Sprintf("**Hours:** %g", input.Hours),
			"**Date:** "+input.StartDate), nil
	}

	var buf bytes.Buffer
	report.WritePostedWorklog(&buf, input, record)
	return mcp.NewToolResultText(buf.String()), nil
}

// BulkPostWorklogsTool creates many single-day worklogs at once.
type BulkPostWorklogsTool struct {
	svc        Worklogs
	maxEntries int
}

func (t *BulkPostWorklogsTool) Definition() mcp.Tool {
	maxEntries := t.maxEntries
	if maxEntries <= 0 {
		maxEntries = service.DefaultMaxBulkEntries
	}
	return mcp.NewTool(ToolBulkPostWorklogs,
		mcp.WithDescription("Create multiple worklog entries from a structured format"),
		mcp.WithArray("worklogs", mcp.Required(),
			mcp.Description(fmt.Sprintf("Array of worklog entries to create (1 to %d)", maxEntries)),
			mcp.MinItems(1),
			mcp.MaxItems(maxEntries),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"issueKey":    map[string]any{"type": "string", "description": "JIRA issue key (e.g., PROJ-1234)"},
					"hours":       map[string]any{"type": "number", "minimum": service.MinHours, "maximum": service.MaxHours, "description": "Hours worked (decimal)"},
					"date":        map[string]any{"type": "string", "pattern": datePattern, "description": "Date in YYYY-MM-DD format"},
					"description": map[string]any{"type": "string", "description": "Work description (optional)"},
				},
				"required": []string{"issueKey", "hours", "date"},
			}),
		),
		mcp.WithBoolean("billable",
			mcp.Description("Whether the time is billable for all entries (default: true)")),
	)
}

func (t *BulkPostWorklogsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input service.BulkInput
	if err := bindArguments(req, &input); err != nil {
		return errorResult("Error in Bulk Worklog Creation", err), nil
	}
	result, err := t.svc.BulkPostWorklogs(ctx, input)
	if err != nil {
		return errorResult("Error in Bulk Worklog Creation", err,
			fmt.Sprintf("**Entries to process:** %d", len(input.Worklogs))), nil
	}

	var buf bytes.Buffer
	report.WriteBulkResult(&buf, result)
	if result.AllFailed() {
		return mcp.NewToolResultError(buf.String()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// DeleteWorklogTool removes a worklog.
type DeleteWorklogTool struct {
	svc Worklogs
	now func() time.Time
}

func (t *DeleteWorklogTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolDeleteWorklog,
		mcp.WithDescription("Delete an existing worklog entry"),
		mcp.WithString("worklogId", mcp.Required(),
			mcp.Description("Tempo worklog ID to delete")),
	)
}

func (t *DeleteWorklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input struct {
		WorklogID string `json:"worklogId"`
	}
	if err := bindArguments(req, &input); err != nil {
		return errorResult("Error Deleting Worklog", err), nil
	}
	if err := t.svc.DeleteWorklog(ctx, input.WorklogID); err != nil {
		return errorResult("Error Deleting Worklog", err, "**Worklog ID:** "+input.WorklogID), nil
	}

	var buf bytes.Buffer
	report.WriteDeleted(&buf, input.WorklogID, t.now())
	return mcp.NewToolResultText(buf.String()), nil
}

// GetScheduleTool shows working days and required hours.
type GetScheduleTool struct {
	svc Worklogs
}

func (t *GetScheduleTool) Definition() mcp.Tool {
	return mcp.NewTool(ToolGetSchedule,
		mcp.WithDescription("Retrieve the work schedule for the authenticated user: working days, non-working days and required hours"),
		mcp.WithString("startDate", mcp.Required(), mcp.Pattern(datePattern),
			mcp.Description("Start date in YYYY-MM-DD format")),
		mcp.WithString("endDate", mcp.Pattern(datePattern),
			mcp.Description("End date in YYYY-MM-DD format (optional, defaults to startDate)")),
	)
}

func (t *GetScheduleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input service.ScheduleInput
	if err := bindArguments(req, &input); err != nil {
		return errorResult("Error Retrieving Schedule", err), nil
	}
	result, err := t.svc.GetSchedule(ctx, input)
	if err != nil {
		dates := input.StartDate
		if input.EndDate != "" {
			dates += " to " + input.EndDate
		}
		return errorResult("Error Retrieving Schedule", err, "**Date Range:** "+dates), nil
	}

	var buf bytes.Buffer
	report.WriteSchedule(&buf, result)
	return mcp.NewToolResultText(buf.String()), nil
}
