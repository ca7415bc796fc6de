package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Resource identifiers.
const (
	RecentIssuesURI        = "tempo://issues/recent"
	MonthlyWorklogsPrefix  = "tempo://worklogs/"
	MonthlyWorklogsURITmpl = MonthlyWorklogsPrefix + "{month}"
	recentIssueLimit       = 20
	jsonMIME               = "application/json"
)

// ResourceHandler serves the read-only resources.
type ResourceHandler struct {
	svc Worklogs
}

// RecentIssuesResource describes the recent-issues resource.
func (h *ResourceHandler) RecentIssuesResource() mcp.Resource {
	return mcp.NewResource(RecentIssuesURI, "Recent Issues",
		mcp.WithResourceDescription("Issues you recently logged time against through this server"),
		mcp.WithMIMEType(jsonMIME),
	)
}

func (h *ResourceHandler) HandleRecentIssues(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	issues, err := h.svc.RecentIssues(ctx, recentIssueLimit)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, map[string]any{"issues": issues})
}

// MonthlyWorklogsTemplate describes the per-month worklog resource.
func (h *ResourceHandler) MonthlyWorklogsTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(MonthlyWorklogsURITmpl, "Monthly Worklogs",
		mcp.WithTemplateDescription("Your worklogs for a month, addressed as YYYY-MM"),
		mcp.WithTemplateMIMEType(jsonMIME),
	)
}

func (h *ResourceHandler) HandleMonthlyWorklogs(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	month := strings.TrimPrefix(req.Params.URI, MonthlyWorklogsPrefix)
	if month == req.Params.URI || month == "" {
		return nil, fmt.Errorf("unknown resource: %s", req.Params.URI)
	}
	list, err := h.svc.MonthWorklogs(ctx, month)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, list)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: jsonMIME, Text: string(raw)},
	}, nil
}
