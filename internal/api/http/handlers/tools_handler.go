package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/api/dto"
	"github.com/spec-kit/tempofiller/internal/auth"
	"github.com/spec-kit/tempofiller/internal/events"
	"github.com/spec-kit/tempofiller/internal/mcpserver"
	"github.com/spec-kit/tempofiller/internal/service"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// ToolsHandler runs the MCP tools over plain HTTP.
type ToolsHandler struct {
	tools  map[string]mcpserver.Tool
	names  []string
	logger *zap.Logger
}

// NewToolsHandler constructs handler.
func NewToolsHandler(tools []mcpserver.Tool, logger *zap.Logger) *ToolsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ToolsHandler{tools: make(map[string]mcpserver.Tool, len(tools)), logger: logger}
	for _, tool := range tools {
		name := tool.Definition().Name
		h.tools[name] = tool
		h.names = append(h.names, name)
	}
	return h
}

// List handles GET /api/tools.
func (h *ToolsHandler) List(c *fiber.Ctx) error {
	resp := dto.ToolListResponse{Tools: make([]dto.ToolDescriptor, 0, len(h.names))}
	for _, name := range h.names {
		resp.Tools = append(resp.Tools, dto.ToolDescriptor{
			Name:        name,
			Description: h.tools[name].Definition().Description,
		})
	}
	return c.JSON(resp)
}

// Call handles POST /api/tools/:name. The body is the tool's JSON arguments.
func (h *ToolsHandler) Call(c *fiber.Ctx) error {
	name := c.Params("name")
	tool, ok := h.tools[name]
	if !ok {
		return errorutil.NewNotFound("tool", name)
	}

	args := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&args); err != nil {
			return errorutil.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
		}
	}

	if principal, ok := auth.PrincipalFromContext(c); ok {
		h.logger.Info("tool call",
			zap.String("tool", name),
			zap.String("subject", principal.Subject),
			zap.String("kind", string(principal.SubjectType)))
	}

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	ctx := service.WithSource(c.UserContext(), events.SourceHTTP)
	result, err := tool.Handle(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(dto.ToolCallResponse{
		Tool:    name,
		IsError: result.IsError,
		Text:    resultText(result),
	})
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		switch v := content.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, "\n")
}
