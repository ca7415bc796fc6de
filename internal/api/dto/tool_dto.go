package dto

import "time"

// ToolDescriptor describes one callable tool.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolListResponse is returned by GET /api/tools.
type ToolListResponse struct {
	Tools []ToolDescriptor `json:"tools"`
}

// ToolCallResponse wraps the rendered text of a tool call.
// IsError mirrors the MCP result flag; the HTTP status stays 200.
type ToolCallResponse struct {
	Tool    string `json:"tool"`
	IsError bool   `json:"isError"`
	Text    string `json:"text"`
}

// AuthResponse is printed by the token command.
type AuthResponse struct {
	Subject   string    `json:"subject"`
	Kind      string    `json:"kind"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
