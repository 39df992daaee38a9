package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonResult wraps a response payload as a single JSON text content block.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshaling response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResult reports a tool failure inside the result per the MCP
// convention (IsError=true), so the client model can see and react to it
// instead of receiving a protocol-level failure.
func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	content, merr := json.Marshal(map[string]any{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if merr != nil {
		return nil, merr
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
		IsError: true,
	}, nil
}
