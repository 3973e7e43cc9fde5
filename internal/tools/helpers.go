package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tender-barbarian/go-symlens/internal/finder"
)

// maxInputLen bounds every string argument of a tool call.
const maxInputLen = 4096

// jsonResult serialises v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// withLengthCheck rejects calls with a string argument longer than
// maxInputLen before they reach next.
func withLengthCheck(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		for key, v := range req.GetArguments() {
			if s, ok := v.(string); ok && len(s) > maxInputLen {
				return nil, fmt.Errorf("argument %q exceeds maximum length of %d bytes", key, maxInputLen)
			}
		}
		return next(ctx, req)
	}
}

// symbolInfo is the JSON view of a search hit.
type symbolInfo struct {
	Kind   finder.ResultKind `json:"kind"`
	Name   string            `json:"name"`
	Source string            `json:"source"`
	Detail string            `json:"detail,omitempty"`
}

// describeCursor returns the JSON view of the entity c holds.
func (ts *toolset) describeCursor(c finder.Cursor) symbolInfo {
	info := symbolInfo{Kind: c.Kind, Name: c.Name(), Detail: ts.sess.Detail(c)}
	if sf := c.Source(); sf != nil {
		info.Source = sf.Path
	}
	return info
}
