package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/session"
)

// describeTypeHandler returns a handler for the describe_type tool.
// It renders a type's definition, expanding nested structures up to depth.
func (ts *toolset) describeTypeHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("type")
		if err != nil {
			return nil, err
		}
		t, err := ts.sess.LookupType(name, req.GetString("source", ""))
		if err != nil {
			return nil, err
		}

		var b strings.Builder
		if err := ts.names.Describe(&b, t, 0, req.GetInt("depth", ts.cfg.DescribeDepth)); err != nil {
			return nil, fmt.Errorf("describing %s: %w", name, err)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// decodeResult is the decode_type view of a decoded buffer.
type decodeResult struct {
	Size   uint64 `json:"size"`
	Output string `json:"output"`
}

// decodeTypeHandler returns a handler for the decode_type tool. The buffer
// is passed hex encoded.
func (ts *toolset) decodeTypeHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("type")
		if err != nil {
			return nil, err
		}
		raw, err := req.RequireString("data")
		if err != nil {
			return nil, err
		}
		buf, err := session.ParseHex(raw)
		if err != nil {
			return nil, err
		}
		t, err := ts.sess.LookupType(name, req.GetString("source", ""))
		if err != nil {
			return nil, err
		}

		var b strings.Builder
		size, err := ts.dec.Decode(&b, buf, t, 0, req.GetInt("depth", ts.cfg.DecodeDepth))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return jsonResult(decodeResult{Size: size, Output: b.String()})
	}
}

// fieldInfo is the field_info view of a structure member.
type fieldInfo struct {
	Type      string `json:"type"`
	Field     string `json:"field"`
	BitOffset uint32 `json:"bit_offset"`
	BitSize   uint32 `json:"bit_size"`
}

// fieldInfoHandler returns a handler for the field_info tool.
func (ts *toolset) fieldInfoHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("type")
		if err != nil {
			return nil, err
		}
		field, err := req.RequireString("field")
		if err != nil {
			return nil, err
		}
		t, err := ts.sess.LookupType(name, req.GetString("source", ""))
		if err != nil {
			return nil, err
		}

		offset, size, err := ts.dec.FieldInfo(t, field, len(field))
		if err != nil {
			return nil, err
		}
		return jsonResult(fieldInfo{Type: t.Name, Field: field, BitOffset: offset, BitSize: size})
	}
}

// functionPrototypeHandler returns a handler for the function_prototype
// tool. It renders the first function whose name matches the pattern.
func (ts *toolset) functionPrototypeHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return nil, err
		}
		c, ok := ts.f.FindFunctionByName(name, finder.Cursor{})
		if !ok {
			return nil, fmt.Errorf("function %q: %w", name, finder.ErrNotFound)
		}

		var b strings.Builder
		if err := ts.names.FunctionPrototype(&b, c.Function, ts.f.Module().Name, c.Function.Start); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}
