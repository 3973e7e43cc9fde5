package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/session"
)

const fixtureSymbols = "../../tests/testdata/symbols/app.toml"

func newTestToolset(t *testing.T) *toolset {
	t.Helper()
	sess, err := session.Open(session.Options{SymbolsPath: fixtureSymbols})
	require.NoError(t, err)
	return newToolset(sess)
}

func call(handler server.ToolHandlerFunc, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
	return handler(context.Background(), req)
}

func resultText(t *testing.T, resp *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.Content)
	content, ok := resp.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestWithLengthCheck(t *testing.T) {
	handler := withLengthCheck(func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	tests := []struct {
		name        string
		args        map[string]any
		expectedErr bool
	}{
		{
			name:        "short string passes through",
			args:        map[string]any{"q": "hello"},
			expectedErr: false,
		},
		{
			name:        "string at exact limit passes through",
			args:        map[string]any{"q": strings.Repeat("x", maxInputLen)},
			expectedErr: false,
		},
		{
			name:        "string one byte over limit is rejected",
			args:        map[string]any{"q": strings.Repeat("x", maxInputLen+1)},
			expectedErr: true,
		},
		{
			name:        "non-string argument is allowed",
			args:        map[string]any{"n": 42},
			expectedErr: false,
		},
		{
			name:        "nil arguments passes through",
			args:        nil,
			expectedErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(handler, tt.args)
			if tt.expectedErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, "exceeds maximum length")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDescribeCursor(t *testing.T) {
	ts := newTestToolset(t)

	tests := []struct {
		name     string
		pattern  string
		expected symbolInfo
	}{
		{"type", "color", symbolInfo{Kind: finder.ResultType, Name: "color", Source: "main.c", Detail: "enumeration"}},
		{"data", "g_shape", symbolInfo{Kind: finder.ResultData, Name: "g_shape", Source: "main.c", Detail: "struct shape 0x00008000"}},
		{"function", "util_main", symbolInfo{Kind: finder.ResultFunction, Name: "util_main", Source: "util.c", Detail: "void app!util_main(); 0x402000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ts.f.SearchByName(tt.pattern, finder.Cursor{})
			require.True(t, ok)
			assert.Equal(t, tt.expected, ts.describeCursor(c))
		})
	}
}
