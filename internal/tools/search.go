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

// sourceSummary is the list_sources view of a source file.
type sourceSummary struct {
	Path          string `json:"path"`
	TypeCount     int    `json:"type_count"`
	DataCount     int    `json:"data_count"`
	FunctionCount int    `json:"function_count"`
	LineCount     int    `json:"line_count"`
}

// searchResult is returned by the resumable search tools. Cursor is set
// only when Found is true; pass it back to continue after Symbol.
type searchResult struct {
	Found  bool        `json:"found"`
	Cursor string      `json:"cursor,omitempty"`
	Symbol *symbolInfo `json:"symbol,omitempty"`
}

// listSourcesHandler returns a handler for the list_sources tool.
func (ts *toolset) listSourcesHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := req.GetString("filter", "")

		summaries := make([]sourceSummary, 0, len(ts.f.GetSources()))
		for _, sf := range ts.f.GetSources() {
			if filter != "" && !strings.HasPrefix(sf.Path, filter) {
				continue
			}
			summaries = append(summaries, sourceSummary{
				Path:          sf.Path,
				TypeCount:     len(sf.Types),
				DataCount:     len(sf.Data),
				FunctionCount: len(sf.Functions),
				LineCount:     len(sf.Lines),
			})
		}
		return jsonResult(summaries)
	}
}

// findSymbolHandler returns a handler for the find_symbol tool. Each call
// returns the next type, data symbol or function matching the wildcard
// pattern after the given cursor.
func (ts *toolset) findSymbolHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pattern, err := req.RequireString("pattern")
		if err != nil {
			return nil, err
		}
		return ts.resume(req.GetString("cursor", ""), func(from finder.Cursor) (finder.Cursor, bool) {
			return ts.f.SearchByName(pattern, from)
		})
	}
}

// lookupAddressHandler returns a handler for the lookup_address tool. Each
// call returns the next data symbol at, or function containing, address.
func (ts *toolset) lookupAddressHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("address")
		if err != nil {
			return nil, err
		}
		addr, err := session.ParseAddress(raw)
		if err != nil {
			return nil, err
		}
		return ts.resume(req.GetString("cursor", ""), func(from finder.Cursor) (finder.Cursor, bool) {
			return ts.f.SearchByAddress(addr, from)
		})
	}
}

// resume runs search from the cursor stored under token. A hit updates the
// stored cursor; a miss drops it.
func (ts *toolset) resume(token string, search func(finder.Cursor) (finder.Cursor, bool)) (*mcp.CallToolResult, error) {
	from, ok := ts.cursors.Get(token)
	if !ok {
		return nil, fmt.Errorf("cursor %q: %w", token, finder.ErrNotFound)
	}

	c, ok := search(from)
	if !ok {
		if token != "" {
			ts.cursors.Delete(token)
		}
		return jsonResult(searchResult{})
	}
	info := ts.describeCursor(c)
	return jsonResult(searchResult{Found: true, Cursor: ts.cursors.Put(token, c), Symbol: &info})
}

// sourceLine is the lookup_source_line view of a line range.
type sourceLine struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// lookupSourceLineHandler returns a handler for the lookup_source_line tool.
func (ts *toolset) lookupSourceLineHandler() server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("address")
		if err != nil {
			return nil, err
		}
		addr, err := session.ParseAddress(raw)
		if err != nil {
			return nil, err
		}

		line, ok := ts.f.LookupSourceLine(addr)
		if !ok {
			return nil, fmt.Errorf("no source line contains 0x%x: %w", addr, finder.ErrNotFound)
		}
		return jsonResult(sourceLine{
			Source: line.Source.Path,
			Line:   line.Line,
			Start:  fmt.Sprintf("0x%x", line.Start),
			End:    fmt.Sprintf("0x%x", line.End),
		})
	}
}
