// Package tools exposes symbol lookup, type rendering and buffer decoding
// as MCP tools.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tender-barbarian/go-symlens/internal/config"
	"github.com/tender-barbarian/go-symlens/internal/decoder"
	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/render"
	"github.com/tender-barbarian/go-symlens/internal/session"
)

// toolset holds what the handlers share: the session's finder, renderer,
// decoder and config, plus the cursors of resumable searches.
type toolset struct {
	sess    *session.Session
	f       *finder.Finder
	names   *render.Renderer
	dec     *decoder.Decoder
	cfg     config.Config
	cursors *CursorStore
}

func newToolset(sess *session.Session) *toolset {
	return &toolset{
		sess:    sess,
		f:       sess.Finder,
		names:   sess.Renderer,
		dec:     sess.Decoder,
		cfg:     sess.Config,
		cursors: NewCursorStore(defaultMaxCursors),
	}
}

// Register wires all symbol MCP tools to s.
// Each tool delegates to sess for querying the loaded module.
func Register(s *server.MCPServer, sess *session.Session) {
	ts := newToolset(sess)

	s.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("Lists all source files of the module with symbol counts."),
		mcp.WithString("filter", mcp.Description("Optional prefix filter on source path")),
	), withLengthCheck(ts.listSourcesHandler()))

	s.AddTool(mcp.NewTool("find_symbol",
		mcp.WithDescription("Finds the next type, data symbol or function whose name matches a wildcard pattern."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description(`Name pattern; "*" matches any run of characters`)),
		mcp.WithString("cursor", mcp.Description("Cursor from a previous result to continue after it")),
	), withLengthCheck(ts.findSymbolHandler()))

	s.AddTool(mcp.NewTool("lookup_address",
		mcp.WithDescription("Finds the next data symbol at, or function containing, an address."),
		mcp.WithString("address", mcp.Required(), mcp.Description("Address, decimal or 0x-prefixed hex")),
		mcp.WithString("cursor", mcp.Description("Cursor from a previous result to continue after it")),
	), withLengthCheck(ts.lookupAddressHandler()))

	s.AddTool(mcp.NewTool("lookup_source_line",
		mcp.WithDescription("Returns the source file and line number covering an address."),
		mcp.WithString("address", mcp.Required(), mcp.Description("Address, decimal or 0x-prefixed hex")),
	), withLengthCheck(ts.lookupSourceLineHandler()))

	s.AddTool(mcp.NewTool("describe_type",
		mcp.WithDescription("Renders the definition of a type: members, enumerators, arrays and pointers."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Type name")),
		mcp.WithString("source", mcp.Description("Restrict the lookup to one source file")),
		mcp.WithNumber("depth", mcp.Description("How many levels of nested structures to expand")),
	), withLengthCheck(ts.describeTypeHandler()))

	s.AddTool(mcp.NewTool("decode_type",
		mcp.WithDescription("Decodes a memory buffer as a type and renders its values."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Type name")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Buffer contents as hex digits")),
		mcp.WithString("source", mcp.Description("Restrict the lookup to one source file")),
		mcp.WithNumber("depth", mcp.Description("How many levels of structures and arrays to expand")),
	), withLengthCheck(ts.decodeTypeHandler()))

	s.AddTool(mcp.NewTool("field_info",
		mcp.WithDescription("Returns the bit offset and bit size of a structure member."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Structure type name")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Member name")),
		mcp.WithString("source", mcp.Description("Restrict the lookup to one source file")),
	), withLengthCheck(ts.fieldInfoHandler()))

	s.AddTool(mcp.NewTool("function_prototype",
		mcp.WithDescription("Renders the prototype and entry address of a function."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Function name pattern")),
	), withLengthCheck(ts.functionPrototypeHandler()))
}
