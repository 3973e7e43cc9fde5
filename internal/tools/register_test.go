package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tender-barbarian/go-symlens/internal/session"
)

func TestRegister(t *testing.T) {
	sess, err := session.Open(session.Options{SymbolsPath: fixtureSymbols})
	require.NoError(t, err)

	s := server.NewMCPServer("go-symlens", "test")
	Register(s, sess)

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{
		"list_sources", "find_symbol", "lookup_address", "lookup_source_line",
		"describe_type", "decode_type", "field_info", "function_prototype",
	} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
