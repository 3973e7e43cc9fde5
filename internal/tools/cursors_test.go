package tools

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tender-barbarian/go-symlens/internal/finder"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

func TestCursorStore(t *testing.T) {
	cs := NewCursorStore(0)
	fn := &symtab.FunctionSymbol{Name: "main"}
	c := finder.Cursor{Kind: finder.ResultFunction, Function: fn}

	start, ok := cs.Get("")
	require.True(t, ok, "empty token starts a new search")
	assert.Equal(t, finder.Cursor{}, start)

	token := cs.Put("", c)
	_, err := uuid.Parse(token)
	require.NoError(t, err)

	got, ok := cs.Get(token)
	require.True(t, ok)
	assert.Same(t, fn, got.Function)

	assert.Equal(t, token, cs.Put(token, finder.Cursor{}), "existing token is reused")
	assert.Equal(t, 1, cs.Len())

	cs.Delete(token)
	_, ok = cs.Get(token)
	assert.False(t, ok)
	assert.Zero(t, cs.Len())
}

func TestCursorStoreEvictsLeastRecentlyUsed(t *testing.T) {
	cs := NewCursorStore(2)

	first := cs.Put("", finder.Cursor{Kind: finder.ResultType})
	second := cs.Put("", finder.Cursor{Kind: finder.ResultData})
	_, ok := cs.Get(first)
	require.True(t, ok)

	third := cs.Put("", finder.Cursor{Kind: finder.ResultFunction})
	assert.Equal(t, 2, cs.Len())

	_, ok = cs.Get(second)
	assert.False(t, ok, "the least recently used cursor is evicted")
	got, ok := cs.Get(first)
	require.True(t, ok)
	assert.Equal(t, finder.ResultType, got.Kind)
	_, ok = cs.Get(third)
	assert.True(t, ok)

	cs.Put(first, finder.Cursor{Kind: finder.ResultData})
	assert.Equal(t, 2, cs.Len(), "updating a stored token does not evict")
}

func TestCursorStoreStaysBounded(t *testing.T) {
	cs := NewCursorStore(8)
	for range 100 {
		cs.Put("", finder.Cursor{})
	}
	assert.Equal(t, 8, cs.Len())
}
