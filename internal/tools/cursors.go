package tools

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
	"github.com/tender-barbarian/go-symlens/internal/finder"
)

// defaultMaxCursors bounds the cursors kept by a CursorStore.
const defaultMaxCursors = 1024

// CursorStore keeps search cursors between tool calls. Clients only ever
// see the opaque token a cursor is stored under. When full, storing a new
// token evicts the least recently used one.
type CursorStore struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

type cursorEntry struct {
	token  string
	cursor finder.Cursor
}

// NewCursorStore creates a store holding at most maxSize cursors. A
// non-positive maxSize selects defaultMaxCursors.
func NewCursorStore(maxSize int) *CursorStore {
	if maxSize <= 0 {
		maxSize = defaultMaxCursors
	}
	return &CursorStore{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the cursor stored under token. An empty token yields the zero
// cursor, which starts a search from the beginning.
func (cs *CursorStore) Get(token string) (finder.Cursor, bool) {
	if token == "" {
		return finder.Cursor{}, true
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	elem, ok := cs.items[token]
	if !ok {
		return finder.Cursor{}, false
	}
	cs.lru.MoveToFront(elem)
	return elem.Value.(*cursorEntry).cursor, true //nolint:errcheck // list only contains *cursorEntry
}

// Put stores c under token, or under a fresh token when token is empty,
// and returns the token used.
func (cs *CursorStore) Put(token string, c finder.Cursor) string {
	if token == "" {
		token = uuid.NewString()
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if elem, ok := cs.items[token]; ok {
		cs.lru.MoveToFront(elem)
		elem.Value.(*cursorEntry).cursor = c //nolint:errcheck // list only contains *cursorEntry
		return token
	}
	for cs.lru.Len() >= cs.maxSize {
		cs.removeElement(cs.lru.Back())
	}
	cs.items[token] = cs.lru.PushFront(&cursorEntry{token: token, cursor: c})
	return token
}

// Delete drops token. A cursor must not be resumed after its search failed.
func (cs *CursorStore) Delete(token string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if elem, ok := cs.items[token]; ok {
		cs.removeElement(elem)
	}
}

// Len returns the number of stored cursors.
func (cs *CursorStore) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lru.Len()
}

func (cs *CursorStore) removeElement(elem *list.Element) {
	cs.lru.Remove(elem)
	delete(cs.items, elem.Value.(*cursorEntry).token) //nolint:errcheck // list only contains *cursorEntry
}
