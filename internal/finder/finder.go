// Package finder searches a module's symbol tables by name pattern or by
// address. Searches are resumable: the Cursor returned by one call is the
// position the next call continues after.
package finder

import (
	"errors"

	"github.com/tender-barbarian/go-symlens/internal/symtab"
	"github.com/tender-barbarian/go-symlens/internal/wildcard"
)

// ErrNotFound is wrapped by callers that turn a failed search into an error.
var ErrNotFound = errors.New("not found")

// ResultKind tags the entity a Cursor holds.
type ResultKind string

const (
	ResultNone     ResultKind = "none"
	ResultType     ResultKind = "type"
	ResultData     ResultKind = "data"
	ResultFunction ResultKind = "function"
)

// Cursor is both a search result and the resumption point of the next
// search. The zero value starts every search from the beginning. Only the
// field selected by Kind is set.
type Cursor struct {
	Kind     ResultKind
	Type     *symtab.Type
	Data     *symtab.DataSymbol
	Function *symtab.FunctionSymbol
}

// Name returns the name of the entity the cursor holds.
func (c Cursor) Name() string {
	switch c.Kind {
	case ResultType:
		return c.Type.Name
	case ResultData:
		return c.Data.Name
	case ResultFunction:
		return c.Function.Name
	}
	return ""
}

// Source returns the source file owning the entity the cursor holds.
func (c Cursor) Source() *symtab.SourceFile {
	switch c.Kind {
	case ResultType:
		return c.Type.Source
	case ResultData:
		return c.Data.Source
	case ResultFunction:
		return c.Function.Source
	}
	return nil
}

// Finder searches one module.
type Finder struct {
	mod *symtab.Module
}

// New creates a Finder over mod.
func New(mod *symtab.Module) *Finder {
	return &Finder{mod: mod}
}

// Module returns the searched module.
func (f *Finder) Module() *symtab.Module { return f.mod }

// SearchByName finds the next type, data symbol or function whose name
// matches the wildcard query. Kinds are tried in that order starting with
// the kind held by from; a miss falls through to the next kind.
func (f *Finder) SearchByName(query string, from Cursor) (Cursor, bool) {
	kinds := []func(string, Cursor) (Cursor, bool){f.FindType, f.FindDataByName, f.FindFunctionByName}
	switch from.Kind {
	case ResultData:
		kinds = kinds[1:]
	case ResultFunction:
		kinds = kinds[2:]
	}
	for _, find := range kinds {
		if c, ok := find(query, from); ok {
			return c, true
		}
	}
	return Cursor{}, false
}

// SearchByAddress finds the next absolutely located data symbol at addr or
// function containing addr, in that order. Address 0 never matches.
func (f *Finder) SearchByAddress(addr uint64, from Cursor) (Cursor, bool) {
	if addr == 0 {
		return Cursor{}, false
	}
	if from.Kind != ResultFunction {
		if c, ok := f.FindDataByAddress(addr, from); ok {
			return c, true
		}
	}
	return f.FindFunctionByAddress(addr, from)
}

// FindType finds the next type whose name matches query.
func (f *Finder) FindType(query string, from Cursor) (Cursor, bool) {
	var start position
	if from.Kind == ResultType && from.Type != nil {
		start = f.after(from.Type.Source, from.Type.Index)
	}
	t, ok := scan(f.mod, start, func(sf *symtab.SourceFile) []*symtab.Type { return sf.Types },
		func(t *symtab.Type) bool { return wildcard.Match(query, t.Name) })
	if !ok {
		return Cursor{}, false
	}
	return Cursor{Kind: ResultType, Type: t}, true
}

// FindDataByName finds the next data symbol whose name matches query.
func (f *Finder) FindDataByName(query string, from Cursor) (Cursor, bool) {
	return f.findData(from, func(d *symtab.DataSymbol) bool {
		return wildcard.Match(query, d.Name)
	})
}

// FindDataByAddress finds the next data symbol located at the absolute
// address addr. Stack and register symbols never match.
func (f *Finder) FindDataByAddress(addr uint64, from Cursor) (Cursor, bool) {
	return f.findData(from, func(d *symtab.DataSymbol) bool {
		return d.Location.Kind == symtab.LocationAbsolute && d.Location.Address == addr
	})
}

func (f *Finder) findData(from Cursor, match func(*symtab.DataSymbol) bool) (Cursor, bool) {
	var start position
	if from.Kind == ResultData && from.Data != nil {
		start = f.after(from.Data.Source, from.Data.Index)
	}
	d, ok := scan(f.mod, start, func(sf *symtab.SourceFile) []*symtab.DataSymbol { return sf.Data }, match)
	if !ok {
		return Cursor{}, false
	}
	return Cursor{Kind: ResultData, Data: d}, true
}

// FindFunctionByName finds the next function whose name matches query.
func (f *Finder) FindFunctionByName(query string, from Cursor) (Cursor, bool) {
	return f.findFunction(from, func(fn *symtab.FunctionSymbol) bool {
		return wildcard.Match(query, fn.Name)
	})
}

// FindFunctionByAddress finds the next function whose [start, end) range
// contains addr.
func (f *Finder) FindFunctionByAddress(addr uint64, from Cursor) (Cursor, bool) {
	return f.findFunction(from, func(fn *symtab.FunctionSymbol) bool {
		return fn.Contains(addr)
	})
}

func (f *Finder) findFunction(from Cursor, match func(*symtab.FunctionSymbol) bool) (Cursor, bool) {
	var start position
	if from.Kind == ResultFunction && from.Function != nil {
		start = f.after(from.Function.Source, from.Function.Index)
	}
	fn, ok := scan(f.mod, start, func(sf *symtab.SourceFile) []*symtab.FunctionSymbol { return sf.Functions }, match)
	if !ok {
		return Cursor{}, false
	}
	return Cursor{Kind: ResultFunction, Function: fn}, true
}

// SearchAllByName returns every entity whose name matches query, in search
// order.
func (f *Finder) SearchAllByName(query string) []Cursor {
	var results []Cursor
	for c, ok := f.SearchByName(query, Cursor{}); ok; c, ok = f.SearchByName(query, c) {
		results = append(results, c)
	}
	return results
}

// SearchAllByAddress returns every entity matching addr, in search order.
func (f *Finder) SearchAllByAddress(addr uint64) []Cursor {
	var results []Cursor
	for c, ok := f.SearchByAddress(addr, Cursor{}); ok; c, ok = f.SearchByAddress(addr, c) {
		results = append(results, c)
	}
	return results
}

// LookupSourceLine returns the first source line whose range contains addr.
func (f *Finder) LookupSourceLine(addr uint64) (*symtab.SourceLine, bool) {
	return scan(f.mod, position{}, func(sf *symtab.SourceFile) []*symtab.SourceLine { return sf.Lines },
		func(l *symtab.SourceLine) bool { return l.Contains(addr) })
}

// GetSources returns every source file of the module in load order.
func (f *Finder) GetSources() []*symtab.SourceFile {
	return f.mod.Sources
}

// GetSource returns a source file by path.
func (f *Finder) GetSource(path string) (*symtab.SourceFile, bool) {
	return f.mod.Source(path)
}

// FindTypeByName returns the first type named exactly name, optionally
// restricted to one source file.
func (f *Finder) FindTypeByName(name, sourcePath string) (*symtab.Type, bool) {
	for _, sf := range f.mod.Sources {
		if sourcePath != "" && sf.Path != sourcePath {
			continue
		}
		for _, t := range sf.Types {
			if t.Name == name {
				return t, true
			}
		}
	}
	return nil, false
}

// position is a (source file, entity) index pair within a module.
type position struct {
	source int
	entity int
}

// after returns the position following entity index i of sf. Entities that
// do not belong to the searched module restart from the beginning.
func (f *Finder) after(sf *symtab.SourceFile, i int) position {
	if sf == nil || sf.Index < 0 || sf.Index >= len(f.mod.Sources) || f.mod.Sources[sf.Index] != sf {
		return position{}
	}
	return position{source: sf.Index, entity: i + 1}
}

func scan[T any](mod *symtab.Module, start position, items func(*symtab.SourceFile) []T, match func(T) bool) (T, bool) {
	entity := start.entity
	for s := start.source; s < len(mod.Sources); s++ {
		list := items(mod.Sources[s])
		for i := entity; i < len(list); i++ {
			if match(list[i]) {
				return list[i], true
			}
		}
		entity = 0
	}
	var zero T
	return zero, false
}
