package symtab

// The Add methods below are the population step of a module. They set the
// owning back-references and positions that resumable searches rely on and
// must all happen before the module is handed to readers.

// NewModule creates an empty module.
func NewModule(name string, machine MachineType) *Module {
	return &Module{Name: name, Machine: machine}
}

// AddSource appends a new source file to m.
func (m *Module) AddSource(path string) *SourceFile {
	sf := &SourceFile{Path: path, Module: m, Index: len(m.Sources)}
	m.Sources = append(m.Sources, sf)
	return sf
}

// Source returns the first source file with the given path.
func (m *Module) Source(path string) (*SourceFile, bool) {
	for _, sf := range m.Sources {
		if sf.Path == path {
			return sf, true
		}
	}
	return nil, false
}

// Ref returns a reference to type number n of sf.
func (sf *SourceFile) Ref(n int) TypeRef { return TypeRef{File: sf, Number: n} }

// AddType appends a type numbered n with the given name and body.
func (sf *SourceFile) AddType(n int, name string, body Body) *Type {
	t := &Type{Name: name, Number: n, Source: sf, Index: len(sf.Types), Body: body}
	sf.Types = append(sf.Types, t)
	return t
}

// AddData appends a data symbol.
func (sf *SourceFile) AddData(name string, typ TypeRef, loc Location) *DataSymbol {
	d := &DataSymbol{Name: name, Source: sf, Index: len(sf.Data), Type: typ, Location: loc}
	sf.Data = append(sf.Data, d)
	return d
}

// AddFunction appends a function covering [start, end).
func (sf *SourceFile) AddFunction(name string, start, end uint64, ret TypeRef) *FunctionSymbol {
	fn := &FunctionSymbol{
		Name:       name,
		Source:     sf,
		Index:      len(sf.Functions),
		Start:      start,
		End:        end,
		ReturnType: ret,
	}
	sf.Functions = append(sf.Functions, fn)
	return fn
}

// AddLine appends a line range.
func (sf *SourceFile) AddLine(line int, start, end uint64) *SourceLine {
	l := &SourceLine{Line: line, Source: sf, Index: len(sf.Lines), Start: start, End: end}
	sf.Lines = append(sf.Lines, l)
	return l
}

// AddParam appends a parameter. Parameters are owned by the function, not
// by the source file's data collection, so they never appear in searches.
func (f *FunctionSymbol) AddParam(name string, typ TypeRef, loc Location) *DataSymbol {
	p := &DataSymbol{Name: name, Source: f.Source, Index: -1, Type: typ, Location: loc}
	f.Params = append(f.Params, p)
	return p
}

// Absolute returns an absolute address location.
func Absolute(addr uint64) Location { return Location{Kind: LocationAbsolute, Address: addr} }

// StackOffset returns a frame-relative location.
func StackOffset(off int64) Location { return Location{Kind: LocationStack, Offset: off} }

// InRegister returns a register-resident location.
func InRegister(reg uint32) Location { return Location{Kind: LocationRegister, Register: reg} }
