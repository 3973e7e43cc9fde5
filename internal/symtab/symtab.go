package symtab

import "math"

// Kind classifies the body of a Type.
type Kind int

const (
	KindVoid Kind = iota
	KindNumeric
	KindEnumeration
	KindStructure
	KindRelation
	KindFunctionPointer
)

var kindNames = [...]string{
	KindVoid:            "void",
	KindNumeric:         "numeric",
	KindEnumeration:     "enumeration",
	KindStructure:       "structure",
	KindRelation:        "relation",
	KindFunctionPointer: "function_pointer",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Body is the variant payload of a Type. It is implemented only by the
// types of this package.
type Body interface {
	Kind() Kind
}

// Void is the body of the global void sentinel.
type Void struct{}

// Numeric is an integer or floating point scalar.
type Numeric struct {
	BitSize uint32 `json:"bit_size"`
	Signed  bool   `json:"signed"`
	Float   bool   `json:"float"`
}

// EnumMember is a single named value of an Enumeration.
type EnumMember struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Enumeration is an ordered list of named integer values.
type Enumeration struct {
	Members []EnumMember `json:"members"`
}

// StructMember is a field of a Structure. Offsets and sizes are in bits.
type StructMember struct {
	Name      string  `json:"name"`
	BitOffset uint32  `json:"bit_offset"`
	BitSize   uint32  `json:"bit_size"`
	Type      TypeRef `json:"type"`
}

// Structure is an aggregate with a stored total size in bytes.
type Structure struct {
	Size    uint64         `json:"size"`
	Members []StructMember `json:"members"`
}

// ArrayBounds holds inclusive array index bounds. Minimum == Maximum means
// "not an array", so a true one-element array cannot be expressed.
type ArrayBounds struct {
	Minimum int64 `json:"minimum"`
	Maximum int64 `json:"maximum"`
}

// IsArray reports whether the bounds describe an array dimension.
func (a ArrayBounds) IsArray() bool { return a.Minimum != a.Maximum }

// Count returns the number of elements covered by the bounds: 1 when the
// bounds are not an array, 0 when they are inverted. Bounds spanning the
// whole int64 range saturate at math.MaxUint64.
func (a ArrayBounds) Count() uint64 {
	if !a.IsArray() {
		return 1
	}
	if a.Maximum < a.Minimum {
		return 0
	}
	n := uint64(a.Maximum) - uint64(a.Minimum)
	if n == math.MaxUint64 {
		return n
	}
	return n + 1
}

// Relation defines a type by reference to another one, optionally decorated
// as an array, pointer or function.
type Relation struct {
	Target   TypeRef     `json:"target"`
	Array    ArrayBounds `json:"array"`
	Pointer  bool        `json:"pointer"`
	Function bool        `json:"function"`
}

// IsScalar reports whether the relation is a plain alias of its target.
func (r Relation) IsScalar() bool { return !r.Array.IsArray() && !r.Pointer }

// FunctionPointer is an opaque code pointer with an explicit size.
type FunctionPointer struct {
	Size uint64 `json:"size"`
}

func (Void) Kind() Kind            { return KindVoid }
func (Numeric) Kind() Kind         { return KindNumeric }
func (Enumeration) Kind() Kind     { return KindEnumeration }
func (Structure) Kind() Kind       { return KindStructure }
func (Relation) Kind() Kind        { return KindRelation }
func (FunctionPointer) Kind() Kind { return KindFunctionPointer }

// TypeRef identifies a type by owning source file and type number.
// A nil File with Number -1 refers to the void sentinel.
type TypeRef struct {
	File   *SourceFile `json:"-"`
	Number int         `json:"number"`
}

// IsVoid reports whether the reference names the void sentinel.
func (r TypeRef) IsVoid() bool { return r.File == nil && r.Number == VoidNumber }

// FileName returns the path of the referenced file, or "(none)".
func (r TypeRef) FileName() string {
	if r.File == nil {
		return "(none)"
	}
	return r.File.Path
}

// Type is a node of the type graph.
type Type struct {
	Name   string      `json:"name"`
	Number int         `json:"number"`
	Source *SourceFile `json:"-"`
	Index  int         `json:"-"` // position in Source.Types
	Body   Body        `json:"body"`
}

// Kind returns the kind of the type's body; a nil body is void.
func (t *Type) Kind() Kind {
	if t == nil || t.Body == nil {
		return KindVoid
	}
	return t.Body.Kind()
}

// Ref returns the reference that identifies t.
func (t *Type) Ref() TypeRef { return TypeRef{File: t.Source, Number: t.Number} }

// VoidNumber is the type number of the void sentinel.
const VoidNumber = -1

// VoidType is the void sentinel shared by all modules.
var VoidType = &Type{Name: "void", Number: VoidNumber, Body: Void{}}

// LocationKind classifies where a data symbol lives.
type LocationKind int

const (
	LocationAbsolute LocationKind = iota
	LocationStack
	LocationRegister
)

func (k LocationKind) String() string {
	switch k {
	case LocationAbsolute:
		return "absolute"
	case LocationStack:
		return "stack"
	case LocationRegister:
		return "register"
	}
	return "unknown"
}

// Location is a data symbol placement. Only the field selected by Kind is
// meaningful.
type Location struct {
	Kind     LocationKind `json:"kind"`
	Address  uint64       `json:"address,omitempty"`
	Offset   int64        `json:"offset,omitempty"`
	Register uint32       `json:"register,omitempty"`
}

// DataSymbol is a global, local or parameter variable.
type DataSymbol struct {
	Name     string      `json:"name"`
	Source   *SourceFile `json:"-"`
	Index    int         `json:"-"` // position in Source.Data, -1 for parameters
	Type     TypeRef     `json:"type"`
	Location Location    `json:"location"`
}

// FunctionSymbol is a function covering [Start, End).
type FunctionSymbol struct {
	Name       string        `json:"name"`
	Source     *SourceFile   `json:"-"`
	Index      int           `json:"-"`
	Start      uint64        `json:"start"`
	End        uint64        `json:"end"`
	ReturnType TypeRef       `json:"return_type"`
	Params     []*DataSymbol `json:"params,omitempty"`
}

// Contains reports whether addr lies within the function.
func (f *FunctionSymbol) Contains(addr uint64) bool {
	return addr >= f.Start && addr < f.End
}

// SourceLine maps the half-open interval [Start, End) to a line.
type SourceLine struct {
	Line   int         `json:"line"`
	Source *SourceFile `json:"-"`
	Index  int         `json:"-"`
	Start  uint64      `json:"start"`
	End    uint64      `json:"end"`
}

// Contains reports whether addr lies within the line's range.
func (l *SourceLine) Contains(addr uint64) bool {
	return addr >= l.Start && addr < l.End
}

// SourceFile owns the symbols contributed by one compilation unit.
// Collection order is insertion order and defines search order.
type SourceFile struct {
	Path      string            `json:"path"`
	Module    *Module           `json:"-"`
	Index     int               `json:"-"` // position in Module.Sources
	Types     []*Type           `json:"types"`
	Data      []*DataSymbol     `json:"data"`
	Functions []*FunctionSymbol `json:"functions"`
	Lines     []*SourceLine     `json:"lines"`
}

// Module holds every source file loaded from one binary.
type Module struct {
	Name    string        `json:"name"`
	Machine MachineType   `json:"machine"`
	Sources []*SourceFile `json:"sources"`
}
