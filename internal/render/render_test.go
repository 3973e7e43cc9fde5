package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tender-barbarian/go-symlens/internal/resolver"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

func newFixture() (*symtab.SourceFile, map[int]*symtab.Type) {
	mod := symtab.NewModule("test", symtab.MachineX86)
	sf := mod.AddSource("main.c")
	types := map[int]*symtab.Type{}
	add := func(n int, name string, body symtab.Body) {
		types[n] = sf.AddType(n, name, body)
	}
	add(1, "int", symtab.Numeric{BitSize: 32, Signed: true})
	add(2, "myint", symtab.Relation{Target: sf.Ref(1)})
	add(3, "myint2", symtab.Relation{Target: sf.Ref(2)})
	add(4, "", symtab.Relation{Target: sf.Ref(1), Pointer: true})
	add(5, "pair", symtab.Structure{Size: 8, Members: []symtab.StructMember{
		{Name: "a", BitOffset: 0, BitSize: 32, Type: sf.Ref(1)},
		{Name: "b", BitOffset: 32, BitSize: 32, Type: sf.Ref(1)},
	}})
	add(6, "", symtab.Relation{Target: sf.Ref(1), Array: symtab.ArrayBounds{Maximum: 9}})
	add(7, "", symtab.Relation{Target: sf.Ref(1), Array: symtab.ArrayBounds{Minimum: 2, Maximum: 4}})
	add(8, "", symtab.Relation{Target: sf.Ref(1), Array: symtab.ArrayBounds{Maximum: 3}, Pointer: true})
	add(9, "void", symtab.Relation{Target: sf.Ref(9)})
	add(10, "", symtab.Relation{Target: sf.Ref(99)})
	add(11, "color", symtab.Enumeration{Members: []symtab.EnumMember{{Name: "RED"}, {Name: "GREEN", Value: 1}}})
	add(12, "handler", symtab.FunctionPointer{Size: 4})
	add(13, "", symtab.Enumeration{})
	add(14, " ", symtab.Numeric{BitSize: 8})
	add(15, "", symtab.Relation{Target: sf.Ref(15)})
	add(16, "double", symtab.Numeric{BitSize: 64, Float: true})
	add(17, "uchar", symtab.Numeric{BitSize: 8})
	add(18, "", symtab.Relation{Target: symtab.TypeRef{Number: symtab.VoidNumber}, Pointer: true})
	return sf, types
}

func TestTypeName(t *testing.T) {
	_, types := newFixture()
	r := New(resolver.New())

	tests := []struct {
		name     string
		typ      *symtab.Type
		expected string
	}{
		{"numeric", types[1], "int"},
		{"named alias", types[2], "myint"},
		{"pointer", types[4], "int*"},
		{"structure", types[5], "struct pair"},
		{"array", types[6], "int[10]"},
		{"array with minimum", types[7], "int[2:5]"},
		{"pointer array", types[8], "int[4]*"},
		{"named self relation", types[9], "void"},
		{"unnamed self relation", types[15], "void"},
		{"dangling", types[10], "DANGLING RELATION main.c, 99"},
		{"enumeration", types[11], "color"},
		{"unnamed enumeration", types[13], UnnamedEnum},
		{"blank numeric", types[14], UnnamedNumeric},
		{"function pointer", types[12], FunctionPointer},
		{"void sentinel", symtab.VoidType, "void"},
		{"void pointer", types[18], "void*"},
		{"nil", nil, UnknownType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.TypeNameString(tc.typ))
		})
	}
}

func TestTypeNameCycle(t *testing.T) {
	sf, _ := newFixture()
	a := sf.AddType(60, "", symtab.Relation{Target: sf.Ref(61)})
	sf.AddType(61, "", symtab.Relation{Target: sf.Ref(60)})

	assert.Equal(t, Cyclical, New(resolver.New()).TypeNameString(a))
}

func TestDescribe(t *testing.T) {
	_, types := newFixture()
	r := New(resolver.New())

	tests := []struct {
		name     string
		typ      *symtab.Type
		depth    int
		expected string
	}{
		{"depth zero renders name", types[5], 0, "struct pair"},
		{"signed numeric", types[1], 1, "Int32"},
		{"unsigned numeric", types[17], 1, "UInt8"},
		{"float", types[16], 1, "64 bit floating point number"},
		{"alias chain keeps depth", types[3], 1, "Int32"},
		{"pointer", types[4], 1, "*int"},
		{"array", types[6], 1, "int[10]"},
		{"array with minimum", types[7], 1, "int[2:5]"},
		{"self relation", types[9], 1, "void type."},
		{"function pointer", types[12], 1, "(*)()"},
		{"dangling", types[10], 1, "DANGLING RELATION main.c, 99\n"},
		{
			"enumeration", types[11], 1,
			"enum {\n" +
				"  RED               =  0\n" +
				"  GREEN             =  1\n" +
				"}",
		},
		{
			"structure", types[5], 1,
			"struct {\n" +
				"  +0x000  a                : int\n" +
				"  +0x004  b                : int\n" +
				"}\nType Size: 8 Bytes.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Describe(&buf, tc.typ, 0, tc.depth))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestDescribeNestedStructure(t *testing.T) {
	sf, _ := newFixture()
	outer := sf.AddType(40, "outer", symtab.Structure{Size: 12, Members: []symtab.StructMember{
		{Name: "p", BitOffset: 0, BitSize: 64, Type: sf.Ref(5)},
		{Name: "flag", BitOffset: 65, BitSize: 1, Type: sf.Ref(17)},
	}})
	var buf bytes.Buffer

	require.NoError(t, New(resolver.New()).Describe(&buf, outer, 0, 3))

	expected := "struct {\n" +
		"  +0x000  p                : struct {\n" +
		"    +0x000  a                : Int32\n" +
		"    +0x004  b                : Int32\n" +
		"  }\n" +
		"  +0x008  flag:1           : UInt8\n" +
		"}\nType Size: 12 Bytes."
	assert.Equal(t, expected, buf.String())
}

func TestDescribeDanglingMemberContinues(t *testing.T) {
	sf, _ := newFixture()
	st := sf.AddType(40, "s", symtab.Structure{Size: 8, Members: []symtab.StructMember{
		{Name: "x", BitOffset: 0, BitSize: 32, Type: sf.Ref(99)},
		{Name: "y", BitOffset: 32, BitSize: 32, Type: sf.Ref(1)},
	}})
	var buf bytes.Buffer

	require.NoError(t, New(resolver.New()).Describe(&buf, st, 0, 1))

	expected := "struct {\n" +
		"  +0x000  x                : DANGLING REFERENCE main.c, 99\n" +
		"  +0x004  y                : int\n" +
		"}\nType Size: 8 Bytes."
	assert.Equal(t, expected, buf.String())
}

func TestDescribeAliasCycleTerminates(t *testing.T) {
	sf, _ := newFixture()
	a := sf.AddType(60, "a", symtab.Relation{Target: sf.Ref(61)})
	sf.AddType(61, "b", symtab.Relation{Target: sf.Ref(60)})
	var buf bytes.Buffer

	require.NoError(t, New(resolver.New()).Describe(&buf, a, 0, 5))
	assert.Contains(t, buf.String(), "Recursive relation loop")
}

func TestFunctionPrototype(t *testing.T) {
	sf, _ := newFixture()

	withParams := sf.AddFunction("main", 0x401000, 0x401100, sf.Ref(1))
	withParams.AddParam("argc", sf.Ref(1), symtab.StackOffset(8))
	withParams.AddParam("argv", sf.Ref(99), symtab.StackOffset(12))

	noParams := sf.AddFunction("tick", 0x10, 0x20, symtab.TypeRef{Number: symtab.VoidNumber})

	tests := []struct {
		name     string
		fn       *symtab.FunctionSymbol
		module   string
		addr     uint64
		expected string
	}{
		{"module and unknown parameter", withParams, "app", 0x401000, "int app!main(int argc, UNKNOWN_TYPE argv); 0x401000"},
		{"no module", noParams, "", 0x10, "void tick(); 0x10"},
	}

	r := New(resolver.New())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.FunctionPrototype(&buf, tc.fn, tc.module, tc.addr))
			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name     string
		loc      symtab.Location
		machine  symtab.MachineType
		expected string
	}{
		{"absolute", symtab.Absolute(0x1000), symtab.MachineX86, "0x00001000"},
		{"negative frame offset", symtab.StackOffset(-8), symtab.MachineX86, "[fp-0x8]"},
		{"positive frame offset", symtab.StackOffset(12), symtab.MachineX86, "[fp+0xc]"},
		{"x86 register", symtab.InRegister(0), symtab.MachineX86, "@eax"},
		{"x64 register", symtab.InRegister(7), symtab.MachineX64, "@rsp"},
		{"arm double register", symtab.InRegister(33), symtab.MachineARM32, "@d1"},
		{"unknown register", symtab.InRegister(500), symtab.MachineX86, "@" + symtab.UnknownRegister},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Location(tc.loc, tc.machine))
		})
	}
}

type failingWriter struct{ writes int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, errors.New("sink closed")
}

func TestPrinterKeepsFirstError(t *testing.T) {
	_, types := newFixture()
	w := &failingWriter{}

	err := New(resolver.New()).Describe(w, types[5], 0, 1)
	require.Error(t, err)
	assert.Equal(t, 1, w.writes)
}

func TestPrinterSpaces(t *testing.T) {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.Spaces(3)
	p.Spaces(-2)
	p.Print("x")
	require.NoError(t, p.Err())
	assert.Equal(t, "   x", sb.String())
}
