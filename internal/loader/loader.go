// Package loader reads symbol-table documents in TOML or YAML form and
// builds a symtab.Module from them.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
	"gopkg.in/yaml.v3"
)

// Format selects the document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions other than .toml, .yaml
// and .yml.
var ErrUnknownFormat = errors.New("unknown symbol table format")

// ParseError reports a document that could not be decoded or describes an
// invalid module.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Option configures loading.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger that receives load warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Load reads the symbol table at path.
func Load(path string, opts ...Option) (*symtab.Module, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading symbol table %s: %w", path, err)
	}
	mod, err := Parse(format, path, data, opts...)
	if err != nil {
		return nil, err
	}
	if mod.Name == "" {
		mod.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return mod, nil
}

// Parse decodes data in the given format. source names the document in
// errors.
func Parse(format Format, source string, data []byte, opts ...Option) (*symtab.Module, error) {
	o := options{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}

	var doc document
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, tomlError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnknownFormat)
	}

	b := builder{source: source, logger: o.logger}
	return b.build(&doc)
}

func tomlError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		pe.Line, pe.Column = decodeErr.Position()
	}
	return pe
}

// builder turns a decoded document into a module. Sources are created
// before any reference is bound so types may refer across files.
type builder struct {
	source string
	logger *log.Logger
	mod    *symtab.Module
}

func (b *builder) fail(format string, args ...any) error {
	return &ParseError{Path: b.source, Message: fmt.Sprintf(format, args...)}
}

func (b *builder) build(doc *document) (*symtab.Module, error) {
	machine := symtab.ParseMachine(doc.Machine)
	if doc.Machine != "" && machine == symtab.MachineUnknown {
		return nil, b.fail("unknown machine %q", doc.Machine)
	}
	b.mod = symtab.NewModule(doc.Module, machine)

	for _, sd := range doc.Sources {
		if sd.Path == "" {
			return nil, b.fail("source without path")
		}
		if _, dup := b.mod.Source(sd.Path); dup {
			return nil, b.fail("duplicate source %s", sd.Path)
		}
		b.mod.AddSource(sd.Path)
	}

	for i, sd := range doc.Sources {
		sf := b.mod.Sources[i]
		if err := b.types(sf, sd.Types); err != nil {
			return nil, err
		}
		for _, dd := range sd.Data {
			ref, err := b.ref(sf, dd.Type, dd.TypeFile)
			if err != nil {
				return nil, err
			}
			loc, err := b.location(sf, dd)
			if err != nil {
				return nil, err
			}
			sf.AddData(dd.Name, ref, loc)
		}
		for _, fd := range sd.Functions {
			if err := b.function(sf, fd); err != nil {
				return nil, err
			}
		}
		for _, ld := range sd.Lines {
			if ld.End < ld.Start {
				return nil, b.fail("%s: line %d ends before it starts", sf.Path, ld.Line)
			}
			sf.AddLine(ld.Line, ld.Start, ld.End)
		}
	}
	return b.mod, nil
}

func (b *builder) types(sf *symtab.SourceFile, docs []typeDoc) error {
	seen := make(map[int]bool, len(docs))
	for _, td := range docs {
		if td.Number == symtab.VoidNumber {
			return b.fail("%s: type number %d is reserved for void", sf.Path, symtab.VoidNumber)
		}
		if seen[td.Number] {
			return b.fail("%s: duplicate type number %d", sf.Path, td.Number)
		}
		seen[td.Number] = true

		body, err := b.body(sf, td)
		if err != nil {
			return err
		}
		sf.AddType(td.Number, td.Name, body)
	}
	return nil
}

func (b *builder) body(sf *symtab.SourceFile, td typeDoc) (symtab.Body, error) {
	switch td.Kind {
	case kindNumeric:
		return symtab.Numeric{BitSize: td.Bits, Signed: td.Signed, Float: td.Float}, nil

	case kindEnumeration:
		members := make([]symtab.EnumMember, 0, len(td.Enumerators))
		for _, e := range td.Enumerators {
			members = append(members, symtab.EnumMember{Name: e.Name, Value: e.Value})
		}
		return symtab.Enumeration{Members: members}, nil

	case kindStructure:
		members := make([]symtab.StructMember, 0, len(td.Members))
		for _, m := range td.Members {
			ref, err := b.ref(sf, m.Type, m.TypeFile)
			if err != nil {
				return nil, err
			}
			members = append(members, symtab.StructMember{
				Name:      m.Name,
				BitOffset: m.Offset,
				BitSize:   m.Bits,
				Type:      ref,
			})
		}
		return symtab.Structure{Size: td.Size, Members: members}, nil

	case kindRelation:
		if td.Target == nil {
			return nil, b.fail("%s: relation %d has no target", sf.Path, td.Number)
		}
		ref, err := b.ref(sf, *td.Target, td.TargetFile)
		if err != nil {
			return nil, err
		}
		rel := symtab.Relation{Target: ref, Pointer: td.Pointer, Function: td.Function}
		switch len(td.Array) {
		case 0:
		case 2:
			rel.Array = symtab.ArrayBounds{Minimum: td.Array[0], Maximum: td.Array[1]}
			if !rel.Array.IsArray() {
				b.logger.Printf("%s: type %d: array bounds [%d, %d] are indistinguishable from a scalar",
					sf.Path, td.Number, td.Array[0], td.Array[1])
			}
		default:
			return nil, b.fail("%s: relation %d: array needs [minimum, maximum]", sf.Path, td.Number)
		}
		return rel, nil

	case kindFunctionPointer:
		return symtab.FunctionPointer{Size: td.Size}, nil
	}
	return nil, b.fail("%s: type %d has unknown kind %q", sf.Path, td.Number, td.Kind)
}

// ref binds a type number to a source file. An empty file means sf. Numbers
// that no type carries are kept; they surface as dangling references when
// used.
func (b *builder) ref(sf *symtab.SourceFile, number int, file string) (symtab.TypeRef, error) {
	if number == symtab.VoidNumber {
		return symtab.VoidType.Ref(), nil
	}
	if file == "" {
		return sf.Ref(number), nil
	}
	target, ok := b.mod.Source(file)
	if !ok {
		return symtab.TypeRef{}, b.fail("%s: reference to unknown source %s", sf.Path, file)
	}
	return target.Ref(number), nil
}

func (b *builder) location(sf *symtab.SourceFile, dd dataDoc) (symtab.Location, error) {
	var (
		loc symtab.Location
		set int
	)
	if dd.Address != nil {
		loc = symtab.Absolute(*dd.Address)
		set++
	}
	if dd.FrameOffset != nil {
		loc = symtab.StackOffset(*dd.FrameOffset)
		set++
	}
	if dd.Register != nil {
		loc = symtab.InRegister(*dd.Register)
		set++
	}
	if set != 1 {
		return symtab.Location{}, b.fail("%s: %s needs exactly one of address, frame_offset or register", sf.Path, dd.Name)
	}
	return loc, nil
}

func (b *builder) function(sf *symtab.SourceFile, fd functionDoc) error {
	if fd.End < fd.Start {
		return b.fail("%s: function %s ends before it starts", sf.Path, fd.Name)
	}
	ret, err := b.ref(sf, fd.Returns, fd.ReturnFile)
	if err != nil {
		return err
	}
	fn := sf.AddFunction(fd.Name, fd.Start, fd.End, ret)
	for _, pd := range fd.Params {
		ref, err := b.ref(sf, pd.Type, pd.TypeFile)
		if err != nil {
			return err
		}
		loc, err := b.location(sf, pd)
		if err != nil {
			return err
		}
		fn.AddParam(pd.Name, ref, loc)
	}
	return nil
}
