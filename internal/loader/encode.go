package loader

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
	"gopkg.in/yaml.v3"
)

// Encode writes mod as a symbol-table document that Parse reads back.
func Encode(w io.Writer, format Format, mod *symtab.Module) error {
	doc := fromModule(mod)
	switch format {
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding toml: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%s: %w", format, ErrUnknownFormat)
}

func fromModule(mod *symtab.Module) *document {
	doc := &document{Module: mod.Name}
	if mod.Machine != symtab.MachineUnknown {
		doc.Machine = string(mod.Machine)
	}
	for _, sf := range mod.Sources {
		sd := sourceDoc{Path: sf.Path}
		for _, t := range sf.Types {
			sd.Types = append(sd.Types, typeToDoc(sf, t))
		}
		for _, d := range sf.Data {
			sd.Data = append(sd.Data, dataToDoc(sf, d))
		}
		for _, fn := range sf.Functions {
			num, file := refToDoc(sf, fn.ReturnType)
			fd := functionDoc{Name: fn.Name, Start: fn.Start, End: fn.End, Returns: num, ReturnFile: file}
			for _, p := range fn.Params {
				fd.Params = append(fd.Params, dataToDoc(sf, p))
			}
			sd.Functions = append(sd.Functions, fd)
		}
		for _, l := range sf.Lines {
			sd.Lines = append(sd.Lines, lineDoc{Line: l.Line, Start: l.Start, End: l.End})
		}
		doc.Sources = append(doc.Sources, sd)
	}
	return doc
}

// refToDoc returns the number and, for references into another file, the
// file path of ref as seen from sf.
func refToDoc(sf *symtab.SourceFile, ref symtab.TypeRef) (int, string) {
	if ref.File == nil || ref.File == sf {
		return ref.Number, ""
	}
	return ref.Number, ref.File.Path
}

func typeToDoc(sf *symtab.SourceFile, t *symtab.Type) typeDoc {
	td := typeDoc{Number: t.Number, Name: t.Name}
	switch body := t.Body.(type) {
	case symtab.Numeric:
		td.Kind = kindNumeric
		td.Bits, td.Signed, td.Float = body.BitSize, body.Signed, body.Float
	case symtab.Enumeration:
		td.Kind = kindEnumeration
		for _, m := range body.Members {
			td.Enumerators = append(td.Enumerators, enumeratorDoc{Name: m.Name, Value: m.Value})
		}
	case symtab.Structure:
		td.Kind = kindStructure
		td.Size = body.Size
		for _, m := range body.Members {
			num, file := refToDoc(sf, m.Type)
			td.Members = append(td.Members, memberDoc{Name: m.Name, Offset: m.BitOffset, Bits: m.BitSize, Type: num, TypeFile: file})
		}
	case symtab.Relation:
		td.Kind = kindRelation
		num, file := refToDoc(sf, body.Target)
		td.Target, td.TargetFile = &num, file
		if body.Array.IsArray() {
			td.Array = []int64{body.Array.Minimum, body.Array.Maximum}
		}
		td.Pointer, td.Function = body.Pointer, body.Function
	case symtab.FunctionPointer:
		td.Kind = kindFunctionPointer
		td.Size = body.Size
	}
	return td
}

func dataToDoc(sf *symtab.SourceFile, d *symtab.DataSymbol) dataDoc {
	num, file := refToDoc(sf, d.Type)
	dd := dataDoc{Name: d.Name, Type: num, TypeFile: file}
	switch d.Location.Kind {
	case symtab.LocationAbsolute:
		addr := d.Location.Address
		dd.Address = &addr
	case symtab.LocationStack:
		off := d.Location.Offset
		dd.FrameOffset = &off
	case symtab.LocationRegister:
		reg := d.Location.Register
		dd.Register = &reg
	}
	return dd
}
