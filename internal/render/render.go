// Package render produces human readable type names, structural type
// descriptions and function prototypes from a type graph.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/tender-barbarian/go-symlens/internal/resolver"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

// MemberNameSpace is the column width member and enumerator names are
// padded to.
const MemberNameSpace = 17

// Placeholders rendered in place of names.
const (
	UnnamedEnum     = "(unnamed enum)"
	UnnamedNumeric  = "(unnamed numeric)"
	FunctionPointer = "(Function pointer)"
	UnknownType     = "UNKNOWN_TYPE"
	Cyclical        = "<cyclical>"
)

// Renderer renders types resolved through a Resolver.
type Renderer struct {
	res *resolver.Resolver
}

// New creates a Renderer.
func New(res *resolver.Resolver) *Renderer {
	return &Renderer{res: res}
}

// Resolver returns the resolver backing r.
func (r *Renderer) Resolver() *resolver.Resolver { return r.res }

// TypeName writes t's name with array and pointer decorations.
func (r *Renderer) TypeName(w io.Writer, t *symtab.Type) error {
	p := NewPrinter(w)
	r.typeName(p, t, 0)
	return p.Err()
}

// TypeNameString returns t's rendered name.
func (r *Renderer) TypeNameString(t *symtab.Type) string {
	var sb strings.Builder
	_ = r.TypeName(&sb, t)
	return sb.String()
}

func (r *Renderer) typeName(p *Printer, t *symtab.Type, hops int) {
	if t == nil {
		p.Print(UnknownType)
		return
	}
	switch body := t.Body.(type) {
	case symtab.Structure:
		p.Printf("struct %s", t.Name)
	case symtab.Enumeration:
		p.Print(nameOr(t.Name, UnnamedEnum))
	case symtab.Numeric:
		p.Print(nameOr(t.Name, UnnamedNumeric))
	case symtab.Relation:
		if t.Name != "" {
			p.Print(t.Name)
			return
		}
		if resolver.IsSelfRelation(t) {
			p.Print("void")
			return
		}
		if hops >= resolver.MaxRelationDepth {
			p.Print(Cyclical)
			return
		}
		target, err := r.res.Lookup(body.Target)
		if err != nil {
			p.Printf("DANGLING RELATION %s, %d", body.Target.FileName(), body.Target.Number)
			return
		}
		r.typeName(p, target, hops+1)
		if body.Array.IsArray() {
			writeBounds(p, body.Array)
		}
		if body.Pointer {
			p.Print("*")
		}
	case symtab.FunctionPointer:
		p.Print(FunctionPointer)
	default:
		p.Print(nameOr(t.Name, "void"))
	}
}

// nameOr returns name unless it is empty or the single space some
// producers emit for anonymous types.
func nameOr(name, placeholder string) string {
	if name == "" || name == " " {
		return placeholder
	}
	return name
}

func writeBounds(p *Printer, a symtab.ArrayBounds) {
	if a.Minimum != 0 {
		p.Printf("[%d:%d]", a.Minimum, a.Maximum+1)
		return
	}
	p.Printf("[%d]", a.Maximum+1)
}

// Describe writes a structural description of t. At depth 0 only the name
// is written; each level of structure nesting consumes one unit of depth,
// alias relations consume none. indent is the number of spaces written
// after each newline.
func (r *Renderer) Describe(w io.Writer, t *symtab.Type, indent, depth int) error {
	p := NewPrinter(w)
	r.describe(p, t, indent, depth, 0)
	return p.Err()
}

func (r *Renderer) describe(p *Printer, t *symtab.Type, indent, depth, hops int) {
	if depth <= 0 || t == nil {
		r.typeName(p, t, 0)
		return
	}

	switch body := t.Body.(type) {
	case symtab.Numeric:
		switch {
		case body.Float:
			p.Printf("%d bit floating point number", body.BitSize)
		case body.Signed:
			p.Printf("Int%d", body.BitSize)
		default:
			p.Printf("UInt%d", body.BitSize)
		}

	case symtab.Relation:
		target, err := r.res.Lookup(body.Target)
		if err != nil {
			p.Printf("DANGLING RELATION %s, %d\n", body.Target.FileName(), body.Target.Number)
			return
		}
		switch {
		case target == t:
			p.Print("void type.")
		case body.IsScalar():
			if hops >= resolver.MaxRelationDepth {
				p.Printf("Recursive relation loop for type: %s, %d", body.Target.FileName(), body.Target.Number)
				return
			}
			r.describe(p, target, indent, depth, hops+1)
		default:
			if body.Pointer {
				p.Print("*")
			}
			r.typeName(p, target, 0)
			if body.Array.IsArray() {
				p.Print("[")
				if body.Array.Minimum != 0 {
					p.Printf("%d:", body.Array.Minimum)
				}
				p.Printf("%d]", body.Array.Maximum+1)
			}
		}

	case symtab.Enumeration:
		indent += 2
		p.Print("enum {\n")
		for _, m := range body.Members {
			p.Spaces(indent)
			p.Print(m.Name)
			p.Spaces(MemberNameSpace - len(m.Name))
			p.Printf(" =  %d\n", m.Value)
		}
		indent -= 2
		p.Spaces(indent)
		p.Print("}")

	case symtab.Structure:
		p.Print("struct {\n")
		indent += 2
		for _, m := range body.Members {
			p.Spaces(indent)
			WriteMemberHeader(p, m)
			memberType, err := r.res.Lookup(m.Type)
			if err != nil {
				p.Printf("DANGLING REFERENCE %s, %d\n", m.Type.FileName(), m.Type.Number)
				continue
			}
			r.describe(p, memberType, indent, depth-1, 0)
			p.Print("\n")
		}
		indent -= 2
		p.Spaces(indent)
		p.Print("}")
		if indent == 0 {
			p.Printf("\nType Size: %d Bytes.", body.Size)
		}

	case symtab.FunctionPointer:
		p.Print("(*)()")

	default:
		p.Print("void type.")
	}
}

// WriteMemberHeader writes "+0x<byte>  name[:bit]" padded to the member
// column, followed by ": ".
func WriteMemberHeader(p *Printer, m symtab.StructMember) {
	bytes := m.BitOffset / 8
	remainder := m.BitOffset % 8
	p.Printf("+0x%03x  %s", bytes, m.Name)
	length := len(m.Name)
	if remainder != 0 {
		p.Printf(":%d", remainder)
		length += 2
	}
	p.Spaces(MemberNameSpace - length)
	p.Print(": ")
}

// FunctionPrototype writes "<ret> [module!]name(<type> <name>, ...); 0x<addr>".
// Parameters whose type cannot be found render as UnknownType.
func (r *Renderer) FunctionPrototype(w io.Writer, fn *symtab.FunctionSymbol, module string, addr uint64) error {
	if fn == nil {
		return nil
	}
	p := NewPrinter(w)

	ret, err := r.res.Lookup(fn.ReturnType)
	if err != nil {
		p.Print(UnknownType)
	} else {
		r.typeName(p, ret, 0)
	}
	p.Print(" ")
	if module != "" {
		p.Printf("%s!", module)
	}
	p.Printf("%s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			p.Print(", ")
		}
		pt, err := r.res.Lookup(param.Type)
		if err != nil {
			p.Print(UnknownType)
		} else {
			r.typeName(p, pt, 0)
		}
		p.Printf(" %s", param.Name)
	}
	p.Printf("); 0x%x", addr)
	return p.Err()
}

// Location formats where a data symbol lives on machine m.
func Location(loc symtab.Location, m symtab.MachineType) string {
	switch loc.Kind {
	case symtab.LocationAbsolute:
		return fmt.Sprintf("0x%08x", loc.Address)
	case symtab.LocationStack:
		if loc.Offset < 0 {
			return fmt.Sprintf("[fp-0x%x]", -loc.Offset)
		}
		return fmt.Sprintf("[fp+0x%x]", loc.Offset)
	case symtab.LocationRegister:
		return "@" + symtab.RegisterName(m, loc.Register)
	}
	return "?"
}
