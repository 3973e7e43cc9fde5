// Package decoder interprets raw bytes according to a type's layout. Size
// computation and rendering share one traversal: passing a nil buffer
// computes only the number of bytes a type occupies.
package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/tender-barbarian/go-symlens/internal/render"
	"github.com/tender-barbarian/go-symlens/internal/resolver"
	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

var (
	// ErrNotStructure is returned by FieldInfo for non-structure types.
	ErrNotStructure = errors.New("type is not a structure")
	// ErrEmptyFieldName is returned by FieldInfo when no name is given.
	ErrEmptyFieldName = errors.New("empty field name")
	// ErrFieldNotFound is returned by FieldInfo when no member matches.
	ErrFieldNotFound = errors.New("field not found")
	// ErrNumericTooBig is returned when a numeric is wider than 8 bytes.
	ErrNumericTooBig = errors.New("numeric type too big")
)

// Truncated is written in place of a value when the buffer ends early.
const Truncated = "<truncated>"

const (
	maxScalarBytes = 8
	arrayRule      = "---------------------------------------------"
)

// Decoder renders byte buffers as typed values.
type Decoder struct {
	res   *resolver.Resolver
	names *render.Renderer
	order binary.ByteOrder
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithByteOrder sets the byte order of decoded buffers. The default is
// little endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(d *Decoder) {
		if order != nil {
			d.order = order
		}
	}
}

// New creates a Decoder backed by res.
func New(res *resolver.Resolver, opts ...Option) *Decoder {
	d := &Decoder{
		res:   res,
		names: render.New(res),
		order: binary.LittleEndian,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode writes buf interpreted as t and returns the number of bytes t
// occupies. A nil buf skips rendering and only computes the size; w may
// then be nil. depth bounds structure and array expansion; scalar alias
// relations do not consume depth. Failures inside members and elements are
// written inline and do not abort the traversal. Errors are returned only
// when t itself cannot be decoded or w fails.
func (d *Decoder) Decode(w io.Writer, buf []byte, t *symtab.Type, indent, depth int) (uint64, error) {
	if w == nil {
		w = io.Discard
	}
	p := render.NewPrinter(w)
	size, err := d.decode(p, buf, t, indent, depth, 0)
	if err == nil {
		err = p.Err()
	}
	return size, err
}

// Size returns the number of bytes t occupies.
func (d *Decoder) Size(t *symtab.Type) (uint64, error) {
	return d.Decode(nil, nil, t, 0, 0)
}

func (d *Decoder) decode(p *render.Printer, buf []byte, t *symtab.Type, indent, depth, hops int) (uint64, error) {
	if t == nil {
		return 0, resolver.ErrNilType
	}
	next := depth - 1
	if next < 0 {
		next = 0
	}

	switch body := t.Body.(type) {
	case symtab.Numeric:
		return d.numeric(p, buf, body)

	case symtab.Relation:
		return d.relation(p, buf, t, body, indent, depth, next, hops)

	case symtab.Enumeration:
		size := d.res.EnumSize()
		if buf == nil {
			return size, nil
		}
		raw, ok := d.read(buf, size)
		if !ok {
			p.Print(Truncated)
			return size, nil
		}
		value := signExtend(raw, size)
		p.Printf("%d", value)
		for _, m := range body.Members {
			if m.Value == value {
				p.Printf(" %s", m.Name)
				return size, nil
			}
		}
		p.Print(" (no match)")
		return size, nil

	case symtab.Structure:
		if buf == nil {
			return body.Size, nil
		}
		d.structure(p, buf, t, body, indent, depth, next)
		return body.Size, nil

	case symtab.FunctionPointer:
		size := body.Size
		if size > maxScalarBytes {
			size = maxScalarBytes
		}
		if buf == nil {
			return size, nil
		}
		raw, ok := d.read(buf, size)
		if !ok {
			p.Print(Truncated)
			return size, nil
		}
		p.Printf("0x%08x", raw)
		return size, nil
	}

	if buf != nil {
		p.Print("void")
	}
	return 0, nil
}

func (d *Decoder) numeric(p *render.Printer, buf []byte, n symtab.Numeric) (uint64, error) {
	size := resolver.NumericSize(n)
	if buf == nil {
		return size, nil
	}
	if size > maxScalarBytes {
		p.Printf("Error: Numeric type too big: %d bytes!", size)
		return size, ErrNumericTooBig
	}
	raw, ok := d.read(buf, size)
	if !ok {
		p.Print(Truncated)
		return size, nil
	}
	p.Print(formatNumeric(raw, size, n))
	return size, nil
}

func formatNumeric(raw, size uint64, n symtab.Numeric) string {
	switch {
	case n.Float && size == 4:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(raw))), 'g', -1, 32)
	case n.Float && size == 8:
		return strconv.FormatFloat(math.Float64frombits(raw), 'g', -1, 64)
	case n.Signed:
		switch size {
		case 1, 2, 4, 8:
			return strconv.FormatInt(signExtend(raw, size), 10)
		}
		return strconv.FormatInt(int64(raw), 10)
	}
	return fmt.Sprintf("0x%0*x", int(size*2), raw)
}

func (d *Decoder) relation(p *render.Printer, buf []byte, t *symtab.Type, rel symtab.Relation, indent, depth, next, hops int) (uint64, error) {
	target, err := d.res.Lookup(rel.Target)
	if err != nil {
		p.Printf("DANGLING RELATION %s, %d\n", rel.Target.FileName(), rel.Target.Number)
		return 0, &resolver.RefError{Ref: rel.Target, Err: resolver.ErrDanglingRelation}
	}

	switch {
	case target == t:
		if buf != nil {
			p.Print("void")
		}
		return 0, nil

	case rel.IsScalar():
		if hops >= resolver.MaxRelationDepth {
			p.Printf("Recursive relation loop for type: %s, %d", rel.Target.FileName(), rel.Target.Number)
			return 0, &resolver.RefError{Ref: rel.Target, Err: resolver.ErrRecursionLimit}
		}
		return d.decode(p, buf, target, indent, depth, hops+1)

	case rel.Pointer:
		size := d.res.PointerSize()
		if buf == nil {
			return size, nil
		}
		raw, ok := d.read(buf, size)
		if !ok {
			p.Print(Truncated)
			return size, nil
		}
		p.Printf("0x%0*x", int(size*2), raw)
		return size, nil
	}

	if hops >= resolver.MaxRelationDepth {
		p.Printf("Recursive relation loop for type: %s, %d", rel.Target.FileName(), rel.Target.Number)
		return 0, &resolver.RefError{Ref: rel.Target, Err: resolver.ErrRecursionLimit}
	}
	count := rel.Array.Count()
	elem, err := d.decode(render.NewPrinter(io.Discard), nil, target, indent+2, next, hops+1)
	if err != nil {
		return 0, err
	}
	size, ok := resolver.ArraySize(elem, count)
	if !ok {
		p.Printf("Array too large for type: %s, %d", t.Ref().FileName(), t.Number)
		return 0, &resolver.RefError{Ref: t.Ref(), Err: resolver.ErrSizeOverflow}
	}
	if buf == nil {
		return size, nil
	}

	_ = d.names.TypeName(p, t)
	if depth <= 1 {
		return size, nil
	}

	// Zero-size elements all render the same bytes, so only the first is
	// shown.
	shown := count
	if elem == 0 {
		shown = min(count, 1)
	}
	indent += 2
	var total uint64
	for k := uint64(0); k < shown; k++ {
		if elem > 0 && total >= uint64(len(buf)) {
			p.Print("\n")
			p.Spaces(indent)
			p.Print(Truncated)
			return size, nil
		}
		p.Print("\n")
		p.Spaces(indent)
		p.Printf("[%d] %s\n", rel.Array.Minimum+int64(k), arrayRule)
		p.Spaces(indent + 2)
		n, _ := d.decode(p, tail(buf, total), target, indent+2, next, 0)
		total += n
	}
	if shown < count {
		p.Print("\n")
		p.Spaces(indent)
		p.Printf("... %d more zero-size elements", count-shown)
	}
	return total, nil
}

func (d *Decoder) structure(p *render.Printer, buf []byte, t *symtab.Type, st symtab.Structure, indent, depth, next int) {
	_ = d.names.TypeName(p, t)
	if depth == 0 {
		return
	}

	indent += 2
	for _, m := range st.Members {
		p.Print("\n")
		p.Spaces(indent)
		render.WriteMemberHeader(p, m)
		memberType, err := d.res.Lookup(m.Type)
		if err != nil {
			p.Printf("DANGLING REFERENCE %s, %d\n", m.Type.FileName(), m.Type.Number)
			continue
		}
		field := tail(buf, uint64(m.BitOffset/8))
		if d.bitfield(p, field, m, memberType) {
			continue
		}
		_, _ = d.decode(p, field, memberType, indent, next, 0)
	}
}

// bitfield renders m when it is a numeric bitfield and reports whether it
// did so.
func (d *Decoder) bitfield(p *render.Printer, buf []byte, m symtab.StructMember, memberType *symtab.Type) bool {
	resolved, err := d.res.Resolve(memberType)
	if err != nil {
		return false
	}
	n, ok := resolved.Body.(symtab.Numeric)
	if !ok || n.Float || m.BitSize == 0 {
		return false
	}
	shift := uint64(m.BitOffset % 8)
	if shift == 0 && uint64(m.BitSize) >= uint64(n.BitSize) {
		return false
	}
	width := (shift + uint64(m.BitSize) + 7) / 8
	if width > maxScalarBytes {
		return false
	}
	raw, ok := d.read(buf, width)
	if !ok {
		p.Print(Truncated)
		return true
	}
	if d.order == binary.BigEndian {
		shift = width*8 - shift - uint64(m.BitSize)
	}
	value := (raw >> shift) & (uint64(1)<<m.BitSize - 1)
	if n.Signed && value&(uint64(1)<<(m.BitSize-1)) != 0 {
		value |= ^(uint64(1)<<m.BitSize - 1)
		p.Printf("%d", int64(value))
		return true
	}
	if n.Signed {
		p.Printf("%d", value)
		return true
	}
	p.Printf("0x%x", value)
	return true
}

// read returns the first n bytes of buf as an unsigned integer in the
// decoder's byte order.
func (d *Decoder) read(buf []byte, n uint64) (uint64, bool) {
	if n > maxScalarBytes || uint64(len(buf)) < n {
		return 0, false
	}
	var scratch [maxScalarBytes]byte
	if d.order == binary.BigEndian {
		copy(scratch[maxScalarBytes-n:], buf[:n])
	} else {
		copy(scratch[:n], buf[:n])
	}
	return d.order.Uint64(scratch[:]), true
}

func signExtend(raw, size uint64) int64 {
	if size == 0 || size >= 8 {
		return int64(raw)
	}
	shift := 64 - size*8
	return int64(raw<<shift) >> shift
}

// tail returns buf from off onwards. An offset past the end yields an empty
// slice that is still non-nil so rendering continues in truncated form.
func tail(buf []byte, off uint64) []byte {
	if off >= uint64(len(buf)) {
		return buf[len(buf):]
	}
	return buf[off:]
}

// FieldInfo returns the bit offset and bit size of the first member of t
// whose name agrees with name over the first n bytes. Scalar aliases of a
// structure are resolved first.
func (d *Decoder) FieldInfo(t *symtab.Type, name string, n int) (bitOffset, bitSize uint32, err error) {
	if n <= 0 || name == "" {
		return 0, 0, ErrEmptyFieldName
	}
	if t == nil {
		return 0, 0, ErrNotStructure
	}
	resolved, err := d.res.Resolve(t)
	if err != nil {
		return 0, 0, fmt.Errorf("resolving %s: %w", t.Name, err)
	}
	st, ok := resolved.Body.(symtab.Structure)
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", t.Name, ErrNotStructure)
	}
	want := prefix(name, n)
	for _, m := range st.Members {
		if prefix(m.Name, n) == want {
			return m.BitOffset, m.BitSize, nil
		}
	}
	return 0, 0, fmt.Errorf("%s.%s: %w", t.Name, want, ErrFieldNotFound)
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
