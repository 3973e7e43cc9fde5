// Package resolver looks up types by reference, follows relation chains and
// computes type sizes. Every traversal is bounded by MaxRelationDepth so a
// cyclic type graph produced by malformed debug info terminates.
package resolver

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

// MaxRelationDepth bounds the number of relation hops followed by Resolve
// and Size.
const MaxRelationDepth = 50

const (
	defaultPointerSize = 4
	defaultEnumSize    = 4
)

// Resolver navigates a type graph.
type Resolver struct {
	pointerSize uint64
	enumSize    uint64
	diag        io.Writer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPointerSize sets the byte width of pointer relations.
func WithPointerSize(n uint64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.pointerSize = n
		}
	}
}

// WithEnumSize sets the byte width of enumerations.
func WithEnumSize(n uint64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.enumSize = n
		}
	}
}

// WithDiagnostics sets the writer that receives lookup and recursion
// diagnostics. The default discards them.
func WithDiagnostics(w io.Writer) Option {
	return func(r *Resolver) {
		if w != nil {
			r.diag = w
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		pointerSize: defaultPointerSize,
		enumSize:    defaultEnumSize,
		diag:        io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PointerSize returns the configured pointer width in bytes.
func (r *Resolver) PointerSize() uint64 { return r.pointerSize }

// EnumSize returns the configured enumeration width in bytes.
func (r *Resolver) EnumSize() uint64 { return r.enumSize }

func (r *Resolver) report(format string, args ...any) {
	fmt.Fprintf(r.diag, format+"\n", args...)
}

// Lookup returns the type ref points at. A nil file with number -1 yields
// the void sentinel without scanning.
func (r *Resolver) Lookup(ref symtab.TypeRef) (*symtab.Type, error) {
	if ref.File == nil {
		if ref.Number == symtab.VoidNumber {
			return symtab.VoidType, nil
		}
		err := &RefError{Ref: ref, Err: ErrTypeNotFound}
		r.report("Error: %v", err)
		return nil, err
	}
	for _, t := range ref.File.Types {
		if t.Number == ref.Number {
			return t, nil
		}
	}
	r.report("Error: Failed to look up type %s:%x", ref.File.Path, ref.Number)
	return nil, &RefError{Ref: ref, Err: ErrTypeNotFound}
}

// Resolve follows t's relation chain to the first non-relation type. Void,
// array, pointer and function relations are leaves and are returned as is.
// Non-relation types are returned unchanged.
func (r *Resolver) Resolve(t *symtab.Type) (*symtab.Type, error) {
	return r.resolve(t, 0)
}

func (r *Resolver) resolve(t *symtab.Type, depth int) (*symtab.Type, error) {
	if t == nil {
		return nil, ErrNilType
	}
	rel, ok := t.Body.(symtab.Relation)
	if !ok {
		return t, nil
	}
	target, err := r.Lookup(rel.Target)
	if err != nil {
		r.report("DANGLING RELATION %s, %d", rel.Target.FileName(), rel.Target.Number)
		return nil, &RefError{Ref: rel.Target, Err: ErrDanglingRelation}
	}
	if depth >= MaxRelationDepth {
		r.report("Recursive relation loop for type: %s, %d", rel.Target.FileName(), rel.Target.Number)
		return nil, &RefError{Ref: rel.Target, Err: ErrRecursionLimit}
	}
	if target == t || rel.Array.IsArray() || rel.Pointer || rel.Function {
		return t, nil
	}
	return r.resolve(target, depth+1)
}

// IsSelfRelation reports whether t is a relation whose target is t itself,
// the void encoding used for non-global types.
func IsSelfRelation(t *symtab.Type) bool {
	rel, ok := t.Body.(symtab.Relation)
	if !ok || t.Source == nil {
		return false
	}
	return rel.Target.File == t.Source && rel.Target.Number == t.Number
}

// Size returns the number of bytes t occupies. Void and nil types are 0
// bytes. Dangling relations and relation chains deeper than
// MaxRelationDepth return 0 with an error.
func (r *Resolver) Size(t *symtab.Type) (uint64, error) {
	return r.size(t, 0)
}

func (r *Resolver) size(t *symtab.Type, depth int) (uint64, error) {
	if t == nil {
		return 0, nil
	}
	switch body := t.Body.(type) {
	case symtab.Enumeration:
		return r.enumSize, nil
	case symtab.Numeric:
		return NumericSize(body), nil
	case symtab.Structure:
		return body.Size, nil
	case symtab.FunctionPointer:
		return body.Size, nil
	case symtab.Relation:
		target, err := r.Lookup(body.Target)
		if err != nil {
			return 0, &RefError{Ref: body.Target, Err: ErrDanglingRelation}
		}
		if depth >= MaxRelationDepth {
			r.report("Infinite recursion of type %s (%s, %d) to %s (%s, %d) ...",
				t.Name, sourcePath(t), t.Number, target.Name, sourcePath(target), target.Number)
			return 0, &RefError{Ref: body.Target, Err: ErrRecursionLimit}
		}
		elem := r.pointerSize
		if !body.Pointer {
			if target == t {
				return 0, nil
			}
			inner, err := r.size(target, depth+1)
			if err != nil {
				return 0, err
			}
			elem = inner
		}
		total, ok := ArraySize(elem, body.Array.Count())
		if !ok {
			r.report("Array of type %s (%s, %d) is too large", t.Name, sourcePath(t), t.Number)
			return 0, &RefError{Ref: t.Ref(), Err: ErrSizeOverflow}
		}
		return total, nil
	}
	return 0, nil
}

// ArraySize returns elem * count and reports whether the product fits in
// 64 bits.
func ArraySize(elem, count uint64) (uint64, bool) {
	hi, lo := bits.Mul64(elem, count)
	return lo, hi == 0
}

// NumericSize returns the byte width of a numeric type, rounding partial
// bytes up.
func NumericSize(n symtab.Numeric) uint64 {
	return (uint64(n.BitSize) + 7) / 8
}

func sourcePath(t *symtab.Type) string {
	if t.Source == nil {
		return "(none)"
	}
	return t.Source.Path
}
