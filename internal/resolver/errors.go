package resolver

import (
	"errors"
	"fmt"

	"github.com/tender-barbarian/go-symlens/internal/symtab"
)

var (
	// ErrTypeNotFound is returned when no type carries the requested number.
	ErrTypeNotFound = errors.New("type not found")
	// ErrDanglingRelation is returned when a relation's target is missing.
	ErrDanglingRelation = errors.New("dangling relation")
	// ErrRecursionLimit is returned when a relation chain exceeds
	// MaxRelationDepth.
	ErrRecursionLimit = errors.New("relation recursion limit reached")
	// ErrNilType is returned when a nil type is passed to Resolve.
	ErrNilType = errors.New("nil type")
	// ErrSizeOverflow is returned when an array's byte size does not fit
	// in 64 bits.
	ErrSizeOverflow = errors.New("array size overflows")
)

// RefError records the type reference an error was raised for.
type RefError struct {
	Ref symtab.TypeRef
	Err error
}

func (e *RefError) Error() string {
	return fmt.Sprintf("%v: %s:%d", e.Err, e.Ref.FileName(), e.Ref.Number)
}

func (e *RefError) Unwrap() error { return e.Err }
