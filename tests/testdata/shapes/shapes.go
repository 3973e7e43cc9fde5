// Package shapes is a fixture for indexer tests.
package shapes

// Color selects a fill.
type Color int32

const (
	Red Color = iota
	Green
	Blue
)

// Point is a position on the grid.
type Point struct {
	X, Y int32
}

// Shape is a linked outline.
type Shape struct {
	Origin  Point
	Kind    Color
	Name    string
	Corners [4]Point
	Next    *Shape
	Tags    []string
	Single  [1]byte
	Flags   uint8
}

// Area returns the scaled area of s.
func (s *Shape) Area(scale float64) float64 { return scale }

// Default is the shape used when none is given.
var Default Shape

// Count counts created shapes.
var Count int

// New creates a named shape.
func New(name string) *Shape {
	Count++
	return &Shape{Name: name}
}

// Split returns a name and an error.
func Split(s string) (string, error) { return s, nil }

// Box holds a value of any type.
type Box[T any] struct {
	Value T
}
