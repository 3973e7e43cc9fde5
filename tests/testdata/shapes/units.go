package shapes

// Meters is a distance.
type Meters float64

// Handler is called for every shape.
type Handler func(*Shape) error

// Scale multiplies m by the default factor.
func Scale(m Meters) Meters { return m * 2 }

// Registry maps names to shapes.
var Registry map[string]*Shape
