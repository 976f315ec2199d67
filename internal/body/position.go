package body

import (
	"fmt"
	"math"
)

// Position is a point in the system's frame. The star sits at Origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Origin is the star's position.
var Origin = Position{}

func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

func (p Position) Subtract(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Distance returns the Euclidean distance between p and other.
func (p Position) Distance(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equal compares both coordinates exactly, without tolerance.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}
