package valueobjects

import (
	"math"

	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// Point is a value object representing 2D coordinates. The same type is
// used for screen-space and canvas-space points; the Viewport converts
// between the two.
type Point struct {
	x float64
	y float64
}

// NewPoint creates a point with validation
func NewPoint(x, y float64) (Point, error) {
	if !isFinite(x) || !isFinite(y) {
		return Point{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Point{x: x, y: y}, nil
}

// MustPoint creates a point, panicking on non-finite input. Intended for
// literals in tests and defaults.
func MustPoint(x, y float64) Point {
	p, err := NewPoint(x, y)
	if err != nil {
		panic(err)
	}
	return p
}

// X returns the X coordinate
func (p Point) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Point) Y() float64 {
	return p.y
}

// Translate moves the point by the given offsets
func (p Point) Translate(dx, dy float64) Point {
	return Point{x: p.x + dx, y: p.y + dy}
}

// Sub returns the component-wise difference p - other
func (p Point) Sub(other Point) (dx, dy float64) {
	return p.x - other.x, p.y - other.y
}

// DistanceTo calculates the Euclidean distance to another point
func (p Point) DistanceTo(other Point) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two points are equal within floating-point tolerance
func (p Point) Equals(other Point) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon && math.Abs(p.y-other.y) < epsilon
}

// Rect is an axis-aligned rectangle in either coordinate space.
type Rect struct {
	minX float64
	minY float64
	maxX float64
	maxY float64
}

// NewRect builds a rectangle from any two corner points, normalizing so
// that min <= max on both axes. Start and end may be in any order.
func NewRect(a, b Point) Rect {
	return Rect{
		minX: math.Min(a.x, b.x),
		minY: math.Min(a.y, b.y),
		maxX: math.Max(a.x, b.x),
		maxY: math.Max(a.y, b.y),
	}
}

// NewRectXYWH builds a rectangle from a top-left origin and dimensions
func NewRectXYWH(x, y, width, height float64) Rect {
	return NewRect(Point{x: x, y: y}, Point{x: x + width, y: y + height})
}

// MinX returns the left edge
func (r Rect) MinX() float64 { return r.minX }

// MinY returns the top edge
func (r Rect) MinY() float64 { return r.minY }

// MaxX returns the right edge
func (r Rect) MaxX() float64 { return r.maxX }

// MaxY returns the bottom edge
func (r Rect) MaxY() float64 { return r.maxY }

// Width returns the rectangle width
func (r Rect) Width() float64 { return r.maxX - r.minX }

// Height returns the rectangle height
func (r Rect) Height() float64 { return r.maxY - r.minY }

// Intersects reports whether two rectangles overlap (standard AABB test)
func (r Rect) Intersects(other Rect) bool {
	return !(r.maxX < other.minX || r.minX > other.maxX ||
		r.maxY < other.minY || r.minY > other.maxY)
}

// Contains reports whether the point lies inside the rectangle
// (inclusive of edges)
func (r Rect) Contains(p Point) bool {
	return p.x >= r.minX && p.x <= r.maxX && p.y >= r.minY && p.y <= r.maxY
}

// MidX returns the horizontal midpoint, used to split a node card into
// its input (left) and output (right) halves
func (r Rect) MidX() float64 {
	return (r.minX + r.maxX) / 2
}

// isFinite checks if a coordinate is a valid finite number
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
