// Package geometry provides the 2D vector and compass direction math used by
// the track connection engine.
//
// Coordinates use a Y-down plane: a positive rotation angle turns a point
// clockwise on screen.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTolerance is the distance below which two points are treated as equal
// when no other tolerance is given.
const DefaultTolerance = 0.01

// Vec2 represents a 2D point or offset with floating-point coordinates.
type Vec2 struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) r2() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

func fromR2(v r2.Vec) Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return fromR2(r2.Add(v.r2(), other.r2()))
}

// Sub returns v minus other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return fromR2(r2.Sub(v.r2(), other.r2()))
}

// Scale returns the vector scaled by a factor.
func (v Vec2) Scale(factor float64) Vec2 {
	return fromR2(r2.Scale(factor, v.r2()))
}

// Distance returns the Euclidean distance to another point.
func (v Vec2) Distance(other Vec2) float64 {
	return r2.Norm(r2.Sub(other.r2(), v.r2()))
}

// ApproxEqual reports whether the two points are closer than tolerance.
func (v Vec2) ApproxEqual(other Vec2, tolerance float64) bool {
	return v.Distance(other) < tolerance
}

// Rotate rotates point about origin by angleDeg degrees using the standard
// rotation matrix. Positive angles turn clockwise in the Y-down plane.
func Rotate(point, origin Vec2, angleDeg float64) Vec2 {
	return fromR2(r2.Rotate(point.r2(), degToRad(angleDeg), origin.r2()))
}

// RotateAboutOrigin rotates point about (0, 0) by angleDeg degrees.
func RotateAboutOrigin(point Vec2, angleDeg float64) Vec2 {
	return Rotate(point, Vec2{}, angleDeg)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectAround returns the square of half-size radius centered on p.
func RectAround(p Vec2, radius float64) Rect {
	return Rect{X: p.X - radius, Y: p.Y - radius, Width: 2 * radius, Height: 2 * radius}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Vec2) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
