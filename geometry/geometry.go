// Package geometry is the planar geometry kernel used by the path tracker: points, segments,
// circles and poses plus the predicates that operate on them under one shared tolerance.
package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Point is a position in the plane.
type Point = r2.Point

// Vector is a displacement in the plane.
type Vector = r2.Point

// NewPoint returns the point (x, y).
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Line is a directed segment from Start to End.
type Line struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// NewLine returns the segment between two points.
func NewLine(start, end Point) Line {
	return Line{Start: start, End: end}
}

// Direction returns End - Start.
func (l Line) Direction() Vector {
	return l.End.Sub(l.Start)
}

// Length returns the segment length.
func (l Line) Length() float64 {
	return l.Direction().Norm()
}

// PointAt returns the point at distance t from Start along the segment direction.
func (l Line) PointAt(t float64) Point {
	length := l.Length()
	if length == 0 {
		return l.Start
	}
	return l.Start.Add(l.Direction().Mul(t / length))
}

func (l Line) String() string {
	return fmt.Sprintf("[(%.3f, %.3f) -> (%.3f, %.3f)]", l.Start.X, l.Start.Y, l.End.X, l.End.Y)
}

// Circle is a disc boundary with a center and radius.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// NewCircle returns a circle.
func NewCircle(center Point, radius float64) Circle {
	return Circle{Center: center, Radius: radius}
}

// Pose is a planar position and a heading in radians, counterclockwise from +X.
type Pose struct {
	Position Point   `json:"position"`
	Heading  float64 `json:"heading"`
}

// NewPose returns a pose.
func NewPose(x, y, heading float64) Pose {
	return Pose{Position: NewPoint(x, y), Heading: heading}
}

// HeadingVector returns the unit vector the pose faces.
func (p Pose) HeadingVector() Vector {
	return Vector{X: math.Cos(p.Heading), Y: math.Sin(p.Heading)}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1fdeg)", p.Position.X, p.Position.Y, p.Heading*180/math.Pi)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}
