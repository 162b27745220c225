package geometry

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/purepursuit/utils"
)

// DefaultEpsilon is the tolerance used when a config does not set one.
const DefaultEpsilon = 1e-6

// ErrDegenerateGeometry is returned when a primitive cannot take part in a computation, such as a
// zero length segment or a zero radius circle.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Intersection is a point where a circle meets a segment. T is the distance from the segment
// start to the point.
type Intersection struct {
	Point Point
	T     float64
}

// Kernel evaluates geometric predicates with a single tolerance, so that e.g. "tangent" and "no
// intersection" are classified the same way everywhere.
type Kernel struct {
	Epsilon float64
}

// NewKernel returns a kernel using eps as its tolerance.
func NewKernel(eps float64) (Kernel, error) {
	if !(eps > 0) || math.IsInf(eps, 0) {
		return Kernel{}, errors.Errorf("geometry epsilon must be a positive finite number, got %v", eps)
	}
	return Kernel{Epsilon: eps}, nil
}

// CheckLine returns ErrDegenerateGeometry if the segment has non-finite coordinates or is no
// longer than the tolerance.
func (k Kernel) CheckLine(l Line) error {
	if !utils.IsFinite(l.Start.X, l.Start.Y, l.End.X, l.End.Y) {
		return errors.Wrapf(ErrDegenerateGeometry, "segment %v has non-finite coordinates", l)
	}
	if l.Length() <= k.Epsilon {
		return errors.Wrapf(ErrDegenerateGeometry, "segment %v has zero length", l)
	}
	return nil
}

// CheckCircle returns ErrDegenerateGeometry if the circle has a non-finite center or a radius no
// larger than the tolerance.
func (k Kernel) CheckCircle(c Circle) error {
	if !utils.IsFinite(c.Center.X, c.Center.Y, c.Radius) {
		return errors.Wrapf(ErrDegenerateGeometry, "circle at %v has non-finite parameters", c.Center)
	}
	if c.Radius <= k.Epsilon {
		return errors.Wrapf(ErrDegenerateGeometry, "circle at %v has radius %v", c.Center, c.Radius)
	}
	return nil
}

// Intersect returns the zero, one or two points where the circle crosses the segment, ordered
// from the segment start to its end.
func (k Kernel) Intersect(c Circle, l Line) ([]Point, error) {
	hits, err := k.Intersections(c, l)
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, len(hits))
	for _, hit := range hits {
		points = append(points, hit.Point)
	}
	return points, nil
}

// Intersections is Intersect but also reports how far along the segment each point lies.
//
// Substituting start + t*u (u the unit direction) into |x - center|^2 = r^2 gives
// t^2 + 2(f.u)t + |f|^2 - r^2 = 0 with f = start - center. Its discriminant is r^2 - d^2 where d
// is the distance from the center to the carrier line, so the classification compares d against
// r: this keeps the tolerance in units of length.
func (k Kernel) Intersections(c Circle, l Line) ([]Intersection, error) {
	if err := k.CheckCircle(c); err != nil {
		return nil, err
	}
	if err := k.CheckLine(l); err != nil {
		return nil, err
	}

	length := l.Length()
	u := l.Direction().Mul(1 / length)
	f := l.Start.Sub(c.Center)

	// Parameter of the foot of the perpendicular from the center, and the distance to it.
	foot := -f.Dot(u)
	dist := math.Abs(f.Cross(u))

	var params []float64
	switch {
	case dist > c.Radius+k.Epsilon:
		return nil, nil
	case math.Abs(dist-c.Radius) <= k.Epsilon:
		params = []float64{foot}
	default:
		halfChord := math.Sqrt(utils.Square(c.Radius) - utils.Square(dist))
		params = []float64{foot - halfChord, foot + halfChord}
	}

	hits := make([]Intersection, 0, len(params))
	for _, t := range params {
		if t < -k.Epsilon || t > length+k.Epsilon {
			continue
		}
		t = utils.Clamp(t, 0, length)
		hits = append(hits, Intersection{Point: l.Start.Add(u.Mul(t)), T: t})
	}
	return hits, nil
}

// Perpendicular returns the unit vector orthogonal to the segment, rotated counterclockwise from
// its direction.
func (k Kernel) Perpendicular(l Line) (Vector, error) {
	if err := k.CheckLine(l); err != nil {
		return Vector{}, err
	}
	return l.Direction().Ortho().Normalize(), nil
}

// Contains reports whether p lies inside or on the circle.
func (k Kernel) Contains(c Circle, p Point) (bool, error) {
	if err := k.CheckCircle(c); err != nil {
		return false, err
	}
	return Distance(c.Center, p) <= c.Radius+k.Epsilon, nil
}

// ClosestPoint returns the point of the segment nearest to p and its distance from the segment
// start. A degenerate segment projects everything onto its start.
func (k Kernel) ClosestPoint(l Line, p Point) (Point, float64) {
	length := l.Length()
	if length <= k.Epsilon {
		return l.Start, 0
	}
	u := l.Direction().Mul(1 / length)
	t := utils.Clamp(p.Sub(l.Start).Dot(u), 0, length)
	return l.Start.Add(u.Mul(t)), t
}

// PointsEqual reports whether two points coincide within the tolerance.
func (k Kernel) PointsEqual(a, b Point) bool {
	return Distance(a, b) <= k.Epsilon
}
