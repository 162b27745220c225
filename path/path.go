// Package path defines the polyline paths the tracker follows and the preprocessor that cleans
// raw planner output before tracking.
package path

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/purepursuit/geometry"
)

// ErrEmptyPath is returned when a path has no usable segments.
var ErrEmptyPath = errors.New("path has no segments")

// DrivingDirection is the direction the vehicle drives along a path.
type DrivingDirection int

const (
	// Forward drives with the vehicle facing along the path.
	Forward DrivingDirection = iota
	// Backward reverses along the path.
	Backward
)

func (d DrivingDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("DrivingDirection(%d)", int(d))
	}
}

// Sign returns +1 for Forward and -1 for Backward.
func (d DrivingDirection) Sign() float64 {
	if d == Backward {
		return -1
	}
	return 1
}

// MarshalJSON encodes the direction as its name.
func (d DrivingDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "forward" or "backward". An empty string means forward.
func (d *DrivingDirection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "", "forward":
		*d = Forward
	case "backward", "reverse":
		*d = Backward
	default:
		return errors.Errorf("unknown driving direction %q", s)
	}
	return nil
}

// Path is an ordered, connected sequence of segments.
type Path struct {
	Segments  []geometry.Line  `json:"segments"`
	Direction DrivingDirection `json:"direction"`
}

// FromPoints builds a forward path through the given vertices.
func FromPoints(points ...geometry.Point) Path {
	if len(points) < 2 {
		return Path{}
	}
	segments := lo.Map(points[1:], func(end geometry.Point, i int) geometry.Line {
		return geometry.NewLine(points[i], end)
	})
	return Path{Segments: segments}
}

// WithDirection returns a copy of the path driven in the given direction.
func (p Path) WithDirection(d DrivingDirection) Path {
	p.Direction = d
	return p
}

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Points returns the vertices of the path: each segment start followed by the final end point.
func (p Path) Points() []geometry.Point {
	if p.IsEmpty() {
		return nil
	}
	points := lo.Map(p.Segments, func(seg geometry.Line, _ int) geometry.Point {
		return seg.Start
	})
	return append(points, p.Terminal())
}

// Terminal returns the last point of the path.
func (p Path) Terminal() geometry.Point {
	if p.IsEmpty() {
		return geometry.Point{}
	}
	return p.Segments[len(p.Segments)-1].End
}

// Length returns the total arclength.
func (p Path) Length() float64 {
	return floats.Sum(p.segmentLengths())
}

// Arclengths returns len(Segments)+1 values: the arclength at the start of each segment followed
// by the total length.
func (p Path) Arclengths() []float64 {
	cumulative := make([]float64, len(p.Segments)+1)
	floats.CumSum(cumulative[1:], p.segmentLengths())
	return cumulative
}

func (p Path) segmentLengths() []float64 {
	return lo.Map(p.Segments, func(seg geometry.Line, _ int) float64 {
		return seg.Length()
	})
}

// CheckContinuity returns ErrDegenerateGeometry when a segment does not start where the previous
// one ended, within the kernel tolerance.
func (p Path) CheckContinuity(k geometry.Kernel) error {
	for i := 1; i < len(p.Segments); i++ {
		if !k.PointsEqual(p.Segments[i-1].End, p.Segments[i].Start) {
			return errors.Wrapf(geometry.ErrDegenerateGeometry,
				"segment %d starts at %v but segment %d ends at %v", i, p.Segments[i].Start, i-1, p.Segments[i-1].End)
		}
	}
	return nil
}

func (p Path) String() string {
	return fmt.Sprintf("path{%d segments, %.3f long, %s}", len(p.Segments), p.Length(), p.Direction)
}
