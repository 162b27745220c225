// Package lookahead finds the pure pursuit goal point: where a circle of fixed radius around the
// vehicle crosses the path ahead of the progress made so far.
package lookahead

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/utils"
)

// ErrNoLookaheadPoint is returned when the lookahead circle does not reach the path ahead.
var ErrNoLookaheadPoint = errors.New("no lookahead point on the path")

// Goal is the point the vehicle steers towards.
type Goal struct {
	Point geometry.Point
	// Arclength is the distance along the path from its start to Point.
	Arclength float64
	// Segment is the index of the segment holding Point.
	Segment int
	// EndOfPath is set when no intersection was found and the path terminal was used instead.
	EndOfPath bool
}

// Solver tracks progress along one path and computes goal points. It is not safe for concurrent
// use; the tracker serializes access.
type Solver struct {
	kernel geometry.Kernel
	radius float64

	path       path.Path
	arclengths []float64

	progressSegment int
	progress        float64
	lastGoal        Goal
	hasGoal         bool
}

// NewSolver returns a solver using a lookahead circle of the given radius.
func NewSolver(kernel geometry.Kernel, radius float64) (*Solver, error) {
	if err := kernel.CheckCircle(geometry.NewCircle(geometry.Point{}, radius)); err != nil {
		return nil, errors.Wrap(err, "invalid lookahead radius")
	}
	return &Solver{kernel: kernel, radius: radius}, nil
}

// Radius returns the lookahead radius.
func (s *Solver) Radius() float64 {
	return s.radius
}

// Reset binds a preprocessed path and forgets all progress.
func (s *Solver) Reset(p path.Path) {
	s.path = p
	s.arclengths = p.Arclengths()
	s.progressSegment = 0
	s.progress = 0
	s.lastGoal = Goal{}
	s.hasGoal = false
}

// Progress returns the arclength of the vehicle's projection onto the path. It never decreases
// between resets.
func (s *Solver) Progress() float64 {
	return s.progress
}

// Remaining returns the path length left beyond the current progress.
func (s *Solver) Remaining() float64 {
	return math.Max(0, s.path.Length()-s.progress)
}

// Solve updates progress from the vehicle position and returns the goal point.
//
// When the circle only reaches the path behind the previous goal or behind the vehicle, the
// terminal point is used if it lies inside the circle, and the previous goal is held otherwise.
func (s *Solver) Solve(position geometry.Point) (Goal, error) {
	if s.path.IsEmpty() {
		return Goal{}, errors.Wrap(path.ErrEmptyPath, "lookahead solver has no path")
	}
	if !utils.IsFinite(position.X, position.Y) {
		return Goal{}, errors.Wrapf(geometry.ErrDegenerateGeometry, "vehicle position %v is not finite", position)
	}
	s.project(position)

	circle := geometry.NewCircle(position, s.radius)
	goal, found, behind, err := s.walk(circle)
	if err != nil {
		return Goal{}, err
	}
	if !found {
		if goal, err = s.fallback(circle, position, behind); err != nil {
			return Goal{}, err
		}
	}

	s.lastGoal = goal
	s.hasGoal = true
	return goal, nil
}

// fallback picks the goal when no intersection lies ahead: the terminal point if the circle
// covers it, else the held goal when every hit was behind.
func (s *Solver) fallback(circle geometry.Circle, position geometry.Point, behind bool) (Goal, error) {
	atEnd, err := s.kernel.Contains(circle, s.path.Terminal())
	if err != nil {
		return Goal{}, err
	}
	switch {
	case atEnd:
		return Goal{
			Point:     s.path.Terminal(),
			Arclength: s.path.Length(),
			Segment:   len(s.path.Segments) - 1,
			EndOfPath: true,
		}, nil
	case behind && s.hasGoal:
		return s.lastGoal, nil
	default:
		return Goal{}, errors.Wrapf(ErrNoLookaheadPoint, "position %v, progress %.3f of %.3f",
			position, s.progress, s.path.Length())
	}
}

// project moves progress to the closest point of the path within reach of the previous progress.
// Segments starting further than twice the radius ahead are not considered, so a path that folds
// back near the vehicle does not make progress jump.
func (s *Solver) project(position geometry.Point) {
	horizon := s.progress + 2*s.radius
	best := math.Inf(1)
	bestSegment, bestArclength := s.progressSegment, s.progress
	for i := s.progressSegment; i < len(s.path.Segments) && s.arclengths[i] <= horizon; i++ {
		closest, t := s.kernel.ClosestPoint(s.path.Segments[i], position)
		if d := geometry.Distance(closest, position); d < best {
			best = d
			bestSegment, bestArclength = i, s.arclengths[i]+t
		}
	}
	if bestArclength > s.progress {
		s.progressSegment, s.progress = bestSegment, bestArclength
	}
}

// walk returns the furthest intersection of the first run of consecutive segments that reach the
// circle, starting at the progress segment. Intersections behind the previous goal or the progress
// point are skipped; behind reports whether any were.
func (s *Solver) walk(circle geometry.Circle) (goal Goal, found, behind bool, err error) {
	floor := s.progress - s.kernel.Epsilon
	if s.hasGoal {
		floor = math.Max(floor, s.lastGoal.Arclength-s.kernel.Epsilon)
	}

	for i := s.progressSegment; i < len(s.path.Segments); i++ {
		seg := s.path.Segments[i]
		hits, err := s.kernel.Intersections(circle, seg)
		if err != nil {
			return Goal{}, false, false, errors.Wrapf(err, "intersecting segment %d", i)
		}
		if len(hits) == 0 {
			if !found {
				continue
			}
			startIn, err := s.kernel.Contains(circle, seg.Start)
			if err != nil {
				return Goal{}, false, false, err
			}
			endIn, err := s.kernel.Contains(circle, seg.End)
			if err != nil {
				return Goal{}, false, false, err
			}
			// A segment wholly inside the circle keeps the run going.
			if !(startIn && endIn) {
				break
			}
			continue
		}
		// Hits are ordered from the segment start, so the last one is closest to the far end.
		for j := len(hits) - 1; j >= 0; j-- {
			arclength := s.arclengths[i] + hits[j].T
			if arclength < floor {
				behind = true
				continue
			}
			if !found || arclength >= goal.Arclength {
				goal = Goal{Point: hits[j].Point, Arclength: arclength, Segment: i}
				found = true
			}
			break
		}
	}
	return goal, found, behind, nil
}
