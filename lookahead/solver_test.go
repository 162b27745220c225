package lookahead

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/path"
)

func newTestSolver(t *testing.T, radius float64, points ...geometry.Point) *Solver {
	t.Helper()
	k, err := geometry.NewKernel(geometry.DefaultEpsilon)
	test.That(t, err, test.ShouldBeNil)
	s, err := NewSolver(k, radius)
	test.That(t, err, test.ShouldBeNil)
	s.Reset(path.FromPoints(points...))
	return s
}

func lPath() []geometry.Point {
	return []geometry.Point{geometry.NewPoint(0, 0), geometry.NewPoint(10, 0), geometry.NewPoint(10, 10)}
}

func TestNewSolver(t *testing.T) {
	k, err := geometry.NewKernel(geometry.DefaultEpsilon)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewSolver(k, 0)
	test.That(t, errors.Is(err, geometry.ErrDegenerateGeometry), test.ShouldBeTrue)
	_, err = NewSolver(k, math.Inf(1))
	test.That(t, errors.Is(err, geometry.ErrDegenerateGeometry), test.ShouldBeTrue)

	s, err := NewSolver(k, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Radius(), test.ShouldEqual, 2.)
	_, err = s.Solve(geometry.NewPoint(0, 0))
	test.That(t, errors.Is(err, path.ErrEmptyPath), test.ShouldBeTrue)
}

func TestSolveFirstGoal(t *testing.T) {
	s := newTestSolver(t, 3, lPath()...)
	goal, err := s.Solve(geometry.NewPoint(0, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, goal.Point.X, test.ShouldAlmostEqual, 3)
	test.That(t, goal.Point.Y, test.ShouldAlmostEqual, 0)
	test.That(t, goal.Arclength, test.ShouldAlmostEqual, 3)
	test.That(t, goal.Segment, test.ShouldEqual, 0)
	test.That(t, goal.EndOfPath, test.ShouldBeFalse)
	test.That(t, s.Progress(), test.ShouldEqual, 0.)
	test.That(t, s.Remaining(), test.ShouldAlmostEqual, 20)
}

func TestSolveAroundCorner(t *testing.T) {
	s := newTestSolver(t, 3, lPath()...)

	// Near the corner the circle crosses both segments; the one further along wins.
	goal, err := s.Solve(geometry.NewPoint(9, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, goal.Segment, test.ShouldEqual, 1)
	test.That(t, goal.Point.X, test.ShouldAlmostEqual, 10)
	test.That(t, goal.Point.Y, test.ShouldAlmostEqual, math.Sqrt(8))
	test.That(t, goal.Arclength, test.ShouldAlmostEqual, 10+math.Sqrt(8))
	test.That(t, s.Progress(), test.ShouldAlmostEqual, 9)
}

func TestSolveFirstStretchOnly(t *testing.T) {
	// A U-turn whose return leg passes within the circle again must not be picked while the
	// outbound leg still reaches the circle.
	s := newTestSolver(t, 3,
		geometry.NewPoint(0, 0),
		geometry.NewPoint(20, 0),
		geometry.NewPoint(20, 10),
		geometry.NewPoint(0, 2),
	)
	goal, err := s.Solve(geometry.NewPoint(0, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, goal.Segment, test.ShouldEqual, 0)
	test.That(t, goal.Point.X, test.ShouldAlmostEqual, 3)
}

func TestSolveMonotonic(t *testing.T) {
	s := newTestSolver(t, 2, lPath()...)
	positions := []geometry.Point{
		geometry.NewPoint(0, 0),
		geometry.NewPoint(2, 0.5),
		geometry.NewPoint(1, 0.5), // drifted backwards
		geometry.NewPoint(4, -0.5),
		geometry.NewPoint(8, 0),
		geometry.NewPoint(9.5, 1),
		geometry.NewPoint(10, 5),
		geometry.NewPoint(9, 4), // drifted backwards again
		geometry.NewPoint(10, 8),
	}
	lastGoal, lastProgress := -1.0, -1.0
	for _, pos := range positions {
		goal, err := s.Solve(pos)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, goal.Arclength, test.ShouldBeGreaterThanOrEqualTo, lastGoal-geometry.DefaultEpsilon)
		test.That(t, s.Progress(), test.ShouldBeGreaterThanOrEqualTo, lastProgress)
		lastGoal, lastProgress = goal.Arclength, s.Progress()
	}
}

func TestSolveEndOfPath(t *testing.T) {
	s := newTestSolver(t, 3, lPath()...)
	for _, pos := range []geometry.Point{
		geometry.NewPoint(0, 0),
		geometry.NewPoint(5, 0),
		geometry.NewPoint(9, 0),
		geometry.NewPoint(10, 4),
	} {
		goal, err := s.Solve(pos)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, goal.EndOfPath, test.ShouldBeFalse)
	}

	// The only crossing left is behind the vehicle, and the terminal is inside the circle.
	goal, err := s.Solve(geometry.NewPoint(10, 8))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, goal.EndOfPath, test.ShouldBeTrue)
	test.That(t, goal.Point, test.ShouldResemble, geometry.NewPoint(10, 10))
	test.That(t, goal.Arclength, test.ShouldAlmostEqual, 20)
	test.That(t, s.Remaining(), test.ShouldAlmostEqual, 2)
}

func TestSolveHoldsGoalWhenDriftingBack(t *testing.T) {
	s := newTestSolver(t, 2, lPath()...)
	first, err := s.Solve(geometry.NewPoint(2, 0.5))
	test.That(t, err, test.ShouldBeNil)
	held, err := s.Solve(geometry.NewPoint(1, 0.5))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, held, test.ShouldResemble, first)
}

func TestSolveNoLookaheadPoint(t *testing.T) {
	s := newTestSolver(t, 1, lPath()...)
	_, err := s.Solve(geometry.NewPoint(5, 5))
	test.That(t, errors.Is(err, ErrNoLookaheadPoint), test.ShouldBeTrue)

	_, err = s.Solve(geometry.NewPoint(math.NaN(), 0))
	test.That(t, errors.Is(err, geometry.ErrDegenerateGeometry), test.ShouldBeTrue)
}

func TestResetForgetsProgress(t *testing.T) {
	s := newTestSolver(t, 3, lPath()...)
	_, err := s.Solve(geometry.NewPoint(10, 8))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Progress(), test.ShouldBeGreaterThan, 0.)

	s.Reset(path.FromPoints(lPath()...))
	test.That(t, s.Progress(), test.ShouldEqual, 0.)
	goal, err := s.Solve(geometry.NewPoint(0, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, goal.Point.X, test.ShouldAlmostEqual, 3)
}
