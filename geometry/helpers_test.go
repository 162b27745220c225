package geometry

import (
	"math"
	"math/rand"
)

const testPlaneWidth = 100.0

func randomPoint(rnd *rand.Rand) Point {
	return NewPoint(rnd.Float64()*testPlaneWidth-testPlaneWidth/2, rnd.Float64()*testPlaneWidth-testPlaneWidth/2)
}

func randomUnitVector(rnd *rand.Rand) Vector {
	angle := rnd.Float64() * 2 * math.Pi
	return Vector{X: math.Cos(angle), Y: math.Sin(angle)}
}

func randomCircle(rnd *rand.Rand) Circle {
	return NewCircle(randomPoint(rnd), 0.5+rnd.Float64()*testPlaneWidth/4)
}

func randomPointInside(rnd *rand.Rand, c Circle) Point {
	return c.Center.Add(randomUnitVector(rnd).Mul(rnd.Float64() * 0.9 * c.Radius))
}

func randomPointOutside(rnd *rand.Rand, c Circle) Point {
	return c.Center.Add(randomUnitVector(rnd).Mul(c.Radius * (1.1 + rnd.Float64()*2)))
}

// randomLineWithoutIntersection returns a segment whose carrier line passes outside the circle.
func randomLineWithoutIntersection(rnd *rand.Rand, c Circle) Line {
	normal := randomUnitVector(rnd)
	foot := c.Center.Add(normal.Mul(c.Radius * (1.1 + rnd.Float64())))
	along := normal.Ortho()
	return NewLine(foot.Add(along.Mul(-rnd.Float64()*testPlaneWidth-1)), foot.Add(along.Mul(rnd.Float64()*testPlaneWidth+1)))
}

// randomLineWithOneIntersection returns a segment that starts inside the circle and ends outside.
func randomLineWithOneIntersection(rnd *rand.Rand, c Circle) Line {
	return NewLine(randomPointInside(rnd, c), randomPointOutside(rnd, c))
}

// randomLineWithTwoIntersections returns a segment that crosses the circle through its interior,
// with both endpoints outside.
func randomLineWithTwoIntersections(rnd *rand.Rand, c Circle) Line {
	through := randomPointInside(rnd, c)
	dir := randomUnitVector(rnd)
	reach := 2*c.Radius + 1 + rnd.Float64()*testPlaneWidth/4
	return NewLine(through.Add(dir.Mul(-reach)), through.Add(dir.Mul(reach)))
}

// randomTangentLine returns a segment touching the circle at exactly one point.
func randomTangentLine(rnd *rand.Rand, c Circle) (Line, Point) {
	normal := randomUnitVector(rnd)
	touch := c.Center.Add(normal.Mul(c.Radius))
	along := normal.Ortho()
	return NewLine(touch.Add(along.Mul(-1-rnd.Float64()*10)), touch.Add(along.Mul(1+rnd.Float64()*10))), touch
}
