package control

import "math"

// averagingFilter is a first order low pass: y = w*x + (1-w)*y_prev. A weight of 0 or 1 passes
// the input through.
type averagingFilter struct {
	weight float64
	last   float64
	primed bool
}

func (f *averagingFilter) Reset() {
	f.last = 0
	f.primed = false
}

func (f *averagingFilter) Next(x float64) float64 {
	if f.weight <= 0 || f.weight >= 1 || !f.primed {
		f.last = x
		f.primed = true
		return x
	}
	f.last = f.weight*x + (1-f.weight)*f.last
	return f.last
}

// deadZone zeroes inputs whose magnitude is below width.
func deadZone(x, width float64) float64 {
	if math.Abs(x) < width {
		return 0
	}
	return x
}
