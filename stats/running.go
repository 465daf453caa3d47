package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Running keeps the count, mean and variance of a stream of values in one
// pass, using Welford's algorithm, along with its extremes.
type Running struct {
	n    uint64
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (r *Running) Push(val float64) {
	r.n++
	if r.n == 1 {
		r.mean, r.m2 = val, 0
		r.min, r.max = val, val
		return
	}
	delta := val - r.mean
	r.mean += delta / float64(r.n)
	r.m2 += delta * (val - r.mean)
	r.min = math.Min(r.min, val)
	r.max = math.Max(r.max, val)
}

func (r *Running) N() uint64 {
	return r.n
}

func (r *Running) Mean() float64 {
	return r.mean
}

// Variance is the sample variance; it is 0 with fewer than two values.
func (r *Running) Variance() float64 {
	if r.n <= 1 {
		return 0
	}
	return r.m2 / float64(r.n-1)
}

func (r *Running) Stdev() float64 {
	return math.Sqrt(r.Variance())
}

// StandardError returns the standard error of the mean.
func (r *Running) StandardError() float64 {
	if r.n == 0 {
		return 0
	}
	return math.Sqrt(r.Variance() / float64(r.n))
}

func (r *Running) Min() float64 {
	return r.min
}

func (r *Running) Max() float64 {
	return r.max
}
