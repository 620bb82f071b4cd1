// Package dfrstat turns a per-iteration histogram into decoding failure
// rates with exact binomial confidence intervals, in log2.
package dfrstat

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
)

// DefaultAlpha is the default significance of the intervals.
const DefaultAlpha = 0.01

// Point is the failure rate of a decoder stopped after Iter iterations:
// Failures of the Tests trials were not decoded by then.
type Point struct {
	Iter     int
	Failures int64
	Tests    int64
	Log2     float64
	Lower    float64 // log2 of the lower bound
	Upper    float64 // log2 of the upper bound
}

// Curve returns one point per iteration count reached by at least one
// trial, in increasing order. The last point is the failure rate at the
// iteration cap of the run only if some trial needed exactly that many.
func Curve(s harness.Stats, alpha float64) []Point {
	var pts []Point
	failures := s.Failures()
	for it := len(s.Iter) - 1; it >= 0; it-- {
		if s.Iter[it] == 0 {
			continue
		}
		pts = append(pts, NewPoint(it, failures, s.Tests, alpha))
		failures += s.Iter[it]
	}
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts
}

// NewPoint computes the rate and interval of failures out of tests.
func NewPoint(it int, failures, tests int64, alpha float64) Point {
	lo, hi := ClopperPearson(failures, tests, alpha)
	return Point{
		Iter:     it,
		Failures: failures,
		Tests:    tests,
		Log2:     math.Log2(float64(failures) / float64(tests)),
		Lower:    math.Log2(lo),
		Upper:    math.Log2(hi),
	}
}

// Shift adds a log2 density to every rate, giving the contribution of a
// key or error class to the overall failure rate.
func (p Point) Shift(density float64) Point {
	p.Log2 += density
	p.Lower += density
	p.Upper += density
	return p
}

// ClopperPearson is the two-sided exact interval of a binomial proportion
// with k successes out of n at significance alpha.
func ClopperPearson(k, n int64, alpha float64) (lo, hi float64) {
	if n <= 0 || k < 0 || k > n {
		return math.NaN(), math.NaN()
	}
	hi = 1
	if k > 0 {
		lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	if k < n {
		hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return lo, hi
}
