package mdpc

import (
	"fmt"
	"math"
)

// ThresholdModel computes flip thresholds from the syndrome weight S and an
// estimate t of the remaining error weight. Methods are pure functions of
// their arguments.
type ThresholdModel struct {
	r, w int
}

// NewThresholdModel returns the model for p.
func NewThresholdModel(p Params) ThresholdModel {
	return ThresholdModel{r: p.BlockLength, w: p.BlockWeight}
}

func lnbino(n, t int) float64 {
	if t == 0 || n == t {
		return 0
	}
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(t + 1))
	c, _ := math.Lgamma(float64(n - t + 1))
	return a - b - c
}

func xlny(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log(y)
}

func xln1my(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return x * math.Log1p(-y)
}

// lnBinomialPMF is ln P[Bin(n, p) = k].
func lnBinomialPMF(n, k int, p float64) float64 {
	return lnbino(n, k) + xlny(float64(k), p) + xln1my(float64(n-k), p)
}

// logE is the log-probability that an unsatisfied check touches exactly i
// of the t errors.
func (m ThresholdModel) logE(t, i int) float64 {
	return lnbino(Index*m.w, i) + lnbino(Index*(m.r-m.w), t-i) - lnbino(Index*m.r, t)
}

// xVal is E[sum over odd l of (l-1)] normalised; terms decay fast so only
// l < 10 are kept.
func (m ThresholdModel) xVal(t int) float64 {
	var x, denom float64
	for i := 1; i < 10 && i < t; i += 2 {
		e := math.Exp(m.logE(t, i))
		x += float64(i-1) * e
		denom += e
	}
	if denom == 0 {
		return 0
	}
	return x / denom
}

// pc0 is the probability that a check of a correct position is unsatisfied.
func (m ThresholdModel) pc0(S, t int, x float64) float64 {
	return (float64(Index*m.w-1)*float64(S) - x) / float64(Index*m.r-t) / float64(m.w)
}

// pc1 is the probability that a check of an erroneous position is
// unsatisfied.
func (m ThresholdModel) pc1(S, t int, x float64) float64 {
	return (float64(S) + x) / float64(t) / float64(m.w)
}

func (m ThresholdModel) check(S, t int) {
	if t <= 0 || t > Index*m.r || S < 0 {
		panic(fmt.Sprintf("mdpc: threshold inputs out of range: S=%d t=%d", S, t))
	}
}

func (m ThresholdModel) majority() int { return (m.w + 1) / 2 }

// Exact solves the log-likelihood crossover between the counter
// distributions of correct and erroneous positions.
func (m ThresholdModel) Exact(S, t int) int {
	m.check(S, t)
	x := m.xVal(t) * float64(S)
	p := m.pc0(S, t, x)
	q := m.pc1(S, t, x)

	lq, lp := math.Log(q), math.Log(p)
	lqbar, lpbar := math.Log1p(-q), math.Log1p(-p)
	lt, ltbar := math.Log(float64(t)), math.Log(float64(Index*m.r-t))

	thr := math.Ceil((float64(m.w)*(lqbar-lpbar) + lt - ltbar) / (lp - lq + lqbar - lpbar))

	if math.IsNaN(thr) || thr > float64(m.w) || q >= 1 {
		return m.w
	}
	if thr < float64(m.majority()) {
		return m.majority()
	}
	return int(thr)
}

// Alpha returns the smallest threshold at which a correct position reaches
// the counter with probability below alpha/r, searching down from w.
func (m ThresholdModel) Alpha(S, t int, alpha float64) int {
	m.check(S, t)
	x := m.xVal(t) * float64(S)
	p := m.pc0(S, t, x)
	if p >= 1 || math.IsNaN(p) {
		return m.w
	}
	thr := m.w + 1
	for {
		thr--
		diff := alpha/float64(m.r) - math.Exp(lnBinomialPMF(m.w, thr, p))
		if !(diff >= 0 && thr > m.majority()) {
			break
		}
	}
	if thr < m.w {
		return thr + 1
	}
	return m.w
}

// Affine is max((w+1)/2, trunc(c0 + c1*S)).
func (m ThresholdModel) Affine(S int, c0, c1 float64) int {
	thr := c0 + c1*float64(S)
	if thr > float64(m.majority()) {
		return int(thr)
	}
	return m.majority()
}
