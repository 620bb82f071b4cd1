package dfrstat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

func TestClopperPearson(t *testing.T) {
	lo, hi := ClopperPearson(5, 10, 0.05)
	require.InDelta(t, 0.187086, lo, 1e-4)
	require.InDelta(t, 0.812914, hi, 1e-4)

	lo, hi = ClopperPearson(0, 10, 0.05)
	require.Zero(t, lo)
	require.InDelta(t, 1-math.Pow(0.025, 0.1), hi, 1e-6)

	lo, hi = ClopperPearson(10, 10, 0.05)
	require.InDelta(t, math.Pow(0.025, 0.1), lo, 1e-6)
	require.Equal(t, 1.0, hi)

	lo, hi = ClopperPearson(3, 2, 0.05)
	require.True(t, math.IsNaN(lo))
	require.True(t, math.IsNaN(hi))
}

func TestClopperPearsonNarrows(t *testing.T) {
	lo1, hi1 := ClopperPearson(10, 1000, DefaultAlpha)
	lo2, hi2 := ClopperPearson(100, 10000, DefaultAlpha)
	require.Less(t, lo1, lo2)
	require.Greater(t, hi1, hi2)
	require.Less(t, lo2, 0.01)
	require.Greater(t, hi2, 0.01)
}

func TestCurve(t *testing.T) {
	s := harness.Stats{MaxIter: 5, Tests: 10, Successes: 8, Iter: []int64{0, 0, 5, 0, 3, 0, 0}}
	pts := Curve(s, DefaultAlpha)
	require.Len(t, pts, 2)
	require.Equal(t, 2, pts[0].Iter)
	require.Equal(t, int64(5), pts[0].Failures)
	require.Equal(t, 4, pts[1].Iter)
	require.Equal(t, int64(2), pts[1].Failures)
	require.InDelta(t, math.Log2(0.2), pts[1].Log2, 1e-12)
	for _, p := range pts {
		require.Equal(t, int64(10), p.Tests)
		require.LessOrEqual(t, p.Lower, p.Log2)
		require.GreaterOrEqual(t, p.Upper, p.Log2)
	}

	pts = Curve(harness.Stats{Tests: 4, Successes: 4, Iter: []int64{0, 4}}, DefaultAlpha)
	require.Len(t, pts, 1)
	require.True(t, math.IsInf(pts[0].Log2, -1))
	require.Less(t, pts[0].Upper, 0.0)

	shifted := pts[0].Shift(-3)
	require.Equal(t, pts[0].Upper-3, shifted.Upper)
}

func cpa128() paramline.Line {
	return paramline.Line{Decoder: mdpc.Config{
		Params: mdpc.Params{BlockLength: 10163, BlockWeight: 71, ErrorWeight: 134},
		Algo:   mdpc.Classic,
	}}
}

func TestDensity(t *testing.T) {
	l := cpa128()
	d, dist := Density(l)
	require.Zero(t, d)
	require.Zero(t, dist)

	prev := 0.0
	for _, m := range []int{10, 15, 20} {
		l.Weak, l.WeakP = gen.WeakType1, m
		d, _ := Density(l)
		require.False(t, math.IsInf(d, 0))
		require.Less(t, d, prev)
		prev = d
	}

	l = cpa128()
	l.Floor, l.FloorP = gen.FloorNearCodeword, 20
	d, dist = Density(l)
	require.Less(t, d, 0.0)
	require.Equal(t, 71+134-40, dist)

	l.Floor = gen.FloorCodeword
	d2, dist := Density(l)
	require.Equal(t, 142+134-40, dist)
	require.NotEqual(t, d, d2)
}
