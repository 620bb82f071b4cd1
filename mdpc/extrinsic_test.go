package mdpc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func bruteLeaveOneOut(in []float64, op func(a, b float64) float64, identity float64) []float64 {
	out := make([]float64, len(in))
	for i := range in {
		acc := identity
		for j, v := range in {
			if j != i {
				acc = op(acc, v)
			}
		}
		out[i] = acc
	}
	return out
}

func TestExtrinsicSmall(t *testing.T) {
	x := newProductExtrinsic(4)
	copy(x.leaves(), []float64{2, 3, 5, 7})
	x.run()
	require.Equal(t, []float64{105, 70, 42, 30}, x.leaves())

	y := newSumExtrinsic(4)
	copy(y.leaves(), []float64{2, 3, 5, 7})
	y.run()
	require.Equal(t, []float64{15, 14, 12, 10}, y.leaves())
}

func TestExtrinsicMatchesBruteForce(t *testing.T) {
	rng := testRNG(21)
	for _, size := range []int{1, 2, 3, 4, 5, 7, 8, 9, 71, 142, 206, 274} {
		in := make([]float64, size)
		for i := range in {
			in[i] = float64(rng.Below(2000))/1000 - 1
		}
		for _, x := range []*extrinsic{newSumExtrinsic(size), newProductExtrinsic(size)} {
			copy(x.leaves(), in)
			x.run()
			want := bruteLeaveOneOut(in, x.op, x.identity)
			for i := range want {
				require.InDelta(t, want[i], x.leaves()[i], 1e-9*math.Max(1, math.Abs(want[i])), "size %d index %d", size, i)
			}
		}
	}
}

func TestExtrinsicReusable(t *testing.T) {
	x := newSumExtrinsic(5)
	for round := 0; round < 3; round++ {
		copy(x.leaves(), []float64{1, 1, 1, 1, float64(round)})
		x.run()
		require.Equal(t, []float64{3 + float64(round), 3 + float64(round), 3 + float64(round), 3 + float64(round), 4}, x.leaves())
	}
}
