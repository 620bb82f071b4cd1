package mdpc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// easyParams is a full-size block with a light error every variant
// corrects.
var easyParams = Params{BlockLength: 10163, BlockWeight: 71, ErrorWeight: 20}

type trial struct {
	h *CodeMatrix
	e *ErrorVector
	s *Syndrome
}

func newTrial(p Params, k Kernel, rng Source) trial {
	tr := trial{h: NewCodeMatrix(p), s: NewSyndrome(p)}
	tr.h.Generate(rng)
	tr.e = randomError(p, rng)
	k.Syndrome(tr.s, tr.h, tr.e)
	return tr
}

func TestSingleFlipMatchesRecompute(t *testing.T) {
	rng := testRNG(31)
	p := kernelParams[1]
	cfg := Config{Params: p, Kernel: KernelScalar}
	cfg.SetDefaults()
	tr := newTrial(p, KernelScalar, rng)
	en := newEngine(cfg)
	en.Attach(tr.h, tr.e, tr.s)

	want := NewSyndrome(p)
	for i := 0; i < 200; i++ {
		k, j := below(rng, Index), below(rng, p.BlockLength)
		en.singleFlip(k, j)
		KernelScalar.Syndrome(want, tr.h, tr.e)
		require.Equal(t, want.Vec[:p.BlockLength], tr.s.Vec[:p.BlockLength])
		require.Equal(t, want.Weight, tr.s.Weight)
		require.Equal(t, popcount(tr.e.Vec[0][:p.BlockLength])+popcount(tr.e.Vec[1][:p.BlockLength]), tr.e.Weight)
	}
}

func TestDecodersCorrectLightErrors(t *testing.T) {
	for _, algo := range Algos() {
		algo := algo
		t.Run(algo.String(), func(t *testing.T) {
			rng := testRNG(41 + uint64(algo))
			cfg := Config{Params: easyParams, Algo: algo}
			dec, err := New(cfg, rng)
			require.NoError(t, err)
			require.Equal(t, algo, dec.Algo())

			trials, maxIter := 3, 100
			switch algo {
			case BP:
				trials = 1
			case SBS, Sort:
				// one candidate per iteration
				maxIter = 100000
			}
			for i := 0; i < trials; i++ {
				tr := newTrial(easyParams, KernelScalar, rng)
				dec.Reset()
				dec.Attach(tr.h, tr.e, tr.s)
				require.True(t, dec.Decode(maxIter), "trial %d", i)
				require.Zero(t, tr.e.Weight)
				require.Greater(t, dec.Iter(), 0)
				if algo != BP {
					require.Zero(t, tr.s.Weight)
				}
			}
		})
	}
}

func TestDecodeZeroIterations(t *testing.T) {
	for _, algo := range Algos() {
		if algo == BP {
			continue
		}
		rng := testRNG(51)
		dec, err := New(Config{Params: easyParams, Algo: algo}, rng)
		require.NoError(t, err)
		tr := newTrial(easyParams, KernelScalar, rng)
		dec.Reset()
		dec.Attach(tr.h, tr.e, tr.s)
		require.False(t, dec.Decode(0), algo.String())
		require.Equal(t, easyParams.ErrorWeight, tr.e.Weight, algo.String())
		require.Zero(t, dec.Iter())
	}
}

func TestBPZeroIterations(t *testing.T) {
	rng := testRNG(52)
	dec, err := New(Config{Params: easyParams, Algo: BP}, rng)
	require.NoError(t, err)
	tr := newTrial(easyParams, KernelScalar, rng)
	dec.Reset()
	dec.Attach(tr.h, tr.e, tr.s)
	require.False(t, dec.Decode(0))
	require.Zero(t, dec.Iter())
}

func TestDecodersAgreeAcrossKernels(t *testing.T) {
	for _, algo := range []Algo{Classic, Backflip, Backflip2, GrayBGF, SBS} {
		var iters [2]int
		for i, k := range []Kernel{KernelScalar, KernelWide} {
			rng := testRNG(61)
			dec, err := New(Config{Params: kernelParams[0], Algo: algo, Kernel: k}, rng)
			require.NoError(t, err)
			tr := newTrial(kernelParams[0], k, rng)
			dec.Reset()
			dec.Attach(tr.h, tr.e, tr.s)
			dec.Decode(100)
			iters[i] = dec.Iter()
		}
		require.Equal(t, iters[0], iters[1], algo.String())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Params: Params{BlockLength: 10, BlockWeight: 20, ErrorWeight: 3}}, testRNG(1))
	require.Error(t, err)

	p := easyParams
	p.Ouroboros = true
	_, err = New(Config{Params: p, Algo: BP}, testRNG(1))
	require.Error(t, err)
}

func TestAttachSizeMismatchPanics(t *testing.T) {
	dec, err := New(Config{Params: kernelParams[1]}, testRNG(1))
	require.NoError(t, err)
	tr := newTrial(kernelParams[2], KernelScalar, testRNG(2))
	require.Panics(t, func() { dec.Attach(tr.h, tr.e, tr.s) })
}

func TestFlipListOrder(t *testing.T) {
	fl := newFlipList(8)
	fl.add(3)
	fl.add(5)
	fl.add(1)
	fl.remove(5)
	var got []int
	for pos := fl.first; pos != -1; pos = fl.next[pos] {
		got = append(got, pos)
	}
	require.Equal(t, []int{1, 3}, got)
	require.Equal(t, 2, fl.length)
	fl.remove(1)
	require.Equal(t, 3, fl.first)
}

func TestSortCountersDescending(t *testing.T) {
	p := Params{BlockLength: 10, BlockWeight: 3, ErrorWeight: 2}
	cfg := Config{Params: p, Algo: Sort, GraySize: 4}
	cfg.SetDefaults()
	d := newSortDecoder(cfg, testRNG(1))
	copy(d.counter[0], []uint8{0, 3, 1, 0, 2, 0, 0, 0, 0, 0})
	copy(d.counter[1], []uint8{0, 0, 0, 3, 0, 0, 0, 1, 0, 0})
	d.sortCounters(4)
	require.Len(t, d.sorted, 4)
	require.Equal(t, []int{3, 3, 2, 1}, []int{d.sorted[0].counter, d.sorted[1].counter, d.sorted[2].counter, d.sorted[3].counter})
	require.Equal(t, 4, d.sorted[2].position)
}
