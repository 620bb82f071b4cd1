// Package gen draws the parity-check matrices and error patterns of a
// trial: uniform ones, and the structured weak keys and near-codeword
// errors used to probe the error floor.
package gen

import (
	"fmt"

	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

// WeakKind selects how the parity-check matrix is drawn.
type WeakKind int

const (
	WeakNone  WeakKind = iota // uniform blocks
	WeakType1                 // p consecutive terms of an arithmetic progression in one block
	WeakType2                 // one block with multiplicity p (p pairs at the same distance)
	WeakType3                 // p positions shared between the blocks up to a shift
)

func (k WeakKind) String() string {
	switch k {
	case WeakNone:
		return "none"
	case WeakType1:
		return "type1"
	case WeakType2:
		return "type2"
	case WeakType3:
		return "type3"
	}
	return fmt.Sprintf("WeakKind(%d)", int(k))
}

// ValidateWeak checks that a weak key of the given kind and parameter can
// be drawn for p.
func ValidateWeak(kind WeakKind, weakP int, p mdpc.Params) error {
	if kind == WeakNone {
		return nil
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("weak %v: %w", kind, err)
	}
	switch kind {
	case WeakType1, WeakType3:
		if weakP < 0 || weakP > p.BlockWeight {
			return fmt.Errorf("weak %v: p=%d out of [0, %d]", kind, weakP, p.BlockWeight)
		}
	case WeakType2:
		// at least two runs of ones and of zeros
		if weakP < 0 || p.BlockWeight-weakP < 1 {
			return fmt.Errorf("weak %v: p=%d out of [0, %d)", kind, weakP, p.BlockWeight)
		}
	default:
		return fmt.Errorf("unknown weak key type %d", int(kind))
	}
	return nil
}

// below draws uniformly in [0, limit).
func below(rng mdpc.Source, limit int) int { return int(rng.Below(uint64(limit))) }

// Code draws the columns of h according to kind and rebuilds its rows.
func Code(h *mdpc.CodeMatrix, kind WeakKind, weakP int, rng mdpc.Source) {
	n, w := h.BlockLength(), h.BlockWeight()
	switch kind {
	case WeakNone:
		h.Generate(rng)
		return
	case WeakType1:
		weakType1(&h.Columns, n, w, weakP, rng)
	case WeakType2:
		weakType2(&h.Columns, n, w, weakP, rng)
	case WeakType3:
		weakType3(&h.Columns, n, w, weakP, rng)
	default:
		panic(fmt.Sprintf("gen: unknown weak key type %d", int(kind)))
	}
	h.TransposeColumns()
}

// weakType1 puts delta*(shift+i) mod n, i < p, in one block and completes
// it uniformly. The other block is uniform.
func weakType1(cols *[mdpc.Index]mdpc.Sparse, n, w, p int, rng mdpc.Source) {
	k := below(rng, mdpc.Index)
	delta := 1 + below(rng, n/2)
	shift := below(rng, n)

	for i := 0; i < p; i++ {
		mdpc.InsertSortedNoInc(cols[k], delta*(i+shift)%n, i)
	}
	for i := p; i < w; i++ {
		mdpc.InsertSorted(cols[k], below(rng, n-i), i)
	}
	mdpc.SparseRand(cols[mdpc.Index-1-k], w, n, rng)
}

// weakType2 draws, in the domain scaled by delta, a cyclic word of w ones
// split in w-p runs (stars and bars), so that p pairs of ones sit at
// distance delta.
func weakType2(cols *[mdpc.Index]mdpc.Sparse, n, w, p int, rng mdpc.Source) {
	k := below(rng, mdpc.Index)
	delta := 1 + below(rng, n/2)

	s := w - p
	ones := make(mdpc.Sparse, s+1)
	zeros := make(mdpc.Sparse, s+1)
	ones[s], zeros[s] = w, n-w
	for i := 1; i < s; i++ {
		mdpc.InsertSorted(ones, below(rng, w-i), i)
		mdpc.InsertSorted(zeros, below(rng, n-w-i), i)
	}
	// bars to run lengths
	for i := 0; i < s; i++ {
		ones[i] = ones[i+1] - ones[i]
		zeros[i] = zeros[i+1] - zeros[i]
	}

	shift := below(rng, ones[0]+zeros[0])
	pos := (n - shift) % n
	i := 0
	for run := 0; run < s; run++ {
		pos = (pos + zeros[run]) % n
		for l := 0; l < ones[run]; l++ {
			mdpc.InsertSortedNoInc(cols[k], delta*(pos+l)%n, i)
			i++
		}
		pos = (pos + ones[run]) % n
	}
	mdpc.SparseRand(cols[mdpc.Index-1-k], w, n, rng)
}

// weakType3 makes exactly p positions of block 1 equal to positions of
// block 0 shifted by a common amount.
func weakType3(cols *[mdpc.Index]mdpc.Sparse, n, w, p int, rng mdpc.Source) {
	h0, h1 := cols[0], cols[1]
	shift := below(rng, n)

	for i := 0; i < p; i++ {
		v := mdpc.InsertSorted(h0, below(rng, n-i), i)
		mdpc.InsertSortedNoInc(h1, (v+shift)%n, i)
	}
	for i := p; i < w; i++ {
		mdpc.InsertSorted(h0, below(rng, n-i), i)
	}

	for i := p; i < w; {
		v := below(rng, n-i)
		for j := 0; j < i && h1[j] <= v; j++ {
			v++
		}
		if shared(h0, shift, n, v) {
			continue
		}
		mdpc.InsertSortedNoInc(h1, v, i)
		i++
	}
}

func shared(h0 mdpc.Sparse, shift, n, v int) bool {
	for _, x := range h0 {
		if (x+shift)%n == v {
			return true
		}
	}
	return false
}
