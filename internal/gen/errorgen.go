package gen

import (
	"fmt"

	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

// FloorKind selects how the error pattern is drawn.
type FloorKind int

const (
	FloorNone          FloorKind = iota // uniform error
	FloorNearCodeword                   // around one column block, a (w, w) near-codeword
	FloorNearCodeword2                  // around block 0 plus a shifted block 1, a (2w, ~2w) near-codeword
	FloorCodeword                       // around a codeword of weight 2w
)

func (k FloorKind) String() string {
	switch k {
	case FloorNone:
		return "none"
	case FloorNearCodeword:
		return "near-codeword"
	case FloorNearCodeword2:
		return "near-codeword2"
	case FloorCodeword:
		return "codeword"
	}
	return fmt.Sprintf("FloorKind(%d)", int(k))
}

// sourceWeight is the weight of the word errors of this kind are drawn
// around.
func (k FloorKind) sourceWeight(w int) int {
	if k == FloorNearCodeword {
		return w
	}
	return mdpc.Index * w
}

// ValidateFloor checks that an error of the given kind with floorP
// intersections can be drawn for p.
func ValidateFloor(kind FloorKind, floorP int, p mdpc.Params) error {
	switch kind {
	case FloorNone:
		return nil
	case FloorNearCodeword, FloorNearCodeword2, FloorCodeword:
	default:
		return fmt.Errorf("unknown error floor type %d", int(kind))
	}
	src := kind.sourceWeight(p.BlockWeight)
	switch {
	case floorP < 0 || floorP > src:
		return fmt.Errorf("error floor %v: p=%d out of [0, %d]", kind, floorP, src)
	case floorP > p.ErrorWeight:
		return fmt.Errorf("error floor %v: p=%d above the error weight %d", kind, floorP, p.ErrorWeight)
	case p.ErrorWeight-floorP > p.Length()-src:
		return fmt.Errorf("error floor %v: not enough room for %d more positions", kind, p.ErrorWeight-floorP)
	}
	return nil
}

// ErrorGen draws error patterns of one kind, reusing its scratch space
// between trials. It is not safe for concurrent use.
type ErrorGen struct {
	n, t   int
	kind   FloorKind
	floorP int
	src    mdpc.Sparse
	inErr  []bool
	inWord []bool
}

// NewErrorGen returns a generator of weight-t errors for p.
func NewErrorGen(p mdpc.Params, kind FloorKind, floorP int) (*ErrorGen, error) {
	if err := ValidateFloor(kind, floorP, p); err != nil {
		return nil, err
	}
	return &ErrorGen{
		n:      p.BlockLength,
		t:      p.ErrorWeight,
		kind:   kind,
		floorP: floorP,
		src:    make(mdpc.Sparse, mdpc.Index*p.BlockWeight),
		inErr:  make([]bool, p.Length()),
		inWord: make([]bool, p.Length()),
	}, nil
}

// Error fills dst[:t] with sorted positions in [0, 2n).
func (g *ErrorGen) Error(dst mdpc.Sparse, h *mdpc.CodeMatrix, rng mdpc.Source) {
	n, w := g.n, h.BlockWeight()
	switch g.kind {
	case FloorNone:
		mdpc.SparseRand(dst, g.t, mdpc.Index*n, rng)
		return
	case FloorNearCodeword:
		k := below(rng, mdpc.Index)
		for l, c := range h.Columns[k] {
			g.src[l] = k*n + c
		}
	case FloorNearCodeword2:
		shift := below(rng, n)
		for l, c := range h.Columns[0] {
			g.src[l] = c
		}
		for l, c := range h.Columns[1] {
			i := c + shift
			if i >= n {
				i -= n
			}
			g.src[w+l] = n + i
		}
	case FloorCodeword:
		// (H1, H0) is the codeword of the message 1
		for k := 0; k < mdpc.Index; k++ {
			for l, c := range h.Columns[mdpc.Index-1-k] {
				g.src[k*w+l] = k*n + c
			}
		}
	}
	g.aroundWord(dst, g.src[:g.kind.sourceWeight(w)], rng)
}

func (g *ErrorGen) aroundWord(dst, src mdpc.Sparse, rng mdpc.Source) {
	clear(g.inErr)
	clear(g.inWord)
	AroundWord(dst, g.t, src, g.floorP, g.n, rng, g.inErr, g.inWord)
}

// AroundWord fills dst[:weight] with an error sharing exactly
// intersections positions with a random quasi-cyclic shift of the word
// src, the other positions avoiding the word. inErr and inWord are
// zeroed scratch of length Index*n.
func AroundWord(dst mdpc.Sparse, weight int, src mdpc.Sparse, intersections, n int, rng mdpc.Source, inErr, inWord []bool) {
	shift := below(rng, n)
	shifted := func(p int) int {
		if p >= n {
			return (p-n+shift)%n + n
		}
		return (p + shift) % n
	}
	for _, p := range src {
		inWord[shifted(p)] = true
	}

	count := 0
	for count < intersections {
		i := shifted(src[below(rng, len(src))])
		if !inErr[i] {
			inErr[i] = true
			mdpc.InsertSortedNoInc(dst, i, count)
			count++
		}
	}
	for count < weight {
		j := below(rng, mdpc.Index*n)
		if !inErr[j] && !inWord[j] {
			inErr[j] = true
			mdpc.InsertSortedNoInc(dst, j, count)
			count++
		}
	}
}

// SyndromeError fills dst[:weight] with the Ouroboros error on the
// syndrome, uniform in [0, n).
func SyndromeError(dst mdpc.Sparse, weight, n int, rng mdpc.Source) {
	mdpc.SparseRand(dst, weight, n, rng)
}
