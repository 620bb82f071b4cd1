package mdpc

import "fmt"

// ErrorVector is the error pattern, one doubled dense vector per block.
// Weight is kept up to date by every flip.
type ErrorVector struct {
	n      int
	Vec    [Index][]uint8
	Weight int
}

// NewErrorVector allocates a zero error for p.
func NewErrorVector(p Params) *ErrorVector {
	e := &ErrorVector{n: p.BlockLength}
	for i := range e.Vec {
		e.Vec[i] = make([]uint8, 2*p.BlockLength)
	}
	return e
}

// SetSparse loads positions in [0, Index*n): those below n go to block 0,
// the others to block 1.
func (e *ErrorVector) SetSparse(pos Sparse) {
	n := e.n
	for i := range e.Vec {
		clear(e.Vec[i])
	}
	for _, p := range pos {
		k := 0
		if p >= n {
			k, p = 1, p-n
		}
		if p < 0 || p >= n {
			panic(fmt.Sprintf("mdpc: error position out of range: %d", p))
		}
		e.Vec[k][p] ^= 1
	}
	e.Weight = 0
	for i := range e.Vec {
		mirror(e.Vec[i], n)
		e.Weight += popcount(e.Vec[i][:n])
	}
}

// Toggle flips bit (k, j) in both copies and updates the weight.
func (e *ErrorVector) Toggle(k, j int) {
	v := e.Vec[k]
	v[j] ^= 1
	v[e.n+j] = v[j]
	e.Weight += 2*int(v[j]) - 1
}

// CopyFrom overwrites e with src.
func (e *ErrorVector) CopyFrom(src *ErrorVector) {
	for i := range e.Vec {
		copy(e.Vec[i], src.Vec[i])
	}
	e.Weight = src.Weight
}

// Syndrome is a doubled dense vector of one block length with its weight.
type Syndrome struct {
	n      int
	Vec    []uint8
	Weight int
}

// NewSyndrome allocates a zero syndrome for p.
func NewSyndrome(p Params) *Syndrome {
	return &Syndrome{n: p.BlockLength, Vec: make([]uint8, 2*p.BlockLength)}
}

// AddSparse xors positions in [0, n) into the syndrome (Ouroboros) and
// recomputes the weight.
func (s *Syndrome) AddSparse(pos Sparse) {
	for _, p := range pos {
		s.Vec[p] ^= 1
	}
	s.Weight = popcount(s.Vec[:s.n])
}

// CopyFrom overwrites s with src.
func (s *Syndrome) CopyFrom(src *Syndrome) {
	copy(s.Vec, src.Vec)
	s.Weight = src.Weight
}

// Counters holds, per block, the number of unsatisfied checks touching each
// position.
type Counters [Index][]uint8

// NewCounters allocates counters for p.
func NewCounters(p Params) Counters {
	var c Counters
	for i := range c {
		c[i] = make([]uint8, p.BlockLength)
	}
	return c
}

// Syndrome sets s to H*e and counts its weight over one block length.
func (k Kernel) Syndrome(s *Syndrome, h *CodeMatrix, e *ErrorVector) {
	n := h.n
	clear(s.Vec)
	for i := 0; i < Index; i++ {
		k.xorProduct(s.Vec, h.Columns[i], h.Rows[i], e.Vec[i], n)
	}
	s.Weight = popcount(s.Vec[:n])
}

// Counters mirrors the syndrome onto its second half and sets c[k][j] to
// the number of the w checks of column (k, j) that are unsatisfied.
func (k Kernel) Counters(c Counters, s *Syndrome, h *CodeMatrix) {
	n := h.n
	mirror(s.Vec, n)
	for i := 0; i < Index; i++ {
		clear(c[i][:n])
		k.addProduct(c[i], h.Rows[i], h.Columns[i], s.Vec, n)
	}
}
