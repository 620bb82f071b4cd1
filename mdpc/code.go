package mdpc

import "fmt"

// CodeMatrix is the parity-check matrix H = [H0 H1] held twice: Columns[i]
// is the first column of block i and Rows[i] its cyclic transpose (first
// row). The two views are only ever rebuilt together.
type CodeMatrix struct {
	n, w    int
	Columns [Index]Sparse
	Rows    [Index]Sparse
}

// NewCodeMatrix allocates an empty matrix for p.
func NewCodeMatrix(p Params) *CodeMatrix {
	h := &CodeMatrix{n: p.BlockLength, w: p.BlockWeight}
	for i := 0; i < Index; i++ {
		h.Columns[i] = make(Sparse, p.BlockWeight)
		h.Rows[i] = make(Sparse, p.BlockWeight)
	}
	return h
}

// BlockLength returns r.
func (h *CodeMatrix) BlockLength() int { return h.n }

// BlockWeight returns w.
func (h *CodeMatrix) BlockWeight() int { return h.w }

// Generate draws both column blocks uniformly and derives the rows.
func (h *CodeMatrix) Generate(rng Source) {
	for i := 0; i < Index; i++ {
		SparseRand(h.Columns[i], h.w, h.n, rng)
	}
	h.TransposeColumns()
}

// TransposeColumns rebuilds Rows from Columns.
func (h *CodeMatrix) TransposeColumns() {
	for i := 0; i < Index; i++ {
		Transpose(h.Rows[i], h.Columns[i], h.n)
	}
}

// TransposeRows rebuilds Columns from Rows.
func (h *CodeMatrix) TransposeRows() {
	for i := 0; i < Index; i++ {
		Transpose(h.Columns[i], h.Rows[i], h.n)
	}
}

// Validate panics if a block is malformed or the two views disagree.
func (h *CodeMatrix) Validate() {
	tmp := make(Sparse, h.w)
	for i := 0; i < Index; i++ {
		h.Columns[i].Check(h.w, h.n)
		h.Rows[i].Check(h.w, h.n)
		Transpose(tmp, h.Columns[i], h.n)
		for l := range tmp {
			if tmp[l] != h.Rows[i][l] {
				panic(fmt.Sprintf("mdpc: rows[%d] is not the transpose of columns[%d]", i, i))
			}
		}
	}
}

// SetColumns copies cols into the column view and rebuilds the rows.
func (h *CodeMatrix) SetColumns(cols [Index]Sparse) {
	for i := 0; i < Index; i++ {
		cols[i].Check(h.w, h.n)
		copy(h.Columns[i], cols[i])
	}
	h.TransposeColumns()
}

// RandomMessage fills a doubled message vector from 64-bit words.
func RandomMessage(msg []uint8, n int, rng Source) {
	for i := 0; i < n; i += 64 {
		r := rng.Uint64()
		for j := 0; j < 64 && i+j < n; j++ {
			b := uint8(r>>j) & 1
			msg[i+j] = b
			msg[n+i+j] = b
		}
	}
}

// Codeword computes cw[k] = H_{1-k} * msg, a codeword of H. msg must be
// doubled; the codeword blocks are written doubled.
func (k Kernel) Codeword(cw *[Index][]uint8, h *CodeMatrix, msg []uint8) {
	n := h.n
	for b := 0; b < Index; b++ {
		clear(cw[b][:2*n])
		src := Index - 1 - b
		k.xorProduct(cw[b], h.Columns[src], h.Rows[src], msg, n)
		mirror(cw[b], n)
	}
}
