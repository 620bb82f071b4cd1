package mdpc

import "fmt"

// Source is the randomness the engine needs: raw words and unbiased bounded
// draws.
type Source interface {
	Uint64() uint64
	Below(limit uint64) uint64
}

func below(rng Source, limit int) int { return int(rng.Below(uint64(limit))) }

// Sparse is a circulant block (or an error pattern) given by its increasing
// set positions.
type Sparse []int

// InsertSorted inserts value into the sorted prefix a[:count], first
// shifting value past every element <= value. Drawing value uniformly in
// [0, length-count) therefore picks a uniform unused position in
// [0, length). The inserted value is returned.
func InsertSorted(a Sparse, value, count int) int {
	i := 0
	for ; i < count && a[i] <= value; i++ {
		value++
	}
	copy(a[i+1:count+1], a[i:count])
	a[i] = value
	return value
}

// InsertSortedNoInc inserts value into the sorted prefix a[:count].
func InsertSortedNoInc(a Sparse, value, count int) {
	i := 0
	for i < count && a[i] <= value {
		i++
	}
	copy(a[i+1:count+1], a[i:count])
	a[i] = value
}

// SparseRand fills dst[:weight] with weight distinct sorted positions drawn
// uniformly in [0, length).
func SparseRand(dst Sparse, weight, length int, rng Source) {
	for i := 0; i < weight; i++ {
		InsertSorted(dst, below(rng, length-i), i)
	}
}

// Transpose writes the cyclic transpose of src, {(n - p) mod n}, to dst in
// increasing order.
func Transpose(dst, src Sparse, n int) {
	w := len(src)
	l := 0
	if src[0] == 0 {
		dst[0] = 0
		l = 1
	} else {
		dst[0] = n - src[w-1]
	}
	for k := 1; k < w; k++ {
		dst[k] = n - src[w+l-1-k]
	}
}

// Check panics unless s holds exactly weight increasing positions in [0, n).
func (s Sparse) Check(weight, n int) {
	if len(s) != weight {
		panic(fmt.Sprintf("mdpc: sparse weight %d, want %d", len(s), weight))
	}
	for i, p := range s {
		if p < 0 || p >= n {
			panic(fmt.Sprintf("mdpc: position %d out of [0,%d)", p, n))
		}
		if i > 0 && s[i-1] >= p {
			panic(fmt.Sprintf("mdpc: positions not increasing at %d", i))
		}
	}
}

// SparseToDense sets the positions of s in dst[:n] and mirrors them into
// dst[n:2n]. dst is cleared first.
func SparseToDense(dst []uint8, s Sparse, n int) {
	clear(dst[:2*n])
	for _, p := range s {
		dst[p] = 1
		dst[n+p] = 1
	}
}

// mirror copies the first block of a doubled vector onto the second.
func mirror(v []uint8, n int) { copy(v[n:2*n], v[:n]) }

func popcount(v []uint8) int {
	c := 0
	for _, b := range v {
		c += int(b)
	}
	return c
}
