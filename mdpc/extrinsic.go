package mdpc

// extrinsic computes every leave-one-out reduction of a list with a
// balanced binary tree: partial reductions bottom-up, then each node
// receives the reduction of everything outside its subtree top-down. Both
// passes are linear in the list size.
type extrinsic struct {
	op       func(a, b float64) float64
	identity float64
	partial  [][]float64 // partial[0] holds the leaves
	outside  [][]float64
}

func newExtrinsic(size int, op func(a, b float64) float64, identity float64) *extrinsic {
	x := &extrinsic{op: op, identity: identity}
	for m := size; ; m = (m + 1) / 2 {
		x.partial = append(x.partial, make([]float64, m))
		x.outside = append(x.outside, make([]float64, m))
		if m <= 1 {
			break
		}
	}
	return x
}

func newSumExtrinsic(size int) *extrinsic {
	return newExtrinsic(size, func(a, b float64) float64 { return a + b }, 0)
}

func newProductExtrinsic(size int) *extrinsic {
	return newExtrinsic(size, func(a, b float64) float64 { return a * b }, 1)
}

// leaves returns the input buffer.
func (x *extrinsic) leaves() []float64 { return x.partial[0] }

// run overwrites the leaves with op over all other leaves.
func (x *extrinsic) run() {
	top := len(x.partial) - 1
	for k := 0; k < top; k++ {
		below, above := x.partial[k], x.partial[k+1]
		for i := range above {
			if 2*i+1 < len(below) {
				above[i] = x.op(below[2*i], below[2*i+1])
			} else {
				above[i] = below[2*i]
			}
		}
	}

	x.outside[top][0] = x.identity
	for k := top - 1; k >= 0; k-- {
		level, out, parent := x.partial[k], x.outside[k], x.outside[k+1]
		for i := range level {
			if s := i ^ 1; s < len(level) {
				out[i] = x.op(parent[i/2], level[s])
			} else {
				out[i] = parent[i/2]
			}
		}
	}
	copy(x.partial[0], x.outside[0])
}
