package mdpc

import "encoding/binary"

const lane = 8

// gatherXor computes z[i] ^= y[off+i] for every off in xT and i < n, eight
// bytes per step. y must be doubled and mirrored.
func gatherXor(z []uint8, xT Sparse, y []uint8, n int) {
	words := n / lane * lane
	for i := 0; i < words; i += lane {
		acc := binary.LittleEndian.Uint64(z[i:])
		for _, off := range xT {
			acc ^= binary.LittleEndian.Uint64(y[off+i:])
		}
		binary.LittleEndian.PutUint64(z[i:], acc)
	}
	for i := words; i < n; i++ {
		acc := z[i]
		for _, off := range xT {
			acc ^= y[off+i]
		}
		z[i] = acc
	}
}

// gatherAdd computes z[i] += y[off+i] for every off in xT and i < n. Lanes
// are added as one uint64: y holds 0/1 bytes and every lane total stays
// below 256 because len(xT) <= MaxBlockWeight and z starts at zero, so no
// carry crosses a lane boundary.
func gatherAdd(z []uint8, xT Sparse, y []uint8, n int) {
	words := n / lane * lane
	for i := 0; i < words; i += lane {
		acc := binary.LittleEndian.Uint64(z[i:])
		for _, off := range xT {
			acc += binary.LittleEndian.Uint64(y[off+i:])
		}
		binary.LittleEndian.PutUint64(z[i:], acc)
	}
	for i := words; i < n; i++ {
		acc := z[i]
		for _, off := range xT {
			acc += y[off+i]
		}
		z[i] = acc
	}
}
