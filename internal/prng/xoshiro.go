// Package prng implements the xoshiro256++ generator used by the trial
// workers, with unbiased bounded draws and the 2^128 jump that gives every
// worker its own non-overlapping stream.
package prng

import (
	"math/bits"
)

// State is a xoshiro256++ generator. It is not safe for concurrent use.
type State struct {
	s [4]uint64
}

// New returns a generator positioned at seed.
func New(seed Seed) *State {
	if seed.IsZero() {
		panic("prng: all-zero state")
	}
	return &State{s: seed}
}

// Uint64 returns the next raw 64-bit output.
func (x *State) Uint64() uint64 {
	s := &x.s
	result := bits.RotateLeft64(s[0]+s[3], 23) + s[0]

	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t

	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// Below returns a uniform value in [0, limit) using Lemire's
// multiply-and-reject method. limit must be positive.
func (x *State) Below(limit uint64) uint64 {
	if limit == 0 {
		panic("prng: Below(0)")
	}
	hi, lo := bits.Mul64(x.Uint64(), limit)
	if lo < limit {
		t := -limit % limit
		for lo < t {
			hi, lo = bits.Mul64(x.Uint64(), limit)
		}
	}
	return hi
}

var jumpPoly = [4]uint64{0x180ec6d33cfd0aba, 0xd5a61266f0c9392c, 0xa9582618e03fc9aa, 0x39abdc4529b1661c}

// Jump advances the state by 2^128 outputs.
func (x *State) Jump() {
	var s0, s1, s2, s3 uint64
	for _, word := range jumpPoly {
		for b := 0; b < 64; b++ {
			if word&(uint64(1)<<b) != 0 {
				s0 ^= x.s[0]
				s1 ^= x.s[1]
				s2 ^= x.s[2]
				s3 ^= x.s[3]
			}
			x.Uint64()
		}
	}
	x.s = [4]uint64{s0, s1, s2, s3}
}

// Snapshot returns the current state as a seed.
func (x *State) Snapshot() Seed { return x.s }
