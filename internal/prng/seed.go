package prng

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tuneinsight/lattigo/v4/utils"
)

// SeedLen is the byte length of a serialized seed.
const SeedLen = 32

// Seed is a full xoshiro256++ state.
type Seed [4]uint64

var errZeroSeed = errors.New("prng: all-zero seed")

// NewSeed draws a fresh seed from the system entropy source.
func NewSeed() (Seed, error) {
	src, err := utils.NewPRNG()
	if err != nil {
		return Seed{}, fmt.Errorf("prng: entropy source: %w", err)
	}
	return readSeed(src)
}

// SeedFromString derives a seed deterministically from a passphrase, so
// that a run can be reproduced from the command line. A 64 character hex
// string is taken as the raw state instead.
func SeedFromString(s string) (Seed, error) {
	if len(s) == 2*SeedLen {
		if b, err := hex.DecodeString(s); err == nil {
			return decodeSeed(b)
		}
	}
	src, err := utils.NewKeyedPRNG([]byte(s))
	if err != nil {
		return Seed{}, fmt.Errorf("prng: keyed source: %w", err)
	}
	return readSeed(src)
}

type reader interface {
	Read(p []byte) (int, error)
}

func readSeed(src reader) (Seed, error) {
	var buf [SeedLen]byte
	// the keyed PRNG never returns a zero block in practice; retry anyway
	for tries := 0; tries < 4; tries++ {
		if _, err := src.Read(buf[:]); err != nil {
			return Seed{}, fmt.Errorf("prng: read seed: %w", err)
		}
		if s, err := decodeSeed(buf[:]); err == nil {
			return s, nil
		}
	}
	return Seed{}, errZeroSeed
}

func decodeSeed(b []byte) (Seed, error) {
	if len(b) != SeedLen {
		return Seed{}, fmt.Errorf("prng: seed must be %d bytes, got %d", SeedLen, len(b))
	}
	var s Seed
	for i := range s {
		s[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	if s.IsZero() {
		return Seed{}, errZeroSeed
	}
	return s, nil
}

// IsZero reports whether every state word is zero.
func (s Seed) IsZero() bool {
	return s[0]|s[1]|s[2]|s[3] == 0
}

// Bytes serializes the seed little-endian.
func (s Seed) Bytes() []byte {
	b := make([]byte, SeedLen)
	for i, w := range s {
		binary.LittleEndian.PutUint64(b[8*i:], w)
	}
	return b
}

func (s Seed) String() string { return hex.EncodeToString(s.Bytes()) }

// Stream returns the generator of worker id: the seed jumped id times.
func (s Seed) Stream(id int) *State {
	st := New(s)
	for i := 0; i < id; i++ {
		st.Jump()
	}
	return st
}

// ParseSeed accepts "" (fresh entropy), a 64 character hex state or any
// other passphrase.
func ParseSeed(s string) (Seed, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewSeed()
	}
	return SeedFromString(s)
}
