package mdpc

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Index is the number of circulant blocks of the parity-check matrix.
const Index = 2

// Limits of the engine: counters fit a byte and positions fit 16 bits.
const (
	MaxBlockWeight = 255
	MaxBlockLength = 65536
)

// Params are the code parameters of a run.
type Params struct {
	BlockLength int  // r, size of a circulant block
	BlockWeight int  // w, column weight of a block
	ErrorWeight int  // t, weight of the injected error
	Ouroboros   bool // part of the error lives in the syndrome
}

// Length is the code length, Index*BlockLength.
func (p Params) Length() int { return Index * p.BlockLength }

// SyndromeStop is the syndrome weight at which decoding stops.
func (p Params) SyndromeStop() int {
	if p.Ouroboros {
		return p.ErrorWeight / 2
	}
	return 0
}

// Majority is (w+1)/2, the lowest threshold any model returns.
func (p Params) Majority() int { return (p.BlockWeight + 1) / 2 }

// Validate checks the parameters against the engine limits. The block
// length must be prime: the weak keys scale positions by a unit mod r.
func (p Params) Validate() error {
	switch {
	case p.BlockLength <= 0:
		return errors.New("block length must be positive")
	case p.BlockLength > MaxBlockLength:
		return fmt.Errorf("block length %d > %d: not implemented", p.BlockLength, MaxBlockLength)
	case !big.NewInt(int64(p.BlockLength)).ProbablyPrime(0):
		return fmt.Errorf("block length %d is not prime", p.BlockLength)
	case p.BlockWeight <= 0:
		return errors.New("block weight must be positive")
	case p.BlockWeight > MaxBlockWeight:
		return fmt.Errorf("block weight %d > %d: not implemented", p.BlockWeight, MaxBlockWeight)
	case p.BlockWeight >= p.BlockLength:
		return fmt.Errorf("block weight %d must be below block length %d", p.BlockWeight, p.BlockLength)
	case p.ErrorWeight <= 0:
		return errors.New("error weight must be positive")
	case p.ErrorWeight >= p.Length():
		return fmt.Errorf("error weight %d must be below code length %d", p.ErrorWeight, p.Length())
	}
	return nil
}

// Presets of the BIKE-like parameter sets. CPA sets exist with and without
// Ouroboros; CCA sets use a longer block for a lower DFR.
var presets = map[string]Params{
	"cpa128":  {BlockLength: 10163, BlockWeight: 71, ErrorWeight: 134},
	"cpa192":  {BlockLength: 19853, BlockWeight: 103, ErrorWeight: 199},
	"cpa256":  {BlockLength: 32749, BlockWeight: 137, ErrorWeight: 264},
	"cpa128o": {BlockLength: 11027, BlockWeight: 67, ErrorWeight: 154, Ouroboros: true},
	"cpa192o": {BlockLength: 21683, BlockWeight: 99, ErrorWeight: 226, Ouroboros: true},
	"cpa256o": {BlockLength: 36131, BlockWeight: 133, ErrorWeight: 300, Ouroboros: true},
	"cca128":  {BlockLength: 12323, BlockWeight: 71, ErrorWeight: 134},
	"cca192":  {BlockLength: 24659, BlockWeight: 103, ErrorWeight: 199},
	"cca256":  {BlockLength: 40973, BlockWeight: 137, ErrorWeight: 264},
}

// DefaultPreset is used when neither a preset nor explicit sizes are given.
const DefaultPreset = "cca128"

// LookupPreset returns the named parameter set.
func LookupPreset(name string) (Params, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return Params{}, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames lists the known presets, sorted.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Calibration holds the empirically fitted constants of the affine
// threshold (gray decoders) and of the affine time-to-live (BACKFLIP).
type Calibration struct {
	ThresholdC0, ThresholdC1 float64
	TTLC0, TTLC1             float64
}

type calibrationKey struct {
	w, t      int
	ouroboros bool
}

var calibrations = map[calibrationKey]Calibration{
	{71, 134, false}:  {13.530, 0.0069722, 1.1, 0.45},
	{103, 199, false}: {15.2588, 0.005265, 1.41, 0.36},
	{137, 264, false}: {17.8785, 0.00402312, 1.0, 0.45},
	{67, 154, true}:   {13.209, 0.0060515, 1.16, 0.46},
	{99, 226, true}:   {15.561, 0.0046692, 1.4, 0.4},
	{133, 300, true}:  {17.061, 0.0038460, 0.9, 0.44},
}

// CalibrationFor returns the fitted constants for (w, t, Ouroboros), falling
// back to the 128-bit CPA values for unknown sets.
func CalibrationFor(p Params) Calibration {
	if c, ok := calibrations[calibrationKey{p.BlockWeight, p.ErrorWeight, p.Ouroboros}]; ok {
		return c
	}
	return calibrations[calibrationKey{71, 134, false}]
}
