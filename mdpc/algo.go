package mdpc

import (
	"fmt"
	"strings"
)

// Algo selects a decoder variant.
type Algo uint8

const (
	Classic Algo = iota
	Backflip
	Backflip2
	SBS
	GrayB
	GrayBGF
	GrayBGB
	GrayBG
	BP
	Sort
)

var algoNames = [...]string{"CLASSIC", "BACKFLIP", "BACKFLIP2", "SBS", "GRAY_B", "GRAY_BGF", "GRAY_BGB", "GRAY_BG", "BP", "SORT"}

func (a Algo) String() string {
	if int(a) < len(algoNames) {
		return algoNames[a]
	}
	return fmt.Sprintf("Algo(%d)", a)
}

// ParseAlgo accepts the printed names, case-insensitive.
func ParseAlgo(s string) (Algo, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range algoNames {
		if n == s {
			return Algo(i), nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q (have %s)", s, strings.Join(algoNames[:], ", "))
}

// Algos lists every variant.
func Algos() []Algo {
	out := make([]Algo, len(algoNames))
	for i := range out {
		out[i] = Algo(i)
	}
	return out
}

func (a Algo) isGray() bool { return a >= GrayB && a <= GrayBG }

// DefaultAlgo is the decoder used when none is configured.
const DefaultAlgo = GrayBGF

// Default decoder constants.
const (
	DefaultTTLSaturate    = 5
	DefaultGrayDelta      = 3
	DefaultBlackPassIters = 2
	DefaultGrayPassIters  = 3
	DefaultBPScale        = 0.4
	DefaultBPSaturate     = 1000.0
)

// DefaultAlphas are the significance levels of the five BACKFLIP2 tiers.
var DefaultAlphas = [5]float64{4, 1, 0.25, 0.0625, 0.015625}

// Config is the fixed decoder configuration of a run.
type Config struct {
	Params
	Algo   Algo
	Kernel Kernel

	// affine threshold of the gray decoders
	ThresholdC0, ThresholdC1 float64
	// affine time-to-live of BACKFLIP
	TTLC0, TTLC1 float64
	TTLSaturate  int
	// significance levels of BACKFLIP2
	Alphas [5]float64

	GrayDelta int
	GraySize  int // SORT candidate list length, default Length()/10
	// GRAY_BGF runs the black re-check only while iter < BlackPassIters,
	// GRAY_BGB runs the gray re-check only while iter < GrayPassIters.
	BlackPassIters int
	GrayPassIters  int

	BPScale    float64
	BPSaturate float64
}

// SetDefaults fills zero fields: calibration constants come from the table
// for (w, t, Ouroboros).
func (c *Config) SetDefaults() {
	cal := CalibrationFor(c.Params)
	if c.ThresholdC0 == 0 && c.ThresholdC1 == 0 {
		c.ThresholdC0, c.ThresholdC1 = cal.ThresholdC0, cal.ThresholdC1
	}
	if c.TTLC0 == 0 && c.TTLC1 == 0 {
		c.TTLC0, c.TTLC1 = cal.TTLC0, cal.TTLC1
	}
	if c.TTLSaturate <= 0 {
		c.TTLSaturate = DefaultTTLSaturate
	}
	if c.Alphas == [5]float64{} {
		c.Alphas = DefaultAlphas
	}
	if c.GrayDelta <= 0 {
		c.GrayDelta = DefaultGrayDelta
	}
	if c.GraySize <= 0 {
		c.GraySize = c.Length() / 10
	}
	if c.BlackPassIters <= 0 {
		c.BlackPassIters = DefaultBlackPassIters
	}
	if c.GrayPassIters <= 0 {
		c.GrayPassIters = DefaultGrayPassIters
	}
	if c.BPScale == 0 {
		c.BPScale = DefaultBPScale
	}
	if c.BPSaturate == 0 {
		c.BPSaturate = DefaultBPSaturate
	}
	if c.Kernel == KernelAuto {
		c.Kernel = DefaultKernel()
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if int(c.Algo) >= len(algoNames) {
		return fmt.Errorf("unknown algorithm %d", c.Algo)
	}
	if c.Algo == BP && c.Ouroboros {
		return fmt.Errorf("Ouroboros with belief propagation decoding: not implemented")
	}
	if c.TTLSaturate > 255 {
		return fmt.Errorf("ttl saturation %d does not fit a byte", c.TTLSaturate)
	}
	if c.GraySize <= 0 || c.GraySize > c.Length() {
		return fmt.Errorf("gray size %d out of range (0, %d]", c.GraySize, c.Length())
	}
	if c.BPSaturate <= 0 {
		return fmt.Errorf("bp saturation must be positive")
	}
	return nil
}
