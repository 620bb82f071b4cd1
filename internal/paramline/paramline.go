// Package paramline encodes the run parameters as the one-line header of a
// results file: "-DKEY=VALUE" tokens, algorithm-specific keys last, then
// "-DALGO=NAME".
package paramline

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

// Line is everything a results file needs to be interpreted and resumed.
type Line struct {
	Decoder mdpc.Config
	Weak    gen.WeakKind
	WeakP   int
	Floor   gen.FloorKind
	FloorP  int
}

type field struct {
	key string
	val string
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func btoi(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (l *Line) fields() []field {
	c := &l.Decoder
	fs := []field{
		{"INDEX", itoa(mdpc.Index)},
		{"BLOCK_LENGTH", itoa(c.BlockLength)},
		{"BLOCK_WEIGHT", itoa(c.BlockWeight)},
		{"ERROR_WEIGHT", itoa(c.ErrorWeight)},
		{"OUROBOROS", btoi(c.Ouroboros)},
		{"WEAK", itoa(int(l.Weak))},
		{"WEAK_P", itoa(l.WeakP)},
		{"ERROR_FLOOR", itoa(int(l.Floor))},
		{"ERROR_FLOOR_P", itoa(l.FloorP)},
	}
	switch c.Algo {
	case mdpc.BP:
		fs = append(fs, field{"BP_SCALE", ftoa(c.BPScale)}, field{"BP_SATURATE", ftoa(c.BPSaturate)})
	case mdpc.GrayB, mdpc.GrayBGF, mdpc.GrayBGB, mdpc.GrayBG:
		fs = append(fs, field{"THRESHOLD_C0", ftoa(c.ThresholdC0)}, field{"THRESHOLD_C1", ftoa(c.ThresholdC1)})
	case mdpc.Backflip2:
		for i, a := range c.Alphas {
			fs = append(fs, field{"THRESHOLD_A" + itoa(i), ftoa(a)})
		}
		fs = append(fs, field{"TTL_SATURATE", itoa(c.TTLSaturate)})
	case mdpc.Backflip:
		fs = append(fs, field{"TTL_C0", ftoa(c.TTLC0)}, field{"TTL_C1", ftoa(c.TTLC1)}, field{"TTL_SATURATE", itoa(c.TTLSaturate)})
	case mdpc.Sort:
		fs = append(fs, field{"GRAY_SIZE", itoa(c.GraySize)})
	}
	return append(fs, field{"ALGO", c.Algo.String()})
}

// String renders the line without a trailing newline.
func (l Line) String() string {
	var b strings.Builder
	for i, f := range l.fields() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("-D")
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(f.val)
	}
	return b.String()
}

func (l Line) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText parses a line written by MarshalText. Keys may come in any
// order; INDEX must be 2 and ALGO must be present.
func (l *Line) UnmarshalText(b []byte) error {
	*l = Line{}
	c := &l.Decoder
	sawAlgo := false
	for _, tok := range strings.Fields(string(b)) {
		kv, ok := strings.CutPrefix(tok, "-D")
		if !ok {
			return fmt.Errorf("bad token %q", tok)
		}
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("bad token %q", tok)
		}
		var err error
		switch key {
		case "INDEX":
			var idx int
			if idx, err = strconv.Atoi(val); err == nil && idx != mdpc.Index {
				err = fmt.Errorf("only %d blocks are supported", mdpc.Index)
			}
		case "BLOCK_LENGTH":
			c.BlockLength, err = strconv.Atoi(val)
		case "BLOCK_WEIGHT":
			c.BlockWeight, err = strconv.Atoi(val)
		case "ERROR_WEIGHT":
			c.ErrorWeight, err = strconv.Atoi(val)
		case "OUROBOROS":
			var v int
			v, err = strconv.Atoi(val)
			c.Ouroboros = v != 0
		case "WEAK":
			var v int
			v, err = strconv.Atoi(val)
			l.Weak = gen.WeakKind(v)
		case "WEAK_P":
			l.WeakP, err = strconv.Atoi(val)
		case "ERROR_FLOOR":
			var v int
			v, err = strconv.Atoi(val)
			l.Floor = gen.FloorKind(v)
		case "ERROR_FLOOR_P":
			l.FloorP, err = strconv.Atoi(val)
		case "BP_SCALE":
			c.BPScale, err = strconv.ParseFloat(val, 64)
		case "BP_SATURATE":
			c.BPSaturate, err = strconv.ParseFloat(val, 64)
		case "THRESHOLD_C0":
			c.ThresholdC0, err = strconv.ParseFloat(val, 64)
		case "THRESHOLD_C1":
			c.ThresholdC1, err = strconv.ParseFloat(val, 64)
		case "THRESHOLD_A0", "THRESHOLD_A1", "THRESHOLD_A2", "THRESHOLD_A3", "THRESHOLD_A4":
			c.Alphas[key[len(key)-1]-'0'], err = strconv.ParseFloat(val, 64)
		case "TTL_C0":
			c.TTLC0, err = strconv.ParseFloat(val, 64)
		case "TTL_C1":
			c.TTLC1, err = strconv.ParseFloat(val, 64)
		case "TTL_SATURATE":
			c.TTLSaturate, err = strconv.Atoi(val)
		case "GRAY_SIZE":
			c.GraySize, err = strconv.Atoi(val)
		case "ALGO":
			c.Algo, err = mdpc.ParseAlgo(val)
			sawAlgo = true
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return fmt.Errorf("bad %s=%q: %w", key, val, err)
		}
	}
	if !sawAlgo {
		return errors.New("missing ALGO")
	}
	return nil
}

// Parse is UnmarshalText on a string.
func Parse(s string) (Line, error) {
	var l Line
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// IsLine reports whether s looks like a parameter line rather than a
// statistics line.
func IsLine(s string) bool { return strings.HasPrefix(strings.TrimSpace(s), "-D") }

// RunID names the parameter set: the first 8 bytes of the SHA3-256 of the
// line, in hex. Results of runs with equal lines can be merged.
func (l Line) RunID() string {
	sum := sha3.Sum256([]byte(l.String()))
	return hex.EncodeToString(sum[:8])
}
