// Package report writes run results for downstream tools: JSON lines
// records, per-iteration CSV tables and HTML charts.
package report

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/francoispqt/gojay"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
)

// Record is one JSON line: the parameters of a run and its statistics at
// some point in time.
type Record struct {
	RunID   string
	Params  string
	Time    time.Time
	Elapsed time.Duration
	Stats   harness.Stats
}

var (
	_ gojay.MarshalerJSONObject   = &Record{}
	_ gojay.UnmarshalerJSONObject = &Record{}
)

// NewRecord snapshots s for the run described by l.
func NewRecord(l paramline.Line, s harness.Stats, elapsed time.Duration, now time.Time) *Record {
	return &Record{
		RunID:   l.RunID(),
		Params:  l.String(),
		Time:    now.UTC(),
		Elapsed: elapsed,
		Stats:   s.Clone(),
	}
}

func (r *Record) IsNil() bool { return r == nil }

func (r *Record) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("run_id", r.RunID)
	enc.StringKey("params", r.Params)
	enc.StringKey("time", r.Time.Format(time.RFC3339Nano))
	enc.Float64Key("elapsed_s", r.Elapsed.Seconds())
	enc.IntKey("max_iter", r.Stats.MaxIter)
	enc.Int64Key("tests", r.Stats.Tests)
	enc.Int64Key("successes", r.Stats.Successes)
	enc.Int64Key("failures", r.Stats.Failures())
	enc.ArrayKey("iter", histogram(r.Stats.Iter))
}

func (r *Record) NKeys() int { return 0 }

func (r *Record) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "run_id":
		return dec.String(&r.RunID)
	case "params":
		return dec.String(&r.Params)
	case "time":
		var s string
		if err := dec.String(&s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return err
		}
		r.Time = t
	case "elapsed_s":
		var sec float64
		if err := dec.Float64(&sec); err != nil {
			return err
		}
		r.Elapsed = time.Duration(sec * float64(time.Second))
	case "max_iter":
		return dec.Int(&r.Stats.MaxIter)
	case "tests":
		return dec.Int64(&r.Stats.Tests)
	case "successes":
		return dec.Int64(&r.Stats.Successes)
	case "iter":
		var h histogram
		if err := dec.Array(&h); err != nil {
			return err
		}
		r.Stats.Iter = h
	}
	return nil
}

// Line parses the parameter line of the record.
func (r *Record) Line() (paramline.Line, error) { return paramline.Parse(r.Params) }

type histogram []int64

func (h histogram) IsNil() bool { return h == nil }

func (h histogram) MarshalJSONArray(enc *gojay.Encoder) {
	for _, c := range h {
		enc.Int64(c)
	}
}

func (h *histogram) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var c int64
	if err := dec.Int64(&c); err != nil {
		return err
	}
	*h = append(*h, c)
	return nil
}

// JSONLWriter appends records to w, one per line.
type JSONLWriter struct {
	w io.Writer
}

func NewJSONLWriter(w io.Writer) *JSONLWriter { return &JSONLWriter{w: w} }

func (w *JSONLWriter) Write(r *Record) error {
	b, err := gojay.MarshalJSONObject(r)
	if err != nil {
		return err
	}
	_, err = w.w.Write(append(b, '\n'))
	return err
}

// maxLine bounds a record; the histogram of a 10^5 iteration cap fits.
const maxLine = 4 << 20

// ReadJSONL reads every record of r. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]*Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	var out []*Record
	for n := 1; sc.Scan(); n++ {
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		rec := &Record{}
		if err := gojay.UnmarshalJSONObject(b, rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
