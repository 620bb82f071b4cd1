package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/dfrstat"
)

var csvHeader = []string{"iteration", "decoded", "failures", "tests", "log2_dfr", "log2_lower", "log2_upper"}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

// WriteCSV writes one row per iteration count reached by a trial, with the
// failure rate of a decoder stopped there.
func WriteCSV(w io.Writer, s harness.Stats, alpha float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range dfrstat.Curve(s, alpha) {
		row := []string{
			strconv.Itoa(p.Iter),
			strconv.FormatInt(s.Iter[p.Iter], 10),
			strconv.FormatInt(p.Failures, 10),
			strconv.FormatInt(p.Tests, 10),
			ftoa(p.Log2),
			ftoa(p.Lower),
			ftoa(p.Upper),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
