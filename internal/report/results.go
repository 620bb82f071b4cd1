package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
)

var errNoResults = errors.New("no statistics line after the parameter line")

// ReadResults reads the text output of the estimator: a parameter line
// followed by statistics lines, the last of which is the most recent.
// When the file holds several runs the last one is returned.
func ReadResults(r io.Reader) (paramline.Line, harness.Stats, error) {
	var (
		params, stats string
		sc            = bufio.NewScanner(r)
	)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		switch {
		case s == "":
		case paramline.IsLine(s):
			params, stats = s, ""
		default:
			stats = s
		}
	}
	if err := sc.Err(); err != nil {
		return paramline.Line{}, harness.Stats{}, err
	}
	if params == "" {
		return paramline.Line{}, harness.Stats{}, errors.New("no parameter line")
	}
	l, err := paramline.Parse(params)
	if err != nil {
		return paramline.Line{}, harness.Stats{}, err
	}
	if stats == "" {
		return paramline.Line{}, harness.Stats{}, errNoResults
	}
	s, err := harness.ParseStats(stats, 0)
	if err != nil {
		return paramline.Line{}, harness.Stats{}, err
	}
	return l, s, nil
}

// LoadFile reads a results file: JSON lines (the last record) when the
// name ends in .jsonl, the estimator text output otherwise.
func LoadFile(path string) (paramline.Line, harness.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return paramline.Line{}, harness.Stats{}, err
	}
	defer f.Close()

	if filepath.Ext(path) != ".jsonl" {
		l, s, err := ReadResults(f)
		if err != nil {
			return paramline.Line{}, harness.Stats{}, fmt.Errorf("%s: %w", path, err)
		}
		return l, s, nil
	}
	recs, err := ReadJSONL(f)
	if err != nil {
		return paramline.Line{}, harness.Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(recs) == 0 {
		return paramline.Line{}, harness.Stats{}, fmt.Errorf("%s: %w", path, errNoResults)
	}
	last := recs[len(recs)-1]
	l, err := last.Line()
	if err != nil {
		return paramline.Line{}, harness.Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, last.Stats, nil
}
