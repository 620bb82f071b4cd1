package harness

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Stats is the outcome of a run: the number of trials and the successes
// by number of iterations. Trials not in Iter failed.
type Stats struct {
	MaxIter   int
	Tests     int64
	Successes int64
	Iter      []int64
}

// Failures is Tests - Successes.
func (s Stats) Failures() int64 {
	if f := s.Tests - s.Successes; f > 0 {
		return f
	}
	return 0
}

// String renders "<tests> it:count ... >maxIter:failures". Only non-zero
// iteration counts are listed and the failure term is omitted when there
// are none.
func (s Stats) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(s.Tests, 10))
	for it, c := range s.Iter {
		if c != 0 {
			fmt.Fprintf(&b, " %d:%d", it, c)
		}
	}
	if f := s.Failures(); f > 0 {
		fmt.Fprintf(&b, " >%d:%d", s.MaxIter, f)
	}
	return b.String()
}

var errEmptyStats = errors.New("empty statistics line")

// ParseStats reads a line written by String. maxIter is used when the line
// has no failure term to carry it.
func ParseStats(line string, maxIter int) (Stats, error) {
	fs := strings.Fields(line)
	if len(fs) == 0 {
		return Stats{}, errEmptyStats
	}
	s := Stats{MaxIter: maxIter}
	var err error
	if s.Tests, err = strconv.ParseInt(fs[0], 10, 64); err != nil {
		return Stats{}, fmt.Errorf("bad test count %q: %w", fs[0], err)
	}
	var failures int64
	for _, f := range fs[1:] {
		k, v, ok := strings.Cut(f, ":")
		if !ok {
			return Stats{}, fmt.Errorf("bad term %q", f)
		}
		count, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Stats{}, fmt.Errorf("bad term %q: %w", f, err)
		}
		if m, isFail := strings.CutPrefix(k, ">"); isFail {
			if s.MaxIter, err = strconv.Atoi(m); err != nil {
				return Stats{}, fmt.Errorf("bad term %q: %w", f, err)
			}
			failures += count
			continue
		}
		it, err := strconv.Atoi(k)
		if err != nil || it < 0 {
			return Stats{}, fmt.Errorf("bad iteration in %q", f)
		}
		if it >= len(s.Iter) {
			s.Iter = append(s.Iter, make([]int64, it+1-len(s.Iter))...)
		}
		s.Iter[it] += count
		s.Successes += count
	}
	// a line printed while workers run may be off by the trials in flight
	if s.Successes > s.Tests || failures > s.Tests {
		return Stats{}, fmt.Errorf("counts exceed the %d tests", s.Tests)
	}
	return s, nil
}

// Merge adds o into s. The larger iteration cap is kept.
func (s *Stats) Merge(o Stats) {
	s.Tests += o.Tests
	s.Successes += o.Successes
	if len(o.Iter) > len(s.Iter) {
		s.Iter = append(s.Iter, make([]int64, len(o.Iter)-len(s.Iter))...)
	}
	for i, c := range o.Iter {
		s.Iter[i] += c
	}
	s.MaxIter = max(s.MaxIter, o.MaxIter)
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	s.Iter = append([]int64(nil), s.Iter...)
	return s
}
