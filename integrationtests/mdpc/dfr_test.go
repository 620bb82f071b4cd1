package mdpc_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/qcmdpc/qcmdpc-dfr/harness"
	"github.com/qcmdpc/qcmdpc-dfr/internal/prng"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

func estimate(t *testing.T, cfg mdpc.Config, maxIter int, rounds int64, workers int) harness.Stats {
	t.Helper()
	r, err := harness.NewRunner(harness.Options{
		Decoder: cfg,
		MaxIter: maxIter,
		Rounds:  rounds,
		Workers: workers,
		Seed:    prng.Seed{0x9e3779b97f4a7c15, 0xbf58476d1ce4e5b9, 0x94d049bb133111eb, 1},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return r.Snapshot()
}

// TestCPA128Classic runs the reference parameter set on one worker: the
// histogram must be reproducible and the failure rate small.
func TestCPA128Classic(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	p, err := mdpc.LookupPreset("cpa128")
	if err != nil {
		t.Fatal(err)
	}
	cfg := mdpc.Config{Params: p, Algo: mdpc.Classic}
	a := estimate(t, cfg, 100, 1000, 1)
	b := estimate(t, cfg, 100, 1000, 1)
	if a.String() != b.String() {
		t.Fatalf("histogram not reproducible:\n%s\n%s", a, b)
	}
	if a.Tests != 1000 {
		t.Fatalf("ran %d trials", a.Tests)
	}
	if a.Failures() > 10 {
		t.Fatalf("%d failures out of 1000: %s", a.Failures(), a)
	}
	if a.Iter[0] != 0 {
		t.Fatalf("%d trials decoded without iterating: %s", a.Iter[0], a)
	}
}

func TestMaxIterZero(t *testing.T) {
	cfg := mdpc.Config{Params: mdpc.Params{BlockLength: 1021, BlockWeight: 15, ErrorWeight: 30}, Algo: mdpc.GrayBGF}
	s := estimate(t, cfg, 0, 16, 2)
	if got := s.String(); got != "16 >0:16" {
		t.Fatalf("got %q", got)
	}
}

// TestWorkersAgree compares the failure rate of one and four workers on a
// code small enough to fail often.
func TestWorkersAgree(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	cfg := mdpc.Config{Params: mdpc.Params{BlockLength: 1021, BlockWeight: 15, ErrorWeight: 30}, Algo: mdpc.Classic}
	const n = 2000
	one := estimate(t, cfg, 20, n, 1)
	four := estimate(t, cfg, 20, n, 4)
	if one.Tests != n || four.Tests != n {
		t.Fatalf("trial counts %d and %d", one.Tests, four.Tests)
	}
	p1 := float64(one.Failures()) / n
	p4 := float64(four.Failures()) / n
	p := (p1 + p4) / 2
	tol := 6*math.Sqrt(2*p*(1-p)/n) + 0.01
	if math.Abs(p1-p4) > tol {
		t.Fatalf("failure rates %.4f and %.4f differ by more than %.4f", p1, p4, tol)
	}
}
