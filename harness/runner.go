// Package harness runs decoding trials on several workers and aggregates
// the outcome into a per-iteration histogram.
package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/internal/prng"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

//go:generate mockgen -destination mock_decoder_test.go -package harness github.com/qcmdpc/qcmdpc-dfr/mdpc Decoder

// DecoderFactory builds the decoder of one worker. rng is the worker's
// stream.
type DecoderFactory func(cfg mdpc.Config, rng mdpc.Source) (mdpc.Decoder, error)

// Options configures a Runner.
type Options struct {
	Decoder mdpc.Config
	MaxIter int   // iteration cap of a trial; 0 is allowed
	Rounds  int64 // total trials, -1 for unlimited
	Workers int   // default numCPU
	Seed    prng.Seed
	Weak    gen.WeakKind
	WeakP   int
	Floor   gen.FloorKind
	FloorP  int

	Base       Stats // counts carried over from a previous run
	NewDecoder DecoderFactory
	Logger     *slog.Logger
}

func (o *Options) setDefaults() error {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.NewDecoder == nil {
		o.NewDecoder = mdpc.New
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Seed.IsZero() {
		seed, err := prng.NewSeed()
		if err != nil {
			return err
		}
		o.Seed = seed
	}
	o.Decoder.SetDefaults()
	return nil
}

// slot is the counters of one worker. Only its worker writes it. seq is
// odd while a trial is being recorded.
type slot struct {
	seq       atomic.Uint64
	tests     atomic.Int64
	successes atomic.Int64
	iter      []atomic.Int64 // successes by iteration count
	_         [64]byte
}

// record tallies one trial; it is the iteration count of a success.
func (sl *slot) record(ok bool, it int) {
	sl.seq.Add(1)
	if ok {
		sl.successes.Add(1)
		sl.iter[it].Add(1)
	}
	sl.tests.Add(1)
	sl.seq.Add(1)
}

// read adds a consistent copy of the slot to s, retrying while the worker
// records a trial. buf holds len(sl.iter) entries.
func (sl *slot) read(s *Stats, buf []int64) {
	for {
		seq := sl.seq.Load()
		if seq&1 != 0 {
			runtime.Gosched()
			continue
		}
		tests, successes := sl.tests.Load(), sl.successes.Load()
		for i := range sl.iter {
			buf[i] = sl.iter[i].Load()
		}
		if sl.seq.Load() != seq {
			continue
		}
		s.Tests += tests
		s.Successes += successes
		for i, c := range buf {
			s.Iter[i] += c
		}
		return
	}
}

// Runner owns the per-worker counters and the stop flag.
type Runner struct {
	opts  Options
	log   *slog.Logger
	slots []*slot
	stop  atomic.Bool
	start atomic.Int64 // unix nanoseconds of Run
}

// NewRunner validates opts and allocates the worker slots.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if err := opts.Decoder.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxIter < 0 {
		return nil, fmt.Errorf("max iterations %d must not be negative", opts.MaxIter)
	}
	if opts.Rounds < -1 {
		return nil, fmt.Errorf("rounds %d: use -1 for unlimited", opts.Rounds)
	}
	if err := gen.ValidateWeak(opts.Weak, opts.WeakP, opts.Decoder.Params); err != nil {
		return nil, err
	}
	if err := gen.ValidateFloor(opts.Floor, opts.FloorP, opts.Decoder.Params); err != nil {
		return nil, err
	}
	if opts.Base.Tests > 0 && opts.Base.MaxIter != opts.MaxIter {
		return nil, fmt.Errorf("resumed statistics use max iterations %d, not %d", opts.Base.MaxIter, opts.MaxIter)
	}

	r := &Runner{
		opts:  opts,
		log:   opts.Logger.With("component", "harness"),
		slots: make([]*slot, opts.Workers),
	}
	for i := range r.slots {
		r.slots[i] = &slot{iter: make([]atomic.Int64, histLen(opts.MaxIter))}
	}
	return r, nil
}

// histLen leaves room for decoders that count re-check steps past the cap.
func histLen(maxIter int) int { return maxIter + 1 + mdpc.MaxOvershoot }

// Options returns the options after defaults.
func (r *Runner) Options() Options { return r.opts }

// Run blocks until every worker reached its share of the rounds, Stop was
// called or ctx was cancelled. Trials in flight always complete.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	r.start.Store(start.UnixNano())
	r.log.Info("starting", "workers", r.opts.Workers, "rounds", r.opts.Rounds,
		"algo", r.opts.Decoder.Algo, "kernel", r.opts.Decoder.Kernel, "seed", r.opts.Seed)

	g, ctx := errgroup.WithContext(ctx)
	for id := range r.slots {
		id := id
		g.Go(func() error { return r.work(ctx, id) })
	}
	err := g.Wait()

	s := r.Snapshot()
	r.log.Info("done", "tests", s.Tests, "failures", s.Failures(), "elapsed", time.Since(start).Round(time.Millisecond))
	return err
}

// Stop asks every worker to return after its current trial.
func (r *Runner) Stop() { r.stop.Store(true) }

// Stopped reports whether Stop was called.
func (r *Runner) Stopped() bool { return r.stop.Load() }

// target is the number of trials of worker id; the remainder of the
// division goes to the highest ids.
func (r *Runner) target(id int) int64 {
	if r.opts.Rounds < 0 {
		return -1
	}
	return (int64(id) + r.opts.Rounds) / int64(r.opts.Workers)
}

// trial is the reusable data of one worker.
type trial struct {
	h      *mdpc.CodeMatrix
	e      *mdpc.ErrorVector
	s      *mdpc.Syndrome
	errPos mdpc.Sparse
	synPos mdpc.Sparse
	errGen *gen.ErrorGen
}

func (r *Runner) work(ctx context.Context, id int) error {
	p := r.opts.Decoder.Params
	rng := r.opts.Seed.Stream(id)
	dec, err := r.opts.NewDecoder(r.opts.Decoder, rng)
	if err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}
	errGen, err := gen.NewErrorGen(p, r.opts.Floor, r.opts.FloorP)
	if err != nil {
		return err
	}
	tr := trial{
		h:      mdpc.NewCodeMatrix(p),
		e:      mdpc.NewErrorVector(p),
		s:      mdpc.NewSyndrome(p),
		errPos: make(mdpc.Sparse, p.ErrorWeight),
		synPos: make(mdpc.Sparse, p.SyndromeStop()),
		errGen: errGen,
	}

	sl := r.slots[id]
	target := r.target(id)
	for !r.stop.Load() && (target < 0 || sl.tests.Load() < target) {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.runTrial(dec, rng, &tr, sl); err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}
	}
	return nil
}

var errIterRange = errors.New("decoder reported an iteration count out of range")

// check panics if the generators produced a malformed matrix or an error
// pattern of the wrong weight.
func (tr *trial) check(p mdpc.Params) {
	tr.h.Validate()
	if tr.e.Weight != p.ErrorWeight {
		panic(fmt.Sprintf("harness: error weight %d, want %d", tr.e.Weight, p.ErrorWeight))
	}
}

func (r *Runner) runTrial(dec mdpc.Decoder, rng mdpc.Source, tr *trial, sl *slot) error {
	p := r.opts.Decoder.Params
	gen.Code(tr.h, r.opts.Weak, r.opts.WeakP, rng)
	tr.errGen.Error(tr.errPos, tr.h, rng)
	tr.e.SetSparse(tr.errPos)
	r.opts.Decoder.Kernel.Syndrome(tr.s, tr.h, tr.e)
	if p.Ouroboros {
		gen.SyndromeError(tr.synPos, p.SyndromeStop(), p.BlockLength, rng)
		tr.s.AddSparse(tr.synPos)
	}

	tr.check(p)

	dec.Reset()
	dec.Attach(tr.h, tr.e, tr.s)
	ok := dec.Decode(r.opts.MaxIter)
	it := 0
	if ok {
		if it = dec.Iter(); it < 0 || it >= len(sl.iter) {
			return fmt.Errorf("%w: %d", errIterRange, it)
		}
	}
	sl.record(ok, it)
	return nil
}

// Snapshot sums the worker counters and the base statistics. Each worker's
// counters are read between two trials; workers keep running, so the
// snapshot mixes slightly different instants across workers.
func (r *Runner) Snapshot() Stats {
	n := histLen(r.opts.MaxIter)
	s := Stats{MaxIter: r.opts.MaxIter, Iter: make([]int64, n)}
	buf := make([]int64, n)
	for _, sl := range r.slots {
		sl.read(&s, buf)
	}
	if r.opts.Base.Tests > 0 {
		s.Merge(r.opts.Base)
	}
	return s
}

// Elapsed is the time since Run started.
func (r *Runner) Elapsed() time.Duration {
	ns := r.start.Load()
	if ns == 0 {
		return 0
	}
	return time.Since(time.Unix(0, ns))
}
