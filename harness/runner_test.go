package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/internal/prng"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

var smallParams = mdpc.Params{BlockLength: 1021, BlockWeight: 15, ErrorWeight: 30}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func mockFactory(ctrl *gomock.Controller, setup func(m *MockDecoder)) DecoderFactory {
	return func(cfg mdpc.Config, rng mdpc.Source) (mdpc.Decoder, error) {
		m := NewMockDecoder(ctrl)
		m.EXPECT().Reset().AnyTimes()
		m.EXPECT().Attach(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
		setup(m)
		return m, nil
	}
}

func testOptions() Options {
	return Options{
		Decoder: mdpc.Config{Params: smallParams, Algo: mdpc.Classic},
		MaxIter: 5,
		Rounds:  10,
		Workers: 3,
		Seed:    prng.Seed{1, 2, 3, 4},
		Logger:  quietLogger(),
	}
}

func TestRunnerSplitsRounds(t *testing.T) {
	ctrl := gomock.NewController(t)
	var calls atomic.Int64
	opts := testOptions()
	opts.NewDecoder = mockFactory(ctrl, func(m *MockDecoder) {
		m.EXPECT().Decode(5).DoAndReturn(func(int) bool {
			// every third trial fails
			return calls.Add(1)%3 != 0
		}).AnyTimes()
		m.EXPECT().Iter().Return(2).AnyTimes()
	})
	r, err := NewRunner(opts)
	require.NoError(t, err)
	require.Equal(t, int64(3), r.target(0))
	require.Equal(t, int64(3), r.target(1))
	require.Equal(t, int64(4), r.target(2))

	require.NoError(t, r.Run(context.Background()))
	s := r.Snapshot()
	require.Equal(t, int64(10), s.Tests)
	require.Equal(t, int64(10), calls.Load())
	require.Equal(t, int64(7), s.Successes)
	require.Equal(t, int64(7), s.Iter[2])
	require.Equal(t, "10 2:7 >5:3", s.String())
}

func TestRunnerStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	opts := testOptions()
	opts.Rounds = -1
	var r *Runner
	var calls atomic.Int64
	opts.NewDecoder = mockFactory(ctrl, func(m *MockDecoder) {
		m.EXPECT().Decode(gomock.Any()).DoAndReturn(func(int) bool {
			if calls.Add(1) == 50 {
				r.Stop()
			}
			return true
		}).AnyTimes()
		m.EXPECT().Iter().Return(1).AnyTimes()
	})
	var err error
	r, err = NewRunner(opts)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	require.True(t, r.Stopped())
	s := r.Snapshot()
	// each worker finishes the trial it was running
	require.GreaterOrEqual(t, s.Tests, int64(50))
	require.LessOrEqual(t, s.Tests, int64(50+opts.Workers))
	require.Zero(t, s.Failures())
}

func TestRunnerContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	opts := testOptions()
	opts.Rounds = -1
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	opts.NewDecoder = mockFactory(ctrl, func(m *MockDecoder) {
		m.EXPECT().Decode(gomock.Any()).DoAndReturn(func(int) bool {
			if calls.Add(1) == 20 {
				cancel()
			}
			return false
		}).AnyTimes()
	})
	r, err := NewRunner(opts)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))
	require.Equal(t, r.Snapshot().Tests, r.Snapshot().Failures())
}

func TestRunnerIterationOutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	opts := testOptions()
	opts.NewDecoder = mockFactory(ctrl, func(m *MockDecoder) {
		m.EXPECT().Decode(gomock.Any()).Return(true).AnyTimes()
		m.EXPECT().Iter().Return(opts.MaxIter + mdpc.MaxOvershoot + 1).AnyTimes()
	})
	r, err := NewRunner(opts)
	require.NoError(t, err)
	err = r.Run(context.Background())
	require.ErrorIs(t, err, errIterRange)
}

func TestRunnerFactoryError(t *testing.T) {
	opts := testOptions()
	boom := errors.New("boom")
	opts.NewDecoder = func(mdpc.Config, mdpc.Source) (mdpc.Decoder, error) { return nil, boom }
	r, err := NewRunner(opts)
	require.NoError(t, err)
	require.ErrorIs(t, r.Run(context.Background()), boom)
}

func TestNewRunnerRejects(t *testing.T) {
	for name, mutate := range map[string]func(*Options){
		"max iter":   func(o *Options) { o.MaxIter = -1 },
		"rounds":     func(o *Options) { o.Rounds = -2 },
		"weak":       func(o *Options) { o.Weak, o.WeakP = gen.WeakType1, 99 },
		"floor":      func(o *Options) { o.Floor, o.FloorP = gen.FloorCodeword, 31 },
		"params":     func(o *Options) { o.Decoder.BlockWeight = 2000 },
		"bp+ouro":    func(o *Options) { o.Decoder.Algo, o.Decoder.Ouroboros = mdpc.BP, true },
		"resume cap": func(o *Options) { o.Base = Stats{MaxIter: 7, Tests: 3, Iter: make([]int64, 8)} },
		"composite":  func(o *Options) { o.Decoder.BlockLength, o.Weak, o.WeakP = 1000, gen.WeakType1, 15 },
	} {
		opts := testOptions()
		mutate(&opts)
		_, err := NewRunner(opts)
		require.Error(t, err, name)
	}
}

func TestRunnerMaxIterZeroFails(t *testing.T) {
	opts := testOptions()
	opts.MaxIter = 0
	opts.Rounds = 12
	r, err := NewRunner(opts)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	s := r.Snapshot()
	require.Equal(t, int64(12), s.Tests)
	require.Zero(t, s.Successes)
	require.Equal(t, "12 >0:12", s.String())
}

func TestRunnerDeterministic(t *testing.T) {
	run := func(workers int) Stats {
		opts := testOptions()
		opts.Decoder.ErrorWeight = 20
		opts.MaxIter = 20
		opts.Rounds = 40
		opts.Workers = workers
		r, err := NewRunner(opts)
		require.NoError(t, err)
		require.NoError(t, r.Run(context.Background()))
		return r.Snapshot()
	}
	a, b := run(1), run(1)
	require.Equal(t, a, b)

	c := run(4)
	require.Equal(t, int64(40), c.Tests)
}

func TestRunnerResumeAddsBase(t *testing.T) {
	opts := testOptions()
	opts.MaxIter = 0
	opts.Rounds = 2
	opts.Base = Stats{MaxIter: 0, Tests: 5, Successes: 5, Iter: []int64{5}}
	r, err := NewRunner(opts)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	s := r.Snapshot()
	require.Equal(t, int64(7), s.Tests)
	require.Equal(t, int64(5), s.Successes)
}

func TestRunnerOuroborosAndFloor(t *testing.T) {
	opts := testOptions()
	opts.Decoder = mdpc.Config{Params: mdpc.Params{BlockLength: 1021, BlockWeight: 15, ErrorWeight: 30, Ouroboros: true}, Algo: mdpc.GrayBGF}
	opts.Floor, opts.FloorP = gen.FloorNearCodeword, 10
	opts.Weak, opts.WeakP = gen.WeakType3, 4
	r, err := NewRunner(opts)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, int64(10), r.Snapshot().Tests)
}

func TestSnapshotWaitsForRecordedTrial(t *testing.T) {
	opts := testOptions()
	opts.Workers = 1
	r, err := NewRunner(opts)
	require.NoError(t, err)
	sl := r.slots[0]
	for i := 0; i < 3; i++ {
		sl.record(true, 2)
	}

	// a trial half recorded
	sl.seq.Add(1)
	sl.successes.Add(1)
	sl.iter[2].Add(1)

	done := make(chan Stats)
	go func() { done <- r.Snapshot() }()
	select {
	case s := <-done:
		t.Fatalf("snapshot %q taken during a trial", s)
	case <-time.After(50 * time.Millisecond):
	}
	sl.tests.Add(1)
	sl.seq.Add(1)

	s := <-done
	require.Equal(t, "4 2:4", s.String())
	parsed, err := ParseStats(s.String(), opts.MaxIter)
	require.NoError(t, err)
	require.Equal(t, s.Successes, parsed.Successes)
}

func TestSnapshotLineAlwaysParses(t *testing.T) {
	ctrl := gomock.NewController(t)
	opts := testOptions()
	opts.Rounds = 3000
	var calls atomic.Int64
	opts.NewDecoder = mockFactory(ctrl, func(m *MockDecoder) {
		m.EXPECT().Decode(gomock.Any()).DoAndReturn(func(int) bool { return calls.Add(1)%4 != 0 }).AnyTimes()
		m.EXPECT().Iter().Return(3).AnyTimes()
	})
	r, err := NewRunner(opts)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()
	for running := true; running; {
		select {
		case err := <-done:
			require.NoError(t, err)
			running = false
		default:
		}
		s := r.Snapshot()
		_, err := ParseStats(s.String(), opts.MaxIter)
		require.NoError(t, err, s.String())
		require.Equal(t, s.Successes, s.Iter[3])
	}
}

func TestTrialCheckPanics(t *testing.T) {
	p := smallParams
	newTrial := func() *trial {
		tr := &trial{h: mdpc.NewCodeMatrix(p), e: mdpc.NewErrorVector(p)}
		tr.h.Generate(prng.New(prng.Seed{9, 9, 9, 9}))
		pos := make(mdpc.Sparse, p.ErrorWeight)
		mdpc.SparseRand(pos, p.ErrorWeight, p.Length(), prng.New(prng.Seed{8, 8, 8, 8}))
		tr.e.SetSparse(pos)
		return tr
	}

	tr := newTrial()
	require.NotPanics(t, func() { tr.check(p) })

	tr = newTrial()
	tr.h.Columns[0][1] = tr.h.Columns[0][0]
	require.Panics(t, func() { tr.check(p) })

	tr = newTrial()
	tr.e.Toggle(0, 0)
	require.Panics(t, func() { tr.check(p) })
}
