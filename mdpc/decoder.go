package mdpc

import "fmt"

// Decoder is one decoding state machine. A decoder borrows the matrix,
// error and syndrome of the current trial; Reset clears its own state.
type Decoder interface {
	// Reset clears auxiliary state and the iteration count.
	Reset()
	// Attach binds the trial data. The error vector and syndrome are
	// mutated by Decode.
	Attach(h *CodeMatrix, e *ErrorVector, s *Syndrome)
	// Decode runs until the syndrome reaches the stop weight, maxIter
	// iterations were spent or the variant gives up. It reports whether
	// the remaining error weight is zero.
	Decode(maxIter int) bool
	// Iter is the number of iterations spent by the last Decode.
	Iter() int
	Algo() Algo
}

// New returns the decoder selected by cfg.Algo. rng is used by the
// randomized variants (SBS, SORT) and to draw the BP codeword.
func New(cfg Config, rng Source) (Decoder, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case cfg.Algo == Classic:
		return &classicDecoder{engine: newEngine(cfg)}, nil
	case cfg.Algo == Backflip || cfg.Algo == Backflip2:
		return newBackflipDecoder(cfg), nil
	case cfg.Algo.isGray():
		return newGrayDecoder(cfg), nil
	case cfg.Algo == SBS:
		return &sbsDecoder{engine: newEngine(cfg), rng: rng}, nil
	case cfg.Algo == Sort:
		return newSortDecoder(cfg, rng), nil
	case cfg.Algo == BP:
		return newBPDecoder(cfg, rng), nil
	}
	return nil, fmt.Errorf("unknown algorithm %v", cfg.Algo)
}

// engine is the state shared by the bit-flipping variants.
type engine struct {
	cfg     Config
	n, w    int
	stop    int
	model   ThresholdModel
	kernel  Kernel
	h       *CodeMatrix
	e       *ErrorVector
	syn     *Syndrome
	counter Counters
	flipped [Index][]uint8 // positions flipped an odd number of times
	iter    int
	blocked bool
}

func newEngine(cfg Config) engine {
	en := engine{
		cfg:     cfg,
		n:       cfg.BlockLength,
		w:       cfg.BlockWeight,
		stop:    cfg.SyndromeStop(),
		model:   NewThresholdModel(cfg.Params),
		kernel:  cfg.Kernel,
		counter: NewCounters(cfg.Params),
	}
	for i := range en.flipped {
		en.flipped[i] = make([]uint8, cfg.BlockLength)
	}
	return en
}

func (en *engine) Reset() {
	for i := range en.flipped {
		clear(en.flipped[i])
	}
	en.iter = 0
	en.blocked = false
}

func (en *engine) Attach(h *CodeMatrix, e *ErrorVector, s *Syndrome) {
	if h.n != en.n || h.w != en.w || e.n != en.n || s.n != en.n {
		panic(fmt.Sprintf("mdpc: trial data sized (r=%d w=%d) for decoder (r=%d w=%d)", h.n, h.w, en.n, en.w))
	}
	en.h, en.e, en.syn = h, e, s
}

func (en *engine) Iter() int     { return en.iter }
func (en *engine) Algo() Algo    { return en.cfg.Algo }
func (en *engine) stopped() bool { return en.syn.Weight == en.stop }

func (en *engine) computeCounters() {
	en.kernel.Counters(en.counter, en.syn, en.h)
}

// getCounter counts the unsatisfied checks of column (k, j) directly from
// the syndrome. Column offsets are increasing, so the wrap happens once.
func (en *engine) getCounter(k, j int) int {
	col := en.h.Columns[k]
	syn := en.syn.Vec
	counter := 0
	offset := j
	l := 0
	for ; l < len(col); l++ {
		i := offset + col[l]
		if i >= en.n {
			offset -= en.n
			break
		}
		counter += int(syn[i])
	}
	for ; l < len(col); l++ {
		counter += int(syn[offset+col[l]])
	}
	return counter
}

// flipColumn xors column (k, j) into the syndrome.
func (en *engine) flipColumn(k, j int) {
	col := en.h.Columns[k]
	syn := en.syn.Vec
	offset := j
	l := 0
	for ; l < len(col); l++ {
		i := offset + col[l]
		if i >= en.n {
			offset -= en.n
			break
		}
		syn[i] ^= 1
	}
	for ; l < len(col); l++ {
		syn[offset+col[l]] ^= 1
	}
}

// singleFlip flips bit (k, j) of the error and updates the syndrome and
// both weights incrementally.
func (en *engine) singleFlip(k, j int) {
	counter := en.getCounter(k, j)
	en.flipColumn(k, j)
	en.flipped[k][j] ^= 1
	en.syn.Weight += en.w - 2*counter
	en.e.Toggle(k, j)
}
