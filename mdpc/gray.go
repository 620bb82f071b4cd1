package mdpc

// MaxOvershoot is how far past maxIter a decoder may count: the gray
// re-check steps of the last iteration are counted as iterations too.
const MaxOvershoot = 2

// candidates is a list of positions with scratch space for their exact
// counters.
type candidates struct {
	index    []uint8
	position []int
	counter  []int
}

func newCandidates(size int) candidates {
	return candidates{
		index:    make([]uint8, 0, size),
		position: make([]int, 0, size),
		counter:  make([]int, size),
	}
}

func (c *candidates) reset() {
	c.index = c.index[:0]
	c.position = c.position[:0]
}

func (c *candidates) push(k, j int) {
	c.index = append(c.index, uint8(k))
	c.position = append(c.position, j)
}

// grayDecoder is the black-gray family: an affine-threshold pass followed
// by majority re-checks of the flipped (black) positions and of the near
// misses (gray).
type grayDecoder struct {
	engine
	black, gray candidates
}

func newGrayDecoder(cfg Config) *grayDecoder {
	return &grayDecoder{
		engine: newEngine(cfg),
		black:  newCandidates(cfg.Length()),
		gray:   newCandidates(cfg.Length()),
	}
}

func (d *grayDecoder) blackStep() bool {
	if d.cfg.Algo == GrayBGF {
		return d.iter < d.cfg.BlackPassIters
	}
	return true
}

func (d *grayDecoder) grayStep() bool {
	switch d.cfg.Algo {
	case GrayB:
		return false
	case GrayBGB:
		return d.iter < d.cfg.GrayPassIters
	}
	return true
}

// recheck computes exact counters for the whole list first, then flips the
// positions still above the strict majority.
func (d *grayDecoder) recheck(c *candidates) {
	for i := range c.position {
		c.counter[i] = d.getCounter(int(c.index[i]), c.position[i])
	}
	strict := (d.w+1)/2 + 1
	for i := range c.position {
		if c.counter[i] >= strict {
			d.singleFlip(int(c.index[i]), c.position[i])
			d.blocked = false
		}
	}
}

func (d *grayDecoder) Decode(maxIter int) bool {
	d.blocked = false
	for d.iter < maxIter && !d.stopped() && !d.blocked {
		d.iter++
		d.computeCounters()
		thr := d.model.Affine(d.syn.Weight, d.cfg.ThresholdC0, d.cfg.ThresholdC1)

		d.blocked = true
		d.black.reset()
		d.gray.reset()
		for k := 0; k < Index; k++ {
			for j, c := range d.counter[k] {
				switch {
				case int(c) >= thr:
					d.singleFlip(k, j)
					d.blocked = false
					d.black.push(k, j)
				case int(c)+d.cfg.GrayDelta >= thr:
					d.gray.push(k, j)
				}
			}
		}

		// each black or gray step counts as an iteration
		if d.blackStep() {
			d.iter++
			d.recheck(&d.black)
			if d.grayStep() {
				d.iter++
				d.recheck(&d.gray)
			}
		}
	}
	return d.e.Weight == 0
}
