package mdpc

// flipList is a doubly linked list over flat positions k*n+j, holding the
// speculative flips with their time of death.
type flipList struct {
	first  int
	length int
	tod    []uint8
	prev   []int
	next   []int
}

func newFlipList(size int) flipList {
	return flipList{first: -1, tod: make([]uint8, size), prev: make([]int, size), next: make([]int, size)}
}

func (fl *flipList) reset() {
	fl.first = -1
	fl.length = 0
}

// add pushes pos at the front.
func (fl *flipList) add(pos int) {
	fl.next[pos] = fl.first
	fl.prev[pos] = -1
	if fl.first != -1 {
		fl.prev[fl.first] = pos
	}
	fl.first = pos
	fl.length++
}

// remove unlinks pos. next[pos] is left intact so a walk can continue.
func (fl *flipList) remove(pos int) {
	next, prev := fl.next[pos], fl.prev[pos]
	if next != -1 {
		fl.prev[next] = prev
	}
	if prev != -1 {
		fl.next[prev] = next
	} else {
		fl.first = next
	}
	fl.length--
}

// backflipDecoder is CLASSIC with retractable flips: each new flip gets a
// time-to-live and is undone when it expires, unless it was flipped back
// meanwhile.
type backflipDecoder struct {
	engine
	fl   flipList
	thr  [5]int // thr[0] flips; thr[1:] are the BACKFLIP2 ttl tiers
	mod  int
	algo Algo
}

func newBackflipDecoder(cfg Config) *backflipDecoder {
	return &backflipDecoder{
		engine: newEngine(cfg),
		fl:     newFlipList(cfg.Length()),
		mod:    cfg.TTLSaturate + 1,
		algo:   cfg.Algo,
	}
}

func (d *backflipDecoder) Reset() {
	d.engine.Reset()
	d.fl.reset()
}

// affineTTL is clamp(trunc(c0 + c1*diff), 1, saturate).
func (d *backflipDecoder) affineTTL(diff int) int {
	ttl := int(d.cfg.TTLC0 + d.cfg.TTLC1*float64(diff))
	if ttl < 1 {
		ttl = 1
	}
	if ttl > d.cfg.TTLSaturate {
		ttl = d.cfg.TTLSaturate
	}
	return ttl
}

// tierTTL maps a counter to 1..5 by the successive BACKFLIP2 thresholds.
func (d *backflipDecoder) tierTTL(c int) int {
	for tier := 1; tier < len(d.thr); tier++ {
		if c < d.thr[tier] {
			return tier
		}
	}
	return len(d.thr)
}

func (d *backflipDecoder) updateThresholds() {
	t := 1
	if d.cfg.ErrorWeight > d.fl.length {
		t = d.cfg.ErrorWeight - d.fl.length
	}
	S := d.syn.Weight
	if d.algo == Backflip {
		d.thr[0] = d.model.Exact(S, t)
		return
	}
	for i, a := range d.cfg.Alphas {
		d.thr[i] = d.model.Alpha(S, t, a)
	}
}

func (d *backflipDecoder) Decode(maxIter int) bool {
	d.blocked = false
	for d.iter < maxIter && !d.stopped() {
		d.iter++
		d.computeCounters()
		if !d.blocked {
			d.updateThresholds()
		}
		thr := d.thr[0]

		d.blocked = true
		for k := 0; k < Index; k++ {
			for j, c := range d.counter[k] {
				if int(c) < thr {
					continue
				}
				pos := k*d.n + j
				if d.flipped[k][j] != 0 {
					d.fl.remove(pos)
				} else {
					var ttl int
					if d.algo == Backflip {
						ttl = d.affineTTL(int(c) - thr)
					} else {
						ttl = d.tierTTL(int(c))
					}
					d.fl.add(pos)
					d.fl.tod[pos] = uint8((d.iter + ttl) % d.mod)
				}
				d.singleFlip(k, j)
				d.blocked = false
			}
		}

		if !d.stopped() && d.fl.length > 0 {
			now := uint8(d.iter % d.mod)
			for pos := d.fl.first; pos != -1; pos = d.fl.next[pos] {
				if d.fl.tod[pos] != now {
					continue
				}
				k, j := 0, pos
				if pos >= d.n {
					k, j = 1, pos-d.n
				}
				d.fl.remove(pos)
				d.singleFlip(k, j)
				d.blocked = false
			}
		}
	}
	return d.e.Weight == 0
}
