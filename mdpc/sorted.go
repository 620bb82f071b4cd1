package mdpc

import (
	"container/heap"
	"slices"
)

type posCounter struct {
	index    uint8
	position int
	counter  int
}

// minHeap keeps the largest counters seen so far; the root is the
// smallest of them.
type minHeap []posCounter

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].counter < h[j].counter }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(posCounter)) }
func (h *minHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// sortDecoder visits the GraySize positions with the largest initial
// counters cyclically, flipping those at majority, then finishes as SBS.
type sortDecoder struct {
	engine
	rng    Source
	sorted minHeap
}

func newSortDecoder(cfg Config, rng Source) *sortDecoder {
	return &sortDecoder{
		engine: newEngine(cfg),
		rng:    rng,
		sorted: make(minHeap, 0, cfg.GraySize),
	}
}

// sortCounters fills d.sorted with the size largest counters, in
// decreasing order.
func (d *sortDecoder) sortCounters(size int) {
	d.sorted = d.sorted[:0]
	for k := 0; k < Index; k++ {
		for j, c := range d.counter[k] {
			pc := posCounter{index: uint8(k), position: j, counter: int(c)}
			switch {
			case len(d.sorted) < size:
				d.sorted = append(d.sorted, pc)
				if len(d.sorted) == size {
					heap.Init(&d.sorted)
				}
			case d.sorted[0].counter < pc.counter:
				d.sorted[0] = pc
				heap.Fix(&d.sorted, 0)
			}
		}
	}
	slices.SortFunc(d.sorted, func(a, b posCounter) int { return b.counter - a.counter })
}

func (d *sortDecoder) Decode(maxIter int) bool {
	d.computeCounters()
	d.sortCounters(d.cfg.GraySize)

	thr := (d.w + 1) / 2
	i := 0
	for d.iter < Index*d.n && d.iter < maxIter {
		d.iter++
		pc := d.sorted[i]
		if d.getCounter(int(pc.index), pc.position) >= thr {
			d.singleFlip(int(pc.index), pc.position)
		}
		if i++; i == len(d.sorted) {
			i = 0
		}
	}

	return sbsRun(&d.engine, d.rng, maxIter)
}
