package mdpc

// classicDecoder flips, every iteration, all positions whose counter
// reaches the threshold computed from the current syndrome weight and
// error weight.
type classicDecoder struct {
	engine
}

func (d *classicDecoder) Decode(maxIter int) bool {
	d.blocked = false
	for d.iter < maxIter && !d.stopped() && !d.blocked {
		d.iter++
		d.computeCounters()
		thr := d.model.Exact(d.syn.Weight, d.e.Weight)

		d.blocked = true
		for k := 0; k < Index; k++ {
			for j, c := range d.counter[k] {
				if int(c) >= thr {
					d.singleFlip(k, j)
					d.blocked = false
				}
			}
		}
	}
	return d.e.Weight == 0
}
