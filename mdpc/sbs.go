package mdpc

// sbsDecoder flips one candidate per iteration: a random unsatisfied check,
// a random block and a random offset of that block's row designate the
// position, which is flipped when its exact counter reaches the threshold.
type sbsDecoder struct {
	engine
	rng Source
}

func (d *sbsDecoder) Decode(maxIter int) bool {
	return sbsRun(&d.engine, d.rng, maxIter)
}

// sbsRun is also the final stage of the sorted decoder.
func sbsRun(en *engine, rng Source, maxIter int) bool {
	thr := 0
	en.blocked = false
	missed := 0
	for en.iter < maxIter && !en.stopped() {
		if en.syn.Weight == 0 {
			break
		}
		en.iter++
		if missed > Index*en.n {
			// too many misses in a row: stop if nothing can flip anymore
			en.computeCounters()
			if !en.anyAtLeast(thr) {
				break
			}
			missed = 0
		}
		if !en.blocked {
			thr = en.model.Exact(en.syn.Weight, en.e.Weight)
		}
		en.blocked = true

		i := below(rng, en.n)
		for en.syn.Vec[i] == 0 {
			i = below(rng, en.n)
		}
		k := below(rng, Index)
		l := below(rng, en.w)

		j := i + en.h.Rows[k][l]
		if j >= en.n {
			j -= en.n
		}

		if en.getCounter(k, j) >= thr {
			en.singleFlip(k, j)
			en.blocked = false
		} else {
			missed++
		}
	}
	return en.e.Weight == 0
}

func (en *engine) anyAtLeast(thr int) bool {
	for k := 0; k < Index; k++ {
		for _, c := range en.counter[k] {
			if int(c) >= thr {
				return true
			}
		}
	}
	return false
}
