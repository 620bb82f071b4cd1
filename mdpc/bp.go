package mdpc

import "math"

// bpDecoder is sum-product belief propagation over the Tanner graph of H.
// It decodes the noisy word c+e for a random codeword c drawn at Attach
// and succeeds when the hard decision equals c.
type bpDecoder struct {
	engine
	rng Source

	message  []uint8
	codeword [Index][]uint8
	bits     *ErrorVector // hard decision
	r        [Index][]float64
	vToC     [Index][]float64 // [l*n+j], message from variable j to its l-th check
	cToV     [Index][]float64

	checks    *extrinsic // Index*w incident variables per check
	variables *extrinsic // w incident checks per variable
}

func newBPDecoder(cfg Config, rng Source) *bpDecoder {
	n, w := cfg.BlockLength, cfg.BlockWeight
	d := &bpDecoder{
		engine:    newEngine(cfg),
		rng:       rng,
		message:   make([]uint8, 2*n),
		bits:      NewErrorVector(cfg.Params),
		checks:    newProductExtrinsic(Index * w),
		variables: newSumExtrinsic(w),
	}
	for k := 0; k < Index; k++ {
		d.codeword[k] = make([]uint8, 2*n)
		d.r[k] = make([]float64, n)
		d.vToC[k] = make([]float64, w*n)
		d.cToV[k] = make([]float64, w*n)
	}
	return d
}

func (d *bpDecoder) saturate(x float64) float64 {
	sat := d.cfg.BPSaturate
	switch {
	case x > sat:
		return sat
	case x < -sat:
		return -sat
	}
	return x
}

// Attach binds the trial data and draws the codeword the error is added
// to. The priors and initial variable messages follow from c+e.
func (d *bpDecoder) Attach(h *CodeMatrix, e *ErrorVector, s *Syndrome) {
	d.engine.Attach(h, e, s)

	RandomMessage(d.message, d.n, d.rng)
	d.kernel.Codeword(&d.codeword, h, d.message)

	t := float64(d.cfg.ErrorWeight)
	prior := math.Log((float64(Index*d.n) - t) / t)
	for k := 0; k < Index; k++ {
		for j := 0; j < d.n; j++ {
			sign := float64((1 - 2*int(e.Vec[k][j])) * (1 - 2*int(d.codeword[k][j])))
			d.r[k][j] = sign * prior
			v := d.saturate(d.r[k][j])
			for l := 0; l < d.w; l++ {
				d.vToC[k][l*d.n+j] = v
			}
		}
	}
}

// neighbor is the variable of block k sitting at the l-th one of row i.
func (d *bpDecoder) neighbor(k, l, i int) int {
	col := d.h.Columns[k][l]
	if i >= col {
		return i - col
	}
	return i - col + d.n
}

func (d *bpDecoder) checkPass() {
	leaves := d.checks.leaves()
	for i := 0; i < d.n; i++ {
		for k := 0; k < Index; k++ {
			for l := 0; l < d.w; l++ {
				j := d.neighbor(k, l, i)
				leaves[k*d.w+l] = math.Tanh(d.vToC[k][l*d.n+j] / 2)
			}
		}
		d.checks.run()
		for k := 0; k < Index; k++ {
			for l := 0; l < d.w; l++ {
				j := d.neighbor(k, l, i)
				d.cToV[k][l*d.n+j] = d.saturate(2 * math.Atanh(leaves[k*d.w+l]) * d.cfg.BPScale)
			}
		}
	}
}

func (d *bpDecoder) variablePass() {
	leaves := d.variables.leaves()
	for k := 0; k < Index; k++ {
		for j := 0; j < d.n; j++ {
			for l := 0; l < d.w; l++ {
				leaves[l] = d.cToV[k][l*d.n+j]
			}
			d.variables.run()
			for l := 0; l < d.w; l++ {
				d.vToC[k][l*d.n+j] = d.saturate(d.r[k][j] + leaves[l])
			}
		}
	}
}

// toBinary hardens every position from its posterior (prior plus all
// incoming check messages) and sets the error weight to the number
// of positions that differ from the codeword.
func (d *bpDecoder) toBinary() {
	d.e.Weight = 0
	for k := 0; k < Index; k++ {
		bits := d.bits.Vec[k]
		for j := 0; j < d.n; j++ {
			val := d.r[k][j]
			for l := 0; l < d.w; l++ {
				val += d.cToV[k][l*d.n+j]
			}
			var b uint8
			if val < 0 {
				b = 1
			}
			bits[j], bits[d.n+j] = b, b
			d.e.Weight += int(b ^ d.codeword[k][j])
		}
	}
}

func (d *bpDecoder) Decode(maxIter int) bool {
	d.iter = 0
	for d.iter < maxIter {
		d.iter++
		d.checkPass()
		d.variablePass()
		d.toBinary()
		d.kernel.Syndrome(d.syn, d.h, d.bits)
		if d.stopped() {
			break
		}
	}
	return d.e.Weight == 0
}
