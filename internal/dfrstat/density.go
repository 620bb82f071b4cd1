package dfrstat

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/internal/paramline"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

func lnC(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return combin.LogGeneralizedBinomial(float64(n), float64(k))
}

// log2AtLeastOnce is log2(1 - (1-p)^tries), the probability that one of
// tries independent draws hits an event of probability exp(lnP).
func log2AtLeastOnce(lnP float64, tries int) float64 {
	p := math.Exp(lnP)
	if p == 0 {
		return math.Inf(-1)
	}
	return math.Log2(-math.Expm1(float64(tries) * math.Log1p(-p)))
}

// Density estimates, in log2, the fraction of keys (and errors) that
// belong to the class drawn by the weak and floor generators of l.
// Distance is the Hamming distance between the error and the
// near-codeword it was drawn around, 0 when no floor generator is used.
func Density(l paramline.Line) (log2 float64, distance int) {
	r := l.Decoder.BlockLength
	d := l.Decoder.BlockWeight
	t := l.Decoder.ErrorWeight
	n := mdpc.Index * r
	w := mdpc.Index * d
	m := l.WeakP
	p := l.FloorP

	switch l.Weak {
	case gen.WeakType1:
		log2 += log2AtLeastOnce(lnC(r-m, d-m)-lnC(r, d), 2*r*(r/2))
	case gen.WeakType2:
		if d-m > 0 {
			mult := math.Log(float64(r)) + lnC(d-1, d-m-1) + lnC(r-d-1, d-m-1) - math.Log(float64(d-m))
			log2 += log2AtLeastOnce(mult-lnC(r, d), 2*(r/2))
		}
	case gen.WeakType3:
		log2 += log2AtLeastOnce(lnC(d, m)+lnC(r-d, d-m)-lnC(r, d), r)
	}

	switch l.Floor {
	case gen.FloorNearCodeword:
		log2 += log2AtLeastOnce(lnC(d, p)+lnC(n-d, t-p)-lnC(n, t), n)
		distance = d + t - 2*p
	case gen.FloorNearCodeword2:
		log2 += log2AtLeastOnce(lnC(w, p)+lnC(n-w, t-p)-lnC(n, t), r*r)
		distance = w + t - 2*p
	case gen.FloorCodeword:
		log2 += log2AtLeastOnce(lnC(w, p)+lnC(n-w, t-p)-lnC(n, t), r)
		distance = w + t - 2*p
	}
	return log2, distance
}
