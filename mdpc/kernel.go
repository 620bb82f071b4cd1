package mdpc

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Kernel selects the implementation of the sparse-by-dense products.
type Kernel uint8

const (
	KernelAuto   Kernel = iota // resolved by DefaultKernel
	KernelScalar               // scatter form, two passes per offset
	KernelWide                 // gather form, eight byte lanes per word
)

func (k Kernel) String() string {
	switch k {
	case KernelAuto:
		return "auto"
	case KernelScalar:
		return "scalar"
	case KernelWide:
		return "wide"
	}
	return fmt.Sprintf("Kernel(%d)", k)
}

// ParseKernel accepts "auto", "scalar" and "wide".
func ParseKernel(s string) (Kernel, error) {
	switch s {
	case "", "auto":
		return KernelAuto, nil
	case "scalar":
		return KernelScalar, nil
	case "wide", "swar":
		return KernelWide, nil
	}
	return 0, fmt.Errorf("unknown kernel %q", s)
}

// DefaultKernel picks the wide kernel on 64-bit targets with fast unaligned
// loads. The SWAR gather uses plain 64-bit integer words and no vector
// instructions, so the feature bits are only a proxy for a recent core with
// fast unaligned loads: the choice is a heuristic, and both kernels give
// identical results.
func DefaultKernel() Kernel {
	switch runtime.GOARCH {
	case "amd64":
		if cpu.X86.HasAVX2 || cpu.X86.HasSSE42 {
			return KernelWide
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			return KernelWide
		}
	case "ppc64le", "s390x", "riscv64", "loong64":
		return KernelWide
	}
	return KernelScalar
}

// MultiplyXorMod2 xors the cyclic product x*y into z[:n]. y needs only its
// first n entries. Every offset is applied as two contiguous segments so the
// inner loops carry no modulo.
func MultiplyXorMod2(z []uint8, x Sparse, y []uint8, n int) {
	for _, off := range x {
		zz := z[off:n]
		yy := y[:n-off]
		for i := range zz {
			zz[i] ^= yy[i]
		}
		zz = z[:off]
		yy = y[n-off : n]
		for i := range zz {
			zz[i] ^= yy[i]
		}
	}
}

// MultiplyAdd adds the integer cyclic product x*y into z[:n].
func MultiplyAdd(z []uint8, x Sparse, y []uint8, n int) {
	for _, off := range x {
		zz := z[off:n]
		yy := y[:n-off]
		for i := range zz {
			zz[i] += yy[i]
		}
		zz = z[:off]
		yy = y[n-off : n]
		for i := range zz {
			zz[i] += yy[i]
		}
	}
}

// xorProduct and addProduct dispatch on the kernel. The scalar path takes
// the block itself (scatter), the wide path its transpose (gather) and a
// doubled, mirrored y.
func (k Kernel) xorProduct(z []uint8, x, xT Sparse, y []uint8, n int) {
	if k == KernelWide {
		gatherXor(z, xT, y, n)
		return
	}
	MultiplyXorMod2(z, x, y, n)
}

func (k Kernel) addProduct(z []uint8, x, xT Sparse, y []uint8, n int) {
	if k == KernelWide {
		gatherAdd(z, xT, y, n)
		return
	}
	MultiplyAdd(z, x, y, n)
}
