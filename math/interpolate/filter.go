package interpolate

import (
	"math"

	"github.com/phil-mansfield/ares/math/mat"
)

// Kernel is a 1D smoothing kernel corresponding to some smoothing strategy
// and some window width.
type Kernel struct {
	cs     []float64
	center int
}

// BoundaryCondition is a flag representing the rule used when the smoothing
// window extends outside the data range. Extension is a pretty good default.
type BoundaryCondition int

const (
	Periodic BoundaryCondition = iota
	Reflection
	ZeroPad
	Extension
)

// Get returns the value in xs that corresponds to the given index for a
// particular choice of bounday conditions.
func (b BoundaryCondition) Get(xs []float64, i int) float64 {
	n := len(xs)
	switch {
	case i < 0:
		switch b {
		case Periodic:
			return xs[n+i]
		case Reflection:
			return xs[-i]
		case ZeroPad:
			return 0
		case Extension:
			return xs[0]
		}
		panic("Impossible")
	case i >= n:
		switch b {
		case Periodic:
			return xs[i-n]
		case Reflection:
			return xs[2*(n-1)-i]
		case ZeroPad:
			return 0
		case Extension:
			return xs[n-1]
		}
		panic("Impossible")
	default:
		return xs[i]
	}
}

// Width returns the number of points in the kernel's window.
func (k *Kernel) Width() int { return len(k.cs) }

// Convolve convolves a 1d data set according to the kernel k and returns
// the result in a new slice.
func (k *Kernel) Convolve(xs []float64, b BoundaryCondition) []float64 {
	out := make([]float64, len(xs))
	k.ConvolveAt(xs, b, out)
	return out
}

// ConvolveAt convolves a 1d data set according to the kernel k. Boundary
// conditions are specified with b and the output is written to out.
//
// The data must be at least as long as half the kernel width.
func (k *Kernel) ConvolveAt(xs []float64, b BoundaryCondition, out []float64) {
	n := len(xs)
	if len(out) != n {
		panic("len(out) != len(xs)")
	} else if n <= k.center {
		panic("Data shorter than the kernel's half-width.")
	}
	nl, nr := k.center, len(k.cs)-1-k.center

	for i := 0; i < n; i++ {
		sum := 0.0
		if i < nl || i >= n-nr {
			for j, c := range k.cs {
				sum += b.Get(xs, i+j-k.center) * c
			}
		} else {
			for j, c := range k.cs {
				sum += xs[i+j-k.center] * c
			}
		}
		out[i] = sum
	}
}

// NewSavGolKernel creates a smoothing kernel using the Savitzky-Golay
// scheme. Window width is given by width and polynomial order is given by
// order.
func NewSavGolKernel(order, width int) *Kernel {
	if width%2 != 1 {
		panic("Kernel width must be odd.")
	} else if width <= order {
		panic("Kernel width cannot be smaller than pOrder.")
	}

	k := new(Kernel)
	k.cs = make([]float64, width)
	k.center = width / 2

	k.savgol(order, 0)
	return k
}

// NewSavGolDerivKernel creates a kernel which evaluates to the analytic (as
// opposed to numeric) derivative of the function created via Savitzky-Golay
// smoothing. The separation between points is given by dx and the window
// width is given by width. The derivative and polynomial orders are given by
// dOrder and pOrder, respectively.
//
// For good results, try to ensure that dOrder + 3 <= pOrder. Never use this
// on non-uniformly spaced points.
func NewSavGolDerivKernel(dx float64, dOrder, pOrder, width int) *Kernel {
	if width%2 != 1 {
		panic("Kernel width must be odd.")
	} else if dOrder > pOrder {
		panic("dOrder cannot be larger than pOrder.")
	} else if width <= pOrder {
		panic("Kernel width cannot be smaller than pOrder.")
	}

	k := new(Kernel)
	k.cs = make([]float64, width)
	k.center = width / 2

	k.savgol(pOrder, dOrder)
	fact := float64(factorial(dOrder))
	for i := range k.cs {
		k.cs[i] *= fact / math.Pow(dx, float64(dOrder))
	}
	return k
}

// savgol fills in the convolution coefficients of a polynomial fit of order m
// for the ld-th derivative. The kernel is returned in "correlation" order, so
// k.cs[n + i] multiplies the point i steps to the right.
func (k *Kernel) savgol(m, ld int) {
	n := len(k.cs) / 2

	aBuf := make([]float64, (m+1)*(m+1))
	a := mat.NewMatrix(aBuf, m+1, m+1)

	// "ipj" -> "i + j".
	for ipj := 0; ipj <= m*2; ipj++ {
		ipj64 := float64(ipj)

		sum := 0.0
		if ipj == 0 {
			sum = 1.0
		}

		for k := 1; k <= n; k++ {
			sum += math.Pow(float64(k), ipj64)
		}
		for k := 1; k <= n; k++ {
			sum += math.Pow(float64(-k), ipj64)
		}
		mm := 2*m - ipj
		if mm > ipj {
			mm = ipj
		}
		for imj := -mm; imj <= mm; imj += 2 {
			// (i+j) + (i-j) -> 2i, (i+j) - (i-j) -> 2j
			i, j := (ipj+imj)/2, (ipj-imj)/2
			a.Vals[j*a.Width+i] = sum
		}
	}

	lu, err := a.LU()
	if err != nil {
		// The moment matrix is positive definite whenever width > m.
		panic(err.Error())
	}
	b := make([]float64, m+1)
	b[ld] = 1
	lu.SolveVector(b, b)

	for i := -n; i <= n; i++ {
		sum, fac, i64 := b[0], 1.0, float64(i)
		for mm := 1; mm < m+1; mm++ {
			fac *= i64
			sum += b[mm] * fac
		}
		k.cs[i+n] = sum
	}
}

func factorial(x int) int {
	prod := 1
	for i := 2; i <= x; i++ {
		prod *= i
	}
	return prod
}
