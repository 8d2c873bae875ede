package tables

import (
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/ares/math/interpolate"
	"github.com/pkg/errors"
)

// ErrOutOfRange is returned (wrapped) when a lookup falls outside a table.
var ErrOutOfRange = errors.New("point lies outside the table")

// Table is a tabulated optical depth. Tau is stored row-major with one row
// per redshift: Tau[l*len(E) + n] is the optical depth from Z[l] to Z[l+1]
// for a photon with energy E[n] at Z[l].
type Table struct {
	Z, E []float64
	Tau  []float64

	interp *interpolate.BiLinear
}

// Shape returns the number of redshifts and energies in the table.
func (t *Table) Shape() (int, int) { return len(t.Z), len(t.E) }

// At returns the optical depth in row l, column n.
func (t *Table) At(l, n int) float64 { return t.Tau[l*len(t.E)+n] }

// Params returns the shape parameters of the table. Chemistry flags cannot
// be recovered from the data and are left unset.
func (t *Table) Params() Params {
	return Params{
		ZMin: t.Z[0], ZMax: t.Z[len(t.Z)-1], Nz: len(t.Z),
		EMin: t.E[0], EMax: t.E[len(t.E)-1],
	}
}

func (t *Table) validate() error {
	L, N := t.Shape()
	switch {
	case L < 2 || N < 1:
		return fmt.Errorf("table has shape %d x %d", L, N)
	case len(t.Tau) != L*N:
		return fmt.Errorf("table has shape %d x %d, but %d optical depths",
			L, N, len(t.Tau))
	}
	for i := 1; i < L; i++ {
		if t.Z[i] <= t.Z[i-1] {
			return fmt.Errorf("table redshifts are not ascending")
		}
	}
	for i := 1; i < N; i++ {
		if t.E[i] <= t.E[i-1] {
			return fmt.Errorf("table energies are not ascending")
		}
	}
	for i, tau := range t.Tau {
		if !finiteTau(tau) {
			return fmt.Errorf("optical depth %g at (%d, %d) is invalid",
				tau, i/N, i%N)
		}
	}
	return nil
}

func (t *Table) lookup() *interpolate.BiLinear {
	if t.interp == nil {
		logE, logX := make([]float64, len(t.E)), make([]float64, len(t.Z))
		for i := range logE {
			logE[i] = math.Log10(t.E[i])
		}
		for i := range logX {
			logX[i] = math.Log10(1 + t.Z[i])
		}
		t.interp = interpolate.NewBiLinear(logE, logX, t.Tau)
	}
	return t.interp
}

// Prepare builds the interpolator used by Eval. Tables are read-only after
// Prepare and may then be shared between goroutines.
func (t *Table) Prepare() *Table {
	if len(t.E) > 1 {
		t.lookup()
	}
	return t
}

// bracket returns the index i such that xs[i] <= x <= xs[i+1].
func bracket(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	if i > 0 {
		i--
	}
	if i > len(xs)-2 {
		i = len(xs) - 2
	}
	return i
}

// Eval returns the optical depth at (z, E) by bilinear interpolation in
// log(1+z) and log E. Masked cells propagate as +Inf.
func (t *Table) Eval(z, E float64) (float64, error) {
	L, N := t.Shape()
	if z < t.Z[0] || z > t.Z[L-1] || E < t.E[0] || E > t.E[N-1] {
		return 0, errors.Wrapf(ErrOutOfRange, "(z, E) = (%g, %g)", z, E)
	}
	if N == 1 {
		l := bracket(t.Z, z)
		if math.IsInf(t.At(l, 0), 1) || math.IsInf(t.At(l+1, 0), 1) {
			return math.Inf(1), nil
		}
		f := (z - t.Z[l]) / (t.Z[l+1] - t.Z[l])
		return t.At(l, 0)*(1-f) + t.At(l+1, 0)*f, nil
	}

	l, n := bracket(t.Z, z), bracket(t.E, E)
	for _, tau := range []float64{
		t.At(l, n), t.At(l, n+1), t.At(l+1, n), t.At(l+1, n+1),
	} {
		if math.IsInf(tau, 1) {
			return math.Inf(1), nil
		}
	}
	return t.lookup().Eval(math.Log10(E), math.Log10(1+z)), nil
}

func nearest(xs []float64, x float64) int {
	i := bracket(xs, x)
	if x-xs[i] > xs[i+1]-x {
		return i + 1
	}
	return i
}

// OpticalDepth returns the total optical depth between grid redshifts
// Z[l1] and Z[l2] >= Z[l1] for a photon observed at E[n] at Z[l1], summing
// the table along its diagonal. Steps which would need energies above the
// last column contribute nothing.
func (t *Table) OpticalDepth(l1, l2, n int) float64 {
	L, N := t.Shape()
	if l1 < 0 || l2 >= L || l1 > l2 || n < 0 || n >= N {
		panic(fmt.Sprintf("OpticalDepth(%d, %d, %d) out of range for "+
			"%d x %d table", l1, l2, n, L, N))
	}

	tau := 0.0
	for k := l1; k < l2; k++ {
		j := n + (k - l1)
		if j >= N {
			break
		}
		tau += t.At(k, j)
	}
	return tau
}

// Transmission returns exp(-tau) for a photon observed with energy E at z1
// which was emitted at z2 > z1. Both redshifts and the energy are snapped
// to the nearest grid points.
func (t *Table) Transmission(z1, z2, E float64) (float64, error) {
	L, N := t.Shape()
	if z2 < z1 {
		return 0, fmt.Errorf("emission redshift %g is below observed "+
			"redshift %g", z2, z1)
	}
	if z1 < t.Z[0] || z2 > t.Z[L-1] || E < t.E[0] || E > t.E[N-1] {
		return 0, errors.Wrapf(ErrOutOfRange,
			"(z1, z2, E) = (%g, %g, %g)", z1, z2, E)
	}

	n := 0
	if N > 1 {
		n = nearest(t.E, E)
	}
	tau := t.OpticalDepth(nearest(t.Z, z1), nearest(t.Z, z2), n)
	return math.Exp(-tau), nil
}

// Mask returns a copy of t whose optical depth is +Inf at energies outside
// [eMin, eMax], so that photons outside the band of interest never reach the
// observer. t itself is not modified.
func (t *Table) Mask(eMin, eMax float64) *Table {
	L, N := t.Shape()
	out := &Table{Z: t.Z, E: t.E, Tau: append([]float64{}, t.Tau...)}
	lo, hi := 0, N
	if eMin > t.E[0] {
		lo = closest(t.E, eMin)
	}
	if eMax < t.E[N-1] {
		hi = closest(t.E, eMax) + 1
	}
	for l := 0; l < L; l++ {
		for n := 0; n < N; n++ {
			if n < lo || n >= hi {
				out.Tau[l*N+n] = math.Inf(1)
			}
		}
	}
	return out
}

// closest returns the index of the element of xs closest to x, moved one
// to the right if that element is below x.
func closest(xs []float64, x float64) int {
	best := 0
	for i := range xs {
		if math.Abs(xs[i]-x) < math.Abs(xs[best]-x) {
			best = i
		}
	}
	if xs[best]-x < 0 {
		best++
	}
	return best
}
