/*package tables generates, stores, and looks up the optical depth tables
used to attenuate a background of high energy photons as it propagates
through a neutral intergalactic medium.

A table is defined on a logarithmic grid in x = 1+z with constant ratio
R = x[l+1]/x[l], and photon energies E[n] = EMin R^n. Because the two grids
share a ratio, a photon observed at energy E[n] at redshift z[l] had energy
E[n+1] at z[l+1], so line-of-sight optical depths are sums along diagonals
of the table (Haardt & Madau 1996, Appendix C).
*/
package tables

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// Params are the shape parameters of an optical depth table.
type Params struct {
	ZMin, ZMax float64 // final and initial redshift
	Nz         int
	EMin, EMax float64 // eV
	IncludeHe  bool
	// ApproxHe sets the HeI density to y nHI instead of following the
	// helium ionization state.
	ApproxHe bool
	// ApproxSigma uses the E^-3 cross sections instead of the Verner fits.
	ApproxSigma bool
}

// DefaultParams returns the parameters of the most commonly used table.
func DefaultParams() Params {
	return Params{
		ZMin: 5, ZMax: 50, Nz: 400, EMin: 2e2, EMax: 3e4,
		IncludeHe: true, ApproxHe: true,
	}
}

// Validate returns an error if the table parameters do not describe a
// non-empty grid.
func (p *Params) Validate() error {
	switch {
	case p.Nz < 2:
		return fmt.Errorf("Nz = %d, but tables need at least two redshifts",
			p.Nz)
	case p.ZMin < 0 || p.ZMax <= p.ZMin:
		return fmt.Errorf("need 0 <= ZMin < ZMax, but ZMin = %g and "+
			"ZMax = %g", p.ZMin, p.ZMax)
	case p.EMin <= 0 || p.EMax <= p.EMin:
		return fmt.Errorf("need 0 < EMin < EMax, but EMin = %g and "+
			"EMax = %g", p.EMin, p.EMax)
	}
	return nil
}

// Chemistry returns "He" if helium is included and "H" otherwise.
func (p *Params) Chemistry() string {
	if p.IncludeHe {
		return "He"
	}
	return "H"
}

// Ratio returns the constant ratio between adjacent x = 1+z grid points.
func (p *Params) Ratio() float64 {
	return math.Pow((1+p.ZMax)/(1+p.ZMin), 1/float64(p.Nz-1))
}

// NumFreqBins returns the number of photon energies needed to cover
// [EMin, EMax] on a grid which shares its ratio with the redshift grid.
func NumFreqBins(nz int, zi, zf, eMin, eMax float64) int {
	r := math.Pow((1+zi)/(1+zf), 1/float64(nz-1))
	e, n := eMin, 1
	for e < eMax {
		e = eMin * math.Pow(r, float64(n-1))
		n++
	}
	return n - 2
}

// Grid is the set of redshifts and energies a table is tabulated on.
type Grid struct {
	Params
	R float64
	// Z is ascending, X = 1+Z, and E is ascending.
	Z, X, LogX, E []float64
}

// NewGrid returns the grid described by p.
func NewGrid(p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{Params: p, R: p.Ratio()}
	n := NumFreqBins(p.Nz, p.ZMax, p.ZMin, p.EMin, p.EMax)
	if n < 1 {
		return nil, fmt.Errorf("energy range [%g, %g] gives no frequency "+
			"bins", p.EMin, p.EMax)
	}

	g.Z, g.X = make([]float64, p.Nz), make([]float64, p.Nz)
	g.LogX = logspaceExp(math.Log10(1+p.ZMin), math.Log10(1+p.ZMax), p.Nz)
	for l := range g.LogX {
		g.X[l] = math.Pow(10, g.LogX[l])
		g.Z[l] = g.X[l] - 1
	}

	g.E = make([]float64, n)
	for i := range g.E {
		g.E[i] = p.EMin * math.Pow(g.R, float64(i))
	}
	return g, nil
}

// Shape returns the (redshift, energy) shape recorded in canonical table
// names. The energy count is one less than len(E), which is the convention
// distributed tables were named with.
func (g *Grid) Shape() (int, int) { return len(g.Z), len(g.E) - 1 }

// logspaceExp returns n evenly spaced values between lo and hi, inclusive.
// The endpoints are exact.
func logspaceExp(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	out[n-1] = hi
	return out
}

// logspace returns n logarithmically spaced values from lo to hi.
func logspace(lo, hi float64, n int) []float64 {
	out := logspaceExp(math.Log10(lo), math.Log10(hi), n)
	for i := range out {
		out[i] = math.Pow(10, out[i])
	}
	out[0], out[n-1] = lo, hi
	return out
}

// Name returns the canonical file name of the table described by g.
func (g *Grid) Name(suffix string) string {
	l, n := g.Shape()
	return fmt.Sprintf("optical_depth_%s_%dx%d_z_%d-%d_logE_%.2g-%.2g.%s",
		g.Chemistry(), l, n, int(g.ZMin), int(g.ZMax),
		math.Log10(g.EMin), math.Log10(g.EMax), suffix)
}

// Name returns the canonical file name of the table described by p.
func Name(p Params, suffix string) (string, error) {
	g, err := NewGrid(p)
	if err != nil {
		return "", err
	}
	return g.Name(suffix), nil
}

// NameInfo is the information encoded in a canonical table name.
type NameInfo struct {
	Chem             string
	L, N             int
	ZMin, ZMax       float64
	LogEMin, LogEMax float64
	Suffix           string
}

var nameRe = regexp.MustCompile(
	`^optical_depth_(H|He)_(\d+)x(\d+)_z_(\d+)-(\d+)` +
		`_logE_(-?[0-9.]+(?:e[-+]\d+)?)-(-?[0-9.]+(?:e[-+]\d+)?)\.(\w+)$`,
)

// ParseName inverts Name. Any leading directories are ignored.
func ParseName(fname string) (*NameInfo, error) {
	base := filepath.Base(fname)
	m := nameRe.FindStringSubmatch(base)
	if m == nil {
		return nil, errors.Errorf("'%s' is not an optical depth table name",
			base)
	}

	info := &NameInfo{Chem: m[1], Suffix: m[8]}
	ints := []*int{&info.L, &info.N}
	for i, ptr := range ints {
		v, err := strconv.Atoi(m[2+i])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing table name '%s'", base)
		}
		*ptr = v
	}
	floats := []*float64{&info.ZMin, &info.ZMax, &info.LogEMin, &info.LogEMax}
	for i, ptr := range floats {
		v, err := strconv.ParseFloat(m[4+i], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing table name '%s'", base)
		}
		*ptr = v
	}
	return info, nil
}
