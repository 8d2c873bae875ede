/*package analysis extracts summary statistics from global 21-cm histories:
the turning points of the brightness temperature and the CMB optical depth.
*/
package analysis

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/ares/math/calc"
	"github.com/phil-mansfield/ares/math/interpolate"
	"github.com/phil-mansfield/ares/physics"
	"github.com/phil-mansfield/ares/sim"
)

const (
	resampleMin, resampleMax = 1024, 16384
	savGolOrder, savGolWidth = 4, 11
)

// TurningPoint is an extremum of the global signal.
type TurningPoint struct {
	Name      string
	Redshift  float64
	Frequency float64 // MHz
	Amplitude float64 // mK
	// Curvature is d^2 dTb / dnu^2 in mK / MHz^2.
	Curvature float64
}

// Values returns the redshift, amplitude, and curvature of the point.
func (tp TurningPoint) Values() [3]float64 {
	return [3]float64{tp.Redshift, tp.Amplitude, tp.Curvature}
}

func (tp TurningPoint) String() string {
	return fmt.Sprintf("%s: z = %.3f, nu = %.3f MHz, dTb = %.3f mK, "+
		"curvature = %.4g mK/MHz^2", tp.Name, tp.Redshift, tp.Frequency,
		tp.Amplitude, tp.Curvature)
}

type extremum struct {
	nu, amp, curv float64
	max           bool
}

// TurningPoints locates the extrema of the brightness temperature in a
// history: A (the dark ages trough), B (the maximum before Lyman-alpha
// coupling sets in), C (the absorption trough), and D (the emission
// maximum). Points which the history does not contain are left out of the
// returned map.
//
// dTb is resampled onto a uniform frequency grid and smoothed with a
// Savitzky-Golay filter. Extrema are zeros of the filter's derivative and
// curvatures are finite differences of that derivative.
func TurningPoints(h *sim.History) (map[string]TurningPoint, error) {
	nu, err := h.Get(sim.ColNu)
	if err != nil {
		return nil, err
	}
	dTb, err := h.Get(sim.ColDTb)
	if err != nil {
		return nil, err
	}
	if len(nu) < savGolWidth {
		return nil, fmt.Errorf("history has %d rows, need at least %d to "+
			"find turning points", len(nu), savGolWidth)
	}
	for i := 1; i < len(nu); i++ {
		if nu[i] <= nu[i-1] {
			return nil, fmt.Errorf("history redshifts are not strictly " +
				"decreasing")
		}
	}

	n := 4 * len(nu)
	if n < resampleMin {
		n = resampleMin
	} else if n > resampleMax {
		n = resampleMax
	}
	lo, hi := nu[0], nu[len(nu)-1]
	dnu := (hi - lo) / float64(n-1)

	lin := interpolate.NewLinear(nu, dTb)
	grid, T := make([]float64, n), make([]float64, n)
	for i := range grid {
		grid[i] = math.Min(lo+dnu*float64(i), hi)
		T[i] = lin.Eval(grid[i])
	}

	smooth := interpolate.NewSavGolKernel(savGolOrder, savGolWidth).
		Convolve(T, interpolate.Extension)
	d1 := interpolate.NewSavGolDerivKernel(dnu, 1, savGolOrder, savGolWidth).
		Convolve(T, interpolate.Extension)
	d2 := calc.Deriv(grid, d1, 4)

	exts := []extremum{}
	for i := savGolWidth; i < n-savGolWidth; i++ {
		a, b := d1[i-1], d1[i]
		if (a > 0) == (b > 0) {
			continue
		}
		f := a / (a - b)
		exts = append(exts, extremum{
			nu:   grid[i-1] + f*dnu,
			amp:  smooth[i-1] + f*(smooth[i]-smooth[i-1]),
			curv: d2[i-1] + f*(d2[i]-d2[i-1]),
			max:  a > 0,
		})
	}

	return classify(exts), nil
}

func classify(exts []extremum) map[string]TurningPoint {
	out := map[string]TurningPoint{}
	add := func(name string, e extremum) {
		z := physics.Redshift(e.nu)
		out[name] = TurningPoint{
			Name: name, Redshift: z, Frequency: e.nu,
			Amplitude: e.amp, Curvature: e.curv,
		}
	}

	iC := -1
	for i, e := range exts {
		if !e.max && (iC == -1 || e.amp < exts[iC].amp) {
			iC = i
		}
	}
	if iC == -1 {
		return out
	}
	add("C", exts[iC])

	iB := -1
	for i := iC - 1; i >= 0; i-- {
		if exts[i].max {
			iB = i
			break
		}
	}
	if iB != -1 {
		add("B", exts[iB])
		iA := -1
		for i := iB - 1; i >= 0; i-- {
			if !exts[i].max && (iA == -1 || exts[i].amp < exts[iA].amp) {
				iA = i
			}
		}
		if iA != -1 {
			add("A", exts[iA])
		}
	}

	for i := iC + 1; i < len(exts); i++ {
		if exts[i].max {
			add("D", exts[i])
			break
		}
	}
	return out
}
