package physics

import (
	"math"
	"sync/atomic"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/math/interpolate"
	"github.com/pkg/errors"
)

// ErrCouplingInterp is returned when the collisional rate coefficients
// cannot be interpolated to a finite, non-negative value.
var ErrCouplingInterp = errors.New("collisional coupling interpolation failed")

// CouplingInterp selects how the tabulated collisional rate coefficients are
// interpolated in log T.
type CouplingInterp string

const (
	LinearCoupling CouplingInterp = "linear"
	CubicCoupling  CouplingInterp = "cubic"
)

// Collisional de-excitation rate coefficients, cm^3 / s, for H-H
// (Zygelman 2005) and e-H (Furlanetto & Furlanetto 2007) collisions.
var (
	tHH = []float64{
		1, 2, 4, 6, 8, 10, 15, 20, 25, 30, 40, 50, 60, 70, 80, 90, 100, 200,
		300, 500, 700, 1000, 2000, 3000, 5000, 7000, 10000,
	}
	kappaHH = []float64{
		1.38e-13, 1.43e-13, 2.71e-13, 6.60e-13, 1.47e-12, 2.88e-12, 9.10e-12,
		1.78e-11, 2.73e-11, 3.67e-11, 5.38e-11, 6.86e-11, 8.14e-11, 9.25e-11,
		1.02e-10, 1.11e-10, 1.19e-10, 1.75e-10, 2.09e-10, 2.56e-10, 2.91e-10,
		3.31e-10, 4.27e-10, 4.97e-10, 6.03e-10, 6.87e-10, 7.87e-10,
	}
	tEH = []float64{
		1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 3000, 5000, 7000,
		10000, 15000, 20000,
	}
	kappaEH = []float64{
		2.39e-10, 3.37e-10, 5.30e-10, 7.46e-10, 1.05e-9, 1.63e-9, 2.26e-9,
		3.11e-9, 4.59e-9, 5.92e-9, 7.15e-9, 7.71e-9, 8.17e-9, 8.32e-9, 8.37e-9,
		8.29e-9, 8.11e-9,
	}
)

// rateTable interpolates a rate coefficient in log10 T. Below and above the
// table the end values are used.
type rateTable struct {
	name        string
	logT, kappa []float64
	lin         *interpolate.Linear
	spline      *interpolate.Spline
}

func newRateTable(name string, T, kappa []float64, mode CouplingInterp) *rateTable {
	logT := make([]float64, len(T))
	for i := range T {
		logT[i] = math.Log10(T[i])
	}
	rt := &rateTable{
		name: name, logT: logT, kappa: kappa,
		lin: interpolate.NewLinear(logT, kappa),
	}
	if mode == CubicCoupling {
		// A failed spline leaves rt.spline nil, and every evaluation takes
		// the linear path.
		rt.spline, _ = interpolate.BuildSpline(logT, kappa)
	}
	return rt
}

// eval returns the rate at T and whether the linear fallback was used.
func (rt *rateTable) eval(T float64, wantCubic bool) (float64, bool, error) {
	if math.IsNaN(T) {
		return 0, false, errors.Wrapf(ErrCouplingInterp, "%s at T = NaN", rt.name)
	}
	lt := math.Log10(T)
	n := len(rt.logT)
	switch {
	case T <= 0 || lt <= rt.logT[0]:
		return rt.kappa[0], false, nil
	case lt >= rt.logT[n-1]:
		return rt.kappa[n-1], false, nil
	}

	fellBack := false
	if wantCubic {
		if rt.spline != nil {
			k := rt.spline.Eval(lt)
			if valid(k) {
				return k, false, nil
			}
		}
		fellBack = true
	}

	k := rt.lin.Eval(lt)
	if !valid(k) {
		return 0, fellBack, errors.Wrapf(ErrCouplingInterp,
			"%s at T = %g K gave %g", rt.name, T, k)
	}
	return k, fellBack, nil
}

func valid(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}

// Hydrogen computes the 21-cm properties of neutral hydrogen in the
// expanding background of a given cosmology. It is safe for concurrent use.
type Hydrogen struct {
	Cosm   *cosmo.Cosmology
	Interp CouplingInterp

	hh, eh    *rateTable
	fallbacks atomic.Int64
}

// NewHydrogen creates a Hydrogen calculator. An empty interp selects cubic
// interpolation.
func NewHydrogen(c *cosmo.Cosmology, interp CouplingInterp) (*Hydrogen, error) {
	if interp == "" {
		interp = CubicCoupling
	}
	if interp != LinearCoupling && interp != CubicCoupling {
		return nil, errors.Errorf(
			"coupling interpolation '%s' must be '%s' or '%s'",
			interp, LinearCoupling, CubicCoupling,
		)
	}
	return &Hydrogen{
		Cosm:   c,
		Interp: interp,
		hh:     newRateTable("kappa_HH", tHH, kappaHH, interp),
		eh:     newRateTable("kappa_eH", tEH, kappaEH, interp),
	}, nil
}

// Fallbacks returns the number of rate evaluations where cubic interpolation
// was requested but linear interpolation had to be used.
func (h *Hydrogen) Fallbacks() int64 { return h.fallbacks.Load() }

func (h *Hydrogen) rate(rt *rateTable, T float64) (float64, error) {
	k, fellBack, err := rt.eval(T, h.Interp == CubicCoupling)
	if fellBack {
		h.fallbacks.Add(1)
	}
	return k, err
}

// KappaHH returns the H-H collisional de-excitation rate coefficient at
// kinetic temperature T (K) in cm^3 / s.
func (h *Hydrogen) KappaHH(T float64) (float64, error) { return h.rate(h.hh, T) }

// KappaEH returns the e-H collisional de-excitation rate coefficient at
// kinetic temperature T (K) in cm^3 / s.
func (h *Hydrogen) KappaEH(T float64) (float64, error) { return h.rate(h.eh, T) }

// CollisionalCouplingCoefficient returns x_c at redshift z for gas with
// kinetic temperature Tk, ionized fraction xHII and electron density ne
// (cm^-3).
func (h *Hydrogen) CollisionalCouplingCoefficient(
	z, Tk, xHII, ne float64,
) (float64, error) {
	kHH, err := h.KappaHH(Tk)
	if err != nil {
		return 0, err
	}
	kEH, err := h.KappaEH(Tk)
	if err != nil {
		return 0, err
	}

	sum := h.Cosm.NH(z)*(1-xHII)*kHH + ne*kEH
	return sum * TStar / A10 / h.Cosm.TCMB(z), nil
}

// LyaCouplingCoefficient returns the Wouthuysen-Field coupling x_a for a
// Lyman-alpha photon number intensity Ja (cm^-2 s^-1 Hz^-1 sr^-1). The
// scattering correction S_alpha is taken to be 1, so Tk does not enter.
func (h *Hydrogen) LyaCouplingCoefficient(z, Tk, Ja float64) float64 {
	return 1.81e11 * Ja / (1 + z)
}

// SpinTemperature returns the spin temperature (K) of gas with kinetic
// temperature Tk and coupling coefficients xc and xa. The color temperature
// is assumed equal to Tk.
func (h *Hydrogen) SpinTemperature(z, Tk, xc, xa float64) float64 {
	return (1 + xc + xa) / (1/h.Cosm.TCMB(z) + (xc+xa)/Tk)
}

// DifferentialBrightnessTemperature returns the 21-cm brightness temperature
// contrast against the CMB in mK.
func (h *Hydrogen) DifferentialBrightnessTemperature(z, xHII, Ts float64) float64 {
	c := h.Cosm
	h2 := c.Hubble0 * c.Hubble0
	return 27 * (1 - xHII) * c.OmegaB0 * h2 / 0.023 *
		math.Sqrt(0.15*(1+z)/c.OmegaM0/h2/10) * (1 - c.TCMB(z)/Ts)
}

// Frequency returns the observed frequency of the 21-cm line emitted at z
// in MHz.
func Frequency(z float64) float64 { return Nu0MHz / (1 + z) }

// Redshift inverts Frequency.
func Redshift(nuMHz float64) float64 { return Nu0MHz/nuMHz - 1 }

// JaFromJ21 converts an energy intensity at Lyman-alpha in units of J21 to
// a photon number intensity.
func JaFromJ21(j float64) float64 {
	return j * J21 / (ELyA * ErgPerEV)
}
