package analysis

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/math/calc"
	"github.com/phil-mansfield/ares/sim"
	"github.com/pkg/errors"
)

// HeIIReionizationRedshift is the redshift below which helium is taken to
// be doubly ionized.
const HeIIReionizationRedshift = 3.0

// electronFractions returns the number of free electrons per hydrogen atom
// for each row of h. The HII regions contribute singly ionized helium.
func electronFractions(h *sim.History, y float64) ([]float64, error) {
	fe := make([]float64, h.Len())
	igm, cgm := h.Has(sim.ColIGME), h.Has(sim.ColCGMH2)
	if !igm && !cgm {
		return nil, fmt.Errorf("history has neither '%s' nor '%s'",
			sim.ColIGME, sim.ColCGMH2)
	}

	xe, _ := h.Get(sim.ColIGME)
	Q, _ := h.Get(sim.ColCGMH2)
	for i := range fe {
		bulk := 0.0
		if igm {
			bulk = xe[i]
		}
		if cgm {
			fe[i] = Q[i]*(1+y) + (1-Q[i])*bulk
		} else {
			fe[i] = bulk
		}
	}
	return fe, nil
}

// ThomsonOpticalDepth returns the electron scattering optical depth of the
// CMB out to the highest redshift in h. Below the lowest redshift in h the
// universe is taken to be fully ionized, with helium doubly ionized below
// HeIIReionizationRedshift.
func ThomsonOpticalDepth(h *sim.History, c *cosmo.Cosmology) (float64, error) {
	z, err := h.Get(sim.ColZ)
	if err != nil {
		return 0, err
	}
	if len(z) < 2 {
		return 0, fmt.Errorf("history has %d rows", len(z))
	}
	y := c.HeliumByNumberRatio()
	fe, err := electronFractions(h, y)
	if err != nil {
		return 0, err
	}

	dtau := func(z, fe float64) float64 {
		return c.NH(z) * fe * cosmo.SigmaT * cosmo.C * c.Dtdz(z)
	}

	// History rows run from high to low redshift.
	n := len(z)
	zs, ys := make([]float64, n), make([]float64, n)
	for i := range zs {
		zs[i] = z[n-1-i]
		ys[i] = dtau(zs[i], fe[n-1-i])
	}
	tau := calc.Trapz(ys, zs)

	zf := zs[0]
	zHe := math.Min(HeIIReionizationRedshift, zf)
	for _, seg := range []struct{ lo, hi, fe float64 }{
		{0, zHe, 1 + 2*y},
		{zHe, zf, 1 + y},
	} {
		if seg.hi <= seg.lo {
			continue
		}
		fe := seg.fe
		t, err := calc.Quad(func(z float64) float64 { return dtau(z, fe) },
			seg.lo, seg.hi, calc.Tol(1e-8, 0))
		if err != nil {
			return 0, errors.Wrap(err, "integrating ionized universe")
		}
		tau += t
	}
	return tau, nil
}
