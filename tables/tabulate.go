package tables

import (
	"context"
	"io"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/logging"
	"github.com/phil-mansfield/ares/math/calc"
	"github.com/phil-mansfield/ares/physics"
	"github.com/pkg/errors"
)

// Ionization returns the volume-averaged ionized fraction at z. Helium is
// taken to be singly ionized alongside hydrogen.
type Ionization func(z float64) float64

// Neutral is an Ionization history for a fully neutral medium.
func Neutral(z float64) float64 { return 0 }

// Tabulator computes optical depths through a uniform IGM.
type Tabulator struct {
	Cosm   *cosmo.Cosmology
	Params Params
	// Workers is the number of goroutines used by Tabulate. Values less
	// than one mean a single worker.
	Workers int
	// Progress, if non-nil, receives progress lines during tabulation.
	Progress io.Writer
	// Rtol and Atol are the relative and absolute integration tolerances.
	Rtol, Atol float64
}

// NewTabulator returns a Tabulator with default integration tolerances.
func NewTabulator(c *cosmo.Cosmology, p Params, workers int) *Tabulator {
	return &Tabulator{
		Cosm: c, Params: p, Workers: workers, Rtol: 1e-6, Atol: 1e-10,
	}
}

func (tab *Tabulator) sigma(E float64, s physics.Species) float64 {
	if tab.Params.ApproxSigma {
		return physics.ApproximatePhotoIonizationCrossSection(E, s)
	}
	return physics.PhotoIonizationCrossSection(E, s)
}

// DiffuseOpticalDepth returns the optical depth between z1 and z2 > z1 for
// a photon with energy E (eV) at z1.
func (tab *Tabulator) DiffuseOpticalDepth(
	z1, z2, E float64, xavg Ionization,
) (float64, error) {
	c := tab.Cosm

	integrand := func(z float64) float64 {
		Erest := E * (1 + z) / (1 + z1)
		x := xavg(z)
		nHI := c.NH(z) * (1 - x)
		sum := nHI * tab.sigma(Erest, physics.HI)

		if tab.Params.IncludeHe {
			var nHeI, nHeII float64
			if tab.Params.ApproxHe {
				nHeI = c.HeliumByNumberRatio() * nHI
			} else {
				nHeI = c.NHe(z) * (1 - x)
				nHeII = c.NHe(z) * x
			}
			sum += nHeI*tab.sigma(Erest, physics.HeI) +
				nHeII*tab.sigma(Erest, physics.HeII)
		}
		return c.Dldz(z) * sum
	}

	tau, err := calc.Quad(integrand, z1, z2, calc.Tol(tab.Rtol, tab.Atol))
	if err != nil {
		return 0, errors.Wrapf(err, "optical depth from z = %g to %g "+
			"at E = %g eV", z1, z2, E)
	}
	return tau, nil
}

// Tabulate computes tau[l][n] = tau(z[l], z[l+1], E[n]) on the grid. The
// last redshift row is zero. Rows are distributed across Workers
// goroutines; the first error cancels the remaining work.
func (tab *Tabulator) Tabulate(
	ctx context.Context, g *Grid, xavg Ionization,
) (*Table, error) {
	if xavg == nil {
		xavg = Neutral
	}
	L, N := len(g.Z), len(g.E)
	t := &Table{Z: g.Z, E: g.E, Tau: make([]float64, L*N)}

	workers := tab.Workers
	if workers < 1 {
		workers = 1
	}
	prog := logging.NewProgress("tau", (L-1)*N, tab.Progress)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for l := 0; l < L-1; l++ {
		l := l
		eg.Go(func() error {
			row := t.Tau[l*N : (l+1)*N]
			for n := range row {
				if err := ctx.Err(); err != nil {
					return err
				}
				tau, err := tab.DiffuseOpticalDepth(g.Z[l], g.Z[l+1],
					g.E[n], xavg)
				if err != nil {
					return err
				}
				row[n] = tau
			}
			prog.Update(N)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if logging.Mode == logging.Debug && tab.Progress != nil {
		io.WriteString(tab.Progress, logging.MemString()+"\n")
	}
	return t, nil
}

// finiteTau reports whether tau is a usable optical depth.
func finiteTau(tau float64) bool {
	return !math.IsNaN(tau) && tau >= 0
}
