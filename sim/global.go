package sim

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/inits"
	"github.com/phil-mansfield/ares/logging"
	"github.com/phil-mansfield/ares/physics"
	"github.com/pkg/errors"
)

// Global21cm is a single global 21-cm run. Construct it with New, call Run,
// then read History.
type Global21cm struct {
	Params   Params
	Cosm     *cosmo.Cosmology
	Hydr     *physics.Hydrogen
	ICs      *inits.ICs
	IGM, CGM *ZoneParams
	// Progress, if non-nil, receives progress lines during Run.
	Progress io.Writer

	History *History
}

// state is the physical state of both zones at one redshift.
type state struct {
	z, t         float64
	igmTk, igmXi float64
	igmXe        float64
	cgmXi        float64
	j21          float64
}

// New sets up a run. ics is required when p.LoadICs is set, in which case
// the starting IGM temperature and ionization are read from it at the
// initial redshift.
func New(p Params, ics *inits.ICs) (*Global21cm, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, err := cosmo.New(p.Cosmology)
	if err != nil {
		return nil, err
	}
	hydr, err := physics.NewHydrogen(c, p.CouplingInterp)
	if err != nil {
		return nil, err
	}

	if p.LoadICs {
		if ics == nil {
			return nil, fmt.Errorf("LoadICs is set, but no initial " +
				"conditions were given")
		}
		xe, Tk, err := ics.Interp(p.InitialRedshift)
		if err != nil {
			return nil, errors.Wrap(err, "initial redshift")
		}
		p.IGMInitialTemperature = Tk
		p.IGMInitialIonization = hydrogenIonization(xe, c)
	}
	if p.IGMInitialTemperature <= 0 {
		p.IGMInitialTemperature = c.TGasAdiabatic(p.InitialRedshift)
	}

	sim := &Global21cm{Params: p, Cosm: c, Hydr: hydr, ICs: ics}
	if p.IncludeIGM {
		if sim.IGM, err = p.Zone("igm"); err != nil {
			return nil, err
		}
	}
	if p.IncludeCGM {
		if sim.CGM, err = p.Zone("cgm"); err != nil {
			return nil, err
		}
	}
	return sim, nil
}

func (sim *Global21cm) columns() []string {
	names := []string{ColZ, ColT, ColNu}
	if sim.IGM != nil {
		names = append(names, ColIGMTk, ColIGMH2, ColIGME)
	}
	if sim.CGM != nil {
		names = append(names, ColCGMH2)
	}
	return append(names, ColJa, ColTs, ColDTb, ColXc, ColXa)
}

// hydrogenIonization converts a tabulated electron fraction, which counts
// helium electrons, into the ionized hydrogen fraction.
func hydrogenIonization(xe float64, c *cosmo.Cosmology) float64 {
	return math.Min(xe, 1) / (1 + c.HeliumByNumberRatio())
}

// electronFraction returns n_e / n_H for an IGM with ionized hydrogen
// fraction xi. Singly ionized helium follows hydrogen when it is included.
func (sim *Global21cm) electronFraction(xi float64) float64 {
	if !sim.Params.IncludeHe {
		return xi
	}
	return xi * (1 + sim.Cosm.HeliumByNumberRatio())
}

// adiabatic returns the temperature at z of gas which had temperature T0 at
// zi. The gas follows the CMB as (1+z) down to the decoupling redshift and
// cools as (1+z)^2 below it.
func (sim *Global21cm) adiabatic(T0, zi, z float64) float64 {
	zDec := sim.Cosm.ZDec
	if zi > zDec {
		if z >= zDec {
			return T0 * (1 + z) / (1 + zi)
		}
		T0, zi = T0*(1+zDec)/(1+zi), zDec
	}
	a := (1 + z) / (1 + zi)
	return T0 * a * a
}

// evolve returns the state at z for a run which started at the initial
// redshift. The bulk IGM cools adiabatically from its starting temperature
// and is heated by the tanh term; its ionization is frozen at the starting
// value.
func (sim *Global21cm) evolve(z, t float64) state {
	p := &sim.Params
	s := state{z: z, t: t, j21: p.J.At(z)}

	if sim.IGM != nil {
		Tad := sim.adiabatic(sim.IGM.InitialTemperature, p.InitialRedshift, z)
		s.igmTk = Tad + p.T.At(z)
		s.igmXi = sim.IGM.InitialIonization
		s.igmXe = sim.electronFraction(s.igmXi)
	}
	if sim.CGM != nil {
		s.cgmXi = math.Max(sim.CGM.InitialIonization, p.X.At(z))
	}
	return s
}

// Run evolves the run from its initial to its final redshift and fills in
// History. Steps never exceed Params.Dz in redshift or Params.MaxTimestep
// in time and the last step lands on the final redshift.
func (sim *Global21cm) Run(ctx context.Context) error {
	p := &sim.Params
	sim.History = NewHistory(sim.columns()...)

	if err := sim.insertInits(); err != nil {
		return err
	}

	total := int(math.Ceil((p.InitialRedshift - p.FinalRedshift) / p.Dz))
	prog := logging.NewProgress("global", total, sim.Progress)
	done := 0

	t, z := 0.0, p.InitialRedshift
	maxDt := p.MaxTimestep * cosmo.SPerMyr
	for z > p.FinalRedshift {
		if err := ctx.Err(); err != nil {
			return err
		}

		dtdz := sim.Cosm.Dtdz(z)
		dt := math.Min(maxDt, p.Dz*dtdz)
		if z-dt/dtdz <= p.FinalRedshift {
			dt = (z - p.FinalRedshift) * dtdz
		}
		t += dt
		z -= dt / dtdz
		if z-p.FinalRedshift < 1e-10*(1+p.FinalRedshift) {
			z = p.FinalRedshift
		}

		if err := sim.record(sim.evolve(z, t)); err != nil {
			return err
		}

		if step := int((p.InitialRedshift - z) / p.Dz); step > done {
			prog.Update(step - done)
			done = step
		}
	}

	if logging.Mode == logging.Debug && sim.Progress != nil {
		fmt.Fprintf(sim.Progress, "%d rows, %d coupling fallbacks; %s\n",
			sim.History.Len(), sim.Hydr.Fallbacks(), logging.MemString())
	}
	return nil
}

// insertInits prepends the initial conditions above the initial redshift
// to the history, so that it extends back through the dark ages. Their
// times are measured from the initial redshift and so are negative.
func (sim *Global21cm) insertInits() error {
	p := &sim.Params
	if !p.LoadICs {
		return nil
	}

	t0 := sim.Cosm.TimeOfRedshift(p.InitialRedshift)
	for _, i := range sim.ICs.Above(p.InitialRedshift) {
		z := sim.ICs.Z[i]
		xi := hydrogenIonization(sim.ICs.Xe[i], sim.Cosm)
		s := state{
			z: z, t: sim.Cosm.TimeOfRedshift(z) - t0,
			igmTk: sim.ICs.Tk[i], igmXi: xi, igmXe: sim.electronFraction(xi),
		}
		if sim.CGM != nil {
			s.cgmXi = sim.CGM.InitialIonization
		}
		if err := sim.record(s); err != nil {
			return err
		}
	}
	return nil
}

// record computes the 21-cm quantities of s and appends them to History.
func (sim *Global21cm) record(s state) error {
	c := sim.Cosm
	row := map[string]float64{
		ColZ: s.z, ColT: s.t, ColNu: physics.Frequency(s.z),
	}

	Tk, xIGM, xe := s.igmTk, s.igmXi, s.igmXe
	if sim.IGM != nil {
		row[ColIGMTk], row[ColIGMH2], row[ColIGME] = Tk, xIGM, xe
	} else {
		Tk, xIGM, xe = c.TGasAdiabatic(s.z), 0, 0
	}

	xavg := xIGM
	if sim.CGM != nil {
		row[ColCGMH2] = s.cgmXi
		xavg = s.cgmXi + (1-s.cgmXi)*xIGM
	}

	Ja := physics.JaFromJ21(s.j21)
	xc, err := sim.Hydr.CollisionalCouplingCoefficient(
		s.z, Tk, xIGM, xe*c.NH(s.z),
	)
	if err != nil {
		return errors.Wrapf(err, "z = %g, Tk = %g", s.z, Tk)
	}
	xa := sim.Hydr.LyaCouplingCoefficient(s.z, Tk, Ja)
	Ts := sim.Hydr.SpinTemperature(s.z, Tk, xc, xa)

	row[ColJa], row[ColXc], row[ColXa], row[ColTs] = Ja, xc, xa, Ts
	row[ColDTb] = sim.Hydr.DifferentialBrightnessTemperature(s.z, xavg, Ts)
	return sim.History.Append(row)
}
