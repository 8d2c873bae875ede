/*package sim runs global 21-cm simulations in which the Lyman-alpha
background, the heating of the bulk IGM, and the growth of HII regions are
each parameterized by a tanh in redshift.

A run has two zones: the bulk, mostly neutral "igm" and the fully ionized
"cgm" made of HII regions, whose hydrogen ionized fraction is the volume
filling fraction of ionized bubbles. Either zone can be switched off.
*/
package sim

import (
	"fmt"
	"math"

	"github.com/jinzhu/copier"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/physics"
	"github.com/pkg/errors"
)

// Tanh is a step in redshift: Amp (1 + tanh((Z0 - z) / Dz)) / 2, which
// turns on as z falls below Z0.
type Tanh struct {
	Amp float64 `yaml:"amp"`
	Z0  float64 `yaml:"z0"`
	Dz  float64 `yaml:"dz"`
}

// At evaluates the step at z.
func (t Tanh) At(z float64) float64 {
	return t.Amp * (1 + math.Tanh((t.Z0-z)/t.Dz)) / 2
}

// Params are the parameters of a global 21-cm run.
type Params struct {
	InitialRedshift float64 `yaml:"initial_redshift"`
	FinalRedshift   float64 `yaml:"final_redshift"`
	// Steps never exceed Dz in redshift or MaxTimestep (Myr) in time.
	Dz          float64 `yaml:"dz"`
	MaxTimestep float64 `yaml:"max_timestep"`

	// J is in units of J21, T in K, and X is the HII filling fraction.
	J Tanh `yaml:"tanh_J"`
	T Tanh `yaml:"tanh_T"`
	X Tanh `yaml:"tanh_x"`

	CouplingInterp physics.CouplingInterp `yaml:"coupling_interp"`
	LoadICs        bool                   `yaml:"load_ics"`
	IncludeIGM     bool                   `yaml:"include_igm"`
	IncludeCGM     bool                   `yaml:"include_cgm"`
	IncludeHe      bool                   `yaml:"include_he"`

	// Zone starting states, used when LoadICs is false. The IGM
	// temperature defaults to the adiabatic temperature when not positive.
	IGMInitialTemperature float64 `yaml:"igm_initial_temperature"`
	IGMInitialIonization  float64 `yaml:"igm_initial_ionization"`
	CGMInitialTemperature float64 `yaml:"cgm_initial_temperature"`
	CGMInitialIonization  float64 `yaml:"cgm_initial_ionization"`

	Cosmology cosmo.Params `yaml:"cosmology"`
}

// DefaultParams returns the default parameters of a run.
func DefaultParams() Params {
	return Params{
		InitialRedshift: 50,
		FinalRedshift:   5,
		Dz:              0.05,
		MaxTimestep:     1,

		J: Tanh{Amp: 10, Z0: 20, Dz: 3},
		T: Tanh{Amp: 1e3, Z0: 8, Dz: 4},
		X: Tanh{Amp: 1, Z0: 8, Dz: 4},

		CouplingInterp: physics.CubicCoupling,
		LoadICs:        true,
		IncludeIGM:     true,
		IncludeCGM:     true,
		IncludeHe:      true,

		IGMInitialIonization:  1.2e-3,
		CGMInitialTemperature: 1e4,
		CGMInitialIonization:  1.2e-3,

		Cosmology: cosmo.DefaultParams(),
	}
}

// Validate returns an error describing the first problem with p.
func (p *Params) Validate() error {
	switch {
	case p.FinalRedshift < 0 || p.InitialRedshift <= p.FinalRedshift:
		return fmt.Errorf("need 0 <= FinalRedshift < InitialRedshift, "+
			"but got %g and %g", p.FinalRedshift, p.InitialRedshift)
	case p.Dz <= 0:
		return fmt.Errorf("Dz = %g must be positive", p.Dz)
	case p.MaxTimestep <= 0:
		return fmt.Errorf("MaxTimestep = %g must be positive", p.MaxTimestep)
	case p.J.Dz <= 0 || p.T.Dz <= 0 || p.X.Dz <= 0:
		return fmt.Errorf("tanh widths must be positive")
	case p.X.Amp < 0 || p.X.Amp > 1:
		return fmt.Errorf("tanh ionization amplitude %g not in [0, 1]",
			p.X.Amp)
	case !p.IncludeIGM && !p.IncludeCGM:
		return fmt.Errorf("at least one of the igm and cgm zones must be " +
			"included")
	}
	for _, x := range []float64{p.IGMInitialIonization, p.CGMInitialIonization} {
		if x < 0 || x > 1 {
			return fmt.Errorf("initial ionization %g not in [0, 1]", x)
		}
	}
	return errors.Wrap(p.Cosmology.Validate(), "invalid cosmology")
}

// ZoneParams are the parameters of a single zone.
type ZoneParams struct {
	Name               string
	InitialRedshift    float64
	FinalRedshift      float64
	IncludeHe          bool
	InitialTemperature float64
	InitialIonization  float64
}

// Zone derives the parameters of the named zone ("igm" or "cgm") from the
// global parameter set: shared fields are copied and the zone-prefixed
// fields replace the generic ones.
func (p *Params) Zone(name string) (*ZoneParams, error) {
	zp := &ZoneParams{}
	if err := copier.Copy(zp, p); err != nil {
		return nil, errors.Wrapf(err, "deriving %s zone", name)
	}
	zp.Name = name

	switch name {
	case "igm":
		zp.InitialTemperature = p.IGMInitialTemperature
		zp.InitialIonization = p.IGMInitialIonization
	case "cgm":
		zp.InitialTemperature = p.CGMInitialTemperature
		zp.InitialIonization = p.CGMInitialIonization
	default:
		return nil, fmt.Errorf("unknown zone '%s'", name)
	}
	return zp, nil
}
