package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/parse"
	"github.com/phil-mansfield/ares/physics"
	"github.com/phil-mansfield/ares/sim"
	"github.com/phil-mansfield/ares/tables"
)

// cosmoVars registers the cosmological parameters with vars.
func cosmoVars(vars *parse.ConfigVars, p *cosmo.Params) {
	def := cosmo.DefaultParams()
	vars.Float(&p.OmegaM0, "OmegaM0", def.OmegaM0)
	vars.Float(&p.OmegaB0, "OmegaB0", def.OmegaB0)
	vars.Float(&p.OmegaL0, "OmegaL0", def.OmegaL0)
	vars.Float(&p.Hubble0, "Hubble0", def.Hubble0)
	vars.Float(&p.CMBTemp0, "CMBTemp0", def.CMBTemp0)
	vars.Float(&p.HeliumByMass, "HeliumByMass", def.HeliumByMass)
	vars.Float(&p.HeliumByNumber, "HeliumByNumber", def.HeliumByNumber)
	vars.Bool(&p.ApproxHighZ, "ApproxHighZ", def.ApproxHighZ)
}

const cosmoExample = `# Cosmological parameters. These default to the values below.
OmegaM0 = 0.272
OmegaB0 = 0.044
OmegaL0 = 0.728
Hubble0 = 0.702
CMBTemp0 = 2.725
HeliumByMass = 0.2477
# HeliumByNumber overrides HeliumByMass when it is positive.
HeliumByNumber = 0
ApproxHighZ = false`

// tableConfig is the contents of a tau.config file.
type tableConfig struct {
	params tables.Params
	cosm   cosmo.Params
}

func (tc *tableConfig) read(fname string) error {
	def := tables.DefaultParams()
	p := &tc.params
	var nz int64

	vars := parse.NewConfigVars("tau.config")
	vars.Float(&p.ZMin, "ZMin", def.ZMin)
	vars.Float(&p.ZMax, "ZMax", def.ZMax)
	vars.Int(&nz, "Nz", int64(def.Nz))
	vars.Float(&p.EMin, "EMin", def.EMin)
	vars.Float(&p.EMax, "EMax", def.EMax)
	vars.Bool(&p.IncludeHe, "IncludeHe", def.IncludeHe)
	vars.Bool(&p.ApproxHe, "ApproxHe", def.ApproxHe)
	vars.Bool(&p.ApproxSigma, "ApproxSigma", def.ApproxSigma)
	cosmoVars(vars, &tc.cosm)

	if fname != "" {
		if err := parse.ReadConfig(fname, vars); err != nil { return err }
	}
	p.Nz = int(nz)

	if err := p.Validate(); err != nil { return err }
	return tc.cosm.Validate()
}

const tableExample = `[tau.config]
# Redshift range and number of redshifts in the table. The photon energy grid
# shares its logarithmic spacing with the 1+z grid.
ZMin = 5
ZMax = 50
Nz = 400

# Photon energy range, in eV.
EMin = 200
EMax = 30000

# IncludeHe adds helium absorption. ApproxHe takes the neutral helium
# fraction to equal the neutral hydrogen fraction and ignores HeII.
# ApproxSigma uses hydrogenic cross sections instead of the Verner fits.
IncludeHe = true
ApproxHe = true
ApproxSigma = false

` + cosmoExample

// simConfig is the contents of a global.config file.
type simConfig struct {
	params   sim.Params
	coupling string
}

func (sc *simConfig) read(fname string) error {
	def := sim.DefaultParams()
	p := &sc.params

	vars := parse.NewConfigVars("global.config")
	vars.Float(&p.InitialRedshift, "InitialRedshift", def.InitialRedshift)
	vars.Float(&p.FinalRedshift, "FinalRedshift", def.FinalRedshift)
	vars.Float(&p.Dz, "Dz", def.Dz)
	vars.Float(&p.MaxTimestep, "MaxTimestep", def.MaxTimestep)
	tanhVars(vars, &p.J, "J", def.J)
	tanhVars(vars, &p.T, "T", def.T)
	tanhVars(vars, &p.X, "X", def.X)
	vars.String(&sc.coupling, "CouplingInterp", string(def.CouplingInterp))
	vars.Bool(&p.LoadICs, "LoadICs", def.LoadICs)
	vars.Bool(&p.IncludeIGM, "IncludeIGM", def.IncludeIGM)
	vars.Bool(&p.IncludeCGM, "IncludeCGM", def.IncludeCGM)
	vars.Bool(&p.IncludeHe, "IncludeHe", def.IncludeHe)
	vars.Float(&p.IGMInitialTemperature, "IGMInitialTemperature",
		def.IGMInitialTemperature)
	vars.Float(&p.IGMInitialIonization, "IGMInitialIonization",
		def.IGMInitialIonization)
	vars.Float(&p.CGMInitialTemperature, "CGMInitialTemperature",
		def.CGMInitialTemperature)
	vars.Float(&p.CGMInitialIonization, "CGMInitialIonization",
		def.CGMInitialIonization)
	cosmoVars(vars, &p.Cosmology)

	if fname != "" {
		if err := parse.ReadConfig(fname, vars); err != nil { return err }
	}

	switch c := physics.CouplingInterp(sc.coupling); c {
	case physics.LinearCoupling, physics.CubicCoupling:
		p.CouplingInterp = c
	default:
		return fmt.Errorf("The 'CouplingInterp' variable is set to '%s', "+
			"which I don't recognize.", sc.coupling)
	}

	return p.Validate()
}

// readYAML replaces the parameters with the contents of a YAML file. Fields
// missing from the file keep their current values.
func (sc *simConfig) readYAML(fname string) error {
	b, err := os.ReadFile(fname)
	if err != nil { return err }
	if err = yaml.Unmarshal(b, &sc.params); err != nil {
		return fmt.Errorf("I couldn't parse the parameter file %s: %s",
			fname, err.Error())
	}
	sc.coupling = string(sc.params.CouplingInterp)
	return sc.params.Validate()
}

func tanhVars(vars *parse.ConfigVars, t *sim.Tanh, name string, def sim.Tanh) {
	vars.Float(&t.Amp, name+"Amp", def.Amp)
	vars.Float(&t.Z0, name+"Z0", def.Z0)
	vars.Float(&t.Dz, name+"Dz", def.Dz)
}

const simExample = `[global.config]
# The run starts at InitialRedshift and ends exactly at FinalRedshift. Steps
# never exceed Dz in redshift or MaxTimestep (in Myr) in time.
InitialRedshift = 50
FinalRedshift = 5
Dz = 0.05
MaxTimestep = 1

# Tanh histories of the form Amp (1 + tanh((Z0 - z) / Dz)) / 2 for the
# Lyman-alpha background (J, in units of 1e-21 erg/s/cm^2/Hz/sr), the IGM
# heating (T, in K), and the ionized filling fraction (X).
JAmp = 10
JZ0 = 20
JDz = 3
TAmp = 1000
TZ0 = 8
TDz = 4
XAmp = 1
XZ0 = 8
XDz = 4

# Interpolation of the collisional coupling rate tables: linear or cubic.
CouplingInterp = cubic

# LoadICs starts the IGM from the recombination history in
# $ARES/input/inits. Otherwise the IGM starts from the values below.
LoadICs = true
IncludeIGM = true
IncludeCGM = true
IncludeHe = true

# A non-positive IGM temperature means the adiabatic temperature.
IGMInitialTemperature = 0
IGMInitialIonization = 0.0012
CGMInitialTemperature = 10000
CGMInitialIonization = 0.0012

` + cosmoExample
