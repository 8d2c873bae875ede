/*package cosmo computes background quantities for a flat matter + Lambda
universe: expansion rates, densities, distances, times, and the temperature
of the CMB and of adiabatically cooling gas. All dimensional results are in
cgs units.
*/
package cosmo

import (
	"math"

	"github.com/phil-mansfield/ares/math/calc"
	"github.com/pkg/errors"
)

// Params are the input parameters of a cosmology. HeliumByNumber takes
// priority over HeliumByMass when it is positive.
type Params struct {
	OmegaM0        float64 `yaml:"omega_m_0"`
	OmegaB0        float64 `yaml:"omega_b_0"`
	OmegaL0        float64 `yaml:"omega_l_0"`
	Hubble0        float64 `yaml:"hubble_0"` // h, H0 / (100 km/s/Mpc)
	CMBTemp0       float64 `yaml:"cmb_temp_0"`
	HeliumByMass   float64 `yaml:"helium_by_mass"`
	HeliumByNumber float64 `yaml:"helium_by_number,omitempty"`
	// ApproxHighZ drops Lambda from the expansion rate, which gives closed
	// forms for distances.
	ApproxHighZ bool `yaml:"approx_highz"`
}

// DefaultParams returns the WMAP-era parameters used throughout the code.
func DefaultParams() Params {
	return Params{
		OmegaM0:      0.272,
		OmegaB0:      0.044,
		OmegaL0:      0.728,
		Hubble0:      0.702,
		CMBTemp0:     2.725,
		HeliumByMass: 0.2477,
	}
}

// Validate checks that p describes a physical cosmology.
func (p *Params) Validate() error {
	switch {
	case p.OmegaM0 <= 0:
		return errors.Errorf("OmegaM0 = %g must be positive", p.OmegaM0)
	case p.OmegaB0 <= 0 || p.OmegaB0 > p.OmegaM0:
		return errors.Errorf("OmegaB0 = %g must be in (0, OmegaM0 = %g]",
			p.OmegaB0, p.OmegaM0)
	case p.OmegaL0 <= 0:
		return errors.Errorf("OmegaL0 = %g must be positive", p.OmegaL0)
	case p.Hubble0 <= 0:
		return errors.Errorf("Hubble0 = %g must be positive", p.Hubble0)
	case p.CMBTemp0 <= 0:
		return errors.Errorf("CMBTemp0 = %g must be positive", p.CMBTemp0)
	case p.HeliumByNumber <= 0 && (p.HeliumByMass <= 0 || p.HeliumByMass >= 1):
		return errors.Errorf("HeliumByMass = %g must be in (0, 1)",
			p.HeliumByMass)
	}
	return nil
}

// Cosmology is a Params set together with the quantities derived from it.
// It is immutable after construction and safe for concurrent use.
type Cosmology struct {
	Params

	H0       float64 // s^-1
	RhoCrit0 float64 // g / cm^3
	// X and Y are the hydrogen and helium mass fractions, y is the helium
	// to hydrogen number ratio.
	X, Y, y float64
	// ZDec is the redshift at which gas thermally decouples from the CMB.
	ZDec      float64
	AEq, ZEq  float64
	NH0, NHe0 float64 // cm^-3
	Ne0       float64 // cm^-3, fully ionized
	// MeanDensity0 is the comoving matter density in h^2 Msun / Mpc^3.
	MeanDensity0 float64
	GPerBaryon   float64
}

// New derives a Cosmology from p.
func New(p Params) (*Cosmology, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid cosmology")
	}

	c := &Cosmology{Params: p}
	c.H0 = p.Hubble0 * 100 / KmPerMpc
	c.RhoCrit0 = 3 * c.H0 * c.H0 / (8 * math.Pi * G)

	if p.HeliumByNumber > 0 {
		c.y = p.HeliumByNumber
		c.Y = 4 * c.y / (1 + 4*c.y)
	} else {
		c.Y = p.HeliumByMass
		c.y = 1 / (1/c.Y - 1) / 4
	}
	c.X = 1 - c.Y
	c.Params.HeliumByMass = c.Y

	c.GPerBaryon = MH / (1 - c.Y) / (1 + c.y)
	c.ZDec = 150*math.Pow(p.OmegaB0*p.Hubble0*p.Hubble0/0.023, 0.4) - 1
	c.AEq = math.Cbrt(p.OmegaM0 / p.OmegaL0)
	c.ZEq = 1/c.AEq - 1

	c.NH0 = c.X * c.MeanBaryonDensity(0) / MH
	c.NHe0 = c.y * c.NH0
	c.Ne0 = c.NH0 + 2*c.NHe0
	c.MeanDensity0 = RhoAverage(p.OmegaM0, 0)

	return c, nil
}

// Default returns the cosmology described by DefaultParams.
func Default() *Cosmology {
	c, err := New(DefaultParams())
	if err != nil {
		panic(err.Error())
	}
	return c
}

// HeliumByNumberRatio returns y = n_He / n_H.
func (c *Cosmology) HeliumByNumberRatio() float64 { return c.y }

// EvolutionFunction returns (H(z)/H0)^2 for the full matter + Lambda model.
func (c *Cosmology) EvolutionFunction(z float64) float64 {
	return c.OmegaM0*math.Pow(1+z, 3) + c.OmegaL0
}

// HubbleParameter returns H(z) in s^-1.
func (c *Cosmology) HubbleParameter(z float64) float64 {
	if c.ApproxHighZ {
		return c.H0 * math.Sqrt(c.OmegaM0) * math.Pow(1+z, 1.5)
	}
	return c.H0 * HubbleFrac(c.OmegaM0, c.OmegaL0, z)
}

// HubbleLength returns c / H(z) in cm.
func (c *Cosmology) HubbleLength(z float64) float64 {
	return C / c.HubbleParameter(z)
}

// HubbleTime returns 1 / H(z) in s.
func (c *Cosmology) HubbleTime(z float64) float64 {
	return 1 / c.HubbleParameter(z)
}

func (c *Cosmology) OmegaMatter(z float64) float64 {
	if c.ApproxHighZ {
		return 1
	}
	return c.OmegaM0 * math.Pow(1+z, 3) / c.EvolutionFunction(z)
}

func (c *Cosmology) OmegaLambda(z float64) float64 {
	if c.ApproxHighZ {
		return 0
	}
	return c.OmegaL0 / c.EvolutionFunction(z)
}

// CriticalDensity returns the critical density at z in g / cm^3.
func (c *Cosmology) CriticalDensity(z float64) float64 {
	H := c.HubbleParameter(z)
	return 3 * H * H / (8 * math.Pi * G)
}

// MeanMatterDensity returns the proper matter density at z in g / cm^3.
func (c *Cosmology) MeanMatterDensity(z float64) float64 {
	return c.OmegaMatter(z) * c.CriticalDensity(z)
}

// MeanBaryonDensity returns the proper baryon density at z in g / cm^3.
func (c *Cosmology) MeanBaryonDensity(z float64) float64 {
	return (c.OmegaB0 / c.OmegaM0) * c.MeanMatterDensity(z)
}

// MeanHydrogenNumberDensity returns the proper hydrogen number density at z
// in cm^-3.
func (c *Cosmology) MeanHydrogenNumberDensity(z float64) float64 {
	return c.X * c.MeanBaryonDensity(z) / MH
}

// MeanHeliumNumberDensity returns the proper helium number density at z in
// cm^-3.
func (c *Cosmology) MeanHeliumNumberDensity(z float64) float64 {
	return c.Y * c.MeanBaryonDensity(z) / MHe
}

// NH returns nH0 (1 + z)^3.
func (c *Cosmology) NH(z float64) float64 { return c.NH0 * math.Pow(1+z, 3) }

// NHe returns nHe0 (1 + z)^3.
func (c *Cosmology) NHe(z float64) float64 { return c.NHe0 * math.Pow(1+z, 3) }

// TCMB returns the CMB temperature at z in K.
func (c *Cosmology) TCMB(z float64) float64 { return c.CMBTemp0 * (1 + z) }

// UCMB returns the energy density of the CMB at z in erg / cm^3.
func (c *Cosmology) UCMB(z float64) float64 {
	return 4 * SigmaSB * math.Pow(c.TCMB(z), 4) / C
}

// TGasAdiabatic returns the gas kinetic temperature assuming the gas tracks
// the CMB until ZDec and cools adiabatically afterwards. This is very
// approximate.
func (c *Cosmology) TGasAdiabatic(z float64) float64 {
	if z >= c.ZDec {
		return c.TCMB(z)
	}
	return c.TCMB(c.ZDec) * (1 + z) * (1 + z) / ((1 + c.ZDec) * (1 + c.ZDec))
}

// TimeOfRedshift returns the age of the universe at z in s (Ryden eq. 6.28).
func (c *Cosmology) TimeOfRedshift(z float64) float64 {
	a := 1 / (1 + z)
	return 2 / (3 * math.Sqrt(c.OmegaL0)) *
		math.Asinh(math.Pow(a/c.AEq, 1.5)) / c.H0
}

// LookbackTime returns the time elapsed between z1 and z2 in s, z1 < z2.
func (c *Cosmology) LookbackTime(z1, z2 float64) float64 {
	return c.TimeOfRedshift(z1) - c.TimeOfRedshift(z2)
}

// RedshiftAfter returns the redshift reached a time tf - ti after zi, using
// the matter dominated approximation.
func (c *Cosmology) RedshiftAfter(ti, tf, zi float64) float64 {
	return math.Pow(math.Pow(1+zi, -1.5)+
		3*c.H0*math.Sqrt(c.OmegaM0)*(tf-ti)/2, -2.0/3) - 1
}

// Dtdz returns |dt/dz| in s.
func (c *Cosmology) Dtdz(z float64) float64 {
	return 1 / c.HubbleParameter(z) / (1 + z)
}

// ComovingLineElement returns the comoving line element dr/dz in cm.
func (c *Cosmology) ComovingLineElement(z float64) float64 {
	return C / c.HubbleParameter(z)
}

// Dldz returns the proper line element dl/dz in cm.
func (c *Cosmology) Dldz(z float64) float64 {
	return c.ComovingLineElement(z) / (1 + z)
}

// ComovingRadialDistance returns the comoving distance between z0 and z in
// cm, z0 < z.
func (c *Cosmology) ComovingRadialDistance(z0, z float64) (float64, error) {
	if c.ApproxHighZ {
		return 2 * C * (math.Pow(1+z0, -0.5) - math.Pow(1+z, -0.5)) /
			c.H0 / math.Sqrt(c.OmegaM0), nil
	}

	// Normalize by H0 so the integrand is order unity.
	integrand := func(z float64) float64 { return c.H0 / c.HubbleParameter(z) }
	integral, err := calc.Quad(integrand, z0, z, calc.Tol(1e-10, 0))
	if err != nil {
		return 0, errors.Wrap(err, "comoving radial distance")
	}
	return C * integral / c.H0, nil
}

// ProperRadialDistance returns the comoving distance scaled to z0.
func (c *Cosmology) ProperRadialDistance(z0, z float64) (float64, error) {
	d, err := c.ComovingRadialDistance(z0, z)
	return d / (1 + z0), err
}

// LuminosityDistance returns the luminosity distance to z in cm.
func (c *Cosmology) LuminosityDistance(z float64) (float64, error) {
	d, err := c.ComovingRadialDistance(0, z)
	return d * (1 + z), err
}

// CriticalDensityForCollapse returns the virial overdensity Delta_c using
// the Bryan & Norman (1998) fit.
func (c *Cosmology) CriticalDensityForCollapse(z float64) float64 {
	d := c.OmegaMatter(z) - 1
	return 18*math.Pi*math.Pi + 82*d - 39*d*d
}
