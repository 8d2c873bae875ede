package cosmo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRhoCritical(t *testing.T) {
	// The usual 2.775e11 h^2 Msun / Mpc^3.
	assert.InEpsilon(t, 2.775e11, RhoCritical(0.27, 0.73, 0), 1e-3)
	assert.InEpsilon(t, 0.27*8*2.775e11, RhoAverage(0.27, 1), 1e-3)
	assert.InDelta(t, 1.0, HubbleFrac(0.3, 0.7, 0), 1e-12)
}

func TestDerivedParameters(t *testing.T) {
	c := Default()

	assert.InEpsilon(t, 2.27503e-18, c.H0, 1e-4)
	assert.InDelta(t, 0.082314, c.HeliumByNumberRatio(), 1e-5)
	assert.InDelta(t, 1-0.2477, c.X, 1e-12)
	assert.InDelta(t, 145.5, c.ZDec, 0.1)
	assert.InEpsilon(t, 1.8313e-7, c.NH0, 1e-2)
	assert.InEpsilon(t, c.HeliumByNumberRatio()*c.NH0, c.NHe0, 1e-12)
	assert.InEpsilon(t, c.NH0+2*c.NHe0, c.Ne0, 1e-12)
	assert.InEpsilon(t, c.OmegaM0*RhoCritical(c.OmegaM0, c.OmegaL0, 0),
		c.MeanDensity0, 1e-12)
}

func TestHeliumByNumber(t *testing.T) {
	p := DefaultParams()
	p.HeliumByNumber = 0.08
	c, err := New(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.08, c.HeliumByNumberRatio(), 1e-12)
	assert.InDelta(t, 0.32/1.32, c.Y, 1e-12)
	assert.InDelta(t, 0.32/1.32, c.HeliumByMass, 1e-12)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(p *Params)
	}{
		{"OmegaM0", func(p *Params) { p.OmegaM0 = 0 }},
		{"OmegaB0", func(p *Params) { p.OmegaB0 = 0.5 }},
		{"OmegaL0", func(p *Params) { p.OmegaL0 = -1 }},
		{"Hubble0", func(p *Params) { p.Hubble0 = 0 }},
		{"CMBTemp0", func(p *Params) { p.CMBTemp0 = 0 }},
		{"HeliumByMass", func(p *Params) { p.HeliumByMass = 1 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := DefaultParams()
			test.mod(&p)
			_, err := New(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.name)
		})
	}
}

func TestTemperatures(t *testing.T) {
	c := Default()
	assert.InDelta(t, 27.25, c.TCMB(9), 1e-12)
	assert.InDelta(t, c.TCMB(300), c.TGasAdiabatic(300), 1e-12)

	// Continuous at decoupling, then adiabatic.
	assert.InEpsilon(t, c.TCMB(c.ZDec), c.TGasAdiabatic(c.ZDec-1e-9), 1e-8)
	ratio := c.TGasAdiabatic(20) / c.TGasAdiabatic(10)
	assert.InEpsilon(t, (21.0*21.0)/(11.0*11.0), ratio, 1e-12)

	assert.InEpsilon(t, 4*SigmaSB*math.Pow(2.725, 4)/C, c.UCMB(0), 1e-12)
}

func TestTimes(t *testing.T) {
	c := Default()

	age := c.TimeOfRedshift(0) / SPerMyr
	assert.InDelta(t, 13800, age, 100)

	// Matter domination at high redshift.
	z := 50.0
	matter := 2 / (3 * c.H0 * math.Sqrt(c.OmegaM0)) * math.Pow(1+z, -1.5)
	assert.InEpsilon(t, matter, c.TimeOfRedshift(z), 1e-3)

	// dt/dz agrees with the age-redshift relation.
	for _, z := range []float64{0.5, 6, 20} {
		h := 1e-4 * (1 + z)
		numeric := (c.TimeOfRedshift(z-h) - c.TimeOfRedshift(z+h)) / (2 * h)
		assert.InEpsilon(t, numeric, c.Dtdz(z), 1e-6, "z = %g", z)
	}

	assert.InEpsilon(t, c.TimeOfRedshift(10)-c.TimeOfRedshift(20),
		c.LookbackTime(10, 20), 1e-12)

	zf := c.RedshiftAfter(0, c.LookbackTime(20, 30), 30)
	assert.InDelta(t, 20, zf, 0.05)
}

func TestDistances(t *testing.T) {
	c := Default()

	d, err := c.ComovingRadialDistance(10, 20)
	require.NoError(t, err)

	p := DefaultParams()
	p.ApproxHighZ = true
	hz, err := New(p)
	require.NoError(t, err)
	approx, err := hz.ComovingRadialDistance(10, 20)
	require.NoError(t, err)
	assert.InEpsilon(t, approx, d, 1e-2)

	lum, err := c.LuminosityDistance(1)
	require.NoError(t, err)
	com, err := c.ComovingRadialDistance(0, 1)
	require.NoError(t, err)
	assert.InEpsilon(t, 2*com, lum, 1e-12)
	// Roughly 3.3 Gpc to z = 1 for these parameters.
	assert.InDelta(t, 3.3, com/CmPerMpc/1e3, 0.2)

	assert.InEpsilon(t, c.ComovingLineElement(5)/6, c.Dldz(5), 1e-12)
}

func TestHighZApproximation(t *testing.T) {
	p := DefaultParams()
	p.ApproxHighZ = true
	c, err := New(p)
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.OmegaMatter(3))
	assert.Equal(t, 0.0, c.OmegaLambda(3))
	assert.InDelta(t, 18*math.Pi*math.Pi, c.CriticalDensityForCollapse(3), 1e-9)

	full := Default()
	assert.InEpsilon(t, full.HubbleParameter(100), c.HubbleParameter(100), 1e-4)
	assert.InDelta(t, 1.0, full.OmegaMatter(3)+full.OmegaLambda(3), 1e-12)
}
