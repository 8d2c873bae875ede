package physics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossSections(t *testing.T) {
	assert.InEpsilon(t, 6.35e-18, PhotoIonizationCrossSection(13.6, HI), 0.02)
	assert.InEpsilon(t, 7.44e-18, PhotoIonizationCrossSection(24.6, HeI), 0.02)
	assert.Greater(t, PhotoIonizationCrossSection(54.42, HeII), 1e-18)

	for _, s := range []Species{HI, HeI, HeII} {
		assert.Zero(t, PhotoIonizationCrossSection(s.Threshold()-0.01, s), s.String())
		assert.Zero(t, ApproximatePhotoIonizationCrossSection(s.Threshold()-0.01, s))

		prev := math.Inf(1)
		for E := s.Threshold(); E < 1e4; E *= 1.5 {
			sigma := PhotoIonizationCrossSection(E, s)
			assert.Less(t, sigma, prev, "%s at %g eV", s, E)
			prev = sigma
		}
	}

	assert.InDelta(t, 6.3e-18, ApproximatePhotoIonizationCrossSection(13.6, HI), 1e-30)
	assert.InEpsilon(t, 6.3e-18/8, ApproximatePhotoIonizationCrossSection(27.2, HI), 1e-12)
	assert.Equal(t, "Species(7)", Species(7).String())
}

func TestParseChannel(t *testing.T) {
	for _, ch := range Channels() {
		got, err := ParseChannel(ch.String())
		require.NoError(t, err)
		assert.Equal(t, ch, got)
	}
	got, err := ParseChannel("HEAT")
	require.NoError(t, err)
	assert.Equal(t, Heat, got)

	_, err = ParseChannel("meow")
	assert.Error(t, err)
}

func TestNewSecondaryElectrons(t *testing.T) {
	_, err := NewSecondaryElectrons(Tabulated, nil)
	assert.Error(t, err)
	_, err = NewSecondaryElectrons(Method(4), nil)
	assert.Error(t, err)
	_, err = NewSecondaryElectrons(Ricotti, nil)
	assert.NoError(t, err)
}

func TestAllHeat(t *testing.T) {
	se, err := NewSecondaryElectrons(AllHeat, nil)
	require.NoError(t, err)
	for _, ch := range Channels() {
		want := 0.0
		if ch == Heat {
			want = 1
		}
		assert.Equal(t, want, se.DepositionFraction(0.3, 500, ch), ch.String())
	}
}

func TestShullVanSteenberg(t *testing.T) {
	se, err := NewSecondaryElectrons(ShullVanSteenberg, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.15, se.DepositionFraction(1e-5, 0, Heat))
	assert.InDelta(t, 0.9014, se.DepositionFraction(0.5, 0, Heat), 1e-3)
	assert.InDelta(t, 0.3908, se.DepositionFraction(0, 0, IonHI), 1e-12)
	assert.InDelta(t, 0.0554, se.DepositionFraction(0, 0, IonHeI), 1e-12)
	assert.InDelta(t, 0.4766, se.DepositionFraction(0, 0, LyA), 1e-12)
	assert.Zero(t, se.DepositionFraction(0.5, 0, IonHeII))

	// Fully ionized gas heats.
	assert.InDelta(t, 0.9971, se.DepositionFraction(1, 0, Heat), 1e-12)
	assert.InDelta(t, 0, se.DepositionFraction(1, 0, IonHI), 1e-12)

	// Energy is conserved.
	for x := 1e-3; x <= 1; x *= 1.3 {
		sum := 0.0
		for _, ch := range []Channel{Heat, IonHI, IonHeI, IonHeII, LyA} {
			sum += se.DepositionFraction(x, 0, ch)
		}
		assert.LessOrEqual(t, sum, 1.0, "x = %g", x)
	}
}

func TestRicotti(t *testing.T) {
	se, err := NewSecondaryElectrons(Ricotti, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.15, se.DepositionFraction(1e-5, 1e3, Heat))
	assert.InDelta(t, 1.0, se.DepositionFraction(0.1, 5, Heat), 1e-12)
	assert.Zero(t, se.DepositionFraction(0.1, 20, IonHI))
	assert.Zero(t, se.DepositionFraction(0.1, 20, IonHeI))

	// High energy electrons approach the Shull & van Steenberg fits.
	svs, _ := NewSecondaryElectrons(ShullVanSteenberg, nil)
	for _, ch := range []Channel{IonHI, IonHeI} {
		assert.InDelta(t,
			svs.DepositionFraction(0.01, 1e12, ch),
			se.DepositionFraction(0.01, 1e12, ch), 2e-5, ch.String())
	}
	assert.GreaterOrEqual(t, se.DepositionFraction(0.99, 1e3, IonHI), tinyNumber)
}

func writeElectronTable(t *testing.T, text string) string {
	fname := filepath.Join(t.TempDir(), ElectronTableFile)
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))
	return fname
}

func TestElectronTable(t *testing.T) {
	// Columns are linear in E and x so bilinear interpolation is exact.
	text := `# E x heat h_1 he_1 he_2 exc lya
10   0.1 0.20 0.30 0.04 0.001 0.40 0.30
10   0.9 0.60 0.10 0.01 0.000 0.20 0.10
1000 0.1 0.40 0.30 0.04 0.001 0.40 0.30 # trailing comment
1000 0.9 0.80 0.10 0.01 0.000 0.20 0.10
`
	table, err := ReadElectronTable(writeElectronTable(t, text))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 1000}, table.E)
	assert.Equal(t, []float64{0.1, 0.9}, table.X)

	se, err := NewSecondaryElectrons(Tabulated, table)
	require.NoError(t, err)

	assert.InDelta(t, 0.4, se.DepositionFraction(0.5, 10, Heat), 1e-12)
	assert.InDelta(t, 0.5, se.DepositionFraction(0.5, 505, Heat), 1e-12)
	assert.InDelta(t, 0.2, se.DepositionFraction(0.5, 10, IonHI), 1e-12)
	assert.InDelta(t, 0.3, se.DepositionFraction(0.5, 10, Excitation), 1e-12)
	assert.InDelta(t, 0.2, se.DepositionFraction(0.5, 10, LyA), 1e-12)

	// Clamped outside the grid.
	assert.InDelta(t, 0.8, se.DepositionFraction(1, 1e6, Heat), 1e-12)
	assert.InDelta(t, 0.2, se.DepositionFraction(0, 1, Heat), 1e-12)
}

func TestElectronTableErrors(t *testing.T) {
	tests := []struct {
		name, text, msg string
	}{
		{"columns", "10 0.1 0.2\n", "8 columns"},
		{"parse", "10 0.1 0.2 0.3 0.4 0.5 0.6 cat\n", "line 1"},
		{"incomplete", "10 0.1 1 1 1 1 1 1\n10 0.9 1 1 1 1 1 1\n" +
			"100 0.1 1 1 1 1 1 1\n", "grid"},
		{"duplicate", "10 0.1 1 1 1 1 1 1\n10 0.1 1 1 1 1 1 1\n" +
			"100 0.1 1 1 1 1 1 1\n100 0.9 1 1 1 1 1 1\n", "duplicate"},
		{"empty", "# nothing\n", "at least two"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadElectronTable(writeElectronTable(t, test.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}

	_, err := ReadElectronTable(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestKappa(t *testing.T) {
	for _, mode := range []CouplingInterp{LinearCoupling, CubicCoupling} {
		h, err := NewHydrogen(cosmo.Default(), mode)
		require.NoError(t, err)

		for i := range tHH {
			k, err := h.KappaHH(tHH[i])
			require.NoError(t, err)
			assert.InEpsilon(t, kappaHH[i], k, 1e-9, "T = %g", tHH[i])
		}
		for i := range tEH {
			k, err := h.KappaEH(tEH[i])
			require.NoError(t, err)
			assert.InEpsilon(t, kappaEH[i], k, 1e-9, "T = %g", tEH[i])
		}

		// End values are held outside the table.
		k, err := h.KappaHH(0.1)
		require.NoError(t, err)
		assert.Equal(t, kappaHH[0], k)
		k, err = h.KappaEH(1e6)
		require.NoError(t, err)
		assert.Equal(t, kappaEH[len(kappaEH)-1], k)

		// Between nodes the rate lies between its neighbors.
		k, err = h.KappaHH(150)
		require.NoError(t, err)
		assert.Greater(t, k, 1.19e-10)
		assert.Less(t, k, 1.75e-10)

		_, err = h.KappaHH(math.NaN())
		assert.True(t, errors.Is(err, ErrCouplingInterp))
	}

	_, err := NewHydrogen(cosmo.Default(), "quintic")
	assert.Error(t, err)
	h, err := NewHydrogen(cosmo.Default(), "")
	require.NoError(t, err)
	assert.Equal(t, CubicCoupling, h.Interp)
}

func TestCouplingFallback(t *testing.T) {
	// A natural spline through a step undershoots below zero between
	// log T = 2 and 3.
	T := []float64{1, 10, 100, 1000, 10000}
	step := newRateTable("step", T, []float64{1, 1, 0, 0, 0}, CubicCoupling)
	require.NotNil(t, step.spline)
	assert.Less(t, step.spline.Eval(2.5), 0.0)

	h := &Hydrogen{Interp: CubicCoupling, hh: step, eh: step}
	k, err := h.KappaHH(math.Pow(10, 2.5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, k)
	assert.Equal(t, int64(1), h.Fallbacks())

	// Well-behaved points do not fall back.
	_, err = h.KappaHH(math.Pow(10, 0.5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.Fallbacks())

	// When linear interpolation fails too, the error is reported.
	bad := newRateTable("bad", T, []float64{1, -1, 1, 1, 1}, CubicCoupling)
	h = &Hydrogen{Interp: CubicCoupling, hh: bad, eh: bad}
	_, err = h.KappaHH(10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCouplingInterp))
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, int64(1), h.Fallbacks())
}

func TestCouplingCoefficients(t *testing.T) {
	c := cosmo.Default()
	h, err := NewHydrogen(c, LinearCoupling)
	require.NoError(t, err)

	z, Tk, xHII := 50.0, 40.0, 1e-4
	ne := xHII * c.NH(z)
	xc, err := h.CollisionalCouplingCoefficient(z, Tk, xHII, ne)
	require.NoError(t, err)

	kHH, _ := h.KappaHH(Tk)
	kEH, _ := h.KappaEH(Tk)
	want := (c.NH(z)*(1-xHII)*kHH + ne*kEH) * TStar / A10 / c.TCMB(z)
	assert.InEpsilon(t, want, xc, 1e-12)
	assert.Greater(t, xc, 0.0)

	assert.InEpsilon(t, 1.81e11*2e-10/11, h.LyaCouplingCoefficient(10, 100, 2e-10), 1e-12)
	assert.InEpsilon(t, 6.1193e-11, JaFromJ21(1), 1e-4)
}

func TestSpinTemperature(t *testing.T) {
	h, err := NewHydrogen(cosmo.Default(), CubicCoupling)
	require.NoError(t, err)
	z := 20.0
	Tcmb := h.Cosm.TCMB(z)

	assert.InEpsilon(t, Tcmb, h.SpinTemperature(z, 10, 0, 0), 1e-12)
	assert.InEpsilon(t, 10, h.SpinTemperature(z, 10, 1e8, 0), 1e-6)
	assert.InEpsilon(t, 10, h.SpinTemperature(z, 10, 0, 1e8), 1e-6)

	Ts := h.SpinTemperature(z, 10, 1, 1)
	assert.Greater(t, Ts, 10.0)
	assert.Less(t, Ts, Tcmb)
}

func TestBrightnessTemperature(t *testing.T) {
	h, err := NewHydrogen(cosmo.Default(), CubicCoupling)
	require.NoError(t, err)
	z := 9.0

	assert.InDelta(t, 0, h.DifferentialBrightnessTemperature(z, 0, h.Cosm.TCMB(z)), 1e-12)
	assert.InDelta(t, 26.93, h.DifferentialBrightnessTemperature(z, 0, 1e12), 0.05)
	assert.InDelta(t, 0, h.DifferentialBrightnessTemperature(z, 1, 1e12), 1e-12)
	assert.Less(t, h.DifferentialBrightnessTemperature(z, 0, 10), 0.0)

	assert.InDelta(t, Nu0MHz, Frequency(0), 1e-12)
	assert.InDelta(t, 9.0, Redshift(Frequency(9)), 1e-12)
}
