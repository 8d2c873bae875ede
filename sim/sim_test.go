package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/inits"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testICs returns a smooth recombination-era history from z = 10 to 1000.
func testICs(t *testing.T) *inits.ICs {
	c := cosmo.Default()
	n := 200
	zs, xe, Tk := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := range zs {
		zs[i] = 10 * math.Pow(100, float64(i)/float64(n-1))
		xe[i] = 2e-4 + 1e-3*math.Pow(zs[i]/1000, 2)
		Tk[i] = c.TGasAdiabatic(zs[i])
	}
	b, err := json.Marshal(map[string][]float64{"z": zs, "xe": xe, "Tk": Tk})
	require.NoError(t, err)
	ics, err := inits.Parse(b)
	require.NoError(t, err)
	return ics
}

func noICsParams() Params {
	p := DefaultParams()
	p.LoadICs = false
	p.Dz = 0.1
	return p
}

func TestTanh(t *testing.T) {
	tanh := Tanh{Amp: 10, Z0: 20, Dz: 3}
	assert.InDelta(t, 5.0, tanh.At(20), 1e-12)
	assert.InDelta(t, 10.0, tanh.At(-100), 1e-9)
	assert.InDelta(t, 0.0, tanh.At(200), 1e-9)
	assert.Greater(t, tanh.At(19), tanh.At(21))
}

func TestValidate(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())

	mods := []func(p *Params){
		func(p *Params) { p.FinalRedshift = 60 },
		func(p *Params) { p.FinalRedshift = -1 },
		func(p *Params) { p.Dz = 0 },
		func(p *Params) { p.MaxTimestep = -1 },
		func(p *Params) { p.J.Dz = 0 },
		func(p *Params) { p.X.Amp = 2 },
		func(p *Params) { p.IncludeCGM, p.IncludeIGM = false, false },
		func(p *Params) { p.CGMInitialIonization = 1.5 },
		func(p *Params) { p.Cosmology.OmegaM0 = -1 },
	}
	for i, mod := range mods {
		p := DefaultParams()
		mod(&p)
		assert.Error(t, p.Validate(), "modification %d", i)
	}
}

func TestZone(t *testing.T) {
	p := DefaultParams()
	p.IGMInitialTemperature = 30

	igm, err := p.Zone("igm")
	require.NoError(t, err)
	assert.Equal(t, "igm", igm.Name)
	assert.Equal(t, p.InitialRedshift, igm.InitialRedshift)
	assert.Equal(t, p.FinalRedshift, igm.FinalRedshift)
	assert.Equal(t, p.IncludeHe, igm.IncludeHe)
	assert.Equal(t, 30.0, igm.InitialTemperature)

	cgm, err := p.Zone("cgm")
	require.NoError(t, err)
	assert.Equal(t, 1e4, cgm.InitialTemperature)
	assert.Equal(t, p.CGMInitialIonization, cgm.InitialIonization)

	_, err = p.Zone("ism")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	h := NewHistory("z", "Ts")
	assert.Equal(t, 0, h.Len())
	require.NoError(t, h.Append(map[string]float64{"z": 20, "Ts": 10}))
	require.NoError(t, h.Append(map[string]float64{"z": 19, "Ts": 12.5}))
	assert.Error(t, h.Append(map[string]float64{"z": 18}))
	assert.Error(t, h.Append(map[string]float64{"z": 18, "Tk": 3}))
	assert.Equal(t, 2, h.Len())

	ts, err := h.Get("Ts")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12.5}, ts)
	_, err = h.Get("dTb")
	assert.True(t, errors.Is(err, ErrNoColumn))

	require.NoError(t, h.SetColumn("dTb", []float64{-1, -2}))
	assert.Error(t, h.SetColumn("xa", []float64{1}))
	assert.Equal(t, []string{"z", "Ts", "dTb"}, h.Names())

	buf := &bytes.Buffer{}
	require.NoError(t, h.WriteTable(buf))
	assert.Equal(t, "# z Ts dTb\n20 10 -1\n19 12.5 -2\n", buf.String())

	h2, err := ReadTable(buf)
	require.NoError(t, err)
	assert.Equal(t, h, h2)

	for _, bad := range []string{"", "1 2\n", "# a b\n1\n", "# a\nx\n"} {
		_, err := ReadTable(bytes.NewBufferString(bad))
		assert.Error(t, err, "%q", bad)
	}
}

func TestRun(t *testing.T) {
	p := noICsParams()
	sim, err := New(p, nil)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	h := sim.History

	assert.Equal(t, []string{
		"z", "t", "nu", "igm_Tk", "igm_h_2", "igm_e", "cgm_h_2",
		"Ja", "Ts", "dTb", "xc", "xa",
	}, h.Names())

	z, _ := h.Get(ColZ)
	tt, _ := h.Get(ColT)
	require.Greater(t, len(z), int((p.InitialRedshift-p.FinalRedshift)/p.Dz)-1)
	assert.Less(t, z[0], p.InitialRedshift)
	assert.Equal(t, p.FinalRedshift, z[len(z)-1])
	for i := 1; i < len(z); i++ {
		assert.Less(t, z[i], z[i-1])
		assert.Greater(t, tt[i], tt[i-1])
		assert.LessOrEqual(t, z[i-1]-z[i], p.Dz*(1+1e-9))
	}

	// Elapsed time matches the cosmology.
	elapsed := sim.Cosm.LookbackTime(p.FinalRedshift, p.InitialRedshift)
	assert.InEpsilon(t, elapsed, tt[len(tt)-1], 1e-2)

	dTb, _ := h.Get(ColDTb)
	cgm, _ := h.Get(ColCGMH2)
	Tk, _ := h.Get(ColIGMTk)
	for i := range dTb {
		assert.False(t, math.IsNaN(dTb[i]), "row %d", i)
		assert.True(t, dTb[i] > -500 && dTb[i] < 100, "row %d", i)
	}
	assert.Greater(t, cgm[len(cgm)-1], 0.5)
	assert.Less(t, cgm[0], 1e-2)
	assert.Greater(t, Tk[len(Tk)-1], 100.0)
	assert.Less(t, Tk[0], sim.Cosm.TCMB(z[0]))
}

func TestRunICs(t *testing.T) {
	ics := testICs(t)
	p := noICsParams()
	p.LoadICs = true

	_, err := New(p, nil)
	assert.Error(t, err)

	sim, err := New(p, ics)
	require.NoError(t, err)
	xe, Tk, err := ics.Interp(p.InitialRedshift)
	require.NoError(t, err)
	assert.Equal(t, Tk, sim.IGM.InitialTemperature)
	assert.InDelta(t, xe/(1+sim.Cosm.HeliumByNumberRatio()),
		sim.IGM.InitialIonization, 1e-15)

	require.NoError(t, sim.Run(context.Background()))
	z, _ := sim.History.Get(ColZ)
	above := ics.Above(p.InitialRedshift)
	require.NotEmpty(t, above)
	assert.Equal(t, ics.Z[len(ics.Z)-1], z[0])
	assert.Greater(t, z[len(above)-1], p.InitialRedshift)
	assert.Less(t, z[len(above)], p.InitialRedshift)
	tt, _ := sim.History.Get(ColT)
	for i := 1; i < len(z); i++ {
		assert.Less(t, z[i], z[i-1])
		assert.Greater(t, tt[i], tt[i-1], "row %d", i)
	}
	assert.Less(t, tt[len(above)-1], 0.0)
	assert.Greater(t, tt[len(above)], 0.0)

	p.InitialRedshift = 2000
	_, err = New(p, ics)
	assert.True(t, errors.Is(err, inits.ErrOutOfRange))
}

func TestRunICsElectrons(t *testing.T) {
	ics := testICs(t)
	for _, he := range []bool{true, false} {
		p := noICsParams()
		p.LoadICs, p.IncludeHe = true, he
		sim, err := New(p, ics)
		require.NoError(t, err)
		require.NoError(t, sim.Run(context.Background()))

		n := len(ics.Above(p.InitialRedshift))
		xe, _ := sim.History.Get(ColIGME)
		xi, _ := sim.History.Get(ColIGMH2)
		// Both sides of the boundary count helium electrons the same way.
		assert.InEpsilon(t, xe[n-1]/xi[n-1], xe[n]/xi[n], 1e-12, "he = %v", he)
		assert.InEpsilon(t, xe[n-1], xe[n], 0.05, "he = %v", he)
	}
}

func TestRunAboveDecoupling(t *testing.T) {
	p := noICsParams()
	p.InitialRedshift, p.Dz = 400, 1
	sim, err := New(p, nil)
	require.NoError(t, err)
	require.Greater(t, p.InitialRedshift, sim.Cosm.ZDec)
	require.NoError(t, sim.Run(context.Background()))

	z, _ := sim.History.Get(ColZ)
	Tk, _ := sim.History.Get(ColIGMTk)
	crossed := false
	for i := range z {
		crossed = crossed || z[i] < sim.Cosm.ZDec
		want := sim.Cosm.TGasAdiabatic(z[i]) + p.T.At(z[i])
		assert.InEpsilon(t, want, Tk[i], 1e-9, "z = %g", z[i])
	}
	assert.True(t, crossed)
}

func TestRunZones(t *testing.T) {
	p := noICsParams()
	p.IncludeIGM = false
	sim, err := New(p, nil)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	_, err = sim.History.Get(ColIGMTk)
	assert.True(t, errors.Is(err, ErrNoColumn))
	assert.True(t, sim.History.Has(ColCGMH2))

	p = noICsParams()
	p.IncludeCGM = false
	sim, err = New(p, nil)
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	assert.False(t, sim.History.Has(ColCGMH2))
	assert.True(t, sim.History.Has(ColIGMTk))
}

func TestRunCancel(t *testing.T) {
	sim, err := New(noICsParams(), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(sim.Run(ctx), context.Canceled))
}
