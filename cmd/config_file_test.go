package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, text string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(text), 0666))
	return fname
}

func TestExampleFiles(t *testing.T) {
	tests := []Mode {
		&GlobalConfig{},
		&TauConfig{},
		&FindTauConfig{},
		&GlobalRunConfig{},
		&ExtremaConfig{},
	}

	for i := range tests {
		mode := tests[i]
		fname := writeConfig(t, "ares_config_test", mode.ExampleConfig())
		err := mode.ReadConfig(fname)
		assert.NoError(t, err, "%d) Got error when parsing config file", i)
	}

	for _, mode := range []Mode{ &ESecConfig{}, &RunsConfig{} } {
		assert.NoError(t, mode.ReadConfig(""))
		assert.Error(t, mode.ReadConfig("extra.config"))
	}
}

func TestGlobalConfig(t *testing.T) {
	config := &GlobalConfig{}
	require.NoError(t, config.ReadConfig(""))
	assert.Equal(t, "nil", config.Logging)

	bad := []string{
		"[config]\nVersion = 0.0.1",
		"[config]\nVersion = banana",
		"[config]\nLogging = loud",
		"[config]\nWorkers = -2",
		"[config]\nInputDir = /does/not/exist/at/all",
		"[tau.config]\nZMin = 3",
	}
	for i := range bad {
		fname := writeConfig(t, "bad.config", bad[i])
		assert.Error(t, (&GlobalConfig{}).ReadConfig(fname), "%d) %s",
			i, bad[i])
	}

	dir := t.TempDir()
	fname := writeConfig(t, "good.config",
		"[config]\nInputDir = "+dir+"\nLogging = debug\nWorkers = 3")
	config = &GlobalConfig{}
	require.NoError(t, config.ReadConfig(fname))
	assert.Equal(t, dir, config.InputDir)
	assert.EqualValues(t, 3, config.Workers)
}

func TestModeConfigs(t *testing.T) {
	tau := &TauConfig{}
	fname := writeConfig(t, "tau.config",
		"[tau.config]\nZMin = 10\nZMax = 12\nNz = 5\nIncludeHe = false")
	require.NoError(t, tau.ReadConfig(fname))
	assert.Equal(t, 5, tau.table.params.Nz)
	assert.Equal(t, "H", tau.table.params.Chemistry())
	assert.Equal(t, 0.272, tau.table.cosm.OmegaM0)

	fname = writeConfig(t, "tau.config", "[tau.config]\nNz = 1")
	assert.Error(t, (&TauConfig{}).ReadConfig(fname))

	global := &GlobalRunConfig{}
	fname = writeConfig(t, "global.config",
		"[global.config]\nJAmp = 3\nCouplingInterp = linear\nOmegaM0 = 0.3")
	require.NoError(t, global.ReadConfig(fname))
	assert.Equal(t, 3.0, global.sim.params.J.Amp)
	assert.EqualValues(t, "linear", global.sim.params.CouplingInterp)
	assert.Equal(t, 0.3, global.sim.params.Cosmology.OmegaM0)

	fname = writeConfig(t, "global.config",
		"[global.config]\nCouplingInterp = quintic")
	assert.Error(t, (&GlobalRunConfig{}).ReadConfig(fname))

	yml := writeConfig(t, "params.yaml",
		"final_redshift: 8\ntanh_J:\n  amp: 4\n  z0: 15\n  dz: 2\n")
	require.NoError(t, global.sim.readYAML(yml))
	assert.Equal(t, 8.0, global.sim.params.FinalRedshift)
	assert.Equal(t, 4.0, global.sim.params.J.Amp)
	assert.Equal(t, 0.3, global.sim.params.Cosmology.OmegaM0)
}
