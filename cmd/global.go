package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ares/analysis"
	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/inits"
	"github.com/phil-mansfield/ares/sim"
)

// GlobalRunConfig contains the inputs of the global mode, which runs a global
// 21-cm calculation and prints its history.
type GlobalRunConfig struct {
	sim simConfig

	paramFile string
	storeFile string
	archive   bool
	name      string
}

var _ Mode = &GlobalRunConfig{}

// ExampleConfig returns an example configuration file.
func (config *GlobalRunConfig) ExampleConfig() string { return simExample }

// ReadConfig reads a config file and returns an error, if applicable.
func (config *GlobalRunConfig) ReadConfig(fname string) error {
	return config.sim.read(fname)
}

// BindFlags registers the global mode's flags.
func (config *GlobalRunConfig) BindFlags(c *cobra.Command) {
	c.Flags().StringVar(&config.paramFile, "params", "",
		"YAML parameter file which replaces the mode config file")
	c.Flags().StringVar(&config.storeFile, "store", "",
		"archive the run to this SQLite file")
	c.Flags().BoolVar(&config.archive, "archive", false,
		"archive the run to the global StoreFile")
	c.Flags().StringVar(&config.name, "name", "global",
		"name the run is archived under")
}

// Run executes the global mode.
func (config *GlobalRunConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	if config.paramFile != "" {
		if err := config.sim.readYAML(config.paramFile); err != nil {
			return nil, err
		}
	}

	s, err := runSim(ctx, config.sim.params, e)
	if err != nil { return nil, err }

	lines := []string{}
	if config.storeFile != "" || config.archive {
		st, err := gConfig.OpenStore(config.storeFile)
		if err != nil { return nil, err }
		defer st.Close()
		id, err := st.Save(ctx, config.name, s.Params, s.History)
		if err != nil { return nil, err }
		lines = append(lines, fmt.Sprintf("# run %s", id))
	}

	sb := &strings.Builder{}
	if err = s.History.WriteTable(sb); err != nil { return nil, err }
	return append(lines, linesOf(sb.String())...), nil
}

// runSim sets up and runs a calculation, loading initial conditions from the
// input directory if p asks for them.
func runSim(ctx context.Context, p sim.Params, e *Env) (*sim.Global21cm, error) {
	var ics *inits.ICs
	if p.LoadICs {
		layout, err := e.Layout()
		if err != nil { return nil, err }
		if ics, err = inits.Load(layout); err != nil { return nil, err }
	}

	s, err := sim.New(p, ics)
	if err != nil { return nil, err }
	s.Progress = e.Progress
	if err = s.Run(ctx); err != nil { return nil, err }
	return s, nil
}

// ExtremaConfig contains the inputs of the extrema mode, which prints the
// turning points of a global 21-cm history.
type ExtremaConfig struct {
	sim simConfig

	paramFile string
	storeFile string
	runID     string
	stdin     bool
}

var _ Mode = &ExtremaConfig{}

// ExampleConfig returns an example configuration file.
func (config *ExtremaConfig) ExampleConfig() string { return simExample }

// ReadConfig reads a config file and returns an error, if applicable.
func (config *ExtremaConfig) ReadConfig(fname string) error {
	return config.sim.read(fname)
}

// BindFlags registers the extrema mode's flags.
func (config *ExtremaConfig) BindFlags(c *cobra.Command) {
	c.Flags().StringVar(&config.paramFile, "params", "",
		"YAML parameter file which replaces the mode config file")
	c.Flags().StringVar(&config.runID, "run", "",
		"use an archived run instead of running a new one")
	c.Flags().StringVar(&config.storeFile, "store", "",
		"SQLite file the archived run is read from")
	c.Flags().BoolVar(&config.stdin, "stdin", false,
		"read a history written by the global mode from stdin")
}

// Run executes the extrema mode.
func (config *ExtremaConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	var (
		h *sim.History
		p sim.Params
	)

	switch {
	case config.stdin:
		var err error
		h, err = sim.ReadTable(strings.NewReader(strings.Join(e.Stdin, "\n")))
		if err != nil { return nil, err }
		p = config.sim.params
	case config.runID != "":
		st, err := gConfig.OpenStore(config.storeFile)
		if err != nil { return nil, err }
		defer st.Close()
		run, err := st.Load(ctx, config.runID)
		if err != nil { return nil, err }
		h, p = run.History, run.Params
	default:
		if config.paramFile != "" {
			if err := config.sim.readYAML(config.paramFile); err != nil {
				return nil, err
			}
		}
		s, err := runSim(ctx, config.sim.params, e)
		if err != nil { return nil, err }
		h, p = s.History, s.Params
	}

	tps, err := analysis.TurningPoints(h)
	if err != nil { return nil, err }

	names := make([]string, 0, len(tps))
	for name := range tps { names = append(names, name) }
	sort.Strings(names)

	lines := []string{}
	for _, name := range names {
		lines = append(lines, tps[name].String())
	}

	c, err := cosmo.New(p.Cosmology)
	if err != nil { return nil, err }
	tau, err := analysis.ThomsonOpticalDepth(h, c)
	if err != nil { return nil, err }
	return append(lines, fmt.Sprintf("tau_e = %.5f", tau)), nil
}
