package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ares/cmd/env"
	"github.com/phil-mansfield/ares/cmd/memo"
	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/logging"
	"github.com/phil-mansfield/ares/tables"
)

// TauConfig contains the inputs of the tau mode, which tabulates optical
// depth tables into the input directory.
type TauConfig struct {
	table tableConfig

	workers int
	clobber bool
	format  string
}

var _ Mode = &TauConfig{}

// ExampleConfig returns an example configuration file.
func (config *TauConfig) ExampleConfig() string { return tableExample }

// ReadConfig reads a config file and returns an error, if applicable.
func (config *TauConfig) ReadConfig(fname string) error {
	return config.table.read(fname)
}

// BindFlags registers the tau mode's flags.
func (config *TauConfig) BindFlags(c *cobra.Command) {
	c.Flags().IntVar(&config.workers, "workers", 0,
		"number of goroutines (0 uses the global setting)")
	c.Flags().BoolVar(&config.clobber, "clobber", false,
		"recompute and overwrite an existing table")
	c.Flags().StringVar(&config.format, "format", "txt",
		"output format: txt or bin")
}

// Run executes the tau mode. It prints the path of the table.
func (config *TauConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	if err := checkFormat(config.format); err != nil { return nil, err }
	layout, err := e.Layout()
	if err != nil { return nil, err }
	c, err := cosmo.New(config.table.cosm)
	if err != nil { return nil, err }

	workers := config.workers
	if workers <= 0 { workers = e.Config.NumWorkers() }

	start := time.Now()
	res, err := memo.OpticalDepth(ctx, layout.CategoryDir(env.OpticalDepth),
		config.table.params, c, e.Tables, memo.Options{
			Format: config.format, Tabulate: true, Clobber: config.clobber,
			Workers: workers, Progress: e.Progress,
		})
	if err != nil { return nil, err }

	if logging.Mode == logging.Performance && e.Progress != nil {
		fmt.Fprintf(e.Progress, "tau: %s with %d workers\n",
			time.Since(start), workers)
	}

	lines := warningLines(res.Warnings)
	if !res.Tabulated {
		lines = append(lines, "# found existing table; use --clobber "+
			"to recompute it")
	}
	return append(lines, res.Path), nil
}

// FindTauConfig contains the inputs of the find-tau mode, which reports the
// optical depth table a run with the given parameters would use.
type FindTauConfig struct {
	table  tableConfig
	format string
}

var _ Mode = &FindTauConfig{}

// ExampleConfig returns an example configuration file.
func (config *FindTauConfig) ExampleConfig() string { return tableExample }

// ReadConfig reads a config file and returns an error, if applicable.
func (config *FindTauConfig) ReadConfig(fname string) error {
	return config.table.read(fname)
}

// BindFlags registers the find-tau mode's flags.
func (config *FindTauConfig) BindFlags(c *cobra.Command) {
	c.Flags().StringVar(&config.format, "format", "txt",
		"preferred format: txt or bin")
}

// Run executes the find-tau mode.
func (config *FindTauConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	if err := checkFormat(config.format); err != nil { return nil, err }
	layout, err := e.Layout()
	if err != nil { return nil, err }
	c, err := cosmo.New(config.table.cosm)
	if err != nil { return nil, err }

	res, err := memo.OpticalDepth(ctx, layout.CategoryDir(env.OpticalDepth),
		config.table.params, c, e.Tables, memo.Options{Format: config.format})
	if err != nil { return nil, err }

	L, N := res.Table.Shape()
	lines := warningLines(res.Warnings)
	lines = append(lines, fmt.Sprintf("# %d redshifts x %d energies", L, N))
	return append(lines, res.Path), nil
}

func checkFormat(format string) error {
	for _, f := range tables.Formats {
		if f == format { return nil }
	}
	return fmt.Errorf("The --format flag is set to '%s', but only %v are "+
		"supported.", format, tables.Formats)
}

func warningLines(warnings []*tables.MismatchError) []string {
	lines := []string{}
	for _, w := range warnings {
		lines = append(lines, "# "+w.Error())
	}
	return lines
}
