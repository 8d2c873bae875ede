package cmd

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ares/cmd/env"
	"github.com/phil-mansfield/ares/physics"
)

// ESecConfig contains the inputs of the esec mode, which prints the fraction
// of a fast electron's energy deposited into each channel as a function of
// the ionized fraction.
type ESecConfig struct {
	method int
	energy float64
	points int
	xMin   float64
}

var _ Mode = &ESecConfig{}

// ExampleConfig returns an example configuration file.
func (config *ESecConfig) ExampleConfig() string {
	return "The esec mode does not have a non-global config file."
}

// ReadConfig reads a config file and returns an error, if applicable.
func (config *ESecConfig) ReadConfig(fname string) error {
	if fname != "" {
		return fmt.Errorf("The esec mode does not have a non-global config " +
			"file, but I was given %s.", fname)
	}
	return nil
}

// BindFlags registers the esec mode's flags.
func (config *ESecConfig) BindFlags(c *cobra.Command) {
	c.Flags().IntVar(&config.method, "method", int(physics.ShullVanSteenberg),
		"0: all heat, 1: Shull & van Steenberg, 2: Ricotti et al., "+
			"3: Furlanetto & Stoever tables")
	c.Flags().Float64Var(&config.energy, "energy", 1e3,
		"electron energy in eV")
	c.Flags().IntVar(&config.points, "points", 13,
		"number of ionized fractions")
	c.Flags().Float64Var(&config.xMin, "xmin", 1e-4,
		"smallest ionized fraction")
}

// Run executes the esec mode.
func (config *ESecConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	if config.points < 2 {
		return nil, fmt.Errorf("The --points flag is set to %d, but it must "+
			"be at least 2.", config.points)
	} else if config.xMin <= 0 || config.xMin >= 1 {
		return nil, fmt.Errorf("The --xmin flag is set to %g, but it must "+
			"be in (0, 1).", config.xMin)
	}

	m := physics.Method(config.method)
	var table *physics.ElectronTable
	if m == physics.Tabulated {
		layout, err := e.Layout()
		if err != nil { return nil, err }
		path, err := layout.Require(env.SecondaryElectrons,
			physics.ElectronTableFile)
		if err != nil { return nil, err }
		if table, err = physics.ReadElectronTable(path); err != nil {
			return nil, err
		}
	}
	se, err := physics.NewSecondaryElectrons(m, table)
	if err != nil { return nil, err }

	chans := physics.Channels()
	header := []string{"# x_HII"}
	for _, ch := range chans { header = append(header, ch.String()) }
	lines := []string{strings.Join(header, " ")}

	logMin := math.Log10(config.xMin)
	for i := 0; i < config.points; i++ {
		x := math.Pow(10, logMin*(1-float64(i)/float64(config.points-1)))
		row := []string{fmt.Sprintf("%.4e", x)}
		for _, ch := range chans {
			f := se.DepositionFraction(x, config.energy, ch)
			row = append(row, fmt.Sprintf("%.6f", f))
		}
		lines = append(lines, strings.Join(row, " "))
	}
	return lines, nil
}
