/*package ares computes the global 21-cm signal and the lookup tables it
depends on.*/
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ares/cmd"
	"github.com/phil-mansfield/ares/cmd/env"
	"github.com/phil-mansfield/ares/version"
)

var modeOrder = []string{"tau", "find-tau", "global", "extrema", "esec", "runs"}

var modeShort = map[string]string{
	"tau":      "Tabulate an IGM optical depth table into the input directory.",
	"find-tau": "Print the optical depth table a run would use.",
	"global":   "Run a global 21-cm calculation and print its history.",
	"extrema":  "Print the turning points of the global 21-cm signal.",
	"esec":     "Print secondary electron energy deposition fractions.",
	"runs":     "List or delete archived global 21-cm runs.",
}

var helpStrings = map[string]string{
	"tau": `The tau mode tabulates the optical depth of a neutral IGM on a grid
of redshifts and photon energies and writes it to
$ARES/input/optical_depth. An existing table with the same parameters is
reused unless --clobber is given. A table whose bounds cannot cover the
parameters is recomputed in place.`,
	"find-tau": `The find-tau mode searches $ARES/input/optical_depth for the table
which best matches the given parameters and prints its path, along with any
mismatches between the table and the parameters.`,
	"global": `The global mode runs a two-zone global 21-cm calculation and prints
its history as a whitespace-separated table. --store or --archive saves the
run to a SQLite archive.`,
	"extrema": `The extrema mode prints the turning points (A, B, C, D) of the
brightness temperature and the CMB optical depth of a run. The run is either
computed, read from an archive with --run, or read from stdin with --stdin.`,
	"esec": `The esec mode prints the fraction of a fast electron's energy which
goes into heat, ionization, and excitation as a function of the ionized
fraction.`,
	"runs": `The runs mode lists the runs in a SQLite archive.`,

	"config":         new(cmd.GlobalConfig).ExampleConfig(),
	"tau.config":     cmd.ModeNames["tau"].ExampleConfig(),
	"find-tau.config": cmd.ModeNames["find-tau"].ExampleConfig(),
	"global.config":  cmd.ModeNames["global"].ExampleConfig(),
	"extrema.config": cmd.ModeNames["extrema"].ExampleConfig(),
	"esec.config":    cmd.ModeNames["esec"].ExampleConfig(),
	"runs.config":    cmd.ModeNames["runs"].ExampleConfig(),
}

var modeDescriptions = `My help modes are:
ares help
ares help [ tau | find-tau | global | extrema | esec | runs ]
ares help [ config | tau.config | global.config ]

My table modes are:
ares tau      [flags] [____.config [____.tau.config]]
ares find-tau [flags] [____.config [____.tau.config]]

My analysis modes are:
ares global  [flags] [____.config [____.global.config]]
ares extrema [flags] [____.config [____.global.config]]
ares esec    [flags] [____.config]
ares runs    [flags] [____.config]

The global config file can also be given with $ARES_GLOBAL_CONFIG.`

func main() {
	root := &cobra.Command{
		Use:           "ares",
		Short:         "Global 21-cm signal and IGM lookup tables.",
		Long:          modeDescriptions,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetHelpCommand(helpCommand())
	root.AddCommand(versionCommand())
	for _, name := range modeOrder {
		root.AddCommand(modeCommand(name, cmd.ModeNames[name]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\nFor help, type 'ares help'.\n", err.Error())
		os.Exit(1)
	}
}

func helpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "help [mode | mode.config]",
		Short: "Describe a mode or print an example config file.",
		Args:  cobra.MaximumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			if len(args) == 0 {
				fmt.Println(modeDescriptions)
				return
			}
			text, ok := helpStrings[args[0]]
			if !ok {
				fmt.Printf("I don't recognize the help target '%s'\n", args[0])
			} else {
				fmt.Println(text)
			}
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of ares.",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			fmt.Printf("ares version %s\n", version.SourceVersion)
		},
	}
}

func modeCommand(name string, mode cmd.Mode) *cobra.Command {
	c := &cobra.Command{
		Use: fmt.Sprintf("%s [flags] [____.config [____.%s.config]]",
			name, name),
		Short: modeShort[name],
		Long:  helpStrings[name],
		Args:  cobra.MaximumNArgs(2),
		Run: func(c *cobra.Command, args []string) {
			out, err := runMode(c, name, mode, args)
			if err != nil {
				log.Fatalf("Error running mode %s:\n%s\n", name, err.Error())
			}
			for i := range out { fmt.Println(out[i]) }
		},
	}
	mode.BindFlags(c)
	return c
}

func runMode(
	c *cobra.Command, name string, mode cmd.Mode, args []string,
) ([]string, error) {
	for _, arg := range args {
		if !isConfig(arg) {
			return nil, fmt.Errorf("The argument '%s' is not a config file. "+
				"Config file names end in '.config'.", arg)
		}
	}

	cfg, err := env.ReadConfig()
	if err != nil { return nil, err }
	gName, mName, err := configNames(args, cfg.GlobalConfig)
	if err != nil { return nil, err }

	gConfig := &cmd.GlobalConfig{}
	if err = gConfig.ReadConfig(gName); err != nil { return nil, err }
	if err = mode.ReadConfig(mName); err != nil { return nil, err }

	var lines []string
	if stdin, _ := c.Flags().GetBool("stdin"); stdin {
		if lines, err = stdinLines(); err != nil { return nil, err }
	}

	e, err := gConfig.NewEnv(lines)
	if err != nil { return nil, err }
	return mode.Run(c.Context(), gConfig, e)
}

// configNames returns the global and mode-specific config files named on the
// command line. Either may be empty.
func configNames(args []string, globalEnv string) (string, string, error) {
	if globalEnv != "" {
		if len(args) > 1 {
			return "", "", fmt.Errorf("$ARES_GLOBAL_CONFIG has been " +
				"set, so you may only pass a single config file as a " +
				"parameter.")
		}
		if len(args) == 1 { return globalEnv, args[0], nil }
		return globalEnv, "", nil
	}

	switch len(args) {
	case 0:
		return "", "", nil
	case 1:
		return args[0], "", nil
	}
	return args[0], args[1], nil
}

// stdinLines reads stdin and splits it into lines.
func stdinLines() ([]string, error) {
	bs, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf(
			"Error reading stdin: %s.", err.Error(),
		)
	}
	text := string(bs)
	lines := strings.Split(text, "\n")
	if lines[len(lines) - 1] == "" { lines = lines[:len(lines) - 1] }
	return lines, nil
}

// isConfig returns true if the given string is a config file name.
func isConfig(s string) bool {
	return strings.HasSuffix(s, ".config")
}
