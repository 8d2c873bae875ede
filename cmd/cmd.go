/*package cmd contains code for running ares in its various command line
modes */
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phil-mansfield/ares/cmd/env"
	"github.com/phil-mansfield/ares/logging"
	"github.com/phil-mansfield/ares/parse"
	"github.com/phil-mansfield/ares/store"
	"github.com/phil-mansfield/ares/tables"
	"github.com/phil-mansfield/ares/version"
)

// ModeNames maps the name of each mode to a fresh instance of it.
var ModeNames map[string]Mode = map[string]Mode{
	"tau":      &TauConfig{},
	"find-tau": &FindTauConfig{},
	"global":   &GlobalRunConfig{},
	"extrema":  &ExtremaConfig{},
	"esec":     &ESecConfig{},
	"runs":     &RunsConfig{},
}

// Mode represents the interface used by the main binary when interacting with
// a given command line mode.
type Mode interface {
	// ReadConfig reads a mode-specific config file and stores its contents
	// within the Mode. An empty fname leaves every variable at its default.
	ReadConfig(fname string) error
	// ExampleConfig returns the text of an example config file of this mode.
	ExampleConfig() string
	// BindFlags registers the mode's command line flags with c.
	BindFlags(c *cobra.Command)
	// Run executes the mode. It takes an initialized GlobalConfig and the
	// Env it describes, and returns a slice of lines that should be written
	// to stdout along with an error if one occurs.
	Run(ctx context.Context, gConfig *GlobalConfig, e *Env) ([]string, error)
}

// Env is the state shared by every mode during a single invocation.
type Env struct {
	Config *env.Config
	Tables *tables.Cache
	// Progress receives progress reports from long computations. It is nil
	// unless logging is enabled.
	Progress io.Writer
	Stdin    []string

	layout    *env.Layout
	layoutErr error
}

// Layout returns the input directory layout. Modes which never read lookup
// tables can run without one.
func (e *Env) Layout() (*env.Layout, error) {
	if e.layoutErr != nil { return nil, e.layoutErr }
	return e.layout, nil
}

// GlobalConfig is a config file used by every mode. It contains information on
// where input tables and archived runs are stored.
type GlobalConfig struct {
	version string

	InputDir  string
	StoreFile string
	Logging   string
	Workers   int64
}

// ReadConfig reads a config file and returns an error, if applicable.
func (config *GlobalConfig) ReadConfig(fname string) error {
	vars := parse.NewConfigVars("config")
	vars.String(&config.version, "Version", version.SourceVersion)
	vars.String(&config.InputDir, "InputDir", "")
	vars.String(&config.StoreFile, "StoreFile", "")
	vars.String(&config.Logging, "Logging", "nil")
	vars.Int(&config.Workers, "Workers", 0)

	if fname != "" {
		if err := parse.ReadConfig(fname, vars); err != nil { return err }
	}

	return config.validate()
}

// validate checks that all the user-generated fields of GlobalConfig are
// properly set.
func (config *GlobalConfig) validate() error {
	_, _, _, err := version.Parse(config.version)
	if err != nil {
		return fmt.Errorf("I couldn't parse the 'Version' variable: %s",
			err.Error())
	}
	if err = version.Matches(config.version); err != nil { return err }

	if _, err = loggingFlag(config.Logging); err != nil { return err }

	if config.Workers < 0 {
		return fmt.Errorf("The 'Workers' variable is set to %d, but it "+
			"must be non-negative.", config.Workers)
	}

	if config.InputDir != "" {
		if err = validateDir(config.InputDir); err != nil {
			return fmt.Errorf("The 'InputDir' variable is set to '%s', but %s",
				config.InputDir, err.Error())
		}
	}

	return nil
}

func loggingFlag(s string) (logging.Flag, error) {
	switch strings.ToLower(s) {
	case "", "nil":
		return logging.Nil, nil
	case "performance":
		return logging.Performance, nil
	case "debug":
		return logging.Debug, nil
	}
	return logging.Nil, fmt.Errorf("The 'Logging' variable is set to '%s', "+
		"which I don't recognize.", s)
}

// validateDir returns an error if there are any problems with the given
// directory.
func validateDir(name string) error {
	if info, err := os.Stat(name); err != nil {
		return fmt.Errorf("%s does not exist.", name)
	} else if !info.IsDir() {
		return fmt.Errorf("%s is not a directory.", name)
	}

	return nil
}

// NewEnv resolves the environment described by config and the process
// environment. It also sets the global logging mode.
func (config *GlobalConfig) NewEnv(stdin []string) (*Env, error) {
	cfg, err := env.ReadConfig()
	if err != nil { return nil, err }
	if config.Workers > 0 { cfg.Workers = int(config.Workers) }

	logging.Mode, _ = loggingFlag(config.Logging)
	e := &Env{
		Config: cfg, Stdin: stdin, Tables: tables.NewCache(cfg.CacheSize),
	}
	e.layout, e.layoutErr = env.NewLayout(cfg, config.InputDir)
	if logging.Mode != logging.Nil { e.Progress = os.Stderr }
	return e, nil
}

// OpenStore opens the run archive named by StoreFile, or by override if it is
// non-empty.
func (config *GlobalConfig) OpenStore(override string) (*store.Store, error) {
	path := config.StoreFile
	if override != "" { path = override }
	if path == "" {
		return nil, fmt.Errorf("No run archive was given. Set the " +
			"'StoreFile' variable or pass --store.")
	}
	return store.Open(path)
}

// ExampleConfig returns an example configuration file.
func (config *GlobalConfig) ExampleConfig() string {
	return fmt.Sprintf(`[config]
# Target version of ares. This option merely allows ares to notice when its
# source and configuration files are not from the same version.
#
# This variable defaults to the source version if not included.
Version = %s

# Directory containing the lookup tables ares reads: optical_depth/,
# secondary_electrons/, inits/, and hmf/. Defaults to $ARES_INPUT if that is
# set, and to $ARES/input otherwise. For example:
#     InputDir = path/to/ares/input
InputDir =

# SQLite file which global 21-cm runs are archived to. Only needed by modes
# that read or write archived runs. For example:
#     StoreFile = path/to/runs.db
StoreFile =

# How much ares reports while running: nil, performance, or debug.
Logging = nil

# Number of goroutines used to build lookup tables. 0 means one per CPU (or
# $ARES_WORKERS, if set).
Workers = 0`, version.SourceVersion)
}

// BindFlags is a dummy method which allows GlobalConfig to conform to the
// Mode interface for testing purposes.
func (config *GlobalConfig) BindFlags(c *cobra.Command) { }

// Run is a dummy method which allows GlobalConfig to conform to the Mode
// interface for testing purposes.
func (config *GlobalConfig) Run(
	ctx context.Context, gConfig *GlobalConfig, e *Env,
) ([]string, error) {
	panic("GlobalConfig.Run() should never be executed.")
}

// linesOf splits text written by a table writer into output lines.
func linesOf(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" { return nil }
	return strings.Split(s, "\n")
}
