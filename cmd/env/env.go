/*package env locates the data files the code depends on. Everything lives
under a single installation root named by the $ARES environment variable,
with lookup tables in fixed subdirectories of its input/ directory.
*/
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	cenv "github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Category is a subdirectory of the input directory holding one kind of
// lookup table.
type Category string

const (
	OpticalDepth       Category = "optical_depth"
	SecondaryElectrons Category = "secondary_electrons"
	Inits              Category = "inits"
	HMF                Category = "hmf"
)

// Categories lists every input category.
var Categories = []Category{OpticalDepth, SecondaryElectrons, Inits, HMF}

var (
	// ErrMissingFile is matched by every MissingFileError.
	ErrMissingFile = errors.New("missing lookup table")
	// ErrNoRoot is returned when $ARES is unset and no input directory was
	// given explicitly.
	ErrNoRoot = errors.New("the $ARES environment variable is not set")
)

// MissingFileError reports a lookup table which could not be found, along
// with a hint on how to fix the installation.
type MissingFileError struct {
	Path     string
	Category Category
	Hint     string
}

func (e *MissingFileError) Error() string {
	hint := e.Hint
	if hint == "" {
		hint = "check that $ARES points at the installation root and " +
			"re-run the data retrieval step for this category"
	}
	return fmt.Sprintf("missing %s lookup table '%s': %s", e.Category, e.Path, hint)
}

func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

// Config holds the environment variables which control the installation.
type Config struct {
	Root      string `env:"ARES"`
	Input     string `env:"ARES_INPUT"`
	Workers   int    `env:"ARES_WORKERS" envDefault:"0"`
	CacheSize int    `env:"ARES_CACHE_SIZE" envDefault:"16"`
	// GlobalConfig names a global config file used in place of one given on
	// the command line.
	GlobalConfig string `env:"ARES_GLOBAL_CONFIG"`
}

// ReadConfig reads Config from the process environment.
func ReadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cenv.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	return cfg, cfg.validate()
}

// ReadConfigFrom reads Config from the given variables instead of the
// process environment.
func ReadConfigFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	err := cenv.ParseWithOptions(cfg, cenv.Options{Environment: vars})
	if err != nil {
		return nil, errors.Wrap(err, "reading environment")
	}
	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if cfg.Workers < 0 {
		return errors.Errorf("ARES_WORKERS = %d must be non-negative", cfg.Workers)
	}
	if cfg.CacheSize <= 0 {
		return errors.Errorf("ARES_CACHE_SIZE = %d must be positive", cfg.CacheSize)
	}
	return nil
}

// NumWorkers returns the size of worker pools. Zero workers means one per
// available CPU.
func (cfg *Config) NumWorkers() int {
	if cfg.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return cfg.Workers
}

// InputDir returns the input directory: $ARES_INPUT if set, $ARES/input
// otherwise.
func (cfg *Config) InputDir() (string, error) {
	if cfg.Input != "" {
		return cfg.Input, nil
	} else if cfg.Root == "" {
		return "", ErrNoRoot
	}
	return filepath.Join(cfg.Root, "input"), nil
}

// Layout resolves files inside an input directory.
type Layout struct {
	Dir string
}

// NewLayout returns the layout of the input directory named by cfg. A
// non-empty override takes priority over the environment.
func NewLayout(cfg *Config, override string) (*Layout, error) {
	if override != "" {
		return &Layout{Dir: override}, nil
	}
	dir, err := cfg.InputDir()
	if err != nil {
		return nil, err
	}
	return &Layout{Dir: dir}, nil
}

// Validate checks that the input directory exists.
func (l *Layout) Validate() error {
	info, err := os.Stat(l.Dir)
	if err != nil {
		return &MissingFileError{
			Path: l.Dir, Category: "input",
			Hint: "the input directory does not exist; check $ARES and $ARES_INPUT",
		}
	} else if !info.IsDir() {
		return errors.Errorf("input path '%s' is not a directory", l.Dir)
	}
	return nil
}

// CategoryDir returns the directory holding tables of the given category.
func (l *Layout) CategoryDir(c Category) string {
	return filepath.Join(l.Dir, string(c))
}

// Path returns the location a file of the given category would have.
func (l *Layout) Path(c Category, file string) string {
	return filepath.Join(l.CategoryDir(c), file)
}

// Require returns the path to a file of the given category, or a
// MissingFileError if it does not exist.
func (l *Layout) Require(c Category, file string) (string, error) {
	p := l.Path(c, file)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", &MissingFileError{Path: p, Category: c}
	}
	return p, nil
}
