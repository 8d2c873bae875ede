/*package memo finds previously computed lookup tables and computes them when
they are missing.
*/
package memo

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/phil-mansfield/ares/cmd/env"
	"github.com/phil-mansfield/ares/cosmo"
	"github.com/phil-mansfield/ares/tables"
	"github.com/pkg/errors"
)

// Options control how OpticalDepth looks for and builds tables.
type Options struct {
	// Format is the preferred file format, one of tables.Formats.
	Format string
	// Tabulate allows missing or unusable tables to be computed. An
	// unusable table is replaced.
	Tabulate bool
	// Clobber skips the search and always computes a new table, replacing
	// any file with the same name.
	Clobber  bool
	Workers  int
	Progress io.Writer
}

// Result is a table along with where it came from.
type Result struct {
	Path      string
	Table     *tables.Table
	Warnings  []*tables.MismatchError
	Tabulated bool
}

// OpticalDepth returns the optical depth table in dir which matches p. Loaded
// tables go through cache, which may be nil.
func OpticalDepth(
	ctx context.Context, dir string, p tables.Params, c *cosmo.Cosmology,
	cache *tables.Cache, opts Options,
) (*Result, error) {
	if opts.Format == "" { opts.Format = "txt" }
	if err := p.Validate(); err != nil { return nil, err }

	replace := opts.Clobber
	if !opts.Clobber {
		res, err := find(dir, p, cache, opts.Format)
		switch {
		case err == nil:
			return res, nil
		case !opts.Tabulate:
			return nil, err
		case isFatalMismatch(err):
			// Find tries the canonical name first, so a file at that path
			// is the one which was just rejected.
			replace = true
		case !errors.Is(err, env.ErrMissingFile):
			return nil, err
		}
	}

	return tabulate(ctx, dir, p, c, cache, opts, replace)
}

func isFatalMismatch(err error) bool {
	var me *tables.MismatchError
	return errors.As(err, &me) && me.Fatal
}

func find(
	dir string, p tables.Params, cache *tables.Cache, format string,
) (*Result, error) {
	path, err := tables.Find(dir, p, format)
	if err != nil { return nil, err }

	var t *tables.Table
	if cache != nil {
		t, err = cache.Load(path)
	} else {
		t, err = tables.Load(path)
	}
	if err != nil { return nil, err }

	warnings, err := tables.Check(t, p)
	if err != nil { return nil, errors.Wrapf(err, "'%s'", path) }
	return &Result{Path: path, Table: t, Warnings: warnings}, nil
}

func tabulate(
	ctx context.Context, dir string, p tables.Params, c *cosmo.Cosmology,
	cache *tables.Cache, opts Options, replace bool,
) (*Result, error) {
	g, err := tables.NewGrid(p)
	if err != nil { return nil, err }

	tab := tables.NewTabulator(c, p, opts.Workers)
	tab.Progress = opts.Progress
	t, err := tab.Tabulate(ctx, g, tables.Neutral)
	if err != nil { return nil, errors.Wrap(err, "tabulating optical depth") }

	if err = os.MkdirAll(dir, 0777); err != nil { return nil, err }
	path := filepath.Join(dir, g.Name(opts.Format))
	if err = t.Save(path, replace); err != nil { return nil, err }

	if cache != nil {
		if err = cache.Add(path, t); err != nil { return nil, err }
	}
	return &Result{Path: path, Table: t, Tabulated: true}, nil
}
