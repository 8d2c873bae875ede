/*package inits reads the recombination-era initial conditions which set the
ionized fraction and gas temperature of the IGM at the start of a run.

The table is a JSON object with three equal-length numeric arrays:

	{"z": [...], "xe": [...], "Tk": [...]}

with redshifts in ascending order.
*/
package inits

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/phil-mansfield/ares/cmd/env"
	"github.com/phil-mansfield/ares/math/interpolate"
	"github.com/pkg/errors"
)

// File is the name of the initial conditions table within the inits
// category of the input directory.
const File = "initial_conditions.json"

var (
	ErrNotAscending = errors.New("redshifts in ICs must be in ascending order")
	ErrOutOfRange   = errors.New("redshift outside of the ICs table")
)

// ICs is an initial conditions table. Z is ascending.
type ICs struct {
	Z, Xe, Tk []float64
	xe, tk    *interpolate.Linear
}

// Load reads the initial conditions from the installation's input
// directory.
func Load(l *env.Layout) (*ICs, error) {
	path, err := l.Require(env.Inits, File)
	if err != nil {
		return nil, err
	}
	return Read(path)
}

// Read reads an initial conditions table from a JSON file.
func Read(path string) (*ICs, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ics, err := Parse(b)
	return ics, errors.Wrapf(err, "reading '%s'", path)
}

// Parse parses an initial conditions table.
func Parse(b []byte) (*ICs, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("initial conditions are not valid JSON")
	}

	ics := &ICs{}
	cols := []struct {
		key string
		out *[]float64
	}{{"z", &ics.Z}, {"xe", &ics.Xe}, {"Tk", &ics.Tk}}

	for _, col := range cols {
		res := gjson.GetBytes(b, col.key)
		if !res.Exists() || !res.IsArray() {
			return nil, fmt.Errorf("initial conditions have no '%s' array",
				col.key)
		}
		arr := res.Array()
		*col.out = make([]float64, len(arr))
		for i, x := range arr {
			if x.Type != gjson.Number {
				return nil, fmt.Errorf("%s[%d] = %s is not a number",
					col.key, i, x.Raw)
			}
			(*col.out)[i] = x.Float()
		}
	}

	n := len(ics.Z)
	if len(ics.Xe) != n || len(ics.Tk) != n {
		return nil, fmt.Errorf("initial condition arrays have lengths "+
			"z: %d, xe: %d, Tk: %d", n, len(ics.Xe), len(ics.Tk))
	}
	if n < 2 {
		return nil, fmt.Errorf("initial conditions need at least two "+
			"redshifts, got %d", n)
	}
	for i := 1; i < n; i++ {
		if ics.Z[i] <= ics.Z[i-1] {
			return nil, errors.Wrapf(ErrNotAscending, "z[%d] = %g, z[%d] = %g",
				i-1, ics.Z[i-1], i, ics.Z[i])
		}
	}

	ics.xe = interpolate.NewLinear(ics.Z, ics.Xe)
	ics.tk = interpolate.NewLinear(ics.Z, ics.Tk)
	return ics, nil
}

// Interp returns the electron fraction and kinetic temperature at z.
func (ics *ICs) Interp(z float64) (xe, Tk float64, err error) {
	if !ics.xe.Contains(z) {
		return 0, 0, errors.Wrapf(ErrOutOfRange, "z = %g not in [%g, %g]",
			z, ics.Z[0], ics.Z[len(ics.Z)-1])
	}
	return ics.xe.Eval(z), ics.tk.Eval(z), nil
}

// Above returns the indices of every redshift strictly above z, ordered
// from highest to lowest redshift.
func (ics *ICs) Above(z float64) []int {
	out := []int{}
	for i := len(ics.Z) - 1; i >= 0 && ics.Z[i] > z; i-- {
		out = append(out, i)
	}
	return out
}
