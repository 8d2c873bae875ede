package tables

import (
	"fmt"
	"math"
)

// MismatchError reports a table whose bounds do not cover a requested run.
// Fatal mismatches make the table unusable; the others only degrade it.
type MismatchError struct {
	Param       string
	Table, Want float64
	Fatal       bool
}

func (e *MismatchError) Error() string {
	kind := "warning"
	if e.Fatal {
		kind = "fatal"
	}
	return fmt.Sprintf("optical depth table mismatch (%s): table has "+
		"%s = %g, but %g was requested", kind, e.Param, e.Table, e.Want)
}

// allClose has the tolerance semantics of numpy.allclose.
func allClose(a, b, rtol, atol float64) bool {
	return math.Abs(a-b) <= atol+rtol*math.Abs(b)
}

// Check compares the bounds of t against the run described by p. Problems
// which only degrade the result are returned as warnings. If the table
// cannot be used at all, the fatal mismatch is returned as the error.
func Check(t *Table, p Params) (warnings []*MismatchError, err error) {
	tp := t.Params()

	zmaxOK := tp.ZMax >= p.ZMax || allClose(tp.ZMax, p.ZMax, 1e-5, 1e-8)
	zminOK := tp.ZMin <= p.ZMin || allClose(tp.ZMin, p.ZMin, 1e-5, 1e-8)
	eminOK := tp.EMin <= p.EMin || allClose(tp.EMin, p.EMin, 1e-5, 1e-8)
	emaxOK := allClose(tp.EMax, p.EMax, 1e-2, 100)

	if !zmaxOK {
		return nil, &MismatchError{"zmax", tp.ZMax, p.ZMax, true}
	}
	if !zminOK {
		warnings = append(warnings,
			&MismatchError{"zmin", tp.ZMin, p.ZMin, false})
	}
	if !eminOK {
		warnings = append(warnings,
			&MismatchError{"Emin", tp.EMin, p.EMin, false})
	}
	// Any energy mismatch makes a table which stops short of Emax unusable,
	// even when Emax alone is within tolerance.
	if (!eminOK || !emaxOK) && tp.EMax < p.EMax {
		return warnings, &MismatchError{"Emax", tp.EMax, p.EMax, true}
	}
	if !emaxOK {
		warnings = append(warnings,
			&MismatchError{"Emax", tp.EMax, p.EMax, false})
	}
	return warnings, nil
}
