package tables

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/phil-mansfield/ares/cmd/env"
)

type candidate struct {
	path      string
	preferred bool
	sameE     bool
}

// Find returns the path of the table in dir which best matches p. The
// canonical name is tried first in the preferred format, then in the other
// formats. Otherwise every parseable table name in dir is considered: tables
// with a different number of redshifts, a lower maximum redshift, or a
// different chemistry are rejected, and the rest are ranked by format and
// then by whether their energy bounds match. If nothing fits, the error is
// an *env.MissingFileError.
func Find(dir string, p Params, preferred string) (string, error) {
	g, err := NewGrid(p)
	if err != nil {
		return "", err
	}

	formats := []string{preferred}
	for _, f := range Formats {
		if f != preferred {
			formats = append(formats, f)
		}
	}
	for _, f := range formats {
		guess := filepath.Join(dir, g.Name(f))
		if _, err := os.Stat(guess); err == nil {
			return guess, nil
		}
	}

	missing := &env.MissingFileError{
		Path:     filepath.Join(dir, g.Name(preferred)),
		Category: env.OpticalDepth,
		Hint: fmt.Sprintf("no table in '%s' has Nz = %d, zmax >= %d, and "+
			"%s chemistry; generate one with 'ares tau' or re-run the "+
			"data retrieval step", dir, p.Nz, int(p.ZMax), p.Chemistry()),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", missing
	}

	logEMin := math.Log10(p.EMin)
	logEMax := math.Log10(p.EMax)
	cands := []candidate{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := ParseName(e.Name())
		if err != nil || !knownFormat(info.Suffix) {
			continue
		}
		if info.L != p.Nz || info.ZMax < float64(int(p.ZMax)) ||
			info.Chem != p.Chemistry() {
			continue
		}

		cands = append(cands, candidate{
			path:      filepath.Join(dir, e.Name()),
			preferred: info.Suffix == preferred,
			sameE: roundsTo(info.LogEMin, logEMin) &&
				roundsTo(info.LogEMax, logEMax),
		})
	}
	if len(cands) == 0 {
		return "", missing
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].preferred != cands[j].preferred {
			return cands[i].preferred
		}
		return cands[i].sameE && !cands[j].sameE
	})
	return cands[0].path, nil
}

func knownFormat(s string) bool {
	for _, f := range Formats {
		if f == s {
			return true
		}
	}
	return false
}

// roundsTo reports whether x agrees with a name field printed with two
// significant figures.
func roundsTo(field, x float64) bool {
	s := fmt.Sprintf("%.2g", x)
	var y float64
	fmt.Sscanf(s, "%g", &y)
	return y == field
}
