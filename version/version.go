/*package version tracks the version of the ares source and compares it against
the versions written into config files.*/
package version

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SourceVersion is the semantic version number of the source code.
const SourceVersion = "0.4.1"

// ErrInvalid is returned (wrapped) for any malformed version string.
var ErrInvalid = errors.New("version string does not take the form of " +
	"three period-separated non-negative numbers")

// Parse parses a semantic version number string and returns an error if
// the string is invalid.
func Parse(s string) (major, minor, patch int, err error) {
	toks := strings.Split(strings.TrimSpace(s), ".")
	if len(toks) != 3 {
		return -1, -1, -1, errors.Wrapf(ErrInvalid, "'%s'", s)
	}

	var out [3]int
	for i := range toks {
		out[i], err = strconv.Atoi(toks[i])
		if err != nil || out[i] < 0 {
			return -1, -1, -1, errors.Wrapf(ErrInvalid, "'%s'", s)
		}
	}

	return out[0], out[1], out[2], nil
}

// Later returns true if s1 represents a later version of the source than
// s2. An error is returned if either is invalid.
func Later(s1, s2 string) (bool, error) {
	a, err := triple(s1)
	if err != nil { return false, err }
	b, err := triple(s2)
	if err != nil { return false, err }

	for i := range a {
		if a[i] != b[i] { return a[i] > b[i], nil }
	}
	return false, nil
}

// Matches returns nil if s names the same version as SourceVersion.
func Matches(s string) error {
	later, err := Later(s, SourceVersion)
	if err != nil { return err }
	earlier, _ := Later(SourceVersion, s)
	if later || earlier {
		return errors.Errorf("The 'Version' variable is set to %s, but the "+
			"version of the source is %s", s, SourceVersion)
	}
	return nil
}

func triple(s string) ([3]int, error) {
	major, minor, patch, err := Parse(s)
	return [3]int{major, minor, patch}, err
}
