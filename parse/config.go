/*package parse reads the INI-like config files used by every ares mode. A
config file starts with a [header] line, contains "Name = value" assignments,
and treats everything after a '#' as a comment. Variable names are case
insensitive.*/
package parse

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

/////////////////////
// Conversion Code //
/////////////////////

type varType int
const (
	intVar varType = iota
	intsVar
	floatVar
	floatsVar
	stringVar
	stringsVar
	boolVar
	boolsVar
)

func (v varType) String() string {
	switch v {
	case intVar: return "int"
	case intsVar: return "int list"
	case floatVar: return "float"
	case floatsVar: return "float list"
	case stringVar: return "string"
	case stringsVar: return "string list"
	case boolVar: return "bool"
	case boolsVar: return "bool list"
	}
	panic("Impossible")
}

func (v varType) article() string {
	if s := v.String(); s[0] == 'i' { return "an" }
	return "a"
}

type conversionFunc func(string) bool

type variable struct {
	name string
	typ varType
	conv conversionFunc
}

// ConfigVars is the set of variables that a particular type of config file
// is allowed to assign to. Every variable is bound to a pointer which is set
// to a default value at registration time.
type ConfigVars struct {
	name string
	vars []variable
	index map[string]int
}

func intConv(ptr *int64) conversionFunc {
	return func(s string) bool {
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil { return false }
		*ptr = i
		return true
	}
}

func floatConv(ptr *float64) conversionFunc {
	return func(s string) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil { return false }
		*ptr = f
		return true
	}
}

func stringConv(ptr *string) conversionFunc {
	return func(s string) bool {
		*ptr = strings.TrimSpace(s)
		return true
	}
}

func boolConv(ptr *bool) conversionFunc {
	return func(s string) bool {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil { return false }
		*ptr = b
		return true
	}
}

func strToList(a string) []string {
	if strings.TrimSpace(a) == "" { return []string{} }
	strs := strings.Split(a, ",")
	for i := range strs {
		strs[i] = strings.TrimSpace(strs[i])
	}
	return strs
}

// listConv builds a conversion function for a list type out of the
// conversion function of its element type. The destination is only
// overwritten if every element converts.
func listConv[T any](ptr *[]T, elem func(*T) conversionFunc) conversionFunc {
	return func(s string) bool {
		toks := strToList(s)
		out := make([]T, len(toks))
		for i := range toks {
			if !elem(&out[i])(toks[i]) { return false }
		}
		*ptr = out
		return true
	}
}

func intsConv(ptr *[]int64) conversionFunc { return listConv(ptr, intConv) }
func floatsConv(ptr *[]float64) conversionFunc { return listConv(ptr, floatConv) }
func stringsConv(ptr *[]string) conversionFunc { return listConv(ptr, stringConv) }
func boolsConv(ptr *[]bool) conversionFunc { return listConv(ptr, boolConv) }

// NewConfigVars creates an empty variable set for config files with the
// header [name].
func NewConfigVars(name string) *ConfigVars {
	return &ConfigVars{name: name, index: map[string]int{}}
}

func (vars *ConfigVars) add(name string, typ varType, conv conversionFunc) {
	key := strings.ToLower(name)
	if _, ok := vars.index[key]; ok {
		panic("Variable '" + name + "' registered twice.")
	}
	vars.index[key] = len(vars.vars)
	vars.vars = append(vars.vars, variable{ key, typ, conv })
}

func (vars *ConfigVars) Int(ptr *int64, name string, value int64) {
	*ptr = value
	vars.add(name, intVar, intConv(ptr))
}

func (vars *ConfigVars) Float(ptr *float64, name string, value float64) {
	*ptr = value
	vars.add(name, floatVar, floatConv(ptr))
}

func (vars *ConfigVars) String(ptr *string, name string, value string) {
	*ptr = value
	vars.add(name, stringVar, stringConv(ptr))
}

func (vars *ConfigVars) Bool(ptr *bool, name string, value bool) {
	*ptr = value
	vars.add(name, boolVar, boolConv(ptr))
}

func (vars *ConfigVars) Ints(ptr *[]int64, name string, value []int64) {
	*ptr = value
	vars.add(name, intsVar, intsConv(ptr))
}

func (vars *ConfigVars) Floats(ptr *[]float64, name string, value []float64) {
	*ptr = value
	vars.add(name, floatsVar, floatsConv(ptr))
}

func (vars *ConfigVars) Strings(ptr *[]string, name string, value []string) {
	*ptr = value
	vars.add(name, stringsVar, stringsConv(ptr))
}

func (vars *ConfigVars) Bools(ptr *[]bool, name string, value []bool) {
	*ptr = value
	vars.add(name, boolsVar, boolsConv(ptr))
}

//////////////////
// Parsing Code //
//////////////////

// ReadConfig reads the config file fname and writes every assignment in it
// to the pointers registered in vars.
func ReadConfig(fname string, vars *ConfigVars) error {
	bs, err := os.ReadFile(fname)
	if err != nil {
		return errors.Wrapf(err, "could not read config file %s", fname)
	}
	return readConfig(string(bs), fname, vars)
}

// ReadConfigString is identical to ReadConfig, except that the contents of
// the config file are supplied directly.
func ReadConfigString(text string, vars *ConfigVars) error {
	return readConfig(text, "<string>", vars)
}

func readConfig(text, fname string, vars *ConfigVars) error {
	lines, lineNums := removeComments(strings.Split(text, "\n"))
	for i := range lineNums { lineNums[i]++ }

	header := "[" + vars.name + "]"
	if len(lines) == 0 || lines[0] != header {
		return errors.Errorf(
			"I expected the config file %s to have the header "+
			"%s at the top, but didn't find it.", fname, header,
		)
	}
	lines, lineNums = lines[1:], lineNums[1:]

	names, vals, errLine := associationList(lines)
	if errLine != -1 {
		return errors.Errorf(
			"I could not parse line %d of the config file %s because it "+
			"did not take the form of a variable assignment.",
			lineNums[errLine], fname,
		)
	}

	if i, j := checkDuplicateNames(names); i != -1 {
		return errors.Errorf(
			"Lines %d and %d of the config file %s both assign a value to "+
			"the variable '%s'.", lineNums[i], lineNums[j], fname, names[i],
		)
	}

	for i := range names {
		if err := vars.assign(names[i], vals[i]); err != nil {
			return errors.Wrapf(err, "line %d of the config file %s",
				lineNums[i], fname)
		}
	}

	return nil
}

// ReadFlags applies command line overrides of the form "--Name=value" (or
// "Name=value") to vars.
func ReadFlags(flags []string, vars *ConfigVars) error {
	for _, flag := range flags {
		trimmed := strings.TrimLeft(flag, "-")
		eq := strings.Index(trimmed, "=")
		if eq <= 0 {
			return errors.Errorf("The flag '%s' does not take the form "+
				"--Name=value.", flag)
		}
		name := strings.ToLower(strings.TrimSpace(trimmed[:eq]))
		if err := vars.assign(name, trimmed[eq+1:]); err != nil {
			return errors.Wrapf(err, "flag '%s'", flag)
		}
	}
	return nil
}

func (vars *ConfigVars) assign(name, val string) error {
	j, ok := vars.index[name]
	if !ok {
		return errors.Errorf("config files of type %s don't have the "+
			"variable '%s'", vars.name, name)
	}
	v := vars.vars[j]
	if !v.conv(val) {
		return errors.Errorf("'%s' expects values of type %s and '%s' "+
			"cannot be converted to %s %s", v.name, v.typ, val,
			v.typ.article(), v.typ)
	}
	return nil
}

func removeComments(lines []string) ([]string, []int) {
	out, lineNums := []string{}, []int{}
	for i, line := range lines {
		if comment := strings.Index(line, "#"); comment != -1 {
			line = line[:comment]
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 { continue }
		out = append(out, line)
		lineNums = append(lineNums, i)
	}
	return out, lineNums
}

func associationList(lines []string) ([]string, []string, int) {
	names, vals := []string{}, []string{}
	for i := range lines {
		eq := strings.Index(lines[i], "=")
		if eq == -1 { return nil, nil, i }
		name := strings.ToLower(strings.TrimSpace(lines[i][:eq]))
		if len(name) == 0 { return nil, nil, i }
		names = append(names, name)
		vals = append(vals, strings.TrimSpace(lines[i][eq+1:]))
	}
	return names, vals, -1
}

func checkDuplicateNames(names []string) (int, int) {
	seen := map[string]int{}
	for j := range names {
		if i, ok := seen[names[j]]; ok { return i, j }
		seen[names[j]] = j
	}
	return -1, -1
}
