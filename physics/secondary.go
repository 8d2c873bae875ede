package physics

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/phil-mansfield/ares/math/interpolate"
	"github.com/pkg/errors"
)

// Channel is a way fast secondary electrons can deposit their energy.
type Channel int

const (
	Heat Channel = iota
	IonHI
	IonHeI
	IonHeII
	LyA
	Excitation
	nChannels
)

var channelNames = [nChannels]string{
	Heat: "heat", IonHI: "h_1", IonHeI: "he_1", IonHeII: "he_2",
	LyA: "lya", Excitation: "exc",
}

func (c Channel) String() string {
	if c < 0 || c >= nChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel converts a channel name such as "heat" or "h_1" to a Channel.
func ParseChannel(s string) (Channel, error) {
	for c, name := range channelNames {
		if strings.EqualFold(s, name) {
			return Channel(c), nil
		}
	}
	return 0, errors.Errorf("unknown deposition channel '%s'", s)
}

// Channels returns every channel in order.
func Channels() []Channel {
	out := make([]Channel, nChannels)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// Method selects the treatment of secondary electrons.
type Method int

const (
	// AllHeat deposits all energy as heat.
	AllHeat Method = iota
	// ShullVanSteenberg uses the fits of Shull & van Steenberg (1985).
	ShullVanSteenberg
	// Ricotti uses the fits of Ricotti, Gnedin & Shull (2002).
	Ricotti
	// Tabulated interpolates the Furlanetto & Stoever (2010) tables.
	Tabulated
)

// ElectronTableFile is the name of the Furlanetto & Stoever table inside the
// secondary electron input directory.
const ElectronTableFile = "secondary_electron_data.txt"

// SecondaryElectrons computes the fraction of a fast electron's energy which
// goes into each deposition channel.
type SecondaryElectrons struct {
	Method Method
	table  *ElectronTable
}

// NewSecondaryElectrons creates a calculator for the given method. The table
// is required for Tabulated and ignored otherwise.
func NewSecondaryElectrons(m Method, table *ElectronTable) (*SecondaryElectrons, error) {
	switch m {
	case AllHeat, ShullVanSteenberg, Ricotti:
		return &SecondaryElectrons{Method: m}, nil
	case Tabulated:
		if table == nil {
			return nil, errors.New("method 3 requires a secondary electron table")
		}
		return &SecondaryElectrons{Method: m, table: table}, nil
	}
	return nil, errors.Errorf("secondary electron method %d not in [0, 3]", int(m))
}

// DepositionFraction returns the fraction of energy of an electron with
// energy E (eV) deposited into channel ch in gas with ionized fraction xHII.
// E <= 0 means the energy is unknown.
func (se *SecondaryElectrons) DepositionFraction(xHII, E float64, ch Channel) float64 {
	if E <= 0 {
		E = tinyNumber
	}
	x := math.Min(math.Max(xHII, 0), 1)

	switch se.Method {
	case AllHeat:
		if ch == Heat {
			return 1
		}
		return 0
	case ShullVanSteenberg:
		return shullVanSteenberg(x, ch)
	case Ricotti:
		return ricotti(x, E, ch)
	case Tabulated:
		return se.table.Eval(x, E, ch)
	}
	panic("Impossible")
}

func shullVanSteenberg(x float64, ch Channel) float64 {
	switch ch {
	case Heat:
		if x <= 1e-4 {
			return 0.15
		}
		return 0.9971 * (1 - math.Pow(1-math.Pow(x, 0.2663), 1.3163))
	case IonHI:
		return 0.3908 * math.Pow(1-math.Pow(x, 0.4092), 1.7592)
	case IonHeI:
		return 0.0554 * math.Pow(1-math.Pow(x, 0.4614), 1.6660)
	case IonHeII:
		return 0
	case LyA, Excitation:
		// All excitations are assumed to produce a Lyman-alpha photon.
		return 0.4766 * math.Pow(1-math.Pow(x, 0.2735), 1.5221)
	}
	panic(fmt.Sprintf("Unknown channel %d.", int(ch)))
}

func ricotti(x, E float64, ch Channel) float64 {
	switch ch {
	case Heat:
		if x <= 1e-4 {
			return 0.15
		}
		if E >= 11 {
			return 3.9811*math.Pow(11/E, 0.7)*math.Pow(x, 0.4)*
				math.Pow(1-math.Pow(x, 0.34), 2) +
				(1 - math.Pow(1-math.Pow(x, 0.2663), 1.3163))
		}
		return 1 - tinyNumber
	case IonHI:
		if E < 28 {
			return 0
		}
		return math.Max(-0.6941*math.Pow(28/E, 0.4)*math.Pow(x, 0.2)*
			math.Pow(1-math.Pow(x, 0.38), 2)+
			0.3908*math.Pow(1-math.Pow(x, 0.4092), 1.7592), tinyNumber)
	case IonHeI:
		if E < 28 {
			return 0
		}
		return math.Max(-0.0984*math.Pow(28/E, 0.4)*math.Pow(x, 0.2)*
			math.Pow(1-math.Pow(x, 0.38), 2)+
			0.0554*math.Pow(1-math.Pow(x, 0.4614), 1.6660), tinyNumber)
	case IonHeII:
		return 0
	case LyA, Excitation:
		return shullVanSteenberg(x, ch)
	}
	panic(fmt.Sprintf("Unknown channel %d.", int(ch)))
}

// ElectronTable is a grid of deposition fractions in electron energy and
// ionized fraction.
type ElectronTable struct {
	E, X  []float64
	grids [nChannels]*interpolate.BiLinear
}

// electron table columns after E and x.
var tableColumns = []Channel{Heat, IonHI, IonHeI, IonHeII, Excitation, LyA}

// ReadElectronTable reads a secondary electron table. The file is
// whitespace separated text with '#' comments and one row per grid point:
//
//	E x f_heat f_h_1 f_he_1 f_he_2 f_exc f_lya
//
// Every (E, x) pair of the grid must be present exactly once.
func ReadElectronTable(fname string) (*ElectronTable, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []tableRow{}

	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := scanner.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}
		tok := strings.Fields(text)
		if len(tok) == 0 {
			continue
		}
		if len(tok) != 8 {
			return nil, errors.Errorf(
				"%s, line %d: expected 8 columns, found %d", fname, line, len(tok),
			)
		}
		r := tableRow{}
		for i := range tok {
			r[i], err = strconv.ParseFloat(tok[i], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s, line %d", fname, line)
			}
		}
		rows = append(rows, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, fname)
	}

	Es, xs := uniqueSorted(rows, 0), uniqueSorted(rows, 1)
	if len(Es) < 2 || len(xs) < 2 {
		return nil, errors.Errorf("%s: grid must have at least two energies "+
			"and two ionized fractions", fname)
	} else if len(Es)*len(xs) != len(rows) {
		return nil, errors.Errorf("%s: %d rows do not form a %d x %d grid",
			fname, len(rows), len(Es), len(xs))
	}

	vals := make([][]float64, len(tableColumns))
	seen := make([]bool, len(rows))
	for i := range vals {
		vals[i] = make([]float64, len(rows))
	}
	for _, r := range rows {
		iE, ix := sort.SearchFloat64s(Es, r[0]), sort.SearchFloat64s(xs, r[1])
		idx := iE + ix*len(Es)
		if seen[idx] {
			return nil, errors.Errorf("%s: duplicate grid point (E, x) = (%g, %g)",
				fname, r[0], r[1])
		}
		seen[idx] = true
		for j := range tableColumns {
			vals[j][idx] = r[j+2]
		}
	}

	t := &ElectronTable{E: Es, X: xs}
	for j, ch := range tableColumns {
		t.grids[ch] = interpolate.NewBiLinear(Es, xs, vals[j])
	}
	return t, nil
}

// tableRow is one line of an electron table: E, x, then one column per
// entry of tableColumns.
type tableRow [8]float64

func uniqueSorted(rows []tableRow, col int) []float64 {
	out := []float64{}
	set := map[float64]bool{}
	for _, r := range rows {
		if !set[r[col]] {
			set[r[col]] = true
			out = append(out, r[col])
		}
	}
	sort.Float64s(out)
	return out
}

// Eval interpolates the table. Points outside the grid are clamped to its
// edges.
func (t *ElectronTable) Eval(xHII, E float64, ch Channel) float64 {
	E = math.Min(math.Max(E, t.E[0]), t.E[len(t.E)-1])
	xHII = math.Min(math.Max(xHII, t.X[0]), t.X[len(t.X)-1])
	return t.grids[ch].Eval(E, xHII)
}
