package tables

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Formats lists the supported file suffixes in order of preference.
var Formats = []string{"bin", "txt"}

// ErrExists is returned (wrapped) when Save would overwrite a table.
var ErrExists = errors.New("table already exists")

const binMagic = 0x7461755f61726573

type binHeader struct {
	Magic uint64
	L, N  int64
}

func suffix(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// Save writes t to path, choosing the format from the file suffix. An
// existing file is only replaced if clobber is true.
func (t *Table) Save(path string, clobber bool) error {
	if err := t.validate(); err != nil {
		return errors.Wrapf(err, "saving '%s'", path)
	}
	if _, err := os.Stat(path); err == nil && !clobber {
		return errors.Wrapf(ErrExists, "'%s'", path)
	}

	var write func(io.Writer) error
	switch suffix(path) {
	case "txt":
		write = t.writeText
	case "bin":
		write = t.writeBinary
	default:
		return fmt.Errorf("unrecognized table format '%s'", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err = write(bw); err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing '%s'", path)
}

// Load reads a table, choosing the format from the file suffix.
func Load(path string) (*Table, error) {
	var read func(io.Reader) (*Table, error)
	switch suffix(path) {
	case "txt":
		read = readText
	case "bin":
		read = readBinary
	default:
		return nil, fmt.Errorf("unrecognized table format '%s'", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := read(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "reading '%s'", path)
	}
	if err := t.validate(); err != nil {
		return nil, errors.Wrapf(err, "reading '%s'", path)
	}
	return t, nil
}

func (t *Table) writeBinary(w io.Writer) error {
	L, N := t.Shape()
	hd := binHeader{binMagic, int64(L), int64(N)}
	for _, x := range []interface{}{hd, t.Z, t.E, t.Tau} {
		if err := binary.Write(w, binary.LittleEndian, x); err != nil {
			return err
		}
	}
	return nil
}

func readBinary(r io.Reader) (*Table, error) {
	hd := binHeader{}
	if err := binary.Read(r, binary.LittleEndian, &hd); err != nil {
		return nil, err
	}
	if hd.Magic != binMagic {
		return nil, fmt.Errorf("not a binary optical depth table")
	}
	if hd.L < 2 || hd.N < 1 || hd.L*hd.N > 1<<32 {
		return nil, fmt.Errorf("corrupt header: shape %d x %d", hd.L, hd.N)
	}

	t := &Table{
		Z: make([]float64, hd.L), E: make([]float64, hd.N),
		Tau: make([]float64, hd.L*hd.N),
	}
	for _, x := range [][]float64{t.Z, t.E, t.Tau} {
		if err := binary.Read(r, binary.LittleEndian, x); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// The header stores the grid bounds at full precision, since readText
// rebuilds the grid from them.
var textHeaderKeys = []string{"zmin", "zmax", "Emin", "Emax"}

func (t *Table) writeText(w io.Writer) error {
	L, N := t.Shape()
	hd := []string{}
	for i, x := range []float64{t.Z[0], t.Z[L-1], t.E[0], t.E[N-1]} {
		hd = append(hd, textHeaderKeys[i]+"="+strconv.FormatFloat(x, 'g', -1, 64))
	}
	if _, err := fmt.Fprintf(w, "# %s\n", strings.Join(hd, " ")); err != nil {
		return err
	}

	line := make([]string, N)
	for l := 0; l < L; l++ {
		for n := range line {
			line[n] = strconv.FormatFloat(t.At(l, n), 'e', 8, 64)
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func readText(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<16), 1<<26)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("empty file")
	}
	hd, err := parseTextHeader(sc.Text())
	if err != nil {
		return nil, err
	}

	t := &Table{}
	N := -1
	for lineNum := 2; sc.Scan(); lineNum++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if N == -1 {
			N = len(fields)
		} else if len(fields) != N {
			return nil, fmt.Errorf("line %d has %d columns, expected %d",
				lineNum, len(fields), N)
		}
		for _, tok := range fields {
			tau, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: cannot parse '%s'",
					lineNum, tok)
			}
			t.Tau = append(t.Tau, tau)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if N < 1 || len(t.Tau)/N < 2 {
		return nil, fmt.Errorf("table has fewer than two rows")
	}

	L := len(t.Tau) / N
	t.Z = logspace(1+hd["zmin"], 1+hd["zmax"], L)
	for i := range t.Z {
		t.Z[i]--
	}
	if N == 1 {
		t.E = []float64{hd["Emin"]}
	} else {
		t.E = logspace(hd["Emin"], hd["Emax"], N)
	}
	return t, nil
}

func parseTextHeader(line string) (map[string]float64, error) {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	hd := map[string]float64{}
	for _, f := range fields {
		tok := strings.SplitN(f, "=", 2)
		if len(tok) != 2 {
			return nil, fmt.Errorf("malformed header entry '%s'", f)
		}
		val, err := strconv.ParseFloat(tok[1], 64)
		if err != nil {
			return nil, fmt.Errorf("header entry '%s' is not a number", f)
		}
		hd[tok[0]] = val
	}
	for _, key := range textHeaderKeys {
		if _, ok := hd[key]; !ok || math.IsNaN(hd[key]) {
			return nil, fmt.Errorf("header is missing '%s'", key)
		}
	}
	return hd, nil
}
