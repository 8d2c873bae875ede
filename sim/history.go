package sim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Column names written by Global21cm.
const (
	ColZ     = "z"
	ColT     = "t"
	ColNu    = "nu"
	ColIGMTk = "igm_Tk"
	ColIGMH2 = "igm_h_2"
	ColIGME  = "igm_e"
	ColCGMH2 = "cgm_h_2"
	ColJa    = "Ja"
	ColTs    = "Ts"
	ColDTb   = "dTb"
	ColXc    = "xc"
	ColXa    = "xa"
)

// ErrNoColumn is returned (wrapped) when a history has no column of the
// requested name.
var ErrNoColumn = errors.New("no such history column")

// History is a table of equal-length columns, one row per output redshift,
// in order of descending redshift.
type History struct {
	names []string
	cols  map[string][]float64
}

// NewHistory returns an empty history with the given columns.
func NewHistory(names ...string) *History {
	h := &History{
		names: append([]string{}, names...),
		cols:  map[string][]float64{},
	}
	for _, name := range names {
		h.cols[name] = []float64{}
	}
	return h
}

// Names returns the column names in order.
func (h *History) Names() []string { return append([]string{}, h.names...) }

// Len returns the number of rows.
func (h *History) Len() int {
	if len(h.names) == 0 {
		return 0
	}
	return len(h.cols[h.names[0]])
}

// Has reports whether the history has the named column.
func (h *History) Has(name string) bool {
	_, ok := h.cols[name]
	return ok
}

// Get returns the named column. The slice is shared with the history.
func (h *History) Get(name string) ([]float64, error) {
	col, ok := h.cols[name]
	if !ok {
		return nil, errors.Wrapf(ErrNoColumn, "'%s'", name)
	}
	return col, nil
}

// Append adds a row. Every column must be present in row and no others.
func (h *History) Append(row map[string]float64) error {
	if len(row) != len(h.names) {
		return fmt.Errorf("row has %d values, history has %d columns",
			len(row), len(h.names))
	}
	for _, name := range h.names {
		if _, ok := row[name]; !ok {
			return errors.Wrapf(ErrNoColumn, "row is missing '%s'", name)
		}
	}
	for _, name := range h.names {
		h.cols[name] = append(h.cols[name], row[name])
	}
	return nil
}

// SetColumn adds or replaces a column. Its length must match the history's.
func (h *History) SetColumn(name string, col []float64) error {
	if len(h.names) > 0 && len(col) != h.Len() {
		return fmt.Errorf("column '%s' has %d rows, history has %d",
			name, len(col), h.Len())
	}
	if _, ok := h.cols[name]; !ok {
		h.names = append(h.names, name)
	}
	h.cols[name] = col
	return nil
}

// WriteTable writes the history as whitespace-separated text with a
// commented header line naming the columns.
func (h *History) WriteTable(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", strings.Join(h.names, " "))

	row := make([]string, len(h.names))
	for i := 0; i < h.Len(); i++ {
		for j, name := range h.names {
			row[j] = strconv.FormatFloat(h.cols[name][i], 'g', 10, 64)
		}
		fmt.Fprintln(bw, strings.Join(row, " "))
	}
	return bw.Flush()
}

// ReadTable reads a history written by WriteTable.
func ReadTable(r io.Reader) (*History, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<16), 1<<24)

	var h *History
	for lineNum := 1; sc.Scan(); lineNum++ {
		line := strings.TrimSpace(sc.Text())
		if h == nil {
			if !strings.HasPrefix(line, "#") {
				return nil, fmt.Errorf("line %d: history must start with "+
					"a '#' header naming its columns", lineNum)
			}
			h = NewHistory(strings.Fields(line[1:])...)
			continue
		} else if line == "" {
			continue
		}

		toks := strings.Fields(line)
		if len(toks) != len(h.names) {
			return nil, fmt.Errorf("line %d has %d values, expected %d",
				lineNum, len(toks), len(h.names))
		}
		for j, tok := range toks {
			x, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: cannot parse '%s'",
					lineNum, tok)
			}
			h.cols[h.names[j]] = append(h.cols[h.names[j]], x)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("empty history")
	}
	return h, nil
}
