package tableio

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	apperrors "catpost/internal/errors"
	"catpost/internal/quantity"
	"catpost/internal/table"
)

// Format identifies a file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", apperrors.NewValidationError(fmt.Sprintf("unsupported table file %q (want .csv or .xlsx)", path))
	}
}

// Options configures loading and saving.
type Options struct {
	// Sigma writes uncertainty columns. Columns without uncertainty never
	// get one.
	Sigma bool

	// Logger receives load and save events. Nil means slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

var (
	headerRe = regexp.MustCompile(`^(.*?)\s*\[([^\]]*)\]$`)
	sigmaRe  = regexp.MustCompile(`^σ\((.*)\)$`)
)

// header is a parsed column heading.
type header struct {
	name  string
	unit  quantity.Unit
	sigma bool
}

func parseHeader(s string) (header, error) {
	s = strings.TrimSpace(s)
	h := header{name: s}
	if m := headerRe.FindStringSubmatch(s); m != nil {
		unit, err := quantity.ParseUnit(m[2])
		if err != nil {
			return header{}, apperrors.NewParsingError(fmt.Sprintf("column %q", s), err)
		}
		h.name, h.unit = m[1], unit
	}
	if m := sigmaRe.FindStringSubmatch(h.name); m != nil {
		h.name, h.sigma = m[1], true
	}
	if h.name == "" {
		return header{}, apperrors.NewParsingError(fmt.Sprintf("empty column name in header %q", s), nil)
	}
	return h, nil
}

func valueHeader(c table.Column) string {
	return c.Name + " [" + c.Unit.String() + "]"
}

func sigmaHeader(c table.Column) string {
	return "σ(" + c.Name + ") [" + c.Unit.String() + "]"
}

// hasUncertainty reports whether any non-NaN row of c is uncertain.
func hasUncertainty(c table.Column) bool {
	for _, q := range c.Values {
		if !q.IsNaN() && !q.IsExact() {
			return true
		}
	}
	return false
}

// formatFloat renders v with the shortest representation that parses back
// to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseFloat reads a cell; empty cells are NaN.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// grid is the format-neutral form of a table: one header row and string
// cells, plus attributes in key order.
type grid struct {
	headers []string
	rows    [][]string
	attrs   [][2]string
}

// toGrid lays tbl out for writing.
func toGrid(tbl *table.Table, opts Options) grid {
	names := tbl.Columns()
	g := grid{headers: []string{tbl.IndexName()}}

	type out struct {
		col   table.Column
		sigma bool
	}
	cols := make([]out, 0, len(names))
	for _, name := range names {
		c, _ := tbl.Column(name)
		o := out{col: c, sigma: opts.Sigma && hasUncertainty(c)}
		g.headers = append(g.headers, valueHeader(c))
		if o.sigma {
			g.headers = append(g.headers, sigmaHeader(c))
		}
		cols = append(cols, o)
	}

	for i, idx := range tbl.Index() {
		row := make([]string, 0, len(g.headers))
		row = append(row, formatFloat(idx))
		for _, o := range cols {
			q := o.col.Values[i]
			row = append(row, formatFloat(q.Nominal()))
			if o.sigma {
				row = append(row, formatFloat(q.Uncertainty()))
			}
		}
		g.rows = append(g.rows, row)
	}

	for _, k := range tbl.AttrKeys() {
		v, _ := tbl.Attr(k)
		g.attrs = append(g.attrs, [2]string{k, v})
	}
	return g
}

// build rebuilds a table. Uncertainty columns must directly follow the
// column they belong to.
func (g grid) build() (*table.Table, error) {
	if len(g.headers) == 0 {
		return nil, apperrors.NewParsingError("table has no header", nil)
	}
	index := make([]float64, len(g.rows))
	for i, row := range g.rows {
		v, err := parseFloat(cell(row, 0))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d: index", i+1), err)
		}
		index[i] = v
	}
	tbl := table.New(strings.TrimSpace(g.headers[0]), index)

	var cols []table.Column
	for j := 1; j < len(g.headers); j++ {
		h, err := parseHeader(g.headers[j])
		if err != nil {
			return nil, err
		}
		if h.sigma {
			return nil, apperrors.NewParsingError(fmt.Sprintf("uncertainty column %q does not follow its values", g.headers[j]), nil)
		}
		nominal, err := g.floats(j)
		if err != nil {
			return nil, err
		}

		var sigma []float64
		if j+1 < len(g.headers) {
			next, err := parseHeader(g.headers[j+1])
			if err != nil {
				return nil, err
			}
			if next.sigma && next.name == h.name {
				if next.unit != h.unit {
					return nil, apperrors.NewUnitMismatchError("read uncertainty of "+h.name, h.unit.String(), next.unit.String())
				}
				if sigma, err = g.floats(j + 1); err != nil {
					return nil, err
				}
				j++
			}
		}

		values, err := quantity.FromFloats(h.unit, nominal, sigma)
		if err != nil {
			return nil, err
		}
		col, err := table.NewColumn(h.name, h.unit, values)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if err := tbl.SetColumns(cols...); err != nil {
		return nil, err
	}
	for _, kv := range g.attrs {
		tbl.SetAttr(kv[0], kv[1])
	}
	return tbl, nil
}

func (g grid) floats(j int) ([]float64, error) {
	out := make([]float64, len(g.rows))
	for i, row := range g.rows {
		v, err := parseFloat(cell(row, j))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("row %d column %q", i+1, g.headers[j]), err)
		}
		out[i] = v
	}
	return out, nil
}

func cell(row []string, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}
