package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"catpost/internal/quantity"
	"catpost/internal/table"
)

// ColumnSpec describes one fixture column. Sigma may be nil for exact values.
type ColumnSpec struct {
	Name   string
	Unit   string
	Values []float64
	Sigma  []float64
}

// BuildTable creates a table indexed 0..rows-1 holding cols.
func BuildTable(t testing.TB, rows int, cols ...ColumnSpec) *table.Table {
	t.Helper()
	index := make([]float64, rows)
	for i := range index {
		index[i] = float64(i)
	}
	tbl := table.New("uts", index)
	for _, spec := range cols {
		unit, err := quantity.ParseUnit(spec.Unit)
		require.NoError(t, err)
		values, err := quantity.FromFloats(unit, spec.Values, spec.Sigma)
		require.NoError(t, err)
		col, err := table.NewColumn(spec.Name, unit, values)
		require.NoError(t, err)
		require.NoError(t, tbl.SetColumn(col))
	}
	return tbl
}

// Methane oxidation over three time steps. The inlet holds 1 mol/s CH4 and
// 2 mol/s O2; the outlet rows are
//
//	row  CH4   CO      CO2     H2O   O2
//	0    0.95  0.01    0.04    0.10  1.905
//	1    0.90  0.01    0.09    0.20  1.805
//	2    0.90  0.0095  0.0855  0.19  1.71475
//
// Rows 0 and 1 close every atom balance; row 2 loses 0.5 % of the carbon
// and 5 % of the oxygen.
var (
	methaneInlet = map[string][]float64{
		"CH4": {1, 1, 1},
		"O2":  {2, 2, 2},
	}
	methaneOutlet = []struct {
		species string
		values  []float64
	}{
		{"CH4", []float64{0.95, 0.9, 0.9}},
		{"CO", []float64{0.01, 0.01, 0.0095}},
		{"CO2", []float64{0.04, 0.09, 0.0855}},
		{"H2O", []float64{0.1, 0.2, 0.19}},
		{"O2", []float64{1.905, 1.805, 1.71475}},
	}
)

// MethaneInletTotal is the total inlet flow used to turn rates into fractions.
const MethaneInletTotal = 3.0

// MethaneOxidationRates returns the fixture as "nin"/"nout" flows in mol/s.
func MethaneOxidationRates(t testing.TB) *table.Table {
	t.Helper()
	return BuildTable(t, 3, methaneColumns("nin", "nout", "mol/s", 1)...)
}

// MethaneOxidationFractions returns the fixture as dimensionless "xin"/"xout"
// fractions, both families normalised by the inlet flow.
func MethaneOxidationFractions(t testing.TB) *table.Table {
	t.Helper()
	return BuildTable(t, 3, methaneColumns("xin", "xout", "", 1/MethaneInletTotal)...)
}

// MethaneOxidationBoth holds the rate and the fraction families side by side.
func MethaneOxidationBoth(t testing.TB) *table.Table {
	t.Helper()
	cols := methaneColumns("nin", "nout", "mol/s", 1)
	cols = append(cols, methaneColumns("xin", "xout", "", 1/MethaneInletTotal)...)
	return BuildTable(t, 3, cols...)
}

// CH4PartialOxidation is a single-row table with xin CH4 = 1 and outlet
// fractions CH4 0.1, CO 0.09, CO2 0.81.
func CH4PartialOxidation(t testing.TB) *table.Table {
	t.Helper()
	return BuildTable(t, 1,
		ColumnSpec{Name: "xin->CH4", Values: []float64{1}},
		ColumnSpec{Name: "xout->CH4", Values: []float64{0.1}},
		ColumnSpec{Name: "xout->CO", Values: []float64{0.09}},
		ColumnSpec{Name: "xout->CO2", Values: []float64{0.81}},
	)
}

func methaneColumns(in, out, unit string, scale float64) []ColumnSpec {
	cols := []ColumnSpec{}
	for _, sp := range []string{"CH4", "O2"} {
		cols = append(cols, ColumnSpec{Name: table.FamilyName(in, sp), Unit: unit, Values: scaled(methaneInlet[sp], scale)})
	}
	for _, o := range methaneOutlet {
		cols = append(cols, ColumnSpec{Name: table.FamilyName(out, o.species), Unit: unit, Values: scaled(o.values, scale)})
	}
	return cols
}

func scaled(v []float64, k float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * k
	}
	return out
}
