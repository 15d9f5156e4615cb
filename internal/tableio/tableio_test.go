package tableio

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catpost/internal/errors"
	"catpost/internal/quantity"
	"catpost/internal/shared/testutil"
	"catpost/internal/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl := testutil.BuildTable(t, 3,
		testutil.ColumnSpec{Name: "nin->CH4", Unit: "mol/s", Values: []float64{1, 1, 1}, Sigma: []float64{0.01, 0.02, 0.03}},
		testutil.ColumnSpec{Name: "nout->CO2", Unit: "mol/s", Values: []float64{0.04, math.NaN(), 0.0855}},
		testutil.ColumnSpec{Name: "T", Unit: "K", Values: []float64{873.15, 874.5, 875}},
		testutil.ColumnSpec{Name: "Sp_C->CO", Values: []float64{0.2, 0.1, 1.0 / 3}},
	)
	tbl.SetAttr("sample", "Pt/Al2O3 batch 7")
	tbl.SetAttr("transform.0", "catalysis.selectivity feedstock=CH4 run=abc")
	return tbl
}

func assertSameTable(t *testing.T, want, got *table.Table, sigma bool) {
	t.Helper()
	assert.Equal(t, want.IndexName(), got.IndexName())
	assert.Equal(t, want.Index(), got.Index())
	assert.Equal(t, want.Columns(), got.Columns())
	assert.Equal(t, want.Attrs(), got.Attrs())
	for _, name := range want.Columns() {
		a, _ := want.Column(name)
		b, ok := got.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, a.Unit, b.Unit, name)
		for i := range a.Values {
			wa, gb := a.Values[i], b.Values[i]
			if wa.IsNaN() {
				assert.True(t, gb.IsNaN(), "%s row %d", name, i)
				continue
			}
			assert.Equal(t, wa.Nominal(), gb.Nominal(), "%s row %d", name, i)
			if sigma {
				assert.InDelta(t, wa.Uncertainty(), gb.Uncertainty(), 1e-15, "%s row %d", name, i)
			} else {
				assert.True(t, gb.IsExact(), "%s row %d", name, i)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		file  string
		sigma bool
	}{
		{"out.csv", true},
		{"out.csv", false},
		{"out.xlsx", true},
		{"out.xlsx", false},
	}

	for _, tt := range tests {
		name := tt.file
		if !tt.sigma {
			name += " without sigma"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", tt.file)
			want := sampleTable(t)

			require.NoError(t, Save(path, want, Options{Sigma: tt.sigma}))
			got, err := Load(path, Options{})
			require.NoError(t, err)
			assertSameTable(t, want, got, tt.sigma)
		})
	}
}

func TestWriteCSV_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable(t), Options{Sigma: true}))

	lines := strings.Split(strings.TrimPrefix(buf.String(), string(utf8BOM)), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "# sample: Pt/Al2O3 batch 7", lines[0])
	assert.Equal(t, "# transform.0: catalysis.selectivity feedstock=CH4 run=abc", lines[1])
	assert.Equal(t, "uts,nin->CH4 [mol s^-1],σ(nin->CH4) [mol s^-1],nout->CO2 [mol s^-1],T [K],Sp_C->CO []", lines[2])
	assert.Equal(t, "0,1,0.01,0.04,873.15,0.2", lines[3])
	assert.Equal(t, "1,1,0.02,NaN,874.5,0.1", lines[4])
}

func TestReadCSV(t *testing.T) {
	t.Run("plain file", func(t *testing.T) {
		src := "time,flow [smL/min],σ(flow) [smL/min],x\n0,10,0.5,1\n60,12,,2\n"
		tbl, err := ReadCSV(strings.NewReader(src))
		require.NoError(t, err)

		assert.Equal(t, "time", tbl.IndexName())
		assert.Equal(t, []float64{0, 60}, tbl.Index())
		assert.Equal(t, []string{"flow", "x"}, tbl.Columns())

		flow, _ := tbl.Column("flow")
		assert.Equal(t, quantity.MustParseUnit("smL/min"), flow.Unit)
		assert.Equal(t, 0.5, flow.Values[0].Uncertainty())
		assert.Equal(t, 12.0, flow.Values[1].Nominal())
		assert.True(t, math.IsNaN(flow.Values[1].Uncertainty()), "blank uncertainty is unknown")
		x, _ := tbl.Column("x")
		assert.True(t, x.Unit.IsDimensionless())
	})

	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"bad attribute", "# no separator\nuts\n0\n"},
		{"bad number", "uts,a []\n0,abc\n"},
		{"orphan sigma", "uts,σ(a) []\n0,1\n"},
		{"bad unit", "uts,a [m/s/]\n0,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
		})
	}
}

func TestReadCSV_SigmaUnitMismatch(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("uts,a [mol],σ(a) [s]\n0,1,0.1\n"))
	assert.True(t, apperrors.IsUnitMismatch(err))
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("a/b.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatOf("b.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatOf("b.parquet")
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"), Options{})
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))

	bogus := filepath.Join(dir, "bogus.xlsx")
	require.NoError(t, os.WriteFile(bogus, []byte("not a zip"), 0644))
	_, err = Load(bogus, Options{})
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
}

func TestSave_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	tbl := sampleTable(t)
	require.NoError(t, Save(path, tbl, Options{}))

	tbl.SetAttr("sample", "changed")
	require.NoError(t, Save(path, tbl, Options{}))

	got, err := Load(path, Options{})
	require.NoError(t, err)
	v, _ := got.Attr("sample")
	assert.Equal(t, "changed", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteCSV_RejectsUnreadableAttributeKeys(t *testing.T) {
	for _, key := range []string{"run:id", "two\nlines", " padded"} {
		t.Run(key, func(t *testing.T) {
			tbl := sampleTable(t)
			tbl.SetAttr(key, "value")

			var buf bytes.Buffer
			err := WriteCSV(&buf, tbl, Options{})
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
			assert.Zero(t, buf.Len(), "nothing written")
		})
	}

	path := filepath.Join(t.TempDir(), "t.csv")
	tbl := sampleTable(t)
	tbl.SetAttr("run:id", "value")
	assert.Error(t, Save(path, tbl, Options{}))
	assert.NoFileExists(t, path)
}

func TestXLSX_KeepsAttributeKeysWithColons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.xlsx")
	tbl := sampleTable(t)
	tbl.SetAttr("run:id", "a: b")
	require.NoError(t, Save(path, tbl, Options{}))

	got, err := Load(path, Options{})
	require.NoError(t, err)
	v, ok := got.Attr("run:id")
	require.True(t, ok)
	assert.Equal(t, "a: b", v)
}

func TestLoadSave_LogThroughOptionsLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	opts := Options{Logger: logger}
	path := filepath.Join(t.TempDir(), "t.csv")

	require.NoError(t, Save(path, sampleTable(t), opts))
	_, err := Load(path, opts)
	require.NoError(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Saved table")
	testutil.AssertLogContains(t, handler, slog.LevelDebug, "Loaded table")
	testutil.AssertLogAttr(t, handler, "path", path)
}
