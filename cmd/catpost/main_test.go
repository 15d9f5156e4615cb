package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catpost/internal/errors"
	"catpost/internal/shared/testutil"
	"catpost/internal/tableio"
	"catpost/internal/transform"
)

const selectivityRecipe = `transform:
  - function: catalysis.selectivity
    using:
      - {feedstock: CH4}
  - function: catalysis.conversion
    using:
      - {feedstock: CH4}
      - {feedstock: CH4, type: product}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "catpost.yaml", `logging:
  level: error
telemetry:
  metrics: true
  metrics_file: `+filepath.Join(dir, "metrics.prom")+`
`)
}

func TestRun_SingleInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "methane.csv")
	require.NoError(t, tableio.Save(in, testutil.MethaneOxidationRates(t), tableio.Options{}))
	recipe := writeFile(t, dir, "recipe.yaml", selectivityRecipe+`save:
  as: result.xlsx
  sigma: false
`)
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"-config", writeConfig(t, dir), "-recipe", recipe, "-in", in, "-out", outDir},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	got, err := tableio.Load(filepath.Join(outDir, "result.xlsx"), tableio.Options{})
	require.NoError(t, err)
	for _, name := range []string{"Sp_C->CO", "Sp_C->CO2", "Xr_CH4", "Xp_CH4"} {
		assert.True(t, got.Has(name), name)
	}
	col, _ := got.Column("Sp_C->CO")
	assert.InDeltaSlice(t, []float64{0.2, 0.1, 0.1}, col.Values.Nominals(), 1e-9)
	assert.Len(t, transform.Provenance(got), 3)

	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "catpost_transforms")
}

func TestRun_ManyInputs(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.xlsx"), filepath.Join(dir, "c.csv")}
	for _, in := range inputs {
		require.NoError(t, tableio.Save(in, testutil.MethaneOxidationBoth(t), tableio.Options{}))
	}
	recipe := writeFile(t, dir, "recipe.yaml", `transform:
  - function: catalysis.atom_balance
    using:
      - {}
      - {xin: xin, xout: xout, output: atbal_x}
`)
	outDir := filepath.Join(dir, "out")

	args := []string{"-config", writeConfig(t, dir), "-recipe", recipe, "-out", outDir,
		"-in", filepath.Join(dir, "*.csv"), "-in", inputs[1]}
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	for _, base := range []string{"a", "b", "c"} {
		got, err := tableio.Load(filepath.Join(outDir, base+".csv"), tableio.Options{})
		require.NoError(t, err, base)
		rate, _ := got.Column("atbal_O")
		frac, _ := got.Column("atbal_x_O")
		assert.InDeltaSlice(t, rate.Values.Nominals(), frac.Values.Nominals(), 1e-6, base)
	}
}

func TestRun_RejectsInputsSavedToSameFile(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{filepath.Join(dir, "day1", "run.csv"), filepath.Join(dir, "day2", "run.csv")}
	for _, in := range inputs {
		require.NoError(t, tableio.Save(in, testutil.MethaneOxidationRates(t), tableio.Options{}))
	}
	recipe := writeFile(t, dir, "recipe.yaml", selectivityRecipe)
	outDir := filepath.Join(dir, "out")

	args := []string{"-config", writeConfig(t, dir), "-recipe", recipe, "-out", outDir,
		"-in", inputs[0], "-in", inputs[1]}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
	assert.ErrorContains(t, err, "run.csv")
	assert.NoFileExists(t, filepath.Join(outDir, "run.csv"))
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	recipe := writeFile(t, dir, "recipe.yaml", selectivityRecipe)
	unknown := filepath.Join(dir, "unknown.csv")
	require.NoError(t, tableio.Save(unknown, testutil.BuildTable(t, 1,
		testutil.ColumnSpec{Name: "nin->CH4", Unit: "mol/s", Values: []float64{1}},
		testutil.ColumnSpec{Name: "nout->unobtainium", Unit: "mol/s", Values: []float64{1}},
	), tableio.Options{}))
	badRecipe := writeFile(t, dir, "bad.yaml", `transform:
  - function: catalysis.selectivity
    using:
      - {feedstock: CH4, colour: blue}
`)

	tests := []struct {
		name    string
		args    []string
		errType apperrors.ErrorType
	}{
		{"missing recipe flag", []string{"-in", unknown}, ""},
		{"missing input flag", []string{"-recipe", recipe}, ""},
		{"unknown species", []string{"-config", cfg, "-recipe", recipe, "-in", unknown, "-out", dir}, apperrors.ErrTypeUnknownSpecies},
		{"unknown argument", []string{"-config", cfg, "-recipe", badRecipe, "-in", unknown, "-out", dir}, apperrors.ErrTypeValidation},
		{"missing input file", []string{"-config", cfg, "-recipe", recipe, "-in", filepath.Join(dir, "nope.csv"), "-out", dir}, apperrors.ErrTypeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.Error(t, err)
			if tt.errType != "" {
				assert.Equal(t, tt.errType, apperrors.TypeOf(err), err.Error())
			}
		})
	}
}

func TestRun_List(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", writeConfig(t, dir), "-list"}, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "catalysis.atom_balance(element, output, xin, xout, rin, rout)")
	assert.Contains(t, stdout.String(), "catalysis.conversion(feedstock, element, type, output, xin, xout, rin, rout)")
}
