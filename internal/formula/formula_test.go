package formula

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catpost/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Composition
	}{
		{"simple", "C3H8", Composition{"C": 3, "H": 8}},
		{"implicit count", "CO", Composition{"C": 1, "O": 1}},
		{"repeated elements", "CH3COOH", Composition{"C": 2, "H": 4, "O": 2}},
		{"group", "Ca(OH)2", Composition{"Ca": 1, "O": 2, "H": 2}},
		{"nested groups", "K4[Fe(CN)6]", Composition{"K": 4, "Fe": 1, "C": 6, "N": 6}},
		{"two letter symbol", "NaCl", Composition{"Na": 1, "Cl": 1}},
		{"multi digit", "C10H22", Composition{"C": 10, "H": 22}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, comp)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "Xx2", "C3H8)", "Ca(OH", "C0", "propane", "c3h8", "C3 H8"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestComposition_Hill(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"CH3COOH", "C2H4O2"},
		{"OHCH3", "CH4O"},
		{"H2O", "H2O"},
		{"OCO", "CO2"},
		{"ClNa", "ClNa"},
		{"NH3", "H3N"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			comp, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, comp.Hill())
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := Default()

	byFormula, err := r.Resolve("C3H8")
	require.NoError(t, err)
	assert.Equal(t, Composition{"C": 3, "H": 8}, byFormula)

	for _, name := range []string{"propane", "Propane", "  PROPANE "} {
		byName, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, byFormula, byName, name)
	}

	co2, err := r.Resolve("carbon  dioxide")
	require.NoError(t, err)
	assert.Equal(t, 1, co2.Count("C"))
	assert.Equal(t, 2, co2.Count("O"))

	_, err = r.Resolve("unobtainium")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnknownSpecies(err))
	var use *apperrors.UnknownSpeciesError
	require.True(t, apperrors.As(err, &use))
	assert.Equal(t, "unobtainium", use.Label)

	_, err = r.Resolve("")
	assert.True(t, apperrors.IsUnknownSpecies(err))
}

func TestResolver_Count(t *testing.T) {
	r := Default()
	n, err := r.Count("propane", "C")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = r.Count("CO2", "H")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = r.Count("unobtainium", "C")
	assert.True(t, apperrors.IsUnknownSpecies(err))
}

func TestResolver_Canonical(t *testing.T) {
	r := Default()
	for _, label := range []string{"acetic acid", "CH3COOH", "C2H4O2", "HOOCCH3"} {
		c, err := r.Canonical(label)
		require.NoError(t, err)
		assert.Equal(t, "C2H4O2", c, label)
	}
}

func TestResolver_DefaultElement(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"propane", "C"},
		{"CO", "C"},
		{"NH3", "N"},
		{"N2O", "N"},
		{"NO2", "O"},
		{"SO2", "O"},
		{"NO", "N"},
		{"H2", "H"},
		{"water", "O"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			el, err := Default().DefaultElement(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, el)
		})
	}
}

func TestResolver_WithAliases(t *testing.T) {
	base := Default()
	extended, err := base.WithAliases(map[string]string{"Isopropanol": "C3H8O"})
	require.NoError(t, err)

	comp, err := extended.Resolve("isopropanol")
	require.NoError(t, err)
	assert.Equal(t, "C3H8O", comp.Hill())

	_, err = base.Resolve("isopropanol")
	assert.True(t, apperrors.IsUnknownSpecies(err), "default resolver is never mutated")

	_, err = base.WithAliases(map[string]string{"bogus": "Qq"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("isobutene: C4H8\nsyngas-co: CO\n"), 0o644))

	r, err := LoadAliases(path)
	require.NoError(t, err)
	c, err := r.Canonical("Isobutene")
	require.NoError(t, err)
	assert.Equal(t, "C4H8", c)
	assert.Contains(t, r.Aliases(), "propane")

	_, err = LoadAliases(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- not\n- a map\n"), 0o644))
	_, err = LoadAliases(bad)
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
}

func TestDefault_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Default().Resolve("ethylene")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
