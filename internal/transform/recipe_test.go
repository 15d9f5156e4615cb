package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catpost/internal/errors"
)

const sampleRecipe = `
transform:
  - function: catalysis.atom_balance
    using:
      - {element: C, xin: xin, xout: xout}
      - {element: O}
  - function: catalysis.selectivity
    using:
      - feedstock: propane
        element: C
save:
  as: out.xlsx
  sigma: false
`

func TestParseRecipe(t *testing.T) {
	r, err := ParseRecipe([]byte(sampleRecipe))
	require.NoError(t, err)

	require.Len(t, r.Transform, 2)
	require.NotNil(t, r.Save)
	assert.Equal(t, "out.xlsx", r.Save.As)
	require.NotNil(t, r.Save.Sigma)
	assert.False(t, *r.Save.Sigma)

	specs := r.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, Spec{Function: "catalysis.atom_balance", Args: Args{"element": "C", "xin": "xin", "xout": "xout"}}, specs[0])
	assert.Equal(t, Args{"element": "O"}, specs[1].Args)
	assert.Equal(t, "catalysis.selectivity", specs[2].Function)
}

func TestParseRecipe_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType apperrors.ErrorType
	}{
		{"empty", "", apperrors.ErrTypeValidation},
		{"no steps", "transform: []\n", apperrors.ErrTypeValidation},
		{"missing function", "transform:\n  - using: [{element: C}]\n", apperrors.ErrTypeValidation},
		{"missing using", "transform:\n  - function: catalysis.selectivity\n", apperrors.ErrTypeValidation},
		{"save without target", "transform:\n  - function: f\n    using: [{}]\nsave:\n  sigma: true\n", apperrors.ErrTypeValidation},
		{"unknown key", "transform:\n  - function: f\n    using: [{}]\n    mode: fast\n", apperrors.ErrTypeParsing},
		{"not yaml", "transform: [unclosed\n", apperrors.ErrTypeParsing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecipe([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestLoadRecipe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRecipe), 0o644))

	r, err := LoadRecipe(path)
	require.NoError(t, err)
	assert.Len(t, r.Specs(), 3)

	_, err = LoadRecipe(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

func TestRecipe_Validate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(totalContract()))

	r, err := ParseRecipe([]byte("transform:\n  - function: test.total\n    using:\n      - {factor: 2}\n"))
	require.NoError(t, err)
	assert.NoError(t, r.Validate(reg))

	r, err = ParseRecipe([]byte("transform:\n  - function: test.total\n    using:\n      - {element: C}\n"))
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(r.Validate(reg)))

	r, err = ParseRecipe([]byte("transform:\n  - function: test.unknown\n    using: [{}]\n"))
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrTypeNotFound, apperrors.TypeOf(r.Validate(reg)))
}
