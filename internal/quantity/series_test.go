package quantity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "catpost/internal/errors"
)

func TestSeries_FromFloats(t *testing.T) {
	s, err := FromFloats(MustParseUnit("mol/s"), []float64{1, 2}, []float64{0.1, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, s.Nominals())
	assert.InDeltaSlice(t, []float64{0.1, 0}, s.Uncertainties(), tol)

	_, err = FromFloats(Dimensionless, []float64{1, 2}, []float64{0.1})
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

// Vectorised evaluation must give the same answer as evaluating every row
// on its own.
func TestSeries_MatchesRowByRow(t *testing.T) {
	unit := MustParseUnit("mol/s")
	a, err := FromFloats(unit, []float64{1, 2, 0, math.NaN(), 5}, []float64{0.1, 0.2, 0.1, 0.1, 0})
	require.NoError(t, err)
	b, err := FromFloats(unit, []float64{2, 0, 3, 4, 5}, []float64{0.2, 0.1, 0, 0.3, 0.5})
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	diff, err := a.Sub(b)
	require.NoError(t, err)
	prod, err := a.Mul(b)
	require.NoError(t, err)
	quot, err := a.Div(b)
	require.NoError(t, err)
	ratio, err := a.Ratio(b)
	require.NoError(t, err)
	sq, err := a.Pow(2)
	require.NoError(t, err)
	scaled := a.Scale(3)

	for i := range a {
		rowSum, _ := a[i].Add(b[i])
		rowDiff, _ := a[i].Sub(b[i])
		rowRatio, _ := Ratio(a[i], b[i])
		rowSq, _ := a[i].Pow(2)

		pairs := []struct {
			name      string
			got, want Quantity
		}{
			{"add", sum[i], rowSum},
			{"sub", diff[i], rowDiff},
			{"mul", prod[i], a[i].Mul(b[i])},
			{"div", quot[i], a[i].Div(b[i])},
			{"ratio", ratio[i], rowRatio},
			{"pow", sq[i], rowSq},
			{"scale", scaled[i], a[i].Scale(3)},
		}
		for _, p := range pairs {
			assertSameQuantity(t, p.want, p.got, "%s row %d", p.name, i)
		}
	}
}

func TestSeries_ScalarBroadcast(t *testing.T) {
	flow, err := FromFloats(MustParseUnit("mol/s"), []float64{1, 2}, nil)
	require.NoError(t, err)
	dt := Exact(10, MustParseUnit("s"))

	amount := flow.MulScalar(dt)
	assert.Equal(t, []float64{10, 20}, amount.Nominals())
	assert.Equal(t, "mol", amount[0].Unit().String())

	shifted, err := amount.AddScalar(New(1, 0.5, MustParseUnit("mol")))
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 21}, shifted.Nominals())
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, shifted.Uncertainties(), tol)

	_, err = flow.AddScalar(dt)
	assert.True(t, apperrors.IsUnitMismatch(err))
}

func TestSeries_SumSeries(t *testing.T) {
	unit := MustParseUnit("mol/s")
	a := Fill(3, New(1, 0.1, unit))
	b := Zeros(3, unit)

	total, err := SumSeries(a, b, a)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, total.Nominals())
	// the same source added twice is fully correlated
	assert.InDeltaSlice(t, []float64{0.2, 0.2, 0.2}, total.Uncertainties(), tol)

	_, err = SumSeries()
	assert.Error(t, err)

	_, err = SumSeries(a, Zeros(3, Dimensionless))
	assert.True(t, apperrors.IsUnitMismatch(err))

	_, err = a.Add(Zeros(2, unit))
	assert.Equal(t, apperrors.ErrTypeValidation, apperrors.TypeOf(err))
}

func assertSameQuantity(t *testing.T, want, got Quantity, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, want.Unit(), got.Unit(), msgAndArgs...)
	if want.IsNaN() {
		assert.True(t, got.IsNaN(), msgAndArgs...)
		return
	}
	assert.InDelta(t, want.Nominal(), got.Nominal(), tol, msgAndArgs...)
	assert.InDelta(t, want.Uncertainty(), got.Uncertainty(), tol, msgAndArgs...)
}
