package quantity

import (
	"fmt"

	apperrors "catpost/internal/errors"
)

// Series is a column of quantities aligned to a table index. All operations
// are element-wise and return new series.
type Series []Quantity

// Fill returns a series of n copies of q; used to broadcast a scalar.
func Fill(n int, q Quantity) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = q
	}
	return s
}

// Zeros returns n exact zeros carrying unit.
func Zeros(n int, unit Unit) Series {
	return Fill(n, Exact(0, unit))
}

// FromFloats builds a series from nominal values and optional per-row
// uncertainties; sigma may be nil.
func FromFloats(unit Unit, nominal, sigma []float64) (Series, error) {
	if sigma != nil && len(sigma) != len(nominal) {
		return nil, lengthError(len(nominal), len(sigma))
	}
	s := make(Series, len(nominal))
	for i, v := range nominal {
		if sigma == nil {
			s[i] = Exact(v, unit)
		} else {
			s[i] = New(v, sigma[i], unit)
		}
	}
	return s, nil
}

// Nominals returns the nominal values.
func (s Series) Nominals() []float64 {
	out := make([]float64, len(s))
	for i, q := range s {
		out[i] = q.Nominal()
	}
	return out
}

// Uncertainties returns the standard uncertainties.
func (s Series) Uncertainties() []float64 {
	out := make([]float64, len(s))
	for i, q := range s {
		out[i] = q.Uncertainty()
	}
	return out
}

// Add adds two series row by row.
func (s Series) Add(o Series) (Series, error) {
	return s.zip(o, Quantity.Add)
}

// Sub subtracts o from s row by row.
func (s Series) Sub(o Series) (Series, error) {
	return s.zip(o, Quantity.Sub)
}

// Mul multiplies two series row by row.
func (s Series) Mul(o Series) (Series, error) {
	return s.zip(o, func(a, b Quantity) (Quantity, error) { return a.Mul(b), nil })
}

// Div divides s by o row by row; zero divisors give NaN rows.
func (s Series) Div(o Series) (Series, error) {
	return s.zip(o, func(a, b Quantity) (Quantity, error) { return a.Div(b), nil })
}

// Ratio divides two series of the same unit into a dimensionless series.
func (s Series) Ratio(o Series) (Series, error) {
	return s.zip(o, Ratio)
}

// Scale multiplies every row by an exact factor.
func (s Series) Scale(k float64) Series {
	out := make(Series, len(s))
	for i, q := range s {
		out[i] = q.Scale(k)
	}
	return out
}

// AddScalar adds q to every row.
func (s Series) AddScalar(q Quantity) (Series, error) {
	return s.Add(Fill(len(s), q))
}

// MulScalar multiplies every row by q, composing units.
func (s Series) MulScalar(q Quantity) Series {
	out := make(Series, len(s))
	for i, r := range s {
		out[i] = r.Mul(q)
	}
	return out
}

// Pow raises every row to exp.
func (s Series) Pow(exp float64) (Series, error) {
	out := make(Series, len(s))
	for i, q := range s {
		r, err := q.Pow(exp)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// SumSeries adds series of equal length row by row. At least one series is
// required so that the result has a length and a unit.
func SumSeries(ss ...Series) (Series, error) {
	if len(ss) == 0 {
		return nil, apperrors.NewValidationError("sum of zero series")
	}
	total := ss[0]
	for _, s := range ss[1:] {
		var err error
		if total, err = total.Add(s); err != nil {
			return nil, err
		}
	}
	return total, nil
}

func (s Series) zip(o Series, op func(a, b Quantity) (Quantity, error)) (Series, error) {
	if len(s) != len(o) {
		return nil, lengthError(len(s), len(o))
	}
	out := make(Series, len(s))
	for i := range s {
		r, err := op(s[i], o[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = r
	}
	return out, nil
}

func lengthError(a, b int) error {
	return apperrors.NewValidationError(fmt.Sprintf("series length mismatch: %d != %d", a, b))
}
