package quantity

import (
	"fmt"
	"math"
	"sync/atomic"

	apperrors "catpost/internal/errors"
)

// sourceSeq hands out ids for independent uncertainty sources.
var sourceSeq atomic.Uint64

// Quantity is a nominal value with a symmetric standard uncertainty and a unit.
//
// The uncertainty is tracked as first-order error components keyed by the
// independent measurement they stem from. Operands sharing a source are
// therefore fully correlated: x/x is exactly 1 ± 0. Quantities are immutable.
type Quantity struct {
	value float64
	unit  Unit
	comps map[uint64]float64
}

// New returns a measured quantity. A positive sigma registers a new
// independent uncertainty source; zero means exact.
func New(value, sigma float64, unit Unit) Quantity {
	q := Quantity{value: value, unit: unit}
	sigma = math.Abs(sigma)
	if sigma > 0 || math.IsNaN(sigma) {
		q.comps = map[uint64]float64{sourceSeq.Add(1): sigma}
	}
	return q
}

// Exact returns a quantity without uncertainty.
func Exact(value float64, unit Unit) Quantity {
	return Quantity{value: value, unit: unit}
}

// NaN returns a not-a-number quantity carrying unit.
func NaN(unit Unit) Quantity {
	return Quantity{value: math.NaN(), unit: unit}
}

// Nominal returns the nominal value.
func (q Quantity) Nominal() float64 {
	return q.value
}

// Uncertainty returns the standard uncertainty; NaN when the nominal is NaN.
func (q Quantity) Uncertainty() float64 {
	if math.IsNaN(q.value) {
		return math.NaN()
	}
	var sum float64
	for _, c := range q.comps {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Unit returns the unit of q.
func (q Quantity) Unit() Unit {
	return q.unit
}

// IsNaN reports whether the nominal value is NaN.
func (q Quantity) IsNaN() bool {
	return math.IsNaN(q.value)
}

// IsExact reports whether q carries no uncertainty.
func (q Quantity) IsExact() bool {
	return len(q.comps) == 0 && !q.IsNaN()
}

// String formats q as "nominal±sigma unit".
func (q Quantity) String() string {
	s := fmt.Sprintf("%g", q.value)
	if !q.IsExact() {
		s += fmt.Sprintf("±%g", q.Uncertainty())
	}
	if !q.unit.IsDimensionless() {
		s += " " + q.unit.String()
	}
	return s
}

// Add returns q + o. Units must be identical.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.unit != o.unit {
		return Quantity{}, apperrors.NewUnitMismatchError("add", q.unit.String(), o.unit.String())
	}
	if q.IsNaN() || o.IsNaN() {
		return NaN(q.unit), nil
	}
	return Quantity{value: q.value + o.value, unit: q.unit, comps: combine(1, q.comps, 1, o.comps)}, nil
}

// Sub returns q - o. Units must be identical.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if q.unit != o.unit {
		return Quantity{}, apperrors.NewUnitMismatchError("subtract", q.unit.String(), o.unit.String())
	}
	if q.IsNaN() || o.IsNaN() {
		return NaN(q.unit), nil
	}
	return Quantity{value: q.value - o.value, unit: q.unit, comps: combine(1, q.comps, -1, o.comps)}, nil
}

// Mul returns q · o with composed units. The uncertainty follows
// σ² = (o·σq)² + (q·σo)², i.e. relative errors in quadrature, and stays
// defined when either nominal is zero.
func (q Quantity) Mul(o Quantity) Quantity {
	unit := q.unit.Mul(o.unit)
	if q.IsNaN() || o.IsNaN() {
		return NaN(unit)
	}
	return Quantity{value: q.value * o.value, unit: unit, comps: combine(o.value, q.comps, q.value, o.comps)}
}

// Div returns q / o with composed units. A zero divisor yields NaN.
func (q Quantity) Div(o Quantity) Quantity {
	unit := q.unit.Div(o.unit)
	if q.IsNaN() || o.IsNaN() || o.value == 0 {
		return NaN(unit)
	}
	v := q.value / o.value
	return Quantity{value: v, unit: unit, comps: combine(1/o.value, q.comps, -v/o.value, o.comps)}
}

// Ratio divides two quantities of the same unit; the result is dimensionless.
func Ratio(num, den Quantity) (Quantity, error) {
	if num.unit != den.unit {
		return Quantity{}, apperrors.NewUnitMismatchError("take ratio of", num.unit.String(), den.unit.String())
	}
	return num.Div(den), nil
}

// Pow returns q raised to exp.
func (q Quantity) Pow(exp float64) (Quantity, error) {
	unit, err := q.unit.Pow(exp)
	if err != nil {
		return Quantity{}, err
	}
	if q.IsNaN() {
		return NaN(unit), nil
	}
	if exp == 0 {
		return Exact(1, unit), nil
	}
	v := math.Pow(q.value, exp)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NaN(unit), nil
	}
	d := exp * math.Pow(q.value, exp-1)
	return Quantity{value: v, unit: unit, comps: combine(d, q.comps, 0, nil)}, nil
}

// Scale multiplies q by an exact dimensionless factor.
func (q Quantity) Scale(k float64) Quantity {
	if q.IsNaN() || math.IsNaN(k) {
		return NaN(q.unit)
	}
	return Quantity{value: q.value * k, unit: q.unit, comps: combine(k, q.comps, 0, nil)}
}

// Sum adds any number of quantities of one unit. The empty sum is an exact,
// dimensionless zero.
func Sum(qs ...Quantity) (Quantity, error) {
	if len(qs) == 0 {
		return Exact(0, Dimensionless), nil
	}
	total := qs[0]
	for _, q := range qs[1:] {
		var err error
		if total, err = total.Add(q); err != nil {
			return Quantity{}, err
		}
	}
	return total, nil
}

// combine returns the linear combination ka·a + kb·b of two component sets.
func combine(ka float64, a map[uint64]float64, kb float64, b map[uint64]float64) map[uint64]float64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[uint64]float64, len(a)+len(b))
	for id, c := range a {
		out[id] += ka * c
	}
	for id, c := range b {
		out[id] += kb * c
	}
	for id, c := range out {
		if c == 0 {
			delete(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
