package table

import (
	"catpost/internal/quantity"
)

// Family is the set of columns "<Prefix>-><species>" present in a table at
// the time it was collected. Species keep table column order.
type Family struct {
	Prefix  string
	Unit    quantity.Unit
	Species []string
	values  map[string]quantity.Series
}

// Len returns the number of species.
func (f Family) Len() int {
	return len(f.Species)
}

// Get returns the series of one species.
func (f Family) Get(species string) (quantity.Series, bool) {
	s, ok := f.values[species]
	return s, ok
}

// Contains reports whether species is a member.
func (f Family) Contains(species string) bool {
	_, ok := f.values[species]
	return ok
}

// Total sums every member row by row. An empty family yields exact zeros in
// the dimensionless unit.
func (f Family) Total(rows int) (quantity.Series, error) {
	if len(f.Species) == 0 {
		return quantity.Zeros(rows, quantity.Dimensionless), nil
	}
	series := make([]quantity.Series, len(f.Species))
	for i, sp := range f.Species {
		series[i] = f.values[sp]
	}
	return quantity.SumSeries(series...)
}
