package transform

import (
	"catpost/internal/table"
)

// Input holds the arguments of one call after binding.
type Input struct {
	Function string
	Table    *table.Table

	literals map[string]string
	families map[string]table.Family
	columns  map[string]table.Column
	selected []string
}

// Rows returns the table row count.
func (in *Input) Rows() int {
	return in.Table.Len()
}

// Literal returns a literal argument, after defaults.
func (in *Input) Literal(name string) (string, bool) {
	v, ok := in.literals[name]
	return v, ok && v != ""
}

// LiteralOr returns a literal argument or fallback when it is unset.
func (in *Input) LiteralOr(name, fallback string) string {
	if v, ok := in.Literal(name); ok {
		return v
	}
	return fallback
}

// Family returns a bound family parameter.
func (in *Input) Family(name string) (table.Family, bool) {
	f, ok := in.families[name]
	return f, ok
}

// Column returns a bound column parameter.
func (in *Input) Column(name string) (table.Column, bool) {
	c, ok := in.columns[name]
	return c, ok
}

// Selected returns the families of the chosen alternative, in the order the
// contract lists them.
func (in *Input) Selected() []table.Family {
	out := make([]table.Family, 0, len(in.selected))
	for _, name := range in.selected {
		out = append(out, in.families[name])
	}
	return out
}

// SelectedNames returns the parameter names of the chosen alternative.
func (in *Input) SelectedNames() []string {
	out := make([]string, len(in.selected))
	copy(out, in.selected)
	return out
}
