package catalysis

import (
	"fmt"

	apperrors "catpost/internal/errors"
	"catpost/internal/formula"
	"catpost/internal/quantity"
	"catpost/internal/table"
)

// member is one species of a family with its resolved composition.
type member struct {
	species string
	comp    formula.Composition
	values  quantity.Series
}

// members resolves every species of f. Any label the formula resolver does
// not know fails the whole call.
func (c *Calculator) members(f table.Family) ([]member, error) {
	out := make([]member, 0, f.Len())
	for _, sp := range f.Species {
		comp, err := c.formulas.Resolve(sp)
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", f.Prefix, err)
		}
		values, _ := f.Get(sp)
		out = append(out, member{species: sp, comp: comp, values: values})
	}
	return out, nil
}

// atoms returns c(el)·values for one member.
func (m member) atoms(element string) quantity.Series {
	return m.values.Scale(float64(m.comp.Count(element)))
}

// elementSum adds the atoms of element over ms, skipping members for which
// skip reports true. With nothing to add the result is exact zeros in unit.
func elementSum(ms []member, element string, rows int, unit quantity.Unit, skip func(member) bool) (quantity.Series, error) {
	total := quantity.Zeros(rows, unit)
	for _, m := range ms {
		if m.comp.Count(element) == 0 || (skip != nil && skip(m)) {
			continue
		}
		var err error
		if total, err = total.Add(m.atoms(element)); err != nil {
			return nil, fmt.Errorf("species %s: %w", m.species, err)
		}
	}
	return total, nil
}

// findMember looks up a species by exact label first and by canonical
// formula second, so "propane" in a call matches a "C3H8" column.
func findMember(ms []member, label string, comp formula.Composition) (member, bool) {
	for _, m := range ms {
		if m.species == label {
			return m, true
		}
	}
	for _, m := range ms {
		if m.comp.Equal(comp) {
			return m, true
		}
	}
	return member{}, false
}

// elementsOf returns every element present in ms, in Hill order.
func elementsOf(ms []member) []string {
	all := formula.Composition{}
	for _, m := range ms {
		for el, n := range m.comp {
			all[el] += n
		}
	}
	return all.Elements()
}

// feedstock is the resolved feedstock argument of a call.
type feedstock struct {
	label   string
	comp    formula.Composition
	element string
}

// resolveFeedstock resolves the feedstock literal and the element the call
// is based on. The element defaults to formula.DefaultElementOf.
func (c *Calculator) resolveFeedstock(function, label, element string) (feedstock, error) {
	comp, err := c.formulas.Resolve(label)
	if err != nil {
		return feedstock{}, fmt.Errorf("%s: feedstock: %w", function, err)
	}
	if element == "" {
		element = formula.DefaultElementOf(comp)
	}
	if err := checkElement(function, element); err != nil {
		return feedstock{}, err
	}
	return feedstock{label: label, comp: comp, element: element}, nil
}

// member returns the family member that is the feedstock. An exact label
// match wins; the canonical formula is only consulted when no member
// carries the label, so isomers of the feedstock stay separate species.
func (f feedstock) member(ms []member) (member, bool) {
	return findMember(ms, f.label, f.comp)
}

// isFeedstock returns a predicate selecting the single member of ms that
// is the feedstock.
func (f feedstock) isFeedstock(ms []member) func(member) bool {
	fm, ok := f.member(ms)
	return func(m member) bool {
		return ok && m.species == fm.species
	}
}

// inlet returns c_f·in_f. A feedstock absent from the inlet family cannot
// be normalised against and is reported as a missing argument.
func (f feedstock) inlet(function string, in table.Family, ms []member) (quantity.Series, error) {
	m, ok := f.member(ms)
	if !ok {
		return nil, apperrors.NewMissingArgumentError(function, "feedstock", table.FamilyName(in.Prefix, f.label))
	}
	n := f.comp.Count(f.element)
	if n == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s: feedstock %s contains no %s", function, f.label, f.element))
	}
	return m.atoms(f.element), nil
}

func checkElement(function, element string) error {
	if !formula.IsElement(element) {
		return apperrors.NewValidationError(fmt.Sprintf("%s: %q is not a chemical element", function, element))
	}
	return nil
}

// pair returns the inlet and outlet families of the bound alternative. For
// single-family alternatives the inlet is empty.
func pair(selected []table.Family) (in, out table.Family) {
	switch len(selected) {
	case 0:
	case 1:
		out = selected[0]
	default:
		in, out = selected[0], selected[1]
	}
	return in, out
}
