package table

import (
	"fmt"
	"strings"

	apperrors "catpost/internal/errors"
	"catpost/internal/quantity"
)

// FamilySep separates a family prefix from the species in a column name.
const FamilySep = "->"

// Column is a named series of quantities sharing one unit.
type Column struct {
	Name   string
	Unit   quantity.Unit
	Values quantity.Series
}

// NewColumn builds a column and checks every value carries unit.
func NewColumn(name string, unit quantity.Unit, values quantity.Series) (Column, error) {
	if strings.TrimSpace(name) == "" {
		return Column{}, apperrors.NewValidationError("column name must not be empty")
	}
	for i, q := range values {
		if q.Unit() != unit {
			return Column{}, fmt.Errorf("column %s row %d: %w", name, i,
				apperrors.NewUnitMismatchError("store", unit.String(), q.Unit().String()))
		}
	}
	return Column{Name: name, Unit: unit, Values: values}, nil
}

// ColumnOf builds a column taking the unit from the first value. An empty
// series gives a dimensionless column.
func ColumnOf(name string, values quantity.Series) (Column, error) {
	unit := quantity.Dimensionless
	if len(values) > 0 {
		unit = values[0].Unit()
	}
	return NewColumn(name, unit, values)
}

// FamilyName joins a prefix and a species into a column name.
func FamilyName(prefix, species string) string {
	return prefix + FamilySep + species
}

// SplitFamilyName splits a column name into prefix and species. ok is false
// for names that are not family members.
func SplitFamilyName(name string) (prefix, species string, ok bool) {
	prefix, species, ok = strings.Cut(name, FamilySep)
	if !ok || prefix == "" || species == "" {
		return "", "", false
	}
	return prefix, species, true
}
