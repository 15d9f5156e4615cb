package table

import (
	"fmt"
	"sort"
	"strings"

	apperrors "catpost/internal/errors"
	"catpost/internal/quantity"
)

// DefaultIndexName is used when a table is built without an index name.
const DefaultIndexName = "uts"

// Table is an index with ordered columns and attributes. A Table is not safe
// for concurrent mutation; callers own it and serialize writes.
type Table struct {
	indexName string
	index     []float64
	columns   []Column
	byName    map[string]int
	attrs     map[string]string
}

// New returns an empty table over index.
func New(indexName string, index []float64) *Table {
	if indexName == "" {
		indexName = DefaultIndexName
	}
	idx := make([]float64, len(index))
	copy(idx, index)
	return &Table{
		indexName: indexName,
		index:     idx,
		byName:    make(map[string]int),
		attrs:     make(map[string]string),
	}
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.index)
}

// IndexName returns the name of the index, e.g. "uts".
func (t *Table) IndexName() string {
	return t.indexName
}

// Index returns a copy of the index values.
func (t *Table) Index() []float64 {
	out := make([]float64, len(t.index))
	copy(out, t.index)
	return out
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// SetColumn inserts c or overwrites the column of the same name in place.
func (t *Table) SetColumn(c Column) error {
	return t.SetColumns(c)
}

// SetColumns validates every column against the table before writing any of
// them, so a failure leaves the table untouched.
func (t *Table) SetColumns(cols ...Column) error {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return apperrors.NewValidationError("column name must not be empty")
		}
		if c.Name == t.indexName {
			return apperrors.NewValidationError(fmt.Sprintf("column %q collides with the index", c.Name))
		}
		if _, dup := seen[c.Name]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("column %q written twice", c.Name))
		}
		seen[c.Name] = struct{}{}
		if len(c.Values) != len(t.index) {
			return apperrors.NewValidationError(fmt.Sprintf("column %q has %d rows, table has %d", c.Name, len(c.Values), len(t.index)))
		}
		for i, q := range c.Values {
			if q.Unit() != c.Unit {
				return fmt.Errorf("column %s row %d: %w", c.Name, i,
					apperrors.NewUnitMismatchError("store", c.Unit.String(), q.Unit().String()))
			}
		}
	}
	for _, c := range cols {
		if i, ok := t.byName[c.Name]; ok {
			t.columns[i] = c
			continue
		}
		t.byName[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return nil
}

// Family collects the columns "<prefix>->*". The family is empty when no
// such column exists; members with differing units are an error.
func (t *Table) Family(prefix string) (Family, error) {
	f := Family{Prefix: prefix, values: make(map[string]quantity.Series)}
	for _, c := range t.columns {
		p, species, ok := SplitFamilyName(c.Name)
		if !ok || p != prefix {
			continue
		}
		if len(f.Species) == 0 {
			f.Unit = c.Unit
		} else if c.Unit != f.Unit {
			return Family{}, fmt.Errorf("family %s: %w", prefix,
				apperrors.NewUnitMismatchError("group", f.Unit.String(), c.Unit.String()))
		}
		f.Species = append(f.Species, species)
		f.values[species] = c.Values
	}
	return f, nil
}

// HasFamily reports whether at least one "<prefix>->*" column exists.
func (t *Table) HasFamily(prefix string) bool {
	for _, c := range t.columns {
		if p, _, ok := SplitFamilyName(c.Name); ok && p == prefix {
			return true
		}
	}
	return false
}

// Attr returns one attribute.
func (t *Table) Attr(key string) (string, bool) {
	v, ok := t.attrs[key]
	return v, ok
}

// SetAttr sets one attribute.
func (t *Table) SetAttr(key, value string) {
	t.attrs[key] = value
}

// Attrs returns a copy of the attribute map.
func (t *Table) Attrs() map[string]string {
	out := make(map[string]string, len(t.attrs))
	for k, v := range t.attrs {
		out[k] = v
	}
	return out
}

// AttrKeys returns attribute keys in sorted order.
func (t *Table) AttrKeys() []string {
	keys := make([]string, 0, len(t.attrs))
	for k := range t.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy. Quantities are immutable and shared.
func (t *Table) Clone() *Table {
	c := New(t.indexName, t.index)
	for _, col := range t.columns {
		vals := make(quantity.Series, len(col.Values))
		copy(vals, col.Values)
		col.Values = vals
		c.byName[col.Name] = len(c.columns)
		c.columns = append(c.columns, col)
	}
	for k, v := range t.attrs {
		c.attrs[k] = v
	}
	return c
}
