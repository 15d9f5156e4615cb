package formula

import (
	"sort"
	"strconv"
	"strings"
)

// Composition maps element symbols to atom counts.
type Composition map[string]int

// Count returns the number of atoms of element; zero when absent.
func (c Composition) Count(element string) int {
	return c[element]
}

// Has reports whether element is present.
func (c Composition) Has(element string) bool {
	return c[element] > 0
}

// Elements returns the element symbols in Hill order.
func (c Composition) Elements() []string {
	els := make([]string, 0, len(c))
	for el, n := range c {
		if n > 0 {
			els = append(els, el)
		}
	}
	hasCarbon := c.Has("C")
	sort.Slice(els, func(i, j int) bool {
		ri, rj := hillRank(els[i], hasCarbon), hillRank(els[j], hasCarbon)
		if ri != rj {
			return ri < rj
		}
		return els[i] < els[j]
	})
	return els
}

// Hill renders c in Hill notation: carbon, then hydrogen, then the remaining
// elements alphabetically. Without carbon every element is alphabetical.
func (c Composition) Hill() string {
	var b strings.Builder
	for _, el := range c.Elements() {
		b.WriteString(el)
		if n := c[el]; n != 1 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

// Equal reports whether two compositions contain the same atoms.
func (c Composition) Equal(o Composition) bool {
	return c.Hill() == o.Hill()
}

func hillRank(el string, hasCarbon bool) int {
	if !hasCarbon {
		return 2
	}
	switch el {
	case "C":
		return 0
	case "H":
		return 1
	default:
		return 2
	}
}
