package quantity

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apperrors "catpost/internal/errors"
)

// Unit is a product of symbol powers kept in canonical textual form, e.g.
// "mol s^-1". The zero value is dimensionless. Units compare with ==.
type Unit struct {
	key string
}

// Dimensionless is the unit of pure numbers.
var Dimensionless = Unit{}

var factorRe = regexp.MustCompile(`^([A-Za-zµμΩ°%]+)(?:\^|\*\*)?(-?\d+)?$`)

// ParseUnit parses strings such as "mol/s", "smL/min", "mol*s^-1", "mol s-1"
// or "1". Every factor after a "/" is a denominator factor.
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "1", "-", "dimensionless":
		return Dimensionless, nil
	}

	powers := make(map[string]int)
	for i, part := range strings.Split(s, "/") {
		sign := 1
		if i > 0 {
			sign = -1
		}
		fields := splitFactors(part)
		if len(fields) == 0 {
			return Dimensionless, apperrors.NewParsingError(fmt.Sprintf("invalid unit %q", s), nil)
		}
		for _, f := range fields {
			if f == "1" {
				continue
			}
			m := factorRe.FindStringSubmatch(f)
			if m == nil {
				return Dimensionless, apperrors.NewParsingError(fmt.Sprintf("invalid unit factor %q in %q", f, s), nil)
			}
			exp := 1
			if m[2] != "" {
				exp, _ = strconv.Atoi(m[2])
			}
			powers[m[1]] += sign * exp
		}
	}
	return fromPowers(powers), nil
}

// splitFactors splits a factor list on single "*", "·" and whitespace while
// leaving "**" exponents attached to their symbol.
func splitFactors(part string) []string {
	marked := strings.ReplaceAll(part, "**", "\x00")
	raw := strings.FieldsFunc(marked, func(r rune) bool {
		return r == '*' || r == ' ' || r == '·'
	})
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		out = append(out, strings.ReplaceAll(f, "\x00", "**"))
	}
	return out
}

// MustParseUnit is like ParseUnit but panics on error. Intended for literals.
func MustParseUnit(s string) Unit {
	u, err := ParseUnit(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String returns the canonical form; "" for dimensionless.
func (u Unit) String() string {
	return u.key
}

// IsDimensionless reports whether u carries no symbols.
func (u Unit) IsDimensionless() bool {
	return u.key == ""
}

// Mul composes two units.
func (u Unit) Mul(v Unit) Unit {
	p := u.powers()
	for sym, e := range v.powers() {
		p[sym] += e
	}
	return fromPowers(p)
}

// Div composes u with the inverse of v.
func (u Unit) Div(v Unit) Unit {
	p := u.powers()
	for sym, e := range v.powers() {
		p[sym] -= e
	}
	return fromPowers(p)
}

// Pow raises u to a real exponent. It fails when a symbol would end up with a
// non-integer power.
func (u Unit) Pow(exp float64) (Unit, error) {
	p := u.powers()
	for sym, e := range p {
		scaled := float64(e) * exp
		if scaled != math.Trunc(scaled) {
			return Dimensionless, apperrors.NewUnitMismatchError(fmt.Sprintf("raise to %g", exp), u.key, "")
		}
		p[sym] = int(scaled)
	}
	return fromPowers(p), nil
}

func (u Unit) powers() map[string]int {
	p := make(map[string]int)
	if u.key == "" {
		return p
	}
	for _, f := range strings.Fields(u.key) {
		sym, exp := f, 1
		if i := strings.Index(f, "^"); i >= 0 {
			sym = f[:i]
			exp, _ = strconv.Atoi(f[i+1:])
		}
		p[sym] += exp
	}
	return p
}

// fromPowers renders positive powers first, then negative ones, each group in
// alphabetical order.
func fromPowers(p map[string]int) Unit {
	var pos, neg []string
	for sym, e := range p {
		switch {
		case e > 0:
			pos = append(pos, sym)
		case e < 0:
			neg = append(neg, sym)
		}
	}
	sort.Strings(pos)
	sort.Strings(neg)

	parts := make([]string, 0, len(pos)+len(neg))
	for _, sym := range append(pos, neg...) {
		if p[sym] == 1 {
			parts = append(parts, sym)
		} else {
			parts = append(parts, sym+"^"+strconv.Itoa(p[sym]))
		}
	}
	return Unit{key: strings.Join(parts, " ")}
}
