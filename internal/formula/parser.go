package formula

import (
	"fmt"
	"unicode"
)

// Parse reads a molecular formula. Element symbols must exist in the
// periodic table; counts follow symbols or closing brackets and repeated
// elements are summed.
func Parse(s string) (Composition, error) {
	p := &parser{src: []rune(s)}
	comp, err := p.group(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at position %d", p.src[p.pos], p.pos)
	}
	if len(comp) == 0 {
		return nil, fmt.Errorf("empty formula")
	}
	return comp, nil
}

type parser struct {
	src []rune
	pos int
}

// group parses a sequence of elements and bracketed sub-groups until the end
// of input or a closing bracket at depth > 0.
func (p *parser) group(depth int) (Composition, error) {
	comp := make(Composition)
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case r == '(' || r == '[':
			open := p.pos
			p.pos++
			inner, err := p.group(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.src) || !closes(r, p.src[p.pos]) {
				return nil, fmt.Errorf("unbalanced bracket at position %d", open)
			}
			p.pos++
			n, err := p.count()
			if err != nil {
				return nil, err
			}
			for el, c := range inner {
				comp[el] += c * n
			}
		case r == ')' || r == ']':
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced bracket at position %d", p.pos)
			}
			return comp, nil
		case unicode.IsUpper(r):
			sym := string(r)
			p.pos++
			if p.pos < len(p.src) && unicode.IsLower(p.src[p.pos]) {
				sym += string(p.src[p.pos])
				p.pos++
			}
			if !IsElement(sym) {
				return nil, fmt.Errorf("unknown element %q", sym)
			}
			n, err := p.count()
			if err != nil {
				return nil, err
			}
			comp[sym] += n
		default:
			return nil, fmt.Errorf("unexpected %q at position %d", r, p.pos)
		}
	}
	return comp, nil
}

// count reads an optional positive multiplier; absent means one.
func (p *parser) count() (int, error) {
	start := p.pos
	n := 0
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		n = n*10 + int(p.src[p.pos]-'0')
		p.pos++
	}
	if p.pos == start {
		return 1, nil
	}
	if n == 0 {
		return 0, fmt.Errorf("zero count at position %d", start)
	}
	return n, nil
}

func closes(open, r rune) bool {
	return (open == '(' && r == ')') || (open == '[' && r == ']')
}
