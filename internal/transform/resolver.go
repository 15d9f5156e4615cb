package transform

import (
	"fmt"
	"sort"
	"strings"

	apperrors "catpost/internal/errors"
	"catpost/internal/table"
)

// DefaultFamilies maps the standard inlet and outlet parameters to the
// family prefixes used when a call leaves them out.
var DefaultFamilies = map[string]string{
	"xin":  "xin",
	"xout": "xout",
	"rin":  "nin",
	"rout": "nout",
}

// Resolver binds call arguments to table columns. It is immutable and safe
// for concurrent use.
type Resolver struct {
	defaults map[string]string
}

// NewResolver returns a resolver whose family defaults are DefaultFamilies
// overlaid with overrides. Empty override values are ignored.
func NewResolver(overrides map[string]string) *Resolver {
	defaults := make(map[string]string, len(DefaultFamilies)+len(overrides))
	for k, v := range DefaultFamilies {
		defaults[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			defaults[k] = v
		}
	}
	return &Resolver{defaults: defaults}
}

var defaultResolver = NewResolver(nil)

// DefaultResolver returns a resolver using DefaultFamilies.
func DefaultResolver() *Resolver {
	return defaultResolver
}

// Bind resolves args against the current columns of tbl.
//
// Unknown argument names are rejected. Of the contract's alternative family
// groups, a group named explicitly in args wins when all of its families
// exist; an explicit but incomplete group is a MissingArgumentError. With no
// explicit group, the first complete group in preference order is bound.
func (r *Resolver) Bind(tbl *table.Table, c Contract, args Args) (*Input, error) {
	for name := range args {
		if _, ok := c.Param(name); !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s: unknown argument %q (accepted: %s)", c.Name, name, strings.Join(paramNames(c), ", ")))
		}
	}

	in := &Input{
		Function: c.Name,
		Table:    tbl,
		literals: make(map[string]string),
		families: make(map[string]table.Family),
		columns:  make(map[string]table.Column),
	}

	for _, p := range c.Params {
		value, explicit := args[p.Name]
		switch p.Kind {
		case KindLiteral:
			if !explicit || value == "" {
				value = p.Default
			}
			if value == "" && p.Required {
				return nil, apperrors.NewMissingArgumentError(c.Name, p.Name)
			}
			in.literals[p.Name] = value

		case KindColumn:
			if !explicit || value == "" {
				value = p.Default
			}
			col, ok := tbl.Column(value)
			if !ok {
				if p.Required {
					return nil, apperrors.NewMissingArgumentError(c.Name, p.Name, value)
				}
				continue
			}
			in.columns[p.Name] = col

		case KindFamily:
			if c.inAlternative(p.Name) {
				continue
			}
			name := r.familyName(p, args)
			if !tbl.HasFamily(name) {
				if p.Required {
					return nil, apperrors.NewMissingArgumentError(c.Name, p.Name, name)
				}
				continue
			}
			f, err := tbl.Family(name)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %s: %w", c.Name, p.Name, err)
			}
			in.families[p.Name] = f
		}
	}

	if len(c.Alternatives) > 0 {
		if err := r.bindAlternative(tbl, c, args, in); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (r *Resolver) bindAlternative(tbl *table.Table, c Contract, args Args, in *Input) error {
	var explicit [][]string
	for _, group := range c.Alternatives {
		for _, name := range group {
			if v, ok := args[name]; ok && v != "" {
				explicit = append(explicit, group)
				break
			}
		}
	}

	candidates := c.Alternatives
	if len(explicit) > 0 {
		candidates = explicit
	}

	for _, group := range candidates {
		if r.complete(tbl, c, group, args) {
			for _, name := range group {
				p, _ := c.Param(name)
				f, err := tbl.Family(r.familyName(p, args))
				if err != nil {
					return fmt.Errorf("%s: argument %s: %w", c.Name, name, err)
				}
				in.families[name] = f
			}
			in.selected = append([]string(nil), group...)
			return nil
		}
	}

	// Report the first missing member of the most preferred candidate,
	// listing every family name that was looked for.
	var tried []string
	missing := ""
	for _, group := range candidates {
		for _, name := range group {
			p, _ := c.Param(name)
			fam := r.familyName(p, args)
			if !tbl.HasFamily(fam) {
				tried = append(tried, fmt.Sprintf("%s=%s", name, fam))
				if missing == "" {
					missing = name
				}
			}
		}
	}
	return apperrors.NewMissingArgumentError(c.Name, missing, tried...)
}

func (r *Resolver) complete(tbl *table.Table, c Contract, group []string, args Args) bool {
	for _, name := range group {
		p, _ := c.Param(name)
		if !tbl.HasFamily(r.familyName(p, args)) {
			return false
		}
	}
	return true
}

// familyName returns the prefix a family parameter refers to: the explicit
// argument, else the resolver default, else the contract default.
func (r *Resolver) familyName(p Param, args Args) string {
	if v, ok := args[p.Name]; ok && v != "" {
		return v
	}
	if v, ok := r.defaults[p.Name]; ok {
		return v
	}
	if p.Default != "" {
		return p.Default
	}
	return p.Name
}

func paramNames(c Contract) []string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}
