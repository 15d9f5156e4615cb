package transform

import (
	"context"
	"fmt"

	apperrors "catpost/internal/errors"
	"catpost/internal/table"
)

// Args maps parameter names to column prefixes, column names or literal values.
type Args map[string]string

// Spec is one requested invocation: a function name and its arguments.
type Spec struct {
	Function string
	Args     Args
}

// ParamKind tells the resolver how to interpret an argument value.
type ParamKind int

const (
	// KindLiteral values are passed through untouched.
	KindLiteral ParamKind = iota
	// KindFamily values name a species family prefix.
	KindFamily
	// KindColumn values name a single column.
	KindColumn
)

func (k ParamKind) String() string {
	switch k {
	case KindFamily:
		return "family"
	case KindColumn:
		return "column"
	default:
		return "literal"
	}
}

// Param declares one argument of a contract.
type Param struct {
	Name     string
	Kind     ParamKind
	Default  string
	Required bool
}

// Func computes output columns from bound inputs. It must not modify the
// table; the caller writes the returned columns.
type Func func(ctx context.Context, in *Input) ([]table.Column, error)

// Contract describes a named calculation and its arguments.
type Contract struct {
	Name   string
	Params []Param
	// Alternatives lists groups of family parameters in order of
	// preference. Exactly one group is bound per call.
	Alternatives [][]string
	Run          Func
}

// Param returns the declared parameter called name.
func (c Contract) Param(name string) (Param, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks the contract is well formed.
func (c Contract) Validate() error {
	if c.Name == "" {
		return apperrors.NewValidationError("contract name cannot be empty")
	}
	if c.Run == nil {
		return apperrors.NewValidationError(fmt.Sprintf("contract %s has no run function", c.Name))
	}
	seen := make(map[string]struct{}, len(c.Params))
	for _, p := range c.Params {
		if p.Name == "" {
			return apperrors.NewValidationError(fmt.Sprintf("contract %s has an unnamed parameter", c.Name))
		}
		if _, dup := seen[p.Name]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("contract %s declares %s twice", c.Name, p.Name))
		}
		seen[p.Name] = struct{}{}
	}
	for _, group := range c.Alternatives {
		if len(group) == 0 {
			return apperrors.NewValidationError(fmt.Sprintf("contract %s has an empty alternative", c.Name))
		}
		for _, name := range group {
			p, ok := c.Param(name)
			if !ok || p.Kind != KindFamily {
				return apperrors.NewValidationError(fmt.Sprintf("contract %s: alternative member %s is not a family parameter", c.Name, name))
			}
		}
	}
	return nil
}

func (c Contract) inAlternative(name string) bool {
	for _, group := range c.Alternatives {
		for _, member := range group {
			if member == name {
				return true
			}
		}
	}
	return false
}
