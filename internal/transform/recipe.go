package transform

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apperrors "catpost/internal/errors"
)

// Recipe is a declarative list of transforms with an optional save target:
//
//	transform:
//	  - function: catalysis.atom_balance
//	    using:
//	      - {element: C, xin: xin, xout: xout}
//	save:
//	  as: out.xlsx
//	  sigma: true
type Recipe struct {
	Transform []Step    `yaml:"transform" validate:"required,min=1,dive"`
	Save      *SaveSpec `yaml:"save,omitempty" validate:"omitempty"`
}

// Step applies one function with each argument set in Using.
type Step struct {
	Function string `yaml:"function" validate:"required"`
	Using    []Args `yaml:"using" validate:"required,min=1"`
}

// SaveSpec names the output file. Sigma controls whether uncertainty columns
// are written; unset means the configured default.
type SaveSpec struct {
	As    string `yaml:"as" validate:"required"`
	Sigma *bool  `yaml:"sigma,omitempty"`
}

var recipeValidator = validator.New()

// ParseRecipe decodes and validates a YAML recipe. Unknown keys are rejected.
func ParseRecipe(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		return nil, apperrors.NewParsingError("failed to parse recipe", err)
	}
	if err := recipeValidator.Struct(&r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid recipe: %v", err))
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return nil, apperrors.NewValidationError("invalid recipe: " + strings.Join(msgs, "; "))
	}
	return &r, nil
}

// LoadRecipe reads and parses a recipe file.
func LoadRecipe(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read recipe", err).WithContext("path", path)
	}
	r, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Specs flattens the recipe into invocations in execution order.
func (r *Recipe) Specs() []Spec {
	var specs []Spec
	for _, step := range r.Transform {
		for _, args := range step.Using {
			if args == nil {
				args = Args{}
			}
			specs = append(specs, Spec{Function: step.Function, Args: args})
		}
	}
	return specs
}

// Validate checks every step names a registered contract and only uses
// arguments that contract declares. Column availability is checked later,
// against each table.
func (r *Recipe) Validate(reg *Registry) error {
	for i, step := range r.Transform {
		c, err := reg.Get(step.Function)
		if err != nil {
			return fmt.Errorf("transform[%d]: %w", i, err)
		}
		for j, args := range step.Using {
			for name := range args {
				if _, ok := c.Param(name); !ok {
					return apperrors.NewValidationError(fmt.Sprintf("transform[%d].using[%d]: %s does not accept %q", i, j, step.Function, name))
				}
			}
		}
	}
	return nil
}
