package catalysis

import (
	"context"
	"fmt"

	apperrors "catpost/internal/errors"
	"catpost/internal/quantity"
	"catpost/internal/table"
	"catpost/internal/transform"
)

// Conversion types.
const (
	ReactantConversion = "reactant"
	ProductConversion  = "product"
	MixedConversion    = "mixed"
)

var conversionPrefix = map[string]string{
	ReactantConversion: "Xr",
	ProductConversion:  "Xp",
	MixedConversion:    "Xm",
}

func (c *Calculator) conversionContract() transform.Contract {
	return transform.Contract{
		Name: ConversionName,
		Params: params(
			transform.Param{Name: "feedstock", Kind: transform.KindLiteral, Required: true},
			transform.Param{Name: "element", Kind: transform.KindLiteral},
			transform.Param{Name: "type", Kind: transform.KindLiteral, Default: ReactantConversion},
			transform.Param{Name: "output", Kind: transform.KindLiteral},
		),
		Alternatives: inOutPairs,
		Run:          c.conversion,
	}
}

// conversion computes one of
//
//	reactant: X_r = 1 - out_f / in_f
//	product:  X_p = Σ_products c_i·out_i / (c_f·in_f)
//	mixed:    X_m = Σ_products c_i·out_i / Σ_all c_j·out_j
//
// A feedstock absent from the outlet counts as fully converted.
func (c *Calculator) conversion(ctx context.Context, in *transform.Input) ([]table.Column, error) {
	kind := in.LiteralOr("type", ReactantConversion)
	prefix, ok := conversionPrefix[kind]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s: unknown conversion type %q (accepted: reactant, product, mixed)", in.Function, kind))
	}
	fs, err := c.resolveFeedstock(in.Function, in.LiteralOr("feedstock", ""), in.LiteralOr("element", ""))
	if err != nil {
		return nil, err
	}
	inlet, outlet := pair(in.Selected())
	inMembers, err := c.members(inlet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Function, err)
	}
	outMembers, err := c.members(outlet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Function, err)
	}
	fed, err := fs.inlet(in.Function, inlet, inMembers)
	if err != nil {
		return nil, err
	}

	rows := in.Rows()
	var x quantity.Series
	switch kind {
	case ReactantConversion:
		left := quantity.Zeros(rows, outlet.Unit)
		if m, found := fs.member(outMembers); found {
			left = m.atoms(fs.element)
		}
		frac, err := left.Ratio(fed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}
		x, err = quantity.Fill(rows, quantity.Exact(1, quantity.Dimensionless)).Sub(frac)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}

	case ProductConversion, MixedConversion:
		made, err := elementSum(outMembers, fs.element, rows, outlet.Unit, fs.isFeedstock(outMembers))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}
		den := fed
		if kind == MixedConversion {
			if den, err = elementSum(outMembers, fs.element, rows, outlet.Unit, nil); err != nil {
				return nil, fmt.Errorf("%s: %w", in.Function, err)
			}
		}
		if x, err = made.Ratio(den); err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}
	}

	name := in.LiteralOr("output", prefix) + "_" + fs.label
	col, err := table.NewColumn(name, quantity.Dimensionless, x)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "conversion computed",
		"type", kind,
		"feedstock", fs.label,
		"element", fs.element)
	return []table.Column{col}, nil
}
