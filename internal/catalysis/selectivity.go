package catalysis

import (
	"context"
	"fmt"

	"catpost/internal/quantity"
	"catpost/internal/table"
	"catpost/internal/transform"
)

func (c *Calculator) selectivityContract() transform.Contract {
	return transform.Contract{
		Name: SelectivityName,
		Params: []transform.Param{
			{Name: "feedstock", Kind: transform.KindLiteral, Required: true},
			{Name: "element", Kind: transform.KindLiteral},
			{Name: "output", Kind: transform.KindLiteral},
			{Name: "xout", Kind: transform.KindFamily},
			{Name: "rout", Kind: transform.KindFamily},
		},
		Alternatives: [][]string{{"rout"}, {"xout"}},
		Run:          c.selectivity,
	}
}

func (c *Calculator) yieldContract() transform.Contract {
	return transform.Contract{
		Name: CatalyticYieldName,
		Params: params(
			transform.Param{Name: "feedstock", Kind: transform.KindLiteral, Required: true},
			transform.Param{Name: "element", Kind: transform.KindLiteral},
			transform.Param{Name: "output", Kind: transform.KindLiteral},
		),
		Alternatives: inOutPairs,
		Run:          c.catalyticYield,
	}
}

// products returns the outlet members other than the feedstock that carry
// the feedstock's element.
func (f feedstock) products(ms []member) []member {
	var out []member
	skip := f.isFeedstock(ms)
	for _, m := range ms {
		if skip(m) || m.comp.Count(f.element) == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

// selectivity computes S_i = c_i·out_i / Σ_j c_j·out_j over the products.
func (c *Calculator) selectivity(ctx context.Context, in *transform.Input) ([]table.Column, error) {
	fs, err := c.resolveFeedstock(in.Function, in.LiteralOr("feedstock", ""), in.LiteralOr("element", ""))
	if err != nil {
		return nil, err
	}
	_, outlet := pair(in.Selected())
	outMembers, err := c.members(outlet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Function, err)
	}
	products := fs.products(outMembers)
	if len(products) == 0 {
		c.logger.WarnContext(ctx, "no products found for selectivity",
			"feedstock", fs.label,
			"element", fs.element,
			"outlet", outlet.Prefix)
		return nil, nil
	}

	total, err := elementSum(products, fs.element, in.Rows(), outlet.Unit, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Function, err)
	}
	prefix := in.LiteralOr("output", "Sp_"+fs.element)
	return perProduct(in.Function, prefix, fs.element, products, total)
}

// catalyticYield computes Y_i = c_i·out_i / (c_f·in_f).
func (c *Calculator) catalyticYield(ctx context.Context, in *transform.Input) ([]table.Column, error) {
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
	products := fs.products(outMembers)
	if len(products) == 0 {
		c.logger.WarnContext(ctx, "no products found for yield",
			"feedstock", fs.label,
			"element", fs.element,
			"outlet", outlet.Prefix)
		return nil, nil
	}
	prefix := in.LiteralOr("output", "Yp_"+fs.element)
	return perProduct(in.Function, prefix, fs.element, products, fed)
}

// perProduct writes c_i·out_i / den for every product as <prefix>-><species>.
func perProduct(function, prefix, element string, products []member, den quantity.Series) ([]table.Column, error) {
	cols := make([]table.Column, 0, len(products))
	for _, m := range products {
		ratio, err := m.atoms(element).Ratio(den)
		if err != nil {
			return nil, fmt.Errorf("%s: species %s: %w", function, m.species, err)
		}
		col, err := table.NewColumn(table.FamilyName(prefix, m.species), quantity.Dimensionless, ratio)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}
