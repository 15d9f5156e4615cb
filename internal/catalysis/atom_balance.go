package catalysis

import (
	"context"
	"fmt"

	"catpost/internal/quantity"
	"catpost/internal/table"
	"catpost/internal/transform"
)

func (c *Calculator) atomBalanceContract() transform.Contract {
	return transform.Contract{
		Name: AtomBalanceName,
		Params: params(
			transform.Param{Name: "element", Kind: transform.KindLiteral},
			transform.Param{Name: "output", Kind: transform.KindLiteral},
		),
		Alternatives: inOutPairs,
		Run:          c.atomBalance,
	}
}

// atomBalance computes Σ c(el,s)·out_s / Σ c(el,s)·in_s. Without an element
// one column per element of the inlet family is written.
func (c *Calculator) atomBalance(ctx context.Context, in *transform.Input) ([]table.Column, error) {
	inlet, outlet := pair(in.Selected())
	inMembers, err := c.members(inlet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Function, err)
	}
	outMembers, err := c.members(outlet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Function, err)
	}

	output, named := in.Literal("output")
	element, single := in.Literal("element")
	elements := elementsOf(inMembers)
	if single {
		if err := checkElement(in.Function, element); err != nil {
			return nil, err
		}
		elements = []string{element}
	}

	cols := make([]table.Column, 0, len(elements))
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		num, err := elementSum(outMembers, el, in.Rows(), outlet.Unit, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}
		den, err := elementSum(inMembers, el, in.Rows(), inlet.Unit, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}
		ratio, err := num.Ratio(den)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Function, err)
		}

		name := "atbal_" + el
		switch {
		case named && single:
			name = output
		case named:
			name = output + "_" + el
		}
		col, err := table.NewColumn(name, quantity.Dimensionless, ratio)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	c.logger.DebugContext(ctx, "atom balance computed",
		"inlet", inlet.Prefix,
		"outlet", outlet.Prefix,
		"elements", elements)
	return cols, nil
}
