package catalysis

import (
	"context"
	"log/slog"

	"catpost/internal/formula"
	"catpost/internal/infrastructure"
	"catpost/internal/table"
	"catpost/internal/transform"
)

// Registered function names.
const (
	AtomBalanceName    = "catalysis.atom_balance"
	SelectivityName    = "catalysis.selectivity"
	CatalyticYieldName = "catalysis.catalytic_yield"
	ConversionName     = "catalysis.conversion"
)

// Calculator computes catalysis metrics. It holds no per-call state and is
// safe for concurrent use on distinct tables.
type Calculator struct {
	formulas *formula.Resolver
	resolver *transform.Resolver
	logger   *slog.Logger
}

// NewCalculator creates a calculator. Nil arguments fall back to
// formula.Default, transform.DefaultResolver and slog.Default.
func NewCalculator(formulas *formula.Resolver, resolver *transform.Resolver, logger *slog.Logger) *Calculator {
	if formulas == nil {
		formulas = formula.Default()
	}
	if resolver == nil {
		resolver = transform.DefaultResolver()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{formulas: formulas, resolver: resolver, logger: infrastructure.WithComponent(logger, "catalysis")}
}

// Options carries the arguments of a direct calculator call. Empty fields
// are left for the resolver to default; fields a calculator does not accept
// must stay empty.
type Options struct {
	Feedstock string
	Element   string
	XIn       string
	XOut      string
	RIn       string
	ROut      string
	// Type selects the conversion definition: reactant, product or mixed.
	Type   string
	Output string
}

// Args converts o into dispatcher arguments.
func (o Options) Args() transform.Args {
	args := transform.Args{}
	set := func(k, v string) {
		if v != "" {
			args[k] = v
		}
	}
	set("feedstock", o.Feedstock)
	set("element", o.Element)
	set("xin", o.XIn)
	set("xout", o.XOut)
	set("rin", o.RIn)
	set("rout", o.ROut)
	set("type", o.Type)
	set("output", o.Output)
	return args
}

// Contracts returns the contracts of all calculators.
func (c *Calculator) Contracts() []transform.Contract {
	return []transform.Contract{
		c.atomBalanceContract(),
		c.selectivityContract(),
		c.yieldContract(),
		c.conversionContract(),
	}
}

// Register installs every calculator in reg.
func (c *Calculator) Register(reg *transform.Registry) error {
	for _, contract := range c.Contracts() {
		if err := reg.Register(contract); err != nil {
			return err
		}
	}
	return nil
}

// AtomBalance writes atbal_<element> columns.
func (c *Calculator) AtomBalance(ctx context.Context, tbl *table.Table, opts Options) error {
	return transform.Invoke(ctx, tbl, c.atomBalanceContract(), c.resolver, opts.Args())
}

// Selectivity writes the Sp_<element>-><product> family.
func (c *Calculator) Selectivity(ctx context.Context, tbl *table.Table, opts Options) error {
	return transform.Invoke(ctx, tbl, c.selectivityContract(), c.resolver, opts.Args())
}

// CatalyticYield writes the Yp_<element>-><product> family.
func (c *Calculator) CatalyticYield(ctx context.Context, tbl *table.Table, opts Options) error {
	return transform.Invoke(ctx, tbl, c.yieldContract(), c.resolver, opts.Args())
}

// Conversion writes the X<r|p|m>_<feedstock> column.
func (c *Calculator) Conversion(ctx context.Context, tbl *table.Table, opts Options) error {
	return transform.Invoke(ctx, tbl, c.conversionContract(), c.resolver, opts.Args())
}

// AtomBalance runs the default calculator.
func AtomBalance(ctx context.Context, tbl *table.Table, opts Options) error {
	return NewCalculator(nil, nil, nil).AtomBalance(ctx, tbl, opts)
}

// Selectivity runs the default calculator.
func Selectivity(ctx context.Context, tbl *table.Table, opts Options) error {
	return NewCalculator(nil, nil, nil).Selectivity(ctx, tbl, opts)
}

// CatalyticYield runs the default calculator.
func CatalyticYield(ctx context.Context, tbl *table.Table, opts Options) error {
	return NewCalculator(nil, nil, nil).CatalyticYield(ctx, tbl, opts)
}

// Conversion runs the default calculator.
func Conversion(ctx context.Context, tbl *table.Table, opts Options) error {
	return NewCalculator(nil, nil, nil).Conversion(ctx, tbl, opts)
}

// Register installs the default calculator in reg.
func Register(reg *transform.Registry) error {
	return NewCalculator(nil, nil, nil).Register(reg)
}

var (
	pairParams = []transform.Param{
		{Name: "xin", Kind: transform.KindFamily},
		{Name: "xout", Kind: transform.KindFamily},
		{Name: "rin", Kind: transform.KindFamily},
		{Name: "rout", Kind: transform.KindFamily},
	}
	inOutPairs = [][]string{{"rin", "rout"}, {"xin", "xout"}}
)

func params(extra ...transform.Param) []transform.Param {
	out := make([]transform.Param, 0, len(extra)+len(pairParams))
	out = append(out, extra...)
	return append(out, pairParams...)
}
