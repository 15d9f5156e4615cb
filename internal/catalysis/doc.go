// Package catalysis derives catalytic performance metrics from inlet and
// outlet species families of a reactor table.
//
// # Calculators
//
//   - catalysis.atom_balance: outlet over inlet atoms of one element
//   - catalysis.selectivity: share of product atoms found in each product
//   - catalysis.catalytic_yield: product atoms per feedstock atom fed
//   - catalysis.conversion: reactant, product or mixed conversion of a feedstock
//
// Inlet and outlet amounts are given either as molar fractions (xin, xout)
// or as molar flow rates (rin, rout). Both families of one pair must share
// a unit. When both pairs are available the flow rates are used unless the
// call names the fraction pair explicitly.
//
// # Usage Example
//
//	calc := catalysis.NewCalculator(formula.Default(), transform.DefaultResolver(), logger)
//	err := calc.Selectivity(ctx, tbl, catalysis.Options{Feedstock: "propane", XOut: "xout"})
//	// tbl now holds Sp_C->CO, Sp_C->CO2, ...
//
// Every calculator is also registered with a transform.Registry so recipes
// can call it by name with the same arguments.
package catalysis
