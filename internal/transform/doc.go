// Package transform binds declarative argument mappings to table columns and
// runs named calculations against a table.
//
// A calculation publishes a Contract listing its parameters. Family
// parameters name a column prefix ("xout" stands for every "xout->*"
// column), column parameters name one column and literal parameters are
// passed through. Contracts may list alternative groups of family
// parameters, e.g. inlet/outlet fractions or inlet/outlet flow rates; the
// Resolver picks one group per call.
//
// The Dispatcher looks contracts up in a Registry, binds their arguments,
// runs them and writes all output columns in one step, so a failed call
// leaves the table untouched. Every successful call appends a provenance
// attribute "transform.<n>" to the table.
package transform
