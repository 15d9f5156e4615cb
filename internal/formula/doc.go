// Package formula maps species labels to their elemental composition.
//
// A label is either a molecular formula ("C3H8", "CH3COOH", "Ca(OH)2") or a
// common name registered in the alias table ("propane", "Carbon Dioxide").
// Formulas are parsed against the periodic table; names are looked up
// case-insensitively. A label that is neither is rejected with an
// UnknownSpeciesError.
//
// The default Resolver is built once per process and never modified.
// Additional aliases are layered on top with WithAliases or LoadAliases,
// which return a new Resolver.
package formula
