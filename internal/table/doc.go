// Package table holds the in-memory representation of a time-indexed
// measurement table: an index, an ordered set of named columns of
// quantities, and a map of string attributes.
//
// Columns named "<prefix>-><species>" form a species family that calculators
// address by its prefix alone.
package table
