// Package tableio loads and saves tables as CSV or XLSX files.
//
// Both formats share one layout. The first column holds the index, every
// following column is headed "name [unit]" and is optionally followed by its
// standard uncertainty, headed "σ(name) [unit]". Table attributes travel as
// leading "# key: value" lines in CSV files and as a key/value "attrs" sheet
// in workbooks. The format is chosen from the file extension.
package tableio
