// Package shared holds code used across catpost packages that belongs to no
// single domain.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on log output
//   - BuildTable for small literal tables
//   - the methane oxidation fixtures used by the calculator tests
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    tbl := testutil.MethaneOxidationRates(t)
//	    // ...
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
