// Package csvgrid converts between CSV text and string grids.
//
// The parser is deliberately forgiving: it never fails. Quoted fields may
// contain commas and newlines, doubled quotes decode to a literal quote,
// carriage returns outside quotes are dropped, and an unterminated quote
// folds the rest of the input into a single cell.
//
//	records := csvgrid.Parse("a,b\n1,2\n")
//	// [][]string{{"a", "b"}, {"1", "2"}}
//
//	text := csvgrid.Serialize(records[0], records[1:])
//	// "a,b\n1,2"
package csvgrid
