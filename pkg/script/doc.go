// Package script loads SQL script files and splits them into batches.
//
// SQL Server tooling separates batches with a line containing only GO. The
// separator is a client-side convention: the server never sees it, so each
// batch must be sent as its own command. This package implements that split.
//
// # Delimiters
//
// A line is a delimiter when, after trimming surrounding whitespace, it equals
// "go" in any letter case. "GO", " go " and "Go" separate batches; "GOOD",
// "GO 5" and "-- GO" do not.
//
// # Trailing Content
//
// A script does not have to end with GO. FlushTrailing (the default) emits the
// remaining lines as a final batch, DropTrailing discards them.
//
// # Usage Example
//
//	s, err := script.Load(os.DirFS("."), "tests/AcceptanceTests.sql")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, batch := range s.Batches(script.FlushTrailing) {
//		fmt.Printf("batch %d starts at line %d\n", batch.Index, batch.Line)
//	}
package script
