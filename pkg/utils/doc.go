// Package utils provides small helpers shared across tsqlrunner packages.
//
// # Identifier Utilities (identifier.go)
//
// T-SQL identifiers and string literals show up in three places: test class
// names discovered in test scripts, the tSQLt.Run invocation for a single
// class, and the reporting output. The helpers keep quoting consistent:
//
//	utils.QuoteIdentifier("tSQLt.RunAll")   // [tSQLt].[RunAll]
//	utils.SplitIdentifier("[My.Class].test") // ["My.Class", "test"]
//	utils.QuoteString("it's")               // N'it''s'
//	utils.UnquoteString("N'MyTests'")       // MyTests
//
// # Pointer Utilities (ptr.go)
//
//	timeout := utils.Ptr(30) // *int for container.StopOptions
package utils
