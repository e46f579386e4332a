// Package catalog builds an inventory of tSQLt test classes and test cases from
// test definition scripts without connecting to a server.
//
// Scripts are tokenised with a small participle lexer so that declarations
// inside comments or string literals are ignored. The inventory backs the
// `tsqlrunner list` command and lets `tsqlrunner run --class` reject an
// unknown class before any connection is made.
package catalog
