// Package mssql provides the SQL Server connection used to install tSQLt and
// run tests.
//
// A Client pins a single session for its whole lifetime. tSQLt relies on
// session state while it installs itself and while tests run, and batches must
// observe each other's effects in order, so nothing is ever spread across a
// connection pool.
//
// Informational messages raised by the server (PRINT, RAISERROR with a
// severity below 11, the tSQLt test summary) are delivered to the handler
// registered with WithMessageHandler while a batch runs.
//
// Example usage:
//
//	client, err := mssql.Open(ctx, "Server=localhost,1433;Database=Sample;User Id=sa;Password=...;",
//		mssql.WithMessageHandler(func(msg string) {
//			fmt.Println(msg)
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Exec(ctx, "EXEC tSQLt.RunAll;"); err != nil {
//		log.Fatal(err)
//	}
package mssql
