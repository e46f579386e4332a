// Package executor runs SQL scripts against a database connection one batch
// at a time.
//
// A script is split into batches with the script package and each batch is
// sent as a single command. Execution is sequential and fail-fast: the first
// failing batch stops the script and its error is returned, annotated with the
// batch number and the line the batch starts on.
//
// # Core Components
//
//   - Executor: runs scripts over a DB
//   - DB: the one method the executor needs from a connection
//   - ExecutionResult: what happened to a single script
//
// # Usage Example
//
//	exec := executor.New(executor.Config{
//		DB:       client,
//		Trailing: script.FlushTrailing,
//		Output:   output.New(),
//	})
//
//	result, err := exec.Execute(ctx, s)
//	if err != nil {
//		fmt.Printf("✗ %s: %v\n", result.Path, err)
//	}
package executor
