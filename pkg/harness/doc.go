// Package harness orchestrates a tSQLt test run against SQL Server.
//
// A run has four steps, executed in order over a single connection:
//
//  1. prepare server: run the framework's server preparation script
//  2. configure framework: install tSQLt into the target database
//  3. deploy tests: run every test definition script of the project
//  4. execute tests: run tSQLt.RunAll (or a single test class) and read the
//     results tSQLt recorded
//
// Each step is fail-fast: the first failing batch stops its script, the first
// failing script stops the step and a failed step aborts the lifecycle.
//
// Steps can be driven one at a time (see Harness.Steps), which suits test
// frameworks that report each step as a test case, or all at once with Run.
// Deploy performs the first three steps only.
//
// # Usage Example
//
//	proj, err := project.Load(project.ProjectParams{Dir: "db"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dsn, err := proj.Config().Connection.Resolve(os.Getenv)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := harness.Run(ctx, harness.Config{Project: proj, DSN: dsn})
//	for _, r := range results {
//		fmt.Printf("%s: %s\n", r.FullName(), r.Result)
//	}
//	if err != nil {
//		log.Fatal(err)
//	}
package harness
