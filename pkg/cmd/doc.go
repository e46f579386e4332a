// Package cmd provides CLI commands for the tsqlrunner tool.
//
// Commands are constructed by fx and handed to NewRoot through the
// "commands" value group. Each constructor takes the dependencies it needs
// (the Workspace, a harness.OpenFunc or a Docker client) so tests can build
// a command directly with fakes.
//
// # Available Commands
//
//   - init: Scaffold tsqlrunner.yaml, an example test class and the framework folder
//   - list: Print the test classes and tests found in the project
//   - deploy: Prepare the server, install tSQLt and deploy the tests
//   - run: Deploy everything and run the tests over one connection
//   - dev up/down: Manage a local SQL Server container
//
// # Global Options
//
//   - --dir, -d: Specify project directory (defaults to current directory)
//   - --debug: Log batches and server messages
//   - --help, -h: Display command help
//   - --version: Display version information
//
// # Example Usage
//
//	tsqlrunner init --policy fallback          # Initialize project
//	tsqlrunner list                             # Show discovered tests
//	tsqlrunner deploy --dry-run                 # Show the batches each script sends
//	tsqlrunner run --url "sqlserver://..."      # Run every test
//	tsqlrunner run --class OrderTests           # Run a single test class
package cmd
