package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the name of the project configuration file
	ConfigFile = "tsqlrunner.yaml"

	// DefaultFrameworkDir is the folder holding the vendored tSQLt distribution
	DefaultFrameworkDir = "tSQLt_V1.0.8083.3529"

	// DefaultPrepareScript prepares the server (CLR settings) for tSQLt
	DefaultPrepareScript = "PrepareServer.sql"

	// DefaultFrameworkScript installs the tSQLt framework into the target database
	DefaultFrameworkScript = "tSQLt.class.sql"

	// DefaultTestsDir is the directory searched (recursively) for test definitions
	DefaultTestsDir = "."

	// DefaultTestPattern matches test definition files by base name
	DefaultTestPattern = "*Tests.sql"

	// DefaultConnectionEnvVar is the environment variable holding the connection string
	DefaultConnectionEnvVar = "ConnectionStrings:SampleDatabase"

	// DefaultFallbackConnectionString targets a local development server
	DefaultFallbackConnectionString = "Server=localhost,2000;Database=Sample;User Id=sa;Password=AlwaysBeKind@;"

	// DefaultDevImage is the SQL Server image used by `tsqlrunner dev up`
	DefaultDevImage = "mcr.microsoft.com/mssql/server:2022-latest"

	// DefaultDevPassword is the SA password for the development container
	DefaultDevPassword = "AlwaysBeKind!1"

	// DevContainerLabel marks containers started by `tsqlrunner dev up`
	DevContainerLabel = "tsqlrunner.dev"
)
