// Package project locates the scripts a tsqlrunner project is made of.
//
// # Project Structure
//
// A project follows this layout:
//
//	project-root/
//	├── tsqlrunner.yaml                # Optional configuration
//	├── tSQLt_V1.0.8083.3529/          # Vendored tSQLt distribution
//	│   ├── PrepareServer.sql
//	│   └── tSQLt.class.sql
//	└── tests/
//	    └── ExampleTests.sql           # Test class definitions
//
// Every name above can be changed in tsqlrunner.yaml. Scripts are always
// read through an fs.FS, so tests can substitute an fstest.MapFS for the
// directory on disk.
//
// # Usage Example
//
//	proj, err := project.Load(project.ProjectParams{Dir: "db"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	scripts, err := proj.TestScripts()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, path := range scripts {
//		fmt.Println(path)
//	}
package project
