// Package tsqlttest runs a tsqlrunner project from `go test`.
//
// Each lifecycle step becomes a subtest, followed by one subtest per tSQLt
// test case:
//
//	func TestDatabase(t *testing.T) {
//		tsqlttest.Run(t, tsqlttest.Options{Dir: "../db"})
//	}
//
// Server messages (PRINT output, the tSQLt summary) are logged to the subtest
// that was running when they arrived.
package tsqlttest

import (
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/pseudomuto/tsqlrunner/pkg/harness"
	"github.com/pseudomuto/tsqlrunner/pkg/output"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Options locate the project and the server.
type Options struct {
	// Dir is the project root (default: the package directory)
	Dir string

	// FS overrides the file system scripts are read from
	FS fs.FS

	// DSN is the connection string. When empty it is resolved from the
	// project's connection settings.
	DSN string

	// Open overrides how the connection is opened
	Open harness.OpenFunc

	// Console receives server messages in addition to the test log (default: none)
	Console io.Writer
}

// Run executes the full lifecycle as ordered subtests and returns the results
// recorded by tSQLt. It stops at the first failing step; the connection is
// released when the test completes.
func Run(t *testing.T, opts Options) []*harness.TestResult {
	t.Helper()

	proj, err := project.Load(project.ProjectParams{Dir: opts.Dir, FS: opts.FS})
	require.NoError(t, err)

	dsn := opts.DSN
	if dsn == "" {
		dsn, err = proj.Config().Connection.Resolve(os.Getenv)
		require.NoError(t, err)
	}

	console := opts.Console
	if console == nil {
		console = io.Discard
	}

	out := output.New(output.WithConsole(console), output.WithTestLogger(t))
	ctx := t.Context()

	h, err := harness.Open(ctx, harness.Config{
		Project: proj,
		DSN:     dsn,
		Open:    opts.Open,
		Output:  out,
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, h.Close()) })

	for _, step := range h.Steps() {
		passed := t.Run(step.Name, func(t *testing.T) {
			prev := out.SetTestLogger(t)
			defer out.SetTestLogger(prev)

			require.NoError(t, step.Run(ctx))
		})

		if !passed && h.State() < harness.TestsDeployed {
			return nil
		}
	}

	reportResults(t, h.Results())
	return h.Results()
}

func reportResults(t *testing.T, results []*harness.TestResult) {
	t.Helper()

	byClass := make(map[string][]*harness.TestResult)
	var classes []string
	for _, r := range results {
		if _, ok := byClass[r.Class]; !ok {
			classes = append(classes, r.Class)
		}
		byClass[r.Class] = append(byClass[r.Class], r)
	}

	for _, class := range classes {
		t.Run(class, func(t *testing.T) {
			for _, r := range byClass[class] {
				t.Run(r.Name, func(t *testing.T) {
					switch {
					case r.Passed():
					case r.Result == harness.ResultSkipped:
						t.Skip(r.Message)
					default:
						t.Errorf("%s %s: %s", r.FullName(), r.Result, r.Message)
					}
				})
			}
		})
	}
}
