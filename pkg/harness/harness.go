package harness

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/executor"
	"github.com/pseudomuto/tsqlrunner/pkg/mssql"
	"github.com/pseudomuto/tsqlrunner/pkg/output"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/pseudomuto/tsqlrunner/pkg/script"
	"github.com/pseudomuto/tsqlrunner/pkg/utils"
)

const runAllCommand = "EXEC tSQLt.RunAll;"

type (
	// Conn is the single session the whole lifecycle runs on.
	Conn interface {
		Exec(ctx context.Context, batch string) error
		Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		Close() error
	}

	// OpenFunc opens a Conn for dsn. notify receives informational messages
	// raised by the server while batches run.
	OpenFunc func(ctx context.Context, dsn string, notify func(string)) (Conn, error)

	// Config contains configuration options for opening a Harness.
	Config struct {
		// Project supplies the scripts and their configuration
		Project *project.Project

		// DSN is the connection string
		DSN string

		// Open connects to the server. Defaults to a SQL Server client.
		Open OpenFunc

		// Output receives progress lines and server messages. Defaults to stdout.
		Output *output.Writer
	}

	// Harness drives the tSQLt lifecycle over one connection: prepare the
	// server, install the framework, deploy the test definitions and run them.
	//
	// Steps must be invoked in that order, each exactly once. Once a step fails
	// every later step returns ErrAborted.
	//
	// Example usage:
	//
	//	h, err := harness.Open(ctx, harness.Config{Project: proj, DSN: dsn})
	//	if err != nil {
	//		log.Fatal(err)
	//	}
	//	defer h.Close()
	//
	//	for _, step := range h.Steps() {
	//		if err := step.Run(ctx); err != nil {
	//			log.Fatalf("%s: %v", step.Name, err)
	//		}
	//	}
	//
	//	for _, r := range h.Results() {
	//		fmt.Println(r.FullName(), r.Result)
	//	}
	Harness struct {
		project *project.Project
		conn    Conn
		exec    *executor.Executor
		out     *output.Writer
		class   string
		state   State
		failure error
		closed  bool
		results []*TestResult
	}

	// Step is a named lifecycle step.
	Step struct {
		Name string
		Run  func(context.Context) error
	}
)

// Open connects to the server and returns a harness in the Uninitialized
// state. The caller must Close it.
func Open(ctx context.Context, cfg Config) (*Harness, error) {
	if cfg.Project == nil {
		return nil, errors.New("a project is required")
	}

	if cfg.DSN == "" {
		return nil, errors.New("a connection string is required")
	}

	trailing, err := cfg.Project.Config().TrailingPolicy()
	if err != nil {
		return nil, err
	}

	open := cfg.Open
	if open == nil {
		open = OpenSQLServer
	}

	out := cfg.Output
	if out == nil {
		out = output.New()
	}

	conn, err := open(ctx, cfg.DSN, out.Println)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open connection")
	}

	return &Harness{
		project: cfg.Project,
		conn:    conn,
		out:     out,
		class:   cfg.Project.Config().Tests.Class,
		exec: executor.New(executor.Config{
			DB:       conn,
			Trailing: trailing,
			Output:   out,
		}),
	}, nil
}

// State returns the current lifecycle state.
func (h *Harness) State() State {
	return h.state
}

// Results returns the test results read by ExecuteTests.
func (h *Harness) Results() []*TestResult {
	return h.results
}

// Steps returns the lifecycle steps in the order they must run.
func (h *Harness) Steps() []Step {
	return []Step{
		{Name: "prepare server", Run: h.PrepareServer},
		{Name: "configure framework", Run: h.ConfigureFramework},
		{Name: "deploy tests", Run: h.DeployTests},
		{Name: "execute tests", Run: func(ctx context.Context) error {
			_, err := h.ExecuteTests(ctx)
			return err
		}},
	}
}

// PrepareServer runs the framework's server preparation script.
func (h *Harness) PrepareServer(ctx context.Context) error {
	return h.transition(Uninitialized, ServerPrepared, func() error {
		return h.runScript(ctx, h.project.PrepareScript())
	})
}

// ConfigureFramework installs tSQLt into the target database.
func (h *Harness) ConfigureFramework(ctx context.Context) error {
	return h.transition(ServerPrepared, FrameworkConfigured, func() error {
		return h.runScript(ctx, h.project.FrameworkScript())
	})
}

// DeployTests runs every test definition script in discovery order. The first
// failing script stops the deployment.
func (h *Harness) DeployTests(ctx context.Context) error {
	return h.transition(FrameworkConfigured, TestsDeployed, func() error {
		scripts, err := h.project.TestScripts()
		if err != nil {
			return err
		}

		if len(scripts) == 0 {
			slog.Warn("No test scripts found",
				"dir", h.project.Config().Tests.Dir,
				"pattern", h.project.Config().Tests.Pattern,
			)
		}

		for _, path := range scripts {
			if err := h.runScript(ctx, path); err != nil {
				return err
			}
		}

		return nil
	})
}

// ExecuteTests runs all deployed tests, or only the configured test class, and
// returns the per-test results recorded by tSQLt. Results are returned even
// when the run reports failures; the run's error is returned alongside them.
func (h *Harness) ExecuteTests(ctx context.Context) ([]*TestResult, error) {
	err := h.transition(TestsDeployed, TestsExecuted, func() error {
		command := runAllCommand
		if h.class != "" {
			command = "EXEC tSQLt.Run " + utils.QuoteString(h.class) + ";"
		}

		slog.Info("Running tests", "command", command)
		runErr := h.conn.Exec(ctx, command)
		if runErr != nil {
			runErr = errors.Wrap(runErr, "test run failed")
		}

		results, err := h.readResults(ctx)
		if err != nil {
			if runErr == nil {
				return err
			}
			return multierror.Append(runErr, err)
		}

		h.results = results
		return runErr
	})

	return h.results, err
}

// Close releases the connection. Only the first call does any work.
func (h *Harness) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	return errors.Wrap(h.conn.Close(), "failed to close connection")
}

// Run opens a harness, runs every lifecycle step and closes it. The
// connection is released even when a step fails; a failure to release it is
// reported together with the step error.
func Run(ctx context.Context, cfg Config) (results []*TestResult, err error) {
	h, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { err = combine(err, h.Close()) }()

	for _, step := range h.Steps() {
		if err := step.Run(ctx); err != nil {
			return h.Results(), err
		}
	}

	return h.Results(), nil
}

// Deploy opens a harness, prepares the server, installs the framework and
// deploys the tests without running them, then closes it.
func Deploy(ctx context.Context, cfg Config) (err error) {
	h, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = combine(err, h.Close()) }()

	for _, step := range h.Steps()[:3] {
		if err := step.Run(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (h *Harness) runScript(ctx context.Context, path string) error {
	h.out.Printf("Executing sql file %s", path)

	s, err := script.Load(h.project.FS(), path)
	if err != nil {
		return err
	}

	_, err = h.exec.Execute(ctx, s)
	return err
}

func combine(err, closeErr error) error {
	if closeErr == nil {
		return err
	}

	if err == nil {
		return closeErr
	}

	return multierror.Append(err, closeErr)
}

// OpenSQLServer opens a SQL Server session through pkg/mssql.
func OpenSQLServer(ctx context.Context, dsn string, notify func(string)) (Conn, error) {
	client, err := mssql.Open(ctx, dsn, mssql.WithMessageHandler(notify))
	if err != nil {
		return nil, err
	}

	return client, nil
}
