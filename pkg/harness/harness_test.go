package harness_test

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/harness"
	"github.com/pseudomuto/tsqlrunner/pkg/output"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/stretchr/testify/require"
)

const frameworkDir = "tSQLt_V1.0.8083.3529/"

type fakeConn struct {
	db       *sql.DB
	notify   func(string)
	failOn   string
	closeErr error
	execs    []string
	closes   int
}

func (c *fakeConn) Exec(_ context.Context, batch string) error {
	c.execs = append(c.execs, batch)

	if msg, ok := strings.CutPrefix(batch, "PRINT "); ok && c.notify != nil {
		c.notify(strings.Trim(msg, "';"))
	}

	if c.failOn != "" && strings.Contains(batch, c.failOn) {
		return errors.New("Incorrect syntax near 'boom'.")
	}

	return nil
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *fakeConn) Close() error {
	c.closes++
	return c.closeErr
}

type fixture struct {
	conn    *fakeConn
	mock    sqlmock.Sqlmock
	console *bytes.Buffer
	config  harness.Config
}

func defaultFS() fstest.MapFS {
	return fstest.MapFS{
		frameworkDir + "PrepareServer.sql": {Data: []byte("PRINT 'prepare';\nGO\n")},
		frameworkDir + "tSQLt.class.sql":   {Data: []byte("CREATE SCHEMA tSQLt;\nGO\nCREATE PROCEDURE tSQLt.RunAll AS RETURN;\nGO\n")},
		"tests/OrderTests.sql":             {Data: []byte("EXEC tSQLt.NewTestClass 'OrderTests';\nGO\nCREATE PROCEDURE OrderTests.testOne AS RETURN;\nGO\n")},
		"tests/AccountTests.sql":           {Data: []byte("EXEC tSQLt.NewTestClass 'AccountTests';\nGO\n")},
	}
}

func newFixture(t *testing.T, fsys fstest.MapFS) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	proj, err := project.Load(project.ProjectParams{FS: fsys})
	require.NoError(t, err)

	f := &fixture{
		conn:    &fakeConn{db: db},
		mock:    mock,
		console: new(bytes.Buffer),
	}

	f.config = harness.Config{
		Project: proj,
		DSN:     "Server=localhost;Database=Sample;",
		Output:  output.New(output.WithConsole(f.console)),
		Open: func(_ context.Context, dsn string, notify func(string)) (harness.Conn, error) {
			f.conn.notify = notify
			return f.conn, nil
		},
	}

	return f
}

func (f *fixture) expectResults(rows ...[]any) {
	result := sqlmock.NewRows([]string{"Class", "TestCase", "Result", "Msg", "Duration"})
	for _, row := range rows {
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = v
		}
		result.AddRow(values...)
	}

	f.mock.ExpectQuery("FROM tSQLt.TestResult").WillReturnRows(result)
}

func TestRun(t *testing.T) {
	f := newFixture(t, defaultFS())
	f.expectResults(
		[]any{"AccountTests", "test balance", "Success", nil, int64(12)},
		[]any{"OrderTests", "testOne", "Failure", "Expected: <1> but was: <2>", int64(3)},
	)

	results, err := harness.Run(context.Background(), f.config)
	require.NoError(t, err)

	require.Equal(t, []string{
		"PRINT 'prepare';",
		"CREATE SCHEMA tSQLt;",
		"CREATE PROCEDURE tSQLt.RunAll AS RETURN;",
		"EXEC tSQLt.NewTestClass 'AccountTests';",
		"EXEC tSQLt.NewTestClass 'OrderTests';",
		"CREATE PROCEDURE OrderTests.testOne AS RETURN;",
		"EXEC tSQLt.RunAll;",
	}, f.conn.execs)
	require.Equal(t, 1, f.conn.closes)

	require.Len(t, results, 2)
	require.True(t, results[0].Passed())
	require.Empty(t, results[0].Message)
	require.Equal(t, "[AccountTests].[test balance]", results[0].FullName())
	require.False(t, results[1].Passed())
	require.Equal(t, "Expected: <1> but was: <2>", results[1].Message)
	require.Equal(t, int64(3), results[1].Duration.Milliseconds())

	console := f.console.String()
	require.Contains(t, console, "Executing sql file tSQLt_V1.0.8083.3529/PrepareServer.sql\n")
	require.Contains(t, console, "Executing sql file tests/AccountTests.sql\n")
	require.Contains(t, console, "prepare\n")
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRun_StopsAtFirstFailingScript(t *testing.T) {
	f := newFixture(t, defaultFS())
	f.conn.failOn = "'AccountTests'"

	results, err := harness.Run(context.Background(), f.config)
	require.Nil(t, results)
	require.ErrorContains(t, err, "failed to execute batch 1 (line 1) of tests/AccountTests.sql")
	require.ErrorContains(t, err, "Incorrect syntax")

	for _, batch := range f.conn.execs {
		require.NotContains(t, batch, "OrderTests")
		require.NotContains(t, batch, "RunAll;")
	}
	require.Equal(t, 1, f.conn.closes)
}

func TestRun_ReportsCloseFailure(t *testing.T) {
	t.Run("with a step failure", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.conn.failOn = "PRINT"
		f.conn.closeErr = errors.New("connection reset")

		_, err := harness.Run(context.Background(), f.config)
		require.ErrorContains(t, err, "PrepareServer.sql")
		require.ErrorContains(t, err, "connection reset")
		require.Len(t, f.conn.execs, 1)
	})

	t.Run("after a successful run", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.conn.closeErr = errors.New("connection reset")
		f.expectResults()

		results, err := harness.Run(context.Background(), f.config)
		require.EqualError(t, err, "failed to close connection: connection reset")
		require.Empty(t, results)
	})
}

func TestDeploy(t *testing.T) {
	f := newFixture(t, defaultFS())

	require.NoError(t, harness.Deploy(context.Background(), f.config))
	require.Len(t, f.conn.execs, 6)
	require.NotContains(t, f.conn.execs, "EXEC tSQLt.RunAll;")
	require.Equal(t, 1, f.conn.closes)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHarness_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("steps run in order", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.expectResults()

		h, err := harness.Open(ctx, f.config)
		require.NoError(t, err)
		defer func() { require.NoError(t, h.Close()) }()

		var names []string
		for _, step := range h.Steps() {
			names = append(names, step.Name)
			require.NoError(t, step.Run(ctx))
		}

		require.Equal(t, []string{"prepare server", "configure framework", "deploy tests", "execute tests"}, names)
		require.Equal(t, harness.TestsExecuted, h.State())
	})

	t.Run("rejects steps out of order", func(t *testing.T) {
		f := newFixture(t, defaultFS())

		h, err := harness.Open(ctx, f.config)
		require.NoError(t, err)
		defer func() { require.NoError(t, h.Close()) }()

		require.ErrorIs(t, h.ConfigureFramework(ctx), harness.ErrOutOfOrder)
		require.ErrorIs(t, h.DeployTests(ctx), harness.ErrOutOfOrder)
		_, err = h.ExecuteTests(ctx)
		require.ErrorIs(t, err, harness.ErrOutOfOrder)
		require.Empty(t, f.conn.execs)
		require.Equal(t, harness.Uninitialized, h.State())

		require.NoError(t, h.PrepareServer(ctx))
		require.Equal(t, harness.ServerPrepared, h.State())

		err = h.PrepareServer(ctx)
		require.ErrorIs(t, err, harness.ErrOutOfOrder)
		require.ErrorContains(t, err, `cannot reach "server prepared" from "server prepared"`)
	})

	t.Run("aborts after a failure", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.conn.failOn = "CREATE SCHEMA"

		h, err := harness.Open(ctx, f.config)
		require.NoError(t, err)
		defer func() { require.NoError(t, h.Close()) }()

		require.NoError(t, h.PrepareServer(ctx))
		require.ErrorContains(t, h.ConfigureFramework(ctx), "failed to execute batch 1 (line 1)")
		require.ErrorIs(t, h.DeployTests(ctx), harness.ErrAborted)
		require.Equal(t, harness.ServerPrepared, h.State())
		require.Len(t, f.conn.execs, 2)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		f := newFixture(t, defaultFS())

		h, err := harness.Open(ctx, f.config)
		require.NoError(t, err)

		require.NoError(t, h.Close())
		require.NoError(t, h.Close())
		require.Equal(t, 1, f.conn.closes)
		require.ErrorIs(t, h.PrepareServer(ctx), harness.ErrClosed)
	})
}

func TestHarness_ExecuteTests(t *testing.T) {
	ctx := context.Background()

	deployed := func(t *testing.T, f *fixture) *harness.Harness {
		t.Helper()

		h, err := harness.Open(ctx, f.config)
		require.NoError(t, err)
		t.Cleanup(func() { _ = h.Close() })

		require.NoError(t, h.PrepareServer(ctx))
		require.NoError(t, h.ConfigureFramework(ctx))
		require.NoError(t, h.DeployTests(ctx))
		return h
	}

	t.Run("returns results when the run reports failures", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.expectResults([]any{"OrderTests", "testOne", "Error", "Invalid object name 'dbo.Orders'.", nil})

		h := deployed(t, f)
		f.conn.failOn = "RunAll;"

		results, err := h.ExecuteTests(ctx)
		require.ErrorContains(t, err, "test run failed")
		require.Len(t, results, 1)
		require.Equal(t, harness.ResultError, results[0].Result)
		require.Zero(t, results[0].Duration)
	})

	t.Run("reports both errors when results cannot be read", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.mock.ExpectQuery("FROM tSQLt.TestResult").WillReturnError(errors.New("Invalid object name 'tSQLt.TestResult'."))

		h := deployed(t, f)
		f.conn.failOn = "RunAll;"

		results, err := h.ExecuteTests(ctx)
		require.Nil(t, results)
		require.ErrorContains(t, err, "test run failed")
		require.ErrorContains(t, err, "failed to query tSQLt.TestResult")
	})

	t.Run("runs a single class", func(t *testing.T) {
		fsys := defaultFS()
		fsys["tsqlrunner.yaml"] = &fstest.MapFile{Data: []byte("tests:\n  class: Order'Tests\n")}

		f := newFixture(t, fsys)
		f.expectResults()

		h := deployed(t, f)
		_, err := h.ExecuteTests(ctx)
		require.NoError(t, err)
		require.Equal(t, "EXEC tSQLt.Run N'Order''Tests';", f.conn.execs[len(f.conn.execs)-1])
	})
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a project", func(t *testing.T) {
		_, err := harness.Open(ctx, harness.Config{DSN: "x"})
		require.EqualError(t, err, "a project is required")
	})

	t.Run("requires a connection string", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.config.DSN = ""

		_, err := harness.Open(ctx, f.config)
		require.EqualError(t, err, "a connection string is required")
	})

	t.Run("wraps connection failures", func(t *testing.T) {
		f := newFixture(t, defaultFS())
		f.config.Open = func(context.Context, string, func(string)) (harness.Conn, error) {
			return nil, errors.New("login failed")
		}

		_, err := harness.Open(ctx, f.config)
		require.EqualError(t, err, "failed to open connection: login failed")
	})
}

func TestState_String(t *testing.T) {
	require.Equal(t, "uninitialized", harness.Uninitialized.String())
	require.Equal(t, "server prepared", harness.ServerPrepared.String())
	require.Equal(t, "framework configured", harness.FrameworkConfigured.String())
	require.Equal(t, "tests deployed", harness.TestsDeployed.String())
	require.Equal(t, "tests executed", harness.TestsExecuted.String())
	require.Equal(t, "unknown", harness.State(42).String())
}
