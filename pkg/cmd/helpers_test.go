package cmd

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/cmd/testutil"
	"github.com/pseudomuto/tsqlrunner/pkg/harness"
	"github.com/stretchr/testify/require"
)

const (
	prepareSQL   = "EXEC sp_configure 'clr enabled', 1;\nRECONFIGURE;\nGO\n"
	frameworkSQL = "CREATE SCHEMA tSQLt;\nGO\nCREATE PROCEDURE tSQLt.RunAll AS RETURN;\nGO\n"
)

var resultColumns = []string{"Class", "TestCase", "Result", "Msg", "Duration"}

type fakeConn struct {
	db     *sql.DB
	failOn string
	execs  []string
	closed bool
}

func (c *fakeConn) Exec(_ context.Context, batch string) error {
	c.execs = append(c.execs, batch)

	if c.failOn != "" && strings.Contains(batch, c.failOn) {
		return errors.New("There is already an object named 'tSQLt' in the database.")
	}

	return nil
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// server records the connection string it was opened with.
type server struct {
	conn   *fakeConn
	mock   sqlmock.Sqlmock
	dsn    string
	opened bool
}

func newServer(t *testing.T) *server {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &server{conn: &fakeConn{db: db}, mock: mock}
}

func (s *server) open(_ context.Context, dsn string, _ func(string)) (harness.Conn, error) {
	s.dsn = dsn
	s.opened = true
	return s.conn, nil
}

func newWorkspace(t *testing.T, fixture *testutil.ProjectFixture) *Workspace {
	t.Helper()

	ws := NewWorkspace()
	require.NoError(t, ws.SetDir(fixture.Dir))
	return ws
}
