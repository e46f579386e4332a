package mssql

import (
	"context"
	"database/sql"

	"github.com/golang-sql/sqlexp"
	"github.com/hashicorp/go-multierror"
	mssqldb "github.com/microsoft/go-mssqldb"
	"github.com/pkg/errors"
)

// DriverName is the database/sql driver registered by go-mssqldb.
const DriverName = "sqlserver"

type (
	// Client represents a single SQL Server session.
	Client struct {
		db        *sql.DB
		conn      *sql.Conn
		onMessage func(string)
		closed    bool
	}

	// Option customizes a Client.
	Option func(*Client)
)

// WithMessageHandler registers fn to receive informational messages raised
// while batches execute.
func WithMessageHandler(fn func(string)) Option {
	return func(c *Client) {
		c.onMessage = fn
	}
}

// Open connects to the server identified by dsn. ADO style
// ("Server=host,port;Database=...;User Id=...;Password=...;"), ODBC style and
// sqlserver:// URLs are accepted.
//
// The connection is verified before Open returns; there is no reconnect logic.
func Open(ctx context.Context, dsn string, opts ...Option) (*Client, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQL Server connection")
	}

	return NewClient(ctx, db, opts...)
}

// NewClient pins a session from db and verifies it. The client takes ownership
// of db: it is closed when the client is closed or when NewClient fails.
func NewClient(ctx context.Context, db *sql.DB, opts ...Option) (*Client, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to SQL Server")
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to connect to SQL Server")
	}

	c := &Client{db: db, conn: conn}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Exec runs batch as a single command and waits for it to complete, forwarding
// informational messages to the registered handler. The first error raised by
// the server is returned.
func (c *Client) Exec(ctx context.Context, batch string) error {
	if c.closed {
		return errors.New("connection is closed")
	}

	retmsg := &sqlexp.ReturnMessage{}
	rows, err := c.conn.QueryContext(ctx, batch, retmsg)
	if err != nil {
		return describe(err)
	}
	defer func() { _ = rows.Close() }()

	return describe(drain(ctx, retmsg, rows, c.onMessage))
}

// Query runs a query on the pinned session.
func (c *Client) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.closed {
		return nil, errors.New("connection is closed")
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, describe(err)
	}

	return rows, nil
}

// Close releases the session and the underlying pool. Only the first call
// does any work.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	var result *multierror.Error
	if err := c.conn.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "failed to release SQL Server session"))
	}

	if err := c.db.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "failed to close SQL Server connection"))
	}

	return result.ErrorOrNil()
}

// describe annotates server errors with their number, severity and line.
func describe(err error) error {
	if err == nil {
		return nil
	}

	var sqlErr mssqldb.Error
	if errors.As(err, &sqlErr) {
		return errors.Wrapf(err, "sql error %d (severity %d, line %d)", sqlErr.Number, sqlErr.Class, sqlErr.LineNo)
	}

	return err
}
